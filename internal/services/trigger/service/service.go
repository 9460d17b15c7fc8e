// Package service implements the trigger policy: resolve a trailing window
// from the request or the schedule, run a collection, and shape the report
package service

import (
	"context"
	"fmt"
	"time"

	collectordom "ghstats/internal/services/collector/domain"
	"ghstats/internal/services/trigger/domain"
)

// Config holds the trigger policy knobs
type Config struct {
	// Organization is reported back on every response
	Organization string

	// CadenceHours is how often the scheduler fires
	CadenceHours int

	// OverlapHours widens the scheduled window past the cadence so adjacent
	// runs always share an edge; the publisher makes the shared edge harmless
	OverlapHours int

	// LookbackDays caps any requested window
	LookbackDays int
}

// Service implements domain.TriggerPort over the collection runner
type Service struct {
	Runner collectordom.RunnerPort
	Cfg    Config

	now func() time.Time
}

// New constructs the trigger service
func New(runner collectordom.RunnerPort, cfg Config) *Service {
	if runner == nil {
		panic("trigger.Service requires a non nil runner")
	}
	if cfg.CadenceHours <= 0 {
		cfg.CadenceHours = 6
	}
	if cfg.OverlapHours <= 0 {
		cfg.OverlapHours = 2
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 180
	}
	return &Service{Runner: runner, Cfg: cfg, now: time.Now}
}

// Trigger resolves the trailing window and runs a collection. Hours wins over
// Days; with neither the window is one cadence plus the overlap. Every window
// is capped at the configured lookback
func (s *Service) Trigger(ctx context.Context, req domain.TriggerRequest) (domain.TriggerResponse, error) {
	hours := req.Hours
	if hours <= 0 && req.Days > 0 {
		hours = req.Days * 24
	}
	if hours <= 0 {
		hours = s.Cfg.CadenceHours + s.Cfg.OverlapHours
	}
	if maxHours := s.Cfg.LookbackDays * 24; hours > maxHours {
		hours = maxHours
	}

	until := s.now().UTC()
	since := until.Add(-time.Duration(hours) * time.Hour)

	sum, err := s.Runner.Run(ctx, collectordom.RunRequest{
		Since:       since,
		Until:       until,
		Repos:       req.Repos,
		ResumeRunID: req.Resume,
	})
	if err != nil {
		return domain.TriggerResponse{}, err
	}

	// report the window the run actually covered; a resumed run keeps the
	// window of its checkpoint, not the one computed above
	return domain.TriggerResponse{
		RunID:        sum.RunID,
		Status:       sum.Status,
		Organization: s.Cfg.Organization,
		Window: domain.Window{
			Since: sum.Since,
			Until: sum.Until,
			Hours: int(sum.Until.Sub(sum.Since) / time.Hour),
		},
		Repositories: req.Repos,
		Counts:       sum.Counts,
		Partial:      sum.Partial,
		Total:        sum.Total(),
		Message:      message(sum),
		Timestamp:    until,
	}, nil
}

func message(sum collectordom.RunSummary) string {
	msg := fmt.Sprintf("collected %d records across %d repositories", sum.Total(), len(sum.Repos))
	if len(sum.Partial) > 0 {
		msg += fmt.Sprintf(" (%d with publish failures, staged chunks remain)", len(sum.Partial))
	}
	return msg
}
