package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"ghstats/internal/core/records"
	"ghstats/internal/modkit"
	"ghstats/internal/modkit/module"
	"ghstats/internal/platform/config"
	"ghstats/internal/platform/logger"
	"ghstats/internal/platform/store"

	collectordom "ghstats/internal/services/collector/domain"
	collectormod "ghstats/internal/services/collector/module"
	pubmod "ghstats/internal/services/publisher/module"
	stashmod "ghstats/internal/services/stash/module"
)

func mustSetEnv(key, val string) {
	if val != "" {
		_ = os.Setenv(key, val)
	}
}

func parseWhen(label, v string) time.Time {
	// Accept either a date or a full timestamp
	// - "YYYY-MM-DD" (midnight UTC)
	// - RFC3339, e.g. "2025-03-10T08:00:00Z"
	if v == "" {
		return time.Time{}
	}
	layouts := []string{time.RFC3339, "2006-01-02"}
	var lastErr error
	for _, layout := range layouts {
		t, err := time.Parse(layout, v)
		if err == nil {
			if layout == "2006-01-02" {
				return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
			}
			return t.UTC()
		}
		lastErr = err
	}
	panic(fmt.Errorf("bad -%s: %w", label, lastErr))
}

func main() {
	root := config.New()

	l := logger.Get()

	// Flags
	var (
		fOrg     = flag.String("org", "", "GitHub organization (or GHSTATS_ORG)")
		fRepos   = flag.String("repos", "", "comma-separated repositories (default: every repository in the org)")
		fDays    = flag.Int("days", 0, "collect the trailing N days")
		fHours   = flag.Int("hours", 0, "collect the trailing N hours")
		fSince   = flag.String("since", "", "window lower bound (UTC) YYYY-MM-DD or RFC3339")
		fUntil   = flag.String("until", "", "window upper bound (UTC) YYYY-MM-DD or RFC3339, default now")
		fResume  = flag.String("resume", "", "resume an interrupted run by its run id")
		fDirect  = flag.Bool("direct", false, "publish directly, skipping staged chunks and checkpoints")
		fWorkers = flag.Int("workers", 0, "PR detail fetch concurrency (default 10)")
		fTokens  = flag.String("tokens", "", "comma-separated GitHub tokens (optional; can also come from env)")
	)
	flag.Parse()

	// Export flag knobs as env so the modules read them via FromConfig
	mustSetEnv("GHSTATS_ORG", *fOrg)
	mustSetEnv("GHSTATS_REPOS", *fRepos)
	mustSetEnv("GHSTATS_GITHUB_TOKENS", *fTokens)
	if *fWorkers > 0 {
		mustSetEnv("COLLECT_MAX_WORKERS", strconv.Itoa(*fWorkers))
	}
	if *fDirect {
		mustSetEnv("COLLECT_PERSIST", "0")
	}

	gh := root.Prefix("GHSTATS_")
	co := root.Prefix("COLLECT_")

	if gh.MayString("ORG", "") == "" {
		l.Panic().Msg("ghstats-collect: must provide -org or GHSTATS_ORG")
	}

	// Resolve the window: explicit bounds win, then -hours, then -days.
	// A bare -resume runs against the checkpoint's own window and only falls
	// back to the trailing day when that checkpoint is gone
	now := time.Now().UTC()
	since := parseWhen("since", *fSince)
	until := parseWhen("until", *fUntil)
	if since.IsZero() {
		switch {
		case *fHours > 0:
			since = now.Add(-time.Duration(*fHours) * time.Hour)
		case *fDays > 0:
			since = now.AddDate(0, 0, -*fDays)
		case *fResume != "":
			since = now.Add(-24 * time.Hour)
		default:
			l.Panic().Msg("ghstats-collect: must provide a window via -days, -hours or -since (or -resume)")
		}
	}
	if until.IsZero() {
		until = now
	}

	persist := co.MayBool("PERSIST", true)

	st, err := store.Open(context.Background(), store.Config{
		AppName: "ghstats-collect",
		Blobs: store.BlobsConfig{
			Enabled:         persist,
			Bucket:          gh.MayString("GCS_BUCKET", "github-stats-data"),
			CredentialsFile: gh.MayString("GCS_CREDENTIALS_FILE", ""),
			Endpoint:        gh.MayString("GCS_ENDPOINT", ""),
		},
		Warehouse: store.WarehouseConfig{
			Enabled:   true,
			Driver:    gh.MayEnum("WAREHOUSE_DRIVER", store.WarehouseBigQuery, store.WarehouseBigQuery, store.WarehousePostgres),
			ProjectID: gh.MayString("BQ_PROJECT", ""),
			Dataset:   gh.MayString("BQ_DATASET", "github_stats"),
			URL:       gh.MayString("WAREHOUSE_DBURL", ""),
			MaxConns:  int32(gh.MayInt("WAREHOUSE_MAX_CONNS", 4)),
		},
	}, store.WithLogger(*l))
	if err != nil {
		l.Panic().Err(err).Msg("store.Open failed")
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			l.Error().Err(err).Msg("failed to close store")
		}
	}()

	// surface bad credentials or unreachable backends before the run starts
	if err := st.Guard(context.Background()); err != nil {
		l.Panic().Err(err).Msg("storage backends not ready")
	}

	deps := modkit.Deps{
		Log:       *l,
		Cfg:       root,
		Blobs:     st.Blobs,
		Warehouse: st.Warehouse,
	}

	pm := pubmod.New(deps)
	module.Register(pm.Name(), pm.Ports())

	ports := collectordom.Ports{
		Publisher: module.MustPortsOf[pubmod.Ports](pm).Publisher,
	}
	if persist {
		sm := stashmod.New(deps)
		module.Register(sm.Name(), sm.Ports())
		ports.Stasher = module.MustPortsOf[stashmod.Ports](sm).Stasher
	}

	cm := collectormod.New(deps, modkit.WithPorts(ports))
	module.Register(cm.Name(), cm.Ports())

	runner := module.MustPortsOf[collectormod.Ports](cm).Runner

	sum, err := runner.Run(context.Background(), collectordom.RunRequest{
		Since:       since,
		Until:       until,
		Repos:       gh.MayCSV("REPOS", nil),
		ResumeRunID: *fResume,
	})
	if err != nil {
		l.Fatal().Err(err).Msg("collection run failed")
	}

	evt := l.Info().
		Str("run_id", sum.RunID).
		Str("status", string(sum.Status)).
		Time("since", sum.Since).
		Time("until", sum.Until)
	for _, k := range records.Kinds() {
		if n := sum.Counts[k]; n > 0 {
			evt = evt.Int64(k.String(), n)
		}
	}
	if len(sum.Partial) > 0 {
		evt = evt.Strs("partial_repos", sum.Partial)
	}
	evt.Int64("total", sum.Total()).Msg("collection run complete")
}
