package module

import (
	"ghstats/internal/platform/config"
)

// Options holds configuration options for the trigger service
type Options struct {
	Organization string
	CadenceHours int
	OverlapHours int
	LookbackDays int
}

// FromConfig reads the trigger options from config. Organization, cadence,
// and lookback are shared pipeline-wide under GHSTATS_; the overlap knob
// lives under TRIGGER_
func FromConfig(cfg config.Conf) Options {
	gh := cfg.Prefix("GHSTATS_")
	tr := cfg.Prefix("TRIGGER_")
	return Options{
		Organization: gh.MayString("ORG", ""),
		CadenceHours: gh.MayInt("CADENCE_HOURS", 6),
		OverlapHours: tr.MayInt("OVERLAP_HOURS", 2),
		LookbackDays: gh.MayInt("LOOKBACK_DAYS", 180),
	}
}
