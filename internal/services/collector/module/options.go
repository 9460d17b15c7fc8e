package module

import (
	"ghstats/internal/platform/config"
)

// Options holds configuration options for the collector service
type Options struct {
	Organization    string
	Tokens          string
	Workers         int
	RequestsPerHour int
	Persist         bool
}

// FromConfig reads the collector options from config. Organization and
// tokens are shared pipeline-wide under GHSTATS_; run knobs live under
// COLLECT_
func FromConfig(cfg config.Conf) Options {
	gh := cfg.Prefix("GHSTATS_")
	co := cfg.Prefix("COLLECT_")

	tokens := gh.MayString("GITHUB_TOKENS", "")
	if tokens == "" {
		tokens = gh.MayString("GITHUB_TOKEN", "")
	}

	return Options{
		Organization:    gh.MayString("ORG", ""),
		Tokens:          tokens,
		Workers:         co.MayInt("MAX_WORKERS", 10),
		RequestsPerHour: co.MayInt("REQUESTS_PER_HOUR", 4500),
		Persist:         co.MayBool("PERSIST", true),
	}
}
