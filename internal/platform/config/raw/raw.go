// Package raw reads environment variables during bootstrap, before the
// logger exists. It must never import the logger package; config and logger
// both build on it
package raw

import (
	"os"
	"strings"
)

// Conf is a namespaced view over the environment ("API_", "PG_", "LOG_")
type Conf struct{ prefix string }

// New returns the unprefixed root view
func New() Conf { return Conf{} }

// Prefix narrows the view by another segment, so views nest:
// New().Prefix("GHSTATS_").Prefix("LOG_") reads GHSTATS_LOG_*
func (c Conf) Prefix(p string) Conf { return Conf{prefix: c.prefix + p} }

func (c Conf) key(k string) string { return c.prefix + k }

// Get returns the trimmed value, or def when unset or blank
func (c Conf) Get(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(c.key(key))); v != "" {
		return v
	}
	return def
}

// GetBool reads "1", "true" or "yes" as true. Any other non-blank value is
// false regardless of def
func (c Conf) GetBool(key string, def bool) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(c.key(key)))) {
	case "":
		return def
	case "1", "true", "yes":
		return true
	}
	return false
}

// GetInt accepts unsigned decimal digits only; anything else, signs and
// suffixes included, falls back to def
func (c Conf) GetInt(key string, def int) int {
	s := strings.TrimSpace(os.Getenv(c.key(key)))
	if s == "" {
		return def
	}
	n := 0
	for _, ch := range []byte(s) {
		if ch < '0' || ch > '9' {
			return def
		}
		n = n*10 + int(ch-'0')
	}
	return n
}
