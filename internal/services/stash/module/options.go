package module

import (
	"ghstats/internal/core/records"
	"ghstats/internal/platform/config"
)

// Options holds configuration options for the stash service
type Options struct {
	Organization string
	ChunkSize    int
}

// FromConfig reads the stash options from config. The organization is shared
// pipeline-wide under GHSTATS_; chunking knobs live under STASH_
func FromConfig(cfg config.Conf) Options {
	gh := cfg.Prefix("GHSTATS_")
	st := cfg.Prefix("STASH_")
	return Options{
		Organization: gh.MayString("ORG", ""),
		ChunkSize:    st.MayInt("CHUNK_SIZE", records.DefaultChunkSize),
	}
}
