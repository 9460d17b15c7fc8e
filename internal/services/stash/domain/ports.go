package domain

import (
	"context"

	"ghstats/internal/core/records"
)

// StasherPort is the public port exposed by the module (what other modules call)
type StasherPort interface {
	// WriteChunks splits rows into bounded chunks and writes each as one
	// object under the run's namespace, returning every key written. Calling
	// it again for the same inputs writes new uniquely named objects; nothing
	// is deduplicated here
	WriteChunks(ctx context.Context, repo string, kind records.Kind, rows []records.Row, runID string) ([]string, error)

	// ReadRecords lists, reads, and decodes every chunk of one repository and
	// kind, optionally narrowed to a single calendar date (DateLayout form).
	// Order across chunks is unspecified; chunk-internal order is preserved
	ReadRecords(ctx context.Context, repo string, kind records.Kind, date string) ([]records.Row, error)

	// Repositories returns the distinct repositories that have staged chunks
	Repositories(ctx context.Context) ([]string, error)

	// Summary aggregates file counts and byte sizes per repository and kind
	Summary(ctx context.Context) (Summary, error)

	// Wipe deletes every object under the repository's prefix and returns the
	// number removed. Irreversible; call sites must gate it behind an explicit
	// confirmation
	Wipe(ctx context.Context, repo string) (int, error)

	// SaveCheckpoint persists the run's progress document
	SaveCheckpoint(ctx context.Context, cp *records.Checkpoint) error

	// LoadCheckpoint fetches one run's checkpoint; missing runs are NotFound
	LoadCheckpoint(ctx context.Context, runID string) (*records.Checkpoint, error)

	// ListCheckpoints reports every checkpoint of the organization
	ListCheckpoints(ctx context.Context) ([]CheckpointInfo, error)
}
