// Package domain holds the port for the merge-based upsert publisher
package domain

import (
	"context"

	"ghstats/internal/core/records"
)

// PublisherPort is the public port exposed by the module (what other modules call)
type PublisherPort interface {
	// Publish upserts rows of one kind into the kind's warehouse table and
	// returns the rows affected. Empty input is a no-op. Rows are staged in a
	// transient table, merged on the kind's natural key with last-write-wins
	// semantics, and the staging table is dropped on every exit path.
	// Publishing the same rows twice leaves the table unchanged
	Publish(ctx context.Context, kind records.Kind, rows []records.Row) (int64, error)
}
