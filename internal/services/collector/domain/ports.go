package domain

import (
	"context"
	"time"

	"ghstats/internal/core/records"
	pubdom "ghstats/internal/services/publisher/domain"
	stashdom "ghstats/internal/services/stash/domain"
)

// Ports are dependencies injected into the collector module
type Ports struct {
	Publisher pubdom.PublisherPort // required
	Stasher   stashdom.StasherPort // required when staged persistence is on
}

// RunnerPort is the external port for collection runs
type RunnerPort interface {
	// Run executes one collection run end to end and returns its summary.
	// The summary is meaningful even when err is non nil: it reports what
	// completed before the failure and carries the resumable run id
	Run(ctx context.Context, req RunRequest) (RunSummary, error)

	// LoadFromStorage republishes staged chunks through the publisher
	// without touching the upstream API. Empty repo means every repository
	// found in storage; empty date means all dates. Returns published row
	// counts per kind
	LoadFromStorage(ctx context.Context, repo, date string) (map[records.Kind]int64, error)
}

// FetcherPort retrieves one repository's records from the upstream API
type FetcherPort interface {
	// FetchRepo returns every record of every kind for pull requests
	// updated inside the window
	FetchRepo(ctx context.Context, repo string, since, until time.Time) (*records.Set, error)

	// ListRepos returns the organization's repositories sorted by name
	ListRepos(ctx context.Context) ([]string, error)
}

// StagingBackend decides what happens to fetched records between the
// fetcher and the warehouse. One implementation stages chunks in object
// storage and checkpoints progress after every repository, the other
// publishes directly and keeps progress in memory only
type StagingBackend interface {
	// Begin opens the run's checkpoint, fresh or resumed
	Begin(ctx context.Context, since, until time.Time, resumeID string, start time.Time) (*records.Checkpoint, error)

	// CompleteRepo persists one repository's records and marks it done in
	// the checkpoint. A returned error is fatal to the run; per kind
	// publish failures are reported inside the result instead
	CompleteRepo(ctx context.Context, cp *records.Checkpoint, repo string, set *records.Set, now time.Time) (RepoResult, error)

	// Finish stamps the run's terminal status
	Finish(ctx context.Context, cp *records.Checkpoint, status records.RunStatus, now time.Time) error
}
