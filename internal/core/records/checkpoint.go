package records

import (
	"sort"
	"time"
)

// RunStatus is the lifecycle state of one collection run
type RunStatus string

// Run lifecycle states
const (
	RunStarted   RunStatus = "started"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
)

// Checkpoint is the durable progress document for one collection run and
// the sole source of truth for resuming it. It is created at run start,
// extended as each repository completes, and never deleted by the run itself
type Checkpoint struct {
	Organization string                   `json:"organization"`
	RunID        string                   `json:"run_id"`
	Since        time.Time                `json:"since"`
	Until        time.Time                `json:"until"`
	Status       RunStatus                `json:"status"`
	CreatedAt    time.Time                `json:"created_at"`
	UpdatedAt    time.Time                `json:"updated_at"`
	Repos        map[string]*RepoProgress `json:"repositories"`
}

// RepoProgress records one fully processed repository. Progress is
// repo-atomic: a repository is either absent or completely done, nothing
// finer is tracked
type RepoProgress struct {
	CompletedAt time.Time         `json:"completed_at"`
	Counts      map[Kind]int      `json:"counts,omitempty"`
	ChunkKeys   map[Kind][]string `json:"chunk_keys,omitempty"`
}

// NewCheckpoint starts a fresh checkpoint for a run beginning at start
func NewCheckpoint(org string, since, until, start time.Time) *Checkpoint {
	now := start.UTC()
	return &Checkpoint{
		Organization: org,
		RunID:        NewRunID(start),
		Since:        since.UTC(),
		Until:        until.UTC(),
		Status:       RunStarted,
		CreatedAt:    now,
		UpdatedAt:    now,
		Repos:        make(map[string]*RepoProgress),
	}
}

// MarkCompleted records a repository as fully processed. Entries are only
// ever added or replaced wholesale; the completed set never shrinks
func (c *Checkpoint) MarkCompleted(repo string, counts map[Kind]int, keys map[Kind][]string, now time.Time) {
	if c.Repos == nil {
		c.Repos = make(map[string]*RepoProgress)
	}
	c.Repos[repo] = &RepoProgress{
		CompletedAt: now.UTC(),
		Counts:      counts,
		ChunkKeys:   keys,
	}
	c.UpdatedAt = now.UTC()
}

// IsCompleted reports whether the repository already finished in this run
func (c *Checkpoint) IsCompleted(repo string) bool {
	_, ok := c.Repos[repo]
	return ok
}

// Completed returns the finished repositories in sorted order
func (c *Checkpoint) Completed() []string {
	out := make([]string, 0, len(c.Repos))
	for repo := range c.Repos {
		out = append(out, repo)
	}
	sort.Strings(out)
	return out
}

// Pending filters requested down to the repositories not yet completed,
// preserving the requested order
func (c *Checkpoint) Pending(requested []string) []string {
	out := make([]string, 0, len(requested))
	for _, repo := range requested {
		if !c.IsCompleted(repo) {
			out = append(out, repo)
		}
	}
	return out
}

// Finish stamps the run's terminal status
func (c *Checkpoint) Finish(status RunStatus, now time.Time) {
	c.Status = status
	c.UpdatedAt = now.UTC()
}

// Reopen marks a resumed run as active again
func (c *Checkpoint) Reopen(now time.Time) {
	c.Status = RunStarted
	c.UpdatedAt = now.UTC()
}
