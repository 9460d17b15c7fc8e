// Package domain holds the run types and ports for the collection orchestrator
package domain

import (
	"time"

	"ghstats/internal/core/records"
)

// RunRequest describes one collection run
type RunRequest struct {
	// Since and Until bound the collection window by pull request update
	// time. Until zero means now. The window must be valid even when
	// resuming; a resumed run prefers the window stored in its checkpoint
	// and only falls back to the request window when the checkpoint is gone
	Since time.Time
	Until time.Time

	// Repos restricts the run to these repositories in the given order.
	// Empty means every repository of the organization, discovered through
	// the lister in alphabetical order
	Repos []string

	// ResumeRunID continues a previous run, skipping its completed
	// repositories. Requires staged persistence
	ResumeRunID string
}

// RepoResult is the outcome for one repository in a run
type RepoResult struct {
	Repository string `json:"repository"`

	// Counts holds records durably handled per kind: staged counts when
	// staging is enabled, published counts otherwise
	Counts map[records.Kind]int64 `json:"counts,omitempty"`

	// Failed maps kinds whose publish failed to the failure text. Staged
	// kinds listed here remain republishable from storage
	Failed map[records.Kind]string `json:"failed,omitempty"`

	// NotFound marks a repository upstream no longer knows; it completes
	// with zero records instead of failing the run
	NotFound bool `json:"not_found,omitempty"`
}

// AddCount records n durably handled rows of one kind
func (r *RepoResult) AddCount(k records.Kind, n int) {
	if r.Counts == nil {
		r.Counts = make(map[records.Kind]int64)
	}
	r.Counts[k] += int64(n)
}

// MarkFailed records a per kind publish failure
func (r *RepoResult) MarkFailed(k records.Kind, err error) {
	if r.Failed == nil {
		r.Failed = make(map[records.Kind]string)
	}
	r.Failed[k] = err.Error()
}

// RunSummary aggregates one run's outcome
type RunSummary struct {
	Status records.RunStatus `json:"status"`
	RunID  string            `json:"run_id"`
	Since  time.Time         `json:"since"`
	Until  time.Time         `json:"until"`

	// Counts aggregates per-kind record counts across all repositories
	Counts map[records.Kind]int64 `json:"counts"`

	Repos []RepoResult `json:"repositories,omitempty"`

	// Partial lists repositories that completed with at least one failed
	// kind
	Partial []string `json:"partial,omitempty"`
}

// Total returns the record count across all kinds in the summary
func (s RunSummary) Total() int64 {
	var n int64
	for _, c := range s.Counts {
		n += c
	}
	return n
}
