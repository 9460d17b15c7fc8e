// Package domain holds the types and ports for the staged-object store:
// chunked record objects, checkpoint documents, and the usage reports built
// over them
package domain

import (
	"time"

	"ghstats/internal/core/records"
)

// KindUsage aggregates the stored objects of one repository and record kind
type KindUsage struct {
	FileCount int   `json:"file_count"`
	SizeBytes int64 `json:"size_bytes"`
}

// Summary is the read-only usage report over one organization's staged data.
// Checkpoint documents are excluded; repositories map to per-kind usage
type Summary struct {
	Organization   string                                `json:"organization"`
	Repositories   map[string]map[records.Kind]KindUsage `json:"repositories"`
	TotalFiles     int                                   `json:"total_files"`
	TotalSizeBytes int64                                 `json:"total_size_bytes"`
}

// CheckpointInfo is one row of a checkpoint listing
type CheckpointInfo struct {
	RunID     string            `json:"run_id"`
	Status    records.RunStatus `json:"status"`
	Since     time.Time         `json:"since"`
	Until     time.Time         `json:"until"`
	UpdatedAt time.Time         `json:"updated_at"`
	Completed []string          `json:"completed"`
}
