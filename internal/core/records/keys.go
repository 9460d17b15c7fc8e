package records

import (
	"fmt"
	"strings"
	"time"

	perr "ghstats/internal/platform/errors"
)

// checkpointDir is the reserved path segment checkpoints live under.
// Summary and read paths skip it when walking chunk objects
const checkpointDir = "_checkpoints"

// DateLayout is the calendar-date path segment format
const DateLayout = "2006-01-02"

// RunIDLayout formats a run start time into its run identifier
const RunIDLayout = "20060102T150405Z"

// NewRunID derives a run identifier from a start time.
// Run identifiers scope one collection attempt's checkpoint and chunk names
func NewRunID(start time.Time) string {
	return start.UTC().Format(RunIDLayout)
}

// ParseRunID recovers the start time encoded in a run identifier.
// Resumed runs use it so new chunks land under the original run's date
func ParseRunID(id string) (time.Time, error) {
	t, err := time.Parse(RunIDLayout, id)
	if err != nil {
		return time.Time{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "run id %q", id)
	}
	return t, nil
}

// ChunkKey builds the canonical object key for one chunk. Both the chunk
// writer and the checkpoint recorder derive keys through here so the two
// never drift
func ChunkKey(org, repo string, kind Kind, date time.Time, runID string, index int) string {
	return fmt.Sprintf("%s/%s/%s/%s/%s_chunk_%d.json",
		org, repo, kind, date.UTC().Format(DateLayout), runID, index)
}

// CheckpointKey builds the object key for a run's checkpoint document
func CheckpointKey(org, runID string) string {
	return fmt.Sprintf("%s/%s/%s.json", org, checkpointDir, runID)
}

// CheckpointPrefix is the listing prefix for all of an org's checkpoints
func CheckpointPrefix(org string) string {
	return fmt.Sprintf("%s/%s/", org, checkpointDir)
}

// OrgPrefix is the listing prefix for every object of one organization,
// checkpoints included
func OrgPrefix(org string) string {
	return org + "/"
}

// RepoPrefix is the listing prefix for every object of one repository
func RepoPrefix(org, repo string) string {
	return fmt.Sprintf("%s/%s/", org, repo)
}

// KindPrefix is the listing prefix for one repository's record kind
func KindPrefix(org, repo string, kind Kind) string {
	return fmt.Sprintf("%s/%s/%s/", org, repo, kind)
}

// DatePrefix narrows KindPrefix to a single calendar date
func DatePrefix(org, repo string, kind Kind, date time.Time) string {
	return fmt.Sprintf("%s/%s/%s/%s/", org, repo, kind, date.UTC().Format(DateLayout))
}

// ChunkRef is a parsed chunk key
type ChunkRef struct {
	Organization string
	Repository   string
	Kind         Kind
	Date         string
}

// ParseChunkKey splits an object key back into its chunk coordinates.
// Checkpoint documents and foreign objects return an error so listers can
// skip them
func ParseChunkKey(key string) (ChunkRef, error) {
	parts := strings.Split(key, "/")
	if len(parts) != 5 {
		return ChunkRef{}, perr.Newf(perr.ErrorCodeInvalidArgument, "not a chunk key: %q", key)
	}
	if parts[1] == checkpointDir {
		return ChunkRef{}, perr.Newf(perr.ErrorCodeInvalidArgument, "checkpoint key: %q", key)
	}
	kind, err := ParseKind(parts[2])
	if err != nil {
		return ChunkRef{}, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "chunk key %q", key)
	}
	return ChunkRef{
		Organization: parts[0],
		Repository:   parts[1],
		Kind:         kind,
		Date:         parts[3],
	}, nil
}
