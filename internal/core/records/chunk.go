package records

import (
	"encoding/json"
	"time"

	perr "ghstats/internal/platform/errors"
)

// DefaultChunkSize bounds how many records one chunk object holds
const DefaultChunkSize = 100

// Chunk is the envelope serialized as one object-store entry. Chunks are
// write-once; they are deleted by explicit wipe, never edited
type Chunk struct {
	Organization string          `json:"organization"`
	Repository   string          `json:"repository"`
	DataType     Kind            `json:"data_type"`
	Timestamp    time.Time       `json:"timestamp"`
	ChunkID      int             `json:"chunk_id"`
	Count        int             `json:"count"`
	Data         json.RawMessage `json:"data"`
}

// NewChunks splits rows into envelopes of at most size records each,
// preserving input order within and across chunks. All rows must be of
// kind; a zero or negative size falls back to DefaultChunkSize
func NewChunks(org, repo string, kind Kind, rows []Row, size int, now time.Time) ([]Chunk, error) {
	if size <= 0 {
		size = DefaultChunkSize
	}
	chunks := make([]Chunk, 0, (len(rows)+size-1)/size)
	for start := 0; start < len(rows); start += size {
		end := min(start+size, len(rows))
		part := rows[start:end]
		for _, r := range part {
			if r.RecordKind() != kind {
				return nil, perr.Newf(perr.ErrorCodeInvalidArgument,
					"chunk of %s given a %s row", kind, r.RecordKind())
			}
		}
		data, err := json.Marshal(part)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "marshal %s chunk %d", kind, len(chunks))
		}
		chunks = append(chunks, Chunk{
			Organization: org,
			Repository:   repo,
			DataType:     kind,
			Timestamp:    now.UTC(),
			ChunkID:      len(chunks),
			Count:        len(part),
			Data:         data,
		})
	}
	return chunks, nil
}

// Rows decodes the envelope's records back into the uniform Row slice,
// preserving chunk-internal order
func (c Chunk) Rows() ([]Row, error) {
	if len(c.Data) == 0 {
		return nil, nil
	}
	switch c.DataType {
	case KindPullRequest:
		return decodeRows[PullRequest](c.Data)
	case KindCommit:
		return decodeRows[Commit](c.Data)
	case KindReview:
		return decodeRows[Review](c.Data)
	case KindReviewComment:
		return decodeRows[ReviewComment](c.Data)
	case KindIssueComment:
		return decodeRows[IssueComment](c.Data)
	default:
		return nil, perr.Newf(perr.ErrorCodeInvalidArgument, "chunk has invalid kind %d", int(c.DataType))
	}
}

func decodeRows[T Row](data json.RawMessage) ([]Row, error) {
	var typed []T
	if err := json.Unmarshal(data, &typed); err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeJSON, "decode chunk data")
	}
	out := make([]Row, len(typed))
	for i := range typed {
		out[i] = typed[i]
	}
	return out, nil
}
