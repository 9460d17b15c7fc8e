// Package service implements the staged-object store over the blob seam:
// chunk writes, read-back, usage summaries, wipes, and checkpoint documents
package service

import (
	"context"
	"encoding/json"
	"sort"
	"strings"
	"time"

	"ghstats/internal/core/records"
	perr "ghstats/internal/platform/errors"
	"ghstats/internal/platform/logger"
	"ghstats/internal/platform/store"
	"ghstats/internal/services/stash/domain"
)

// Config holds configuration options for the stash service
type Config struct {
	// Organization scopes every key this service touches
	Organization string

	// ChunkSize bounds records per chunk object; <=0 -> records.DefaultChunkSize
	ChunkSize int
}

// Service implements domain.StasherPort over a blob store
type Service struct {
	Blobs store.Blobs
	Cfg   Config
}

// New constructs the stash service
func New(blobs store.Blobs, cfg Config) *Service {
	if blobs == nil {
		panic("stash.Service requires a non nil blob store")
	}
	if cfg.Organization == "" {
		panic("stash.Service requires an organization")
	}
	return &Service{Blobs: blobs, Cfg: cfg}
}

// WriteChunks splits rows into chunk envelopes and writes each under the
// run's namespace. The calendar date segment comes from the run identifier,
// so a resumed run's late chunks land beside the originals
func (s *Service) WriteChunks(
	ctx context.Context, repo string, kind records.Kind, rows []records.Row, runID string,
) ([]string, error) {
	if len(rows) == 0 {
		return nil, nil
	}
	start, err := records.ParseRunID(runID)
	if err != nil {
		return nil, err
	}
	chunks, err := records.NewChunks(s.Cfg.Organization, repo, kind, rows, s.Cfg.ChunkSize, start)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(chunks))
	for _, ch := range chunks {
		key := records.ChunkKey(s.Cfg.Organization, repo, kind, start, runID, ch.ChunkID)
		data, err := json.Marshal(ch)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "stash: marshal chunk %s", key)
		}
		if err := s.Blobs.Put(ctx, key, data); err != nil {
			return nil, err
		}
		keys = append(keys, key)
		logger.C(ctx).Debug().Str("key", key).Int("records", ch.Count).Msg("stash: wrote chunk")
	}

	logger.C(ctx).Info().
		Str("repo", repo).
		Str("kind", kind.String()).
		Int("records", len(rows)).
		Int("chunks", len(keys)).
		Msg("stash: staged records")
	return keys, nil
}

// ReadRecords lists every chunk of one repository and kind, optionally
// narrowed to a single date, and decodes them back into rows. Objects that
// fail to read or decode are skipped with a warning rather than aborting
// the whole read
func (s *Service) ReadRecords(
	ctx context.Context, repo string, kind records.Kind, date string,
) ([]records.Row, error) {
	prefix := records.KindPrefix(s.Cfg.Organization, repo, kind)
	if date != "" {
		d, err := time.Parse(records.DateLayout, date)
		if err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "stash: date %q", date)
		}
		prefix = records.DatePrefix(s.Cfg.Organization, repo, kind, d)
	}

	objs, err := s.Blobs.List(ctx, prefix)
	if err != nil {
		return nil, err
	}

	var out []records.Row
	for _, obj := range objs {
		data, err := s.Blobs.Get(ctx, obj.Key)
		if err != nil {
			logger.C(ctx).Warn().Str("key", obj.Key).Err(err).Msg("stash: skipping unreadable chunk")
			continue
		}
		var ch records.Chunk
		if err := json.Unmarshal(data, &ch); err != nil {
			logger.C(ctx).Warn().Str("key", obj.Key).Err(err).Msg("stash: skipping undecodable chunk")
			continue
		}
		rows, err := ch.Rows()
		if err != nil {
			logger.C(ctx).Warn().Str("key", obj.Key).Err(err).Msg("stash: skipping chunk rows")
			continue
		}
		out = append(out, rows...)
	}

	logger.C(ctx).Info().
		Str("repo", repo).
		Str("kind", kind.String()).
		Int("chunks", len(objs)).
		Int("records", len(out)).
		Msg("stash: read staged records")
	return out, nil
}

// Repositories returns the distinct repositories with staged chunks, sorted
func (s *Service) Repositories(ctx context.Context) ([]string, error) {
	objs, err := s.Blobs.List(ctx, records.OrgPrefix(s.Cfg.Organization))
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{})
	for _, obj := range objs {
		ref, err := records.ParseChunkKey(obj.Key)
		if err != nil {
			continue
		}
		seen[ref.Repository] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for repo := range seen {
		out = append(out, repo)
	}
	sort.Strings(out)
	return out, nil
}

// Summary walks the organization's objects and aggregates file counts and
// byte sizes per repository and kind. Checkpoints are excluded; objects that
// do not parse as chunk keys are skipped with a warning
func (s *Service) Summary(ctx context.Context) (domain.Summary, error) {
	sum := domain.Summary{
		Organization: s.Cfg.Organization,
		Repositories: make(map[string]map[records.Kind]domain.KindUsage),
	}

	objs, err := s.Blobs.List(ctx, records.OrgPrefix(s.Cfg.Organization))
	if err != nil {
		return domain.Summary{}, err
	}

	cpPrefix := records.CheckpointPrefix(s.Cfg.Organization)
	for _, obj := range objs {
		if strings.HasPrefix(obj.Key, cpPrefix) {
			continue
		}
		ref, err := records.ParseChunkKey(obj.Key)
		if err != nil {
			logger.C(ctx).Warn().Str("key", obj.Key).Err(err).Msg("stash: skipping foreign object")
			continue
		}
		byKind := sum.Repositories[ref.Repository]
		if byKind == nil {
			byKind = make(map[records.Kind]domain.KindUsage)
			sum.Repositories[ref.Repository] = byKind
		}
		u := byKind[ref.Kind]
		u.FileCount++
		u.SizeBytes += obj.Size
		byKind[ref.Kind] = u

		sum.TotalFiles++
		sum.TotalSizeBytes += obj.Size
	}
	return sum, nil
}

// Wipe deletes every object under the repository's prefix. Individual delete
// failures are logged and skipped; the returned count covers only the
// objects actually removed
func (s *Service) Wipe(ctx context.Context, repo string) (int, error) {
	objs, err := s.Blobs.List(ctx, records.RepoPrefix(s.Cfg.Organization, repo))
	if err != nil {
		return 0, err
	}

	count := 0
	for _, obj := range objs {
		if err := s.Blobs.Delete(ctx, obj.Key); err != nil {
			logger.C(ctx).Error().Str("key", obj.Key).Err(err).Msg("stash: delete failed")
			continue
		}
		count++
	}

	logger.C(ctx).Warn().
		Str("repo", repo).
		Int("deleted", count).
		Int("listed", len(objs)).
		Msg("stash: wiped repository data")
	return count, nil
}

// SaveCheckpoint persists the run's progress document at its canonical key
func (s *Service) SaveCheckpoint(ctx context.Context, cp *records.Checkpoint) error {
	if cp == nil || cp.RunID == "" {
		return perr.New(perr.ErrorCodeInvalidArgument, "stash: checkpoint requires a run id")
	}
	data, err := json.Marshal(cp)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeJSON, "stash: marshal checkpoint %s", cp.RunID)
	}
	key := records.CheckpointKey(s.Cfg.Organization, cp.RunID)
	if err := s.Blobs.Put(ctx, key, data); err != nil {
		return err
	}
	logger.C(ctx).Debug().
		Str("run_id", cp.RunID).
		Str("status", string(cp.Status)).
		Int("completed", len(cp.Repos)).
		Msg("stash: wrote checkpoint")
	return nil
}

// LoadCheckpoint fetches one run's checkpoint document
func (s *Service) LoadCheckpoint(ctx context.Context, runID string) (*records.Checkpoint, error) {
	data, err := s.Blobs.Get(ctx, records.CheckpointKey(s.Cfg.Organization, runID))
	if err != nil {
		return nil, err
	}
	var cp records.Checkpoint
	if err := json.Unmarshal(data, &cp); err != nil {
		return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "stash: decode checkpoint %s", runID)
	}
	return &cp, nil
}

// ListCheckpoints reads every checkpoint of the organization, newest last.
// Undecodable documents are skipped with a warning
func (s *Service) ListCheckpoints(ctx context.Context) ([]domain.CheckpointInfo, error) {
	objs, err := s.Blobs.List(ctx, records.CheckpointPrefix(s.Cfg.Organization))
	if err != nil {
		return nil, err
	}

	out := make([]domain.CheckpointInfo, 0, len(objs))
	for _, obj := range objs {
		data, err := s.Blobs.Get(ctx, obj.Key)
		if err != nil {
			logger.C(ctx).Warn().Str("key", obj.Key).Err(err).Msg("stash: skipping unreadable checkpoint")
			continue
		}
		var cp records.Checkpoint
		if err := json.Unmarshal(data, &cp); err != nil {
			logger.C(ctx).Warn().Str("key", obj.Key).Err(err).Msg("stash: skipping undecodable checkpoint")
			continue
		}
		out = append(out, domain.CheckpointInfo{
			RunID:     cp.RunID,
			Status:    cp.Status,
			Since:     cp.Since,
			Until:     cp.Until,
			UpdatedAt: cp.UpdatedAt,
			Completed: cp.Completed(),
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].RunID < out[j].RunID })
	return out, nil
}
