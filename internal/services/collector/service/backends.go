package service

import (
	"context"
	"time"

	"ghstats/internal/core/records"
	perr "ghstats/internal/platform/errors"
	"ghstats/internal/platform/logger"
	"ghstats/internal/services/collector/domain"
	pubdom "ghstats/internal/services/publisher/domain"
	stashdom "ghstats/internal/services/stash/domain"
)

// DirectPublish sends fetched records straight to the warehouse. Progress
// lives in memory only, so interrupted runs start over and resume is
// rejected up front
type DirectPublish struct {
	Publisher pubdom.PublisherPort
	Org       string
}

// NewDirectPublish constructs the in memory backend
func NewDirectPublish(p pubdom.PublisherPort, org string) *DirectPublish {
	if p == nil {
		panic("collector.DirectPublish requires a non nil publisher")
	}
	return &DirectPublish{Publisher: p, Org: org}
}

// Begin implements domain.StagingBackend
func (b *DirectPublish) Begin(_ context.Context, since, until time.Time, resumeID string, start time.Time) (*records.Checkpoint, error) {
	if resumeID != "" {
		return nil, perr.New(perr.ErrorCodeInvalidArgument,
			"collector: resume requires staged persistence, run without a resume id or enable it")
	}
	return records.NewCheckpoint(b.Org, since, until, start), nil
}

// CompleteRepo implements domain.StagingBackend
func (b *DirectPublish) CompleteRepo(ctx context.Context, cp *records.Checkpoint, repo string, set *records.Set, now time.Time) (domain.RepoResult, error) {
	res := domain.RepoResult{Repository: repo}
	for _, k := range records.Kinds() {
		rows := set.Rows(k)
		if len(rows) == 0 {
			continue
		}
		if _, err := b.Publisher.Publish(ctx, k, rows); err != nil {
			logger.C(ctx).Error().Err(err).
				Str("repo", repo).Str("kind", k.String()).
				Msg("collector: publish failed")
			res.MarkFailed(k, err)
			continue
		}
		res.AddCount(k, len(rows))
	}
	cp.MarkCompleted(repo, set.Counts(), nil, now)
	return res, nil
}

// Finish implements domain.StagingBackend
func (b *DirectPublish) Finish(_ context.Context, cp *records.Checkpoint, status records.RunStatus, now time.Time) error {
	cp.Finish(status, now)
	return nil
}

// ObjectStoreBackedPublish stages every repository's records as chunks and
// persists the checkpoint before publishing. Staged chunks are the
// durability guarantee: once a repository is checkpointed its records can
// always be republished from storage, so a publish failure degrades to a
// partial result instead of losing work
type ObjectStoreBackedPublish struct {
	Stasher   stashdom.StasherPort
	Publisher pubdom.PublisherPort
	Org       string
}

// NewObjectStoreBackedPublish constructs the staged backend
func NewObjectStoreBackedPublish(st stashdom.StasherPort, p pubdom.PublisherPort, org string) *ObjectStoreBackedPublish {
	if st == nil {
		panic("collector.ObjectStoreBackedPublish requires a non nil stasher")
	}
	if p == nil {
		panic("collector.ObjectStoreBackedPublish requires a non nil publisher")
	}
	return &ObjectStoreBackedPublish{Stasher: st, Publisher: p, Org: org}
}

// Begin implements domain.StagingBackend. A resume id whose checkpoint is
// gone degrades to a fresh run over the requested window rather than
// failing
func (b *ObjectStoreBackedPublish) Begin(ctx context.Context, since, until time.Time, resumeID string, start time.Time) (*records.Checkpoint, error) {
	if resumeID != "" {
		cp, err := b.Stasher.LoadCheckpoint(ctx, resumeID)
		switch {
		case err == nil:
			cp.Reopen(start)
			if err := b.Stasher.SaveCheckpoint(ctx, cp); err != nil {
				return nil, err
			}
			logger.C(ctx).Info().
				Str("run_id", cp.RunID).
				Int("completed", len(cp.Repos)).
				Msg("collector: resuming run")
			return cp, nil
		case perr.IsCode(err, perr.ErrorCodeNotFound):
			logger.C(ctx).Warn().
				Str("run_id", resumeID).
				Msg("collector: no checkpoint for run id, starting fresh")
		default:
			return nil, err
		}
	}

	cp := records.NewCheckpoint(b.Org, since, until, start)
	if err := b.Stasher.SaveCheckpoint(ctx, cp); err != nil {
		return nil, err
	}
	logger.C(ctx).Info().
		Str("run_id", cp.RunID).
		Time("since", cp.Since).
		Time("until", cp.Until).
		Msg("collector: run started")
	return cp, nil
}

// CompleteRepo implements domain.StagingBackend. Order matters: chunks
// first, then the checkpoint entry naming them, then publish. Anything
// before the checkpoint write is fatal; anything after degrades to a
// partial result
func (b *ObjectStoreBackedPublish) CompleteRepo(ctx context.Context, cp *records.Checkpoint, repo string, set *records.Set, now time.Time) (domain.RepoResult, error) {
	res := domain.RepoResult{Repository: repo}

	keys := make(map[records.Kind][]string)
	for _, k := range records.Kinds() {
		rows := set.Rows(k)
		if len(rows) == 0 {
			continue
		}
		ks, err := b.Stasher.WriteChunks(ctx, repo, k, rows, cp.RunID)
		if err != nil {
			return res, perr.Wrapf(err, perr.CodeOf(err), "collector: stage %s for %s", k, repo)
		}
		keys[k] = ks
		res.AddCount(k, len(rows))
	}

	cp.MarkCompleted(repo, set.Counts(), keys, now)
	if err := b.Stasher.SaveCheckpoint(ctx, cp); err != nil {
		return res, perr.Wrapf(err, perr.CodeOf(err), "collector: checkpoint after %s", repo)
	}

	for _, k := range records.Kinds() {
		rows := set.Rows(k)
		if len(rows) == 0 {
			continue
		}
		if _, err := b.Publisher.Publish(ctx, k, rows); err != nil {
			logger.C(ctx).Error().Err(err).
				Str("repo", repo).Str("kind", k.String()).
				Msg("collector: publish failed, staged chunks remain")
			res.MarkFailed(k, err)
		}
	}
	return res, nil
}

// Finish implements domain.StagingBackend
func (b *ObjectStoreBackedPublish) Finish(ctx context.Context, cp *records.Checkpoint, status records.RunStatus, now time.Time) error {
	cp.Finish(status, now)
	return b.Stasher.SaveCheckpoint(ctx, cp)
}
