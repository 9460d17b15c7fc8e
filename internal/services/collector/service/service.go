// Package service implements the collection orchestrator: fetch per
// repository, stage or publish through the configured backend, checkpoint
// progress, and report a run summary
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

// Service implements domain.RunnerPort
type Service struct {
	Fetcher domain.FetcherPort
	Backend domain.StagingBackend

	// Stasher may be nil when staged persistence is off; LoadFromStorage
	// then refuses to run
	Stasher   stashdom.StasherPort
	Publisher pubdom.PublisherPort

	now func() time.Time
}

// New constructs the orchestrator
func New(f domain.FetcherPort, b domain.StagingBackend, st stashdom.StasherPort, p pubdom.PublisherPort) *Service {
	if f == nil {
		panic("collector.Service requires a non nil fetcher")
	}
	if b == nil {
		panic("collector.Service requires a non nil staging backend")
	}
	if p == nil {
		panic("collector.Service requires a non nil publisher")
	}
	return &Service{Fetcher: f, Backend: b, Stasher: st, Publisher: p, now: time.Now}
}

// Run implements domain.RunnerPort. Repositories are processed one at a
// time; the checkpoint advances only after a repository is fully staged,
// so an interrupted run resumes at the first repository not yet completed
func (s *Service) Run(ctx context.Context, req domain.RunRequest) (domain.RunSummary, error) {
	start := s.now().UTC()

	since := req.Since.UTC()
	until := req.Until.UTC()
	if until.IsZero() {
		until = start
	}
	if since.IsZero() || !until.After(since) {
		return domain.RunSummary{}, perr.Newf(perr.ErrorCodeInvalidArgument,
			"collector: invalid window %s..%s", since, until)
	}

	cp, err := s.Backend.Begin(ctx, since, until, req.ResumeRunID, start)
	if err != nil {
		return domain.RunSummary{}, err
	}
	ctx = logger.WithRun(ctx, cp.RunID)

	sum := domain.RunSummary{
		Status: records.RunStarted,
		RunID:  cp.RunID,
		Since:  cp.Since,
		Until:  cp.Until,
		Counts: make(map[records.Kind]int64),
	}

	repos := req.Repos
	if len(repos) == 0 {
		repos, err = s.Fetcher.ListRepos(ctx)
		if err != nil {
			return s.fail(ctx, cp, sum, perr.Wrapf(err, perr.CodeOf(err), "collector: list repositories"))
		}
		logger.C(ctx).Info().Int("repos", len(repos)).Msg("collector: discovered repositories")
	}

	pending := cp.Pending(repos)
	if skipped := len(repos) - len(pending); skipped > 0 {
		logger.C(ctx).Info().
			Int("skipped", skipped).
			Int("pending", len(pending)).
			Msg("collector: skipping repositories already completed in this run")
	}

	for _, repo := range pending {
		set, err := s.Fetcher.FetchRepo(ctx, repo, cp.Since, cp.Until)
		notFound := false
		switch {
		case err == nil:
		case perr.IsCode(err, perr.ErrorCodeNotFound):
			// renamed or deleted upstream; complete with zero records so
			// the run never retries it
			logger.C(ctx).Warn().Str("repo", repo).Msg("collector: repository not found, skipping")
			set = &records.Set{}
			notFound = true
		default:
			return s.fail(ctx, cp, sum, perr.Wrapf(err, perr.CodeOf(err), "collector: fetch %s", repo))
		}

		res, err := s.Backend.CompleteRepo(ctx, cp, repo, set, s.now())
		if err != nil {
			return s.fail(ctx, cp, sum, err)
		}
		res.NotFound = notFound

		sum.Repos = append(sum.Repos, res)
		for k, n := range res.Counts {
			sum.Counts[k] += n
		}
		if len(res.Failed) > 0 {
			sum.Partial = append(sum.Partial, repo)
		}
	}

	if err := s.Backend.Finish(ctx, cp, records.RunCompleted, s.now()); err != nil {
		return s.fail(ctx, cp, sum, err)
	}
	sum.Status = records.RunCompleted

	logger.C(ctx).Info().
		Int("repos", len(sum.Repos)).
		Int64("records", sum.Total()).
		Strs("partial", sum.Partial).
		Msg("collector: run completed")
	return sum, nil
}

// fail stamps the run failed so the checkpoint survives for resume, then
// hands the caller an error naming the resumable run id
func (s *Service) fail(ctx context.Context, cp *records.Checkpoint, sum domain.RunSummary, cause error) (domain.RunSummary, error) {
	if err := s.Backend.Finish(ctx, cp, records.RunFailed, s.now()); err != nil {
		logger.C(ctx).Error().Err(err).
			Msg("collector: could not persist failed checkpoint")
	}
	sum.Status = records.RunFailed
	return sum, perr.Wrapf(cause, perr.CodeOf(cause), "collector: run %s failed, resumable with this run id", cp.RunID)
}

// LoadFromStorage implements domain.RunnerPort. Publish failures skip to
// the next kind so one broken table cannot block a full republish; the
// counts report what actually landed
func (s *Service) LoadFromStorage(ctx context.Context, repo, date string) (map[records.Kind]int64, error) {
	if s.Stasher == nil {
		return nil, perr.New(perr.ErrorCodeUnavailable, "collector: staged storage is not configured")
	}

	repos := []string{repo}
	if repo == "" {
		var err error
		repos, err = s.Stasher.Repositories(ctx)
		if err != nil {
			return nil, err
		}
		logger.C(ctx).Info().Int("repos", len(repos)).Msg("collector: loading every repository in storage")
	}

	out := make(map[records.Kind]int64)
	for _, r := range repos {
		for _, k := range records.Kinds() {
			rows, err := s.Stasher.ReadRecords(ctx, r, k, date)
			if err != nil {
				return out, err
			}
			if len(rows) == 0 {
				continue
			}
			n, err := s.Publisher.Publish(ctx, k, rows)
			if err != nil {
				logger.C(ctx).Warn().Err(err).
					Str("repo", r).Str("kind", k.String()).
					Msg("collector: republish failed, continuing")
				continue
			}
			out[k] += n
		}
	}

	logger.C(ctx).Info().
		Str("repo", repo).
		Str("date", date).
		Msg("collector: load from storage complete")
	return out, nil
}
