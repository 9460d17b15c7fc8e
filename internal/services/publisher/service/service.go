// Package service implements the upsert publisher: validate, stage in a
// transient table, MERGE into the permanent table, drop the staging table
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"ghstats/internal/core/records"
	perr "ghstats/internal/platform/errors"
	"ghstats/internal/platform/logger"
	"ghstats/internal/platform/store"
)

// Service implements domain.PublisherPort over the warehouse seam
type Service struct {
	Warehouse store.Warehouse

	validate *validator.Validate
	now      func() time.Time
	suffix   func() string
}

// New constructs the publisher service
func New(wh store.Warehouse) *Service {
	if wh == nil {
		panic("publisher.Service requires a non nil warehouse")
	}
	return &Service{
		Warehouse: wh,
		validate:  validator.New(validator.WithRequiredStructEnabled()),
		now:       time.Now,
		suffix:    func() string { return uuid.NewString()[:8] },
	}
}

// Publish upserts rows into the kind's permanent table. The transient
// staging table is scoped to this call and dropped on every exit path,
// including merge failure
func (s *Service) Publish(ctx context.Context, kind records.Kind, rows []records.Row) (int64, error) {
	if !kind.Valid() {
		return 0, perr.Newf(perr.ErrorCodeInvalidArgument, "publish: invalid record kind %d", int(kind))
	}
	if len(rows) == 0 {
		return 0, nil
	}

	deduped, err := s.checkRows(kind, rows)
	if err != nil {
		return 0, err
	}

	target := kind.Table()
	staging := s.stagingName(target)
	keyCols := kind.KeyColumns()

	if err := s.Warehouse.EnsureTable(ctx, target, kind.Prototype(), keyCols); err != nil {
		return 0, err
	}
	if err := s.Warehouse.EnsureTable(ctx, staging, kind.Prototype(), keyCols); err != nil {
		return 0, err
	}
	defer func() {
		// cleanup must run even when ctx is already canceled
		if err := s.Warehouse.DeleteTable(context.WithoutCancel(ctx), staging); err != nil {
			logger.C(ctx).Error().Str("table", staging).Err(err).Msg("publisher: staging cleanup failed")
		}
	}()

	if err := s.Warehouse.LoadRows(ctx, staging, deduped); err != nil {
		return 0, err
	}

	affected, err := s.Warehouse.Merge(ctx, target, staging, keyCols)
	if err != nil && perr.Retryable(err) {
		// serialization failures and rate limited merges settle on a second
		// attempt; the staging table is still in place
		logger.C(ctx).Warn().Err(err).Str("table", target).Msg("publisher: transient merge failure, retrying")
		affected, err = s.Warehouse.Merge(ctx, target, staging, keyCols)
	}
	if err != nil {
		return 0, err
	}

	logger.C(ctx).Info().
		Str("kind", kind.String()).
		Int("rows", len(deduped)).
		Int64("affected", affected).
		Msg("publisher: merged records")
	return affected, nil
}

// checkRows validates every row and deduplicates by natural key. The last
// occurrence of a key wins, so the merge source never carries two versions
// of one logical record
func (s *Service) checkRows(kind records.Kind, rows []records.Row) ([]any, error) {
	out := make([]any, 0, len(rows))
	pos := make(map[records.RowKey]int, len(rows))
	for i, r := range rows {
		if r == nil {
			return nil, perr.Newf(perr.ErrorCodeValidation, "publish: %s row %d is nil", kind, i)
		}
		if r.RecordKind() != kind {
			return nil, perr.Newf(perr.ErrorCodeValidation,
				"publish: %s row %d is a %s", kind, i, r.RecordKind())
		}
		if err := s.validate.Struct(r); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeValidation, "publish: %s row %d", kind, i)
		}
		key := r.Key()
		if !key.Complete() {
			return nil, perr.Newf(perr.ErrorCodeValidation,
				"publish: %s row %d is missing natural key fields", kind, i)
		}
		if j, ok := pos[key]; ok {
			out[j] = r
			continue
		}
		pos[key] = len(out)
		out = append(out, r)
	}
	return out, nil
}

// stagingName returns a unique transient table name. BigQuery and Postgres
// both restrict identifiers, so only [A-Za-z0-9_] appears
func (s *Service) stagingName(target string) string {
	return fmt.Sprintf("_staging_%s_%s_%s", target, s.now().UTC().Format("20060102150405"), s.suffix())
}
