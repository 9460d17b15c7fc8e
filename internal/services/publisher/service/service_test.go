package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"ghstats/internal/core/records"
	perr "ghstats/internal/platform/errors"
)

// fakeWarehouse simulates merge semantics in memory: staged rows upsert into
// a per-table map keyed by natural key
type fakeWarehouse struct {
	mu      sync.Mutex
	tables  map[string][]any
	final   map[string]map[records.RowKey]records.Row
	ensured []string
	dropped []string

	ensureErr error
	loadErr   error
	deleteErr error

	// mergeErr fails Merge; with mergeFailN > 0 only the first N attempts fail
	mergeErr      error
	mergeFailN    int
	mergeAttempts int
}

func newFakeWarehouse() *fakeWarehouse {
	return &fakeWarehouse{
		tables: make(map[string][]any),
		final:  make(map[string]map[records.RowKey]records.Row),
	}
}

func (f *fakeWarehouse) EnsureTable(_ context.Context, table string, _ any, _ []string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.ensureErr != nil {
		return f.ensureErr
	}
	f.ensured = append(f.ensured, table)
	if _, ok := f.tables[table]; !ok {
		f.tables[table] = nil
	}
	return nil
}

func (f *fakeWarehouse) LoadRows(_ context.Context, table string, rows []any) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.loadErr != nil {
		return f.loadErr
	}
	f.tables[table] = append(f.tables[table], rows...)
	return nil
}

func (f *fakeWarehouse) Merge(_ context.Context, target, staging string, _ []string) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mergeAttempts++
	if f.mergeErr != nil && (f.mergeFailN == 0 || f.mergeAttempts <= f.mergeFailN) {
		return 0, f.mergeErr
	}
	dst := f.final[target]
	if dst == nil {
		dst = make(map[records.RowKey]records.Row)
		f.final[target] = dst
	}
	var n int64
	for _, raw := range f.tables[staging] {
		row, ok := raw.(records.Row)
		if !ok {
			return 0, fmt.Errorf("staged value %T is not a row", raw)
		}
		dst[row.Key()] = row
		n++
	}
	return n, nil
}

func (f *fakeWarehouse) DeleteTable(_ context.Context, table string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.deleteErr != nil {
		return f.deleteErr
	}
	delete(f.tables, table)
	f.dropped = append(f.dropped, table)
	return nil
}

func (f *fakeWarehouse) Close() error { return nil }

func newTestService(wh *fakeWarehouse) *Service {
	svc := New(wh)
	svc.now = func() time.Time { return time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC) }
	n := 0
	svc.suffix = func() string {
		n++
		return fmt.Sprintf("s%04d", n)
	}
	return svc
}

func pr(num int, title string) records.PullRequest {
	return records.PullRequest{
		PRNumber:     num,
		Title:        title,
		Repository:   "frontend",
		Organization: "acme",
	}
}

func prRows(nums ...int) []records.Row {
	out := make([]records.Row, 0, len(nums))
	for _, n := range nums {
		out = append(out, pr(n, fmt.Sprintf("change %d", n)))
	}
	return out
}

func TestPublishEmptyRows(t *testing.T) {
	t.Parallel()

	wh := newFakeWarehouse()
	svc := newTestService(wh)

	n, err := svc.Publish(context.Background(), records.KindPullRequest, nil)
	if err != nil || n != 0 {
		t.Fatalf("Publish(empty) = %d, %v, want 0, nil", n, err)
	}
	if len(wh.ensured) != 0 {
		t.Fatalf("empty publish touched the warehouse: %v", wh.ensured)
	}
}

func TestPublishInvalidKind(t *testing.T) {
	t.Parallel()

	svc := newTestService(newFakeWarehouse())
	if _, err := svc.Publish(context.Background(), records.Kind(0), prRows(1)); !perr.IsCode(err, perr.ErrorCodeInvalidArgument) {
		t.Fatalf("invalid kind error = %v, want invalid argument", err)
	}
}

func TestPublishMergesAndCleansUp(t *testing.T) {
	t.Parallel()

	wh := newFakeWarehouse()
	svc := newTestService(wh)

	n, err := svc.Publish(context.Background(), records.KindPullRequest, prRows(10, 11, 12))
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if n != 3 {
		t.Fatalf("affected = %d, want 3", n)
	}
	if got := len(wh.final["pull_requests"]); got != 3 {
		t.Fatalf("final rows = %d, want 3", got)
	}

	if len(wh.ensured) != 2 || wh.ensured[0] != "pull_requests" {
		t.Fatalf("ensured = %v, want target then staging", wh.ensured)
	}
	staging := wh.ensured[1]
	if !strings.HasPrefix(staging, "_staging_pull_requests_20250101120000_") {
		t.Fatalf("staging name = %q", staging)
	}
	if len(wh.dropped) != 1 || wh.dropped[0] != staging {
		t.Fatalf("dropped = %v, want [%s]", wh.dropped, staging)
	}
	if _, ok := wh.tables[staging]; ok {
		t.Fatalf("staging table %s survived the publish", staging)
	}
}

func TestPublishIdempotent(t *testing.T) {
	t.Parallel()

	wh := newFakeWarehouse()
	svc := newTestService(wh)
	ctx := context.Background()

	rows := prRows(10, 11, 12)
	for i := 0; i < 2; i++ {
		n, err := svc.Publish(ctx, records.KindPullRequest, rows)
		if err != nil {
			t.Fatalf("Publish #%d: %v", i+1, err)
		}
		if n != 3 {
			t.Fatalf("Publish #%d affected = %d, want 3", i+1, n)
		}
	}
	if got := len(wh.final["pull_requests"]); got != 3 {
		t.Fatalf("final rows after double publish = %d, want 3", got)
	}
}

func TestPublishOverlapConvergence(t *testing.T) {
	t.Parallel()

	wh := newFakeWarehouse()
	svc := newTestService(wh)
	ctx := context.Background()

	if _, err := svc.Publish(ctx, records.KindPullRequest, prRows(10, 11, 12)); err != nil {
		t.Fatalf("first window: %v", err)
	}

	second := []records.Row{pr(11, "retitled"), pr(12, "change 12"), pr(13, "change 13")}
	if _, err := svc.Publish(ctx, records.KindPullRequest, second); err != nil {
		t.Fatalf("second window: %v", err)
	}

	final := wh.final["pull_requests"]
	if len(final) != 4 {
		t.Fatalf("final rows = %d, want 4", len(final))
	}
	key := records.RowKey{ID: "11", Repository: "frontend", Organization: "acme"}
	got, ok := final[key].(records.PullRequest)
	if !ok {
		t.Fatalf("pr 11 missing from final state")
	}
	if got.Title != "retitled" {
		t.Fatalf("pr 11 title = %q, want the second window's value", got.Title)
	}
}

func TestPublishDedupesWithinCall(t *testing.T) {
	t.Parallel()

	wh := newFakeWarehouse()
	svc := newTestService(wh)

	rows := []records.Row{pr(7, "first"), pr(8, "other"), pr(7, "second")}
	n, err := svc.Publish(context.Background(), records.KindPullRequest, rows)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if n != 2 {
		t.Fatalf("affected = %d, want 2 distinct keys", n)
	}

	key := records.RowKey{ID: "7", Repository: "frontend", Organization: "acme"}
	got := wh.final["pull_requests"][key].(records.PullRequest)
	if got.Title != "second" {
		t.Fatalf("pr 7 title = %q, want the last occurrence", got.Title)
	}
}

func TestPublishValidationRejects(t *testing.T) {
	t.Parallel()

	wh := newFakeWarehouse()
	svc := newTestService(wh)
	ctx := context.Background()

	// missing repository
	bad := []records.Row{records.PullRequest{PRNumber: 5, Organization: "acme"}}
	if _, err := svc.Publish(ctx, records.KindPullRequest, bad); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("missing key field error = %v, want validation", err)
	}

	// wrong kind for the batch
	mixed := []records.Row{records.Commit{SHA: "abc", Repository: "frontend", Organization: "acme"}}
	if _, err := svc.Publish(ctx, records.KindPullRequest, mixed); !perr.IsCode(err, perr.ErrorCodeValidation) {
		t.Fatalf("kind mismatch error = %v, want validation", err)
	}

	if len(wh.ensured) != 0 {
		t.Fatalf("rejected rows still touched the warehouse: %v", wh.ensured)
	}
}

func TestPublishMergeFailureStillDropsStaging(t *testing.T) {
	t.Parallel()

	wh := newFakeWarehouse()
	wh.mergeErr = perr.Unavailablef("merge job failed")
	svc := newTestService(wh)

	_, err := svc.Publish(context.Background(), records.KindPullRequest, prRows(1, 2))
	if !perr.IsCode(err, perr.ErrorCodeUnavailable) {
		t.Fatalf("merge error = %v, want unavailable", err)
	}
	if wh.mergeAttempts != 1 {
		t.Fatalf("merge attempts = %d, want 1 (non-transient errors are not retried)", wh.mergeAttempts)
	}

	if len(wh.dropped) != 1 {
		t.Fatalf("dropped = %v, want exactly the staging table", wh.dropped)
	}
	if !strings.HasPrefix(wh.dropped[0], "_staging_pull_requests_") {
		t.Fatalf("dropped table = %q", wh.dropped[0])
	}
	if len(wh.final["pull_requests"]) != 0 {
		t.Fatalf("failed merge still wrote rows: %v", wh.final["pull_requests"])
	}
}

func TestPublishRetriesTransientMerge(t *testing.T) {
	t.Parallel()

	wh := newFakeWarehouse()
	wh.mergeErr = errors.New("ERROR: could not serialize access due to concurrent update")
	wh.mergeFailN = 1
	svc := newTestService(wh)

	n, err := svc.Publish(context.Background(), records.KindPullRequest, prRows(1, 2))
	if err != nil {
		t.Fatalf("Publish after transient merge: %v", err)
	}
	if n != 2 {
		t.Fatalf("affected = %d, want 2", n)
	}
	if wh.mergeAttempts != 2 {
		t.Fatalf("merge attempts = %d, want 2", wh.mergeAttempts)
	}
	if got := len(wh.final["pull_requests"]); got != 2 {
		t.Fatalf("final rows = %d, want 2", got)
	}
}
