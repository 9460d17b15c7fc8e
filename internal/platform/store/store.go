// Package store opens the storage backends behind the pipeline: object
// storage for staged chunks and checkpoints, and the analytical warehouse
// rows are published into
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"ghstats/internal/platform/logger"
)

// Store carries the opened backends. Seams stay nil unless Open enabled them
type Store struct {
	// Log is handed down to the backend clients
	Log logger.Logger

	// Blobs is the object storage seam, nil when disabled
	Blobs Blobs

	// Warehouse is the analytical warehouse seam, nil when disabled
	Warehouse Warehouse
}

// ObjectInfo describes one stored object as reported by listing
type ObjectInfo struct {
	Key     string
	Size    int64
	Updated time.Time
}

// Blobs is the object storage seam: write-once blobs under hierarchical
// slash-separated keys. Get on a missing key returns a NotFound error
type Blobs interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]ObjectInfo, error)
	Delete(ctx context.Context, key string) error
	Close() error
}

// Warehouse is the analytical warehouse seam. It speaks in plain table
// names, struct prototypes, and key column lists so this package stays free
// of domain types. Merge matches on keyCols, overwrites every other column
// on match, and inserts the full row otherwise
type Warehouse interface {
	// EnsureTable creates table if absent, deriving the column set from the
	// model struct prototype. keyCols may inform constraints; drivers that
	// have no key concept ignore it
	EnsureTable(ctx context.Context, table string, model any, keyCols []string) error

	// LoadRows bulk-loads rows into table. Every element must be a struct
	// of the model shape
	LoadRows(ctx context.Context, table string, rows []any) error

	// Merge upserts staging into target on keyCols and returns affected rows
	Merge(ctx context.Context, target, staging string, keyCols []string) (int64, error)

	// DeleteTable drops table; missing tables are not an error
	DeleteTable(ctx context.Context, table string) error

	Close() error
}

// Pinger is implemented by backend clients that can verify connectivity
type Pinger interface{ Ping(context.Context) error }

// Open constructs a Store with the backends cfg enables
func Open(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	s := &Store{}
	for _, o := range opts {
		if err := o(s); err != nil {
			return nil, err
		}
	}

	// normalize a zero logger into a valid disabled one
	s.Log = s.Log.With().Logger()

	if cfg.Blobs.Enabled {
		b, err := openBlobs(ctx, cfg, s)
		if err != nil {
			return nil, err
		}
		s.Blobs = b
	}

	if cfg.Warehouse.Enabled {
		w, err := openWarehouse(ctx, cfg, s)
		if err != nil {
			s.closeOpened()
			return nil, err
		}
		s.Warehouse = w
	}

	return s, nil
}

// Guard pings every opened seam that can report readiness, so binaries can
// fail before a run instead of in the middle of one. A nil seam never pings
func (s *Store) Guard(ctx context.Context) error {
	if s == nil {
		return errors.New("nil store")
	}
	seams := []struct {
		name string
		seam any
	}{
		{"blobs", s.Blobs},
		{"warehouse", s.Warehouse},
	}
	var errs []error
	for _, sm := range seams {
		p, ok := sm.seam.(Pinger)
		if !ok {
			continue
		}
		if err := p.Ping(ctx); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sm.name, err))
		}
	}
	return errors.Join(errs...)
}

// Close closes every opened backend, warehouse first
func (s *Store) Close(ctx context.Context) error {
	var errs []error

	if s.Warehouse != nil {
		if e := s.Warehouse.Close(); e != nil {
			errs = append(errs, e)
		}
	}
	if s.Blobs != nil {
		if e := s.Blobs.Close(); e != nil {
			errs = append(errs, e)
		}
	}

	return errors.Join(errs...)
}

// closeOpened tears down whatever Open managed to start before a failure
func (s *Store) closeOpened() {
	if s.Blobs != nil {
		_ = s.Blobs.Close()
		s.Blobs = nil
	}
}
