package store

import (
	"context"
	"fmt"
	"time"

	"ghstats/internal/platform/store/bq"
	"ghstats/internal/platform/store/gcs"
	"ghstats/internal/platform/store/pgwh"
)

// openBlobs opens the gcs client behind the Blobs seam
func openBlobs(ctx context.Context, cfg Config, s *Store) (Blobs, error) {
	c, err := gcs.Open(ctx, gcs.Config{
		Bucket:          cfg.Blobs.Bucket,
		CredentialsFile: cfg.Blobs.CredentialsFile,
		Endpoint:        cfg.Blobs.Endpoint,
	})
	if err != nil {
		return nil, err
	}
	return newGCSAdapter(c), nil
}

// openWarehouse opens the configured warehouse driver
func openWarehouse(ctx context.Context, cfg Config, s *Store) (Warehouse, error) {
	switch cfg.Warehouse.Driver {
	case WarehousePostgres:
		return openPGWarehouse(ctx, cfg)
	case WarehouseBigQuery, "":
		return bq.Open(ctx, bq.Config{
			ProjectID: cfg.Warehouse.ProjectID,
			Dataset:   cfg.Warehouse.Dataset,
		})
	default:
		return nil, fmt.Errorf("unknown warehouse driver %q", cfg.Warehouse.Driver)
	}
}

// openPGWarehouse opens postgres with ping guardrails so a booting database
// does not fail the process immediately
func openPGWarehouse(ctx context.Context, cfg Config) (Warehouse, error) {
	p, err := pgwh.Open(ctx, pgwh.Config{
		URL:      cfg.Warehouse.URL,
		Schema:   cfg.Warehouse.Dataset,
		MaxConns: cfg.Warehouse.MaxConns,
	})
	if err != nil {
		return nil, err
	}

	attempts := cfg.Warehouse.ConnectRetries
	if attempts <= 0 {
		attempts = 20
	}
	pingTimeout := cfg.Warehouse.PingTimeout
	if pingTimeout <= 0 {
		pingTimeout = 3 * time.Second
	}
	const (
		backoffStart   = 150 * time.Millisecond
		backoffCeiling = 2 * time.Second
	)

	var lastErr error
	backoff := backoffStart
	for i := 0; i < attempts; i++ {
		toCtx, cancel := context.WithTimeout(ctx, pingTimeout)
		lastErr = p.Ping(toCtx)
		cancel()

		if lastErr == nil {
			return p, nil
		}
		if ctx.Err() != nil {
			_ = p.Close()
			return nil, ctx.Err()
		}
		time.Sleep(backoff)
		if backoff < backoffCeiling {
			backoff *= 2
			if backoff > backoffCeiling {
				backoff = backoffCeiling
			}
		}
	}

	_ = p.Close()
	return nil, fmt.Errorf("postgres ping failed after %d attempts: %w", attempts, lastErr)
}
