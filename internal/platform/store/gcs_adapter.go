package store

import (
	"context"
	"errors"

	"ghstats/internal/platform/store/gcs"
)

// newGCSAdapter is called by openers.go to wrap an existing *gcs.Client
// and return the store.Blobs seam (single return value)
func newGCSAdapter(c *gcs.Client) Blobs {
	return &gcsAdapter{inner: c}
}

// gcsAdapter adapts *gcs.Client to the store.Blobs interface
type gcsAdapter struct {
	inner *gcs.Client
}

var _ Blobs = (*gcsAdapter)(nil)

func (a *gcsAdapter) Put(ctx context.Context, key string, data []byte) error {
	return a.inner.Put(ctx, key, data)
}

func (a *gcsAdapter) Get(ctx context.Context, key string) ([]byte, error) {
	return a.inner.Get(ctx, key)
}

func (a *gcsAdapter) List(ctx context.Context, prefix string) ([]ObjectInfo, error) {
	objs, err := a.inner.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	out := make([]ObjectInfo, len(objs))
	for i, o := range objs {
		out[i] = ObjectInfo{Key: o.Key, Size: o.Size, Updated: o.Updated}
	}
	return out, nil
}

func (a *gcsAdapter) Delete(ctx context.Context, key string) error {
	return a.inner.Delete(ctx, key)
}

func (a *gcsAdapter) Close() error { return a.inner.Close() }

// Ping verifies the bucket is reachable
func (a *gcsAdapter) Ping(ctx context.Context) error {
	if a == nil || a.inner == nil {
		return errors.New("store: nil gcs adapter")
	}
	return a.inner.Ping(ctx)
}
