// Package gcs provides a Google Cloud Storage blob client
package gcs

import (
	"context"
	stderrs "errors"
	"io"
	"time"

	"cloud.google.com/go/storage"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"

	perr "ghstats/internal/platform/errors"
)

// Config configures the gcs client
type Config struct {
	Bucket string

	// CredentialsFile overrides application default credentials when set
	CredentialsFile string

	// Endpoint points the client at an emulator when set
	Endpoint string
}

// Object describes one stored object as returned by List
type Object struct {
	Key     string
	Size    int64
	Updated time.Time
}

// Client wraps one bucket of a storage.Client
type Client struct {
	client *storage.Client
	bucket *storage.BucketHandle
	name   string
}

// Open creates a gcs client bound to cfg.Bucket
func Open(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.Bucket == "" {
		return nil, perr.New(perr.ErrorCodeInvalidArgument, "gcs: bucket is required")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.CredentialsFile))
	}
	if cfg.Endpoint != "" {
		// emulator endpoints carry no real credentials
		opts = append(opts, option.WithEndpoint(cfg.Endpoint), option.WithoutAuthentication())
	}

	c, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, perr.FromGoogleAPI(err, "gcs: open client")
	}
	return &Client{
		client: c,
		bucket: c.Bucket(cfg.Bucket),
		name:   cfg.Bucket,
	}, nil
}

// Put writes data as one object at key. Existing objects are overwritten
func (c *Client) Put(ctx context.Context, key string, data []byte) error {
	w := c.bucket.Object(key).NewWriter(ctx)
	w.ContentType = "application/json"
	if _, err := w.Write(data); err != nil {
		_ = w.Close()
		return perr.FromGoogleAPIf(err, "gcs: write %s", key)
	}
	if err := w.Close(); err != nil {
		return perr.FromGoogleAPIf(err, "gcs: write %s", key)
	}
	return nil
}

// Get reads one object's bytes. Missing keys map to a NotFound error
func (c *Client) Get(ctx context.Context, key string) ([]byte, error) {
	r, err := c.bucket.Object(key).NewReader(ctx)
	if err != nil {
		if stderrs.Is(err, storage.ErrObjectNotExist) {
			return nil, perr.Newf(perr.ErrorCodeNotFound, "gcs: object %s not found", key)
		}
		return nil, perr.FromGoogleAPIf(err, "gcs: open %s", key)
	}
	defer func() { _ = r.Close() }()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, perr.FromGoogleAPIf(err, "gcs: read %s", key)
	}
	return data, nil
}

// List returns every object under prefix with its size and update time
func (c *Client) List(ctx context.Context, prefix string) ([]Object, error) {
	var out []Object
	it := c.bucket.Objects(ctx, &storage.Query{Prefix: prefix})
	for {
		attrs, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, perr.FromGoogleAPIf(err, "gcs: list %s", prefix)
		}
		out = append(out, Object{Key: attrs.Name, Size: attrs.Size, Updated: attrs.Updated})
	}
	return out, nil
}

// Delete removes one object. Missing keys map to a NotFound error
func (c *Client) Delete(ctx context.Context, key string) error {
	if err := c.bucket.Object(key).Delete(ctx); err != nil {
		if stderrs.Is(err, storage.ErrObjectNotExist) {
			return perr.Newf(perr.ErrorCodeNotFound, "gcs: object %s not found", key)
		}
		return perr.FromGoogleAPIf(err, "gcs: delete %s", key)
	}
	return nil
}

// Ping verifies the bucket exists and is reachable
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.bucket.Attrs(ctx); err != nil {
		return perr.FromGoogleAPIf(err, "gcs: bucket %s", c.name)
	}
	return nil
}

// Close closes the underlying client
func (c *Client) Close() error { return c.client.Close() }
