// Package bq provides a BigQuery warehouse client.
// Rows are bulk-loaded through JSON load jobs rather than the streaming
// API so freshly loaded staging tables are immediately visible to the
// MERGE statement that follows
package bq

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"cloud.google.com/go/bigquery"

	perr "ghstats/internal/platform/errors"
)

// Config configures the bigquery client
type Config struct {
	ProjectID string
	Dataset   string
}

// Client wraps one dataset of a bigquery.Client
type Client struct {
	bq      *bigquery.Client
	dataset *bigquery.Dataset
	ds      string
}

// Open creates a bigquery client bound to cfg.Dataset
func Open(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.ProjectID == "" || cfg.Dataset == "" {
		return nil, perr.New(perr.ErrorCodeInvalidArgument, "bq: project id and dataset are required")
	}
	c, err := bigquery.NewClient(ctx, cfg.ProjectID)
	if err != nil {
		return nil, perr.FromGoogleAPI(err, "bq: open client")
	}
	return &Client{
		bq:      c,
		dataset: c.Dataset(cfg.Dataset),
		ds:      cfg.Dataset,
	}, nil
}

// EnsureTable creates table if absent with a schema inferred from model.
// BigQuery has no key constraints, so keyCols is ignored here
func (c *Client) EnsureTable(ctx context.Context, table string, model any, _ []string) error {
	t := c.dataset.Table(table)
	if _, err := t.Metadata(ctx); err == nil {
		return nil
	} else if !perr.IsGoogleNotFound(err) {
		return perr.FromGoogleAPIf(err, "bq: inspect table %s", table)
	}

	schema, err := bigquery.InferSchema(model)
	if err != nil {
		return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "bq: infer schema for %s", table)
	}
	if err := t.Create(ctx, &bigquery.TableMetadata{Schema: schema}); err != nil {
		// lost a create race; the table exists, which is all we wanted
		if perr.IsGoogleStatus(err, 409) {
			return nil
		}
		return perr.FromGoogleAPIf(err, "bq: create table %s", table)
	}
	return nil
}

// LoadRows bulk-loads rows into an existing table via one JSON load job
func (c *Client) LoadRows(ctx context.Context, table string, rows []any) error {
	if len(rows) == 0 {
		return nil
	}
	ndjson, err := encodeNDJSON(rows)
	if err != nil {
		return err
	}

	src := bigquery.NewReaderSource(bytes.NewReader(ndjson))
	src.SourceFormat = bigquery.JSON

	loader := c.dataset.Table(table).LoaderFrom(src)
	loader.CreateDisposition = bigquery.CreateNever
	loader.WriteDisposition = bigquery.WriteAppend

	job, err := loader.Run(ctx)
	if err != nil {
		return perr.FromGoogleAPIf(err, "bq: start load into %s", table)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return perr.FromGoogleAPIf(err, "bq: load into %s", table)
	}
	if err := status.Err(); err != nil {
		return perr.FromGoogleAPIf(err, "bq: load into %s", table)
	}
	return nil
}

// Merge upserts staging into target matched on keyCols and returns the
// number of rows inserted or updated
func (c *Client) Merge(ctx context.Context, target, staging string, keyCols []string) (int64, error) {
	if len(keyCols) == 0 {
		return 0, perr.New(perr.ErrorCodeInvalidArgument, "bq: merge needs at least one key column")
	}

	md, err := c.dataset.Table(staging).Metadata(ctx)
	if err != nil {
		return 0, perr.FromGoogleAPIf(err, "bq: inspect staging %s", staging)
	}
	cols := make([]string, 0, len(md.Schema))
	for _, f := range md.Schema {
		cols = append(cols, f.Name)
	}

	sql := buildMergeSQL(c.ds, target, staging, keyCols, cols)
	job, err := c.bq.Query(sql).Run(ctx)
	if err != nil {
		return 0, perr.FromGoogleAPIf(err, "bq: start merge into %s", target)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return 0, perr.FromGoogleAPIf(err, "bq: merge into %s", target)
	}
	if err := status.Err(); err != nil {
		return 0, perr.FromGoogleAPIf(err, "bq: merge into %s", target)
	}

	if qs, ok := status.Statistics.Details.(*bigquery.QueryStatistics); ok {
		return qs.NumDMLAffectedRows, nil
	}
	return 0, nil
}

// DeleteTable drops table; a missing table is not an error
func (c *Client) DeleteTable(ctx context.Context, table string) error {
	if err := c.dataset.Table(table).Delete(ctx); err != nil {
		if perr.IsGoogleNotFound(err) {
			return nil
		}
		return perr.FromGoogleAPIf(err, "bq: delete table %s", table)
	}
	return nil
}

// Ping verifies the dataset exists and is reachable
func (c *Client) Ping(ctx context.Context) error {
	if _, err := c.dataset.Metadata(ctx); err != nil {
		return perr.FromGoogleAPIf(err, "bq: dataset %s", c.ds)
	}
	return nil
}

// Close closes the underlying client
func (c *Client) Close() error { return c.bq.Close() }

// encodeNDJSON renders rows as newline-delimited JSON for a load job
func encodeNDJSON(rows []any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for i, r := range rows {
		if err := enc.Encode(r); err != nil {
			return nil, perr.Wrapf(err, perr.ErrorCodeJSON, "bq: encode row %d", i)
		}
	}
	return buf.Bytes(), nil
}

// buildMergeSQL renders the upsert statement: match on keyCols, overwrite
// every non-key column on match, insert the whole row otherwise
func buildMergeSQL(dataset, target, staging string, keyCols, cols []string) string {
	keys := make(map[string]bool, len(keyCols))
	on := make([]string, 0, len(keyCols))
	for _, k := range keyCols {
		keys[k] = true
		on = append(on, fmt.Sprintf("T.`%s` = S.`%s`", k, k))
	}

	sets := make([]string, 0, len(cols))
	for _, col := range cols {
		if keys[col] {
			continue
		}
		sets = append(sets, fmt.Sprintf("T.`%s` = S.`%s`", col, col))
	}

	var b strings.Builder
	fmt.Fprintf(&b, "MERGE `%s.%s` T\n", dataset, target)
	fmt.Fprintf(&b, "USING `%s.%s` S\n", dataset, staging)
	fmt.Fprintf(&b, "ON %s\n", strings.Join(on, " AND "))
	if len(sets) > 0 {
		fmt.Fprintf(&b, "WHEN MATCHED THEN UPDATE SET %s\n", strings.Join(sets, ", "))
	}
	b.WriteString("WHEN NOT MATCHED THEN INSERT ROW")
	return b.String()
}
