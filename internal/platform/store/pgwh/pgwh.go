// Package pgwh implements the warehouse seam on postgres using pgxpool.
// Bulk loads go through COPY and the merge is INSERT .. ON CONFLICT DO
// UPDATE, which needs the target's key columns as a primary key; EnsureTable
// creates tables that way
package pgwh

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	perr "ghstats/internal/platform/errors"
)

// Config configures pgxpool for the warehouse
type Config struct {
	URL      string
	Schema   string
	MaxConns int32
}

// PG is a postgres warehouse client
type PG struct {
	pool   *pgxpool.Pool
	schema string
}

var newPool = pgxpool.NewWithConfig

// Open creates a warehouse client from the given config
func Open(ctx context.Context, cfg Config) (*PG, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeInvalidArgument, "pgwh: parse dsn")
	}
	if cfg.MaxConns > 0 {
		pcfg.MaxConns = cfg.MaxConns
	}
	pool, err := newPool(ctx, pcfg)
	if err != nil {
		return nil, perr.FromPostgres(err, "pgwh: open pool")
	}
	return &PG{pool: pool, schema: cfg.Schema}, nil
}

// Ping verifies connectivity
func (p *PG) Ping(ctx context.Context) error { return p.pool.Ping(ctx) }

// Close closes the pool
func (p *PG) Close() error {
	if p != nil && p.pool != nil {
		p.pool.Close()
	}
	return nil
}

// qualify renders a quoted, schema-qualified table name
func (p *PG) qualify(table string) string {
	if p.schema == "" {
		return fmt.Sprintf("%q", table)
	}
	return fmt.Sprintf("%q.%q", p.schema, table)
}

// EnsureTable creates table if absent with columns derived from model and
// keyCols as its primary key
func (p *PG) EnsureTable(ctx context.Context, table string, model any, keyCols []string) error {
	cols, err := structColumns(model)
	if err != nil {
		return err
	}
	if p.schema != "" {
		ddl := fmt.Sprintf("CREATE SCHEMA IF NOT EXISTS %q", p.schema)
		if _, err := p.pool.Exec(ctx, ddl); err != nil {
			return perr.FromPostgresf(err, "pgwh: ensure schema %s", p.schema)
		}
	}
	ddl := buildCreateSQL(p.qualify(table), cols, keyCols)
	if _, err := p.pool.Exec(ctx, ddl); err != nil {
		return perr.FromPostgresf(err, "pgwh: ensure table %s", table)
	}
	return nil
}

// LoadRows bulk-loads rows into table via COPY
func (p *PG) LoadRows(ctx context.Context, table string, rows []any) error {
	if len(rows) == 0 {
		return nil
	}
	cols, err := structColumns(rows[0])
	if err != nil {
		return err
	}

	names := make([]string, len(cols))
	values := make([][]any, 0, len(rows))
	for i, c := range cols {
		names[i] = c.Name
	}
	for i, r := range rows {
		vals, err := structValues(r, cols)
		if err != nil {
			return perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "pgwh: row %d", i)
		}
		values = append(values, vals)
	}

	ident := pgx.Identifier{table}
	if p.schema != "" {
		ident = pgx.Identifier{p.schema, table}
	}
	if _, err := p.pool.CopyFrom(ctx, ident, names, pgx.CopyFromRows(values)); err != nil {
		return perr.FromPostgresf(err, "pgwh: copy into %s", table)
	}
	return nil
}

// Merge upserts staging into target matched on keyCols. The staging rows
// must be key-unique within one call or postgres rejects the statement
func (p *PG) Merge(ctx context.Context, target, staging string, keyCols []string) (int64, error) {
	if len(keyCols) == 0 {
		return 0, perr.New(perr.ErrorCodeInvalidArgument, "pgwh: merge needs at least one key column")
	}

	cols, err := p.tableColumns(ctx, staging)
	if err != nil {
		return 0, err
	}

	sql := buildMergeSQL(p.qualify(target), p.qualify(staging), keyCols, cols)
	tag, err := p.pool.Exec(ctx, sql)
	if err != nil {
		return 0, perr.FromPostgresf(err, "pgwh: merge into %s", target)
	}
	return tag.RowsAffected(), nil
}

// DeleteTable drops table; a missing table is not an error
func (p *PG) DeleteTable(ctx context.Context, table string) error {
	ddl := fmt.Sprintf("DROP TABLE IF EXISTS %s", p.qualify(table))
	if _, err := p.pool.Exec(ctx, ddl); err != nil {
		return perr.FromPostgresf(err, "pgwh: drop table %s", table)
	}
	return nil
}

// tableColumns reads a table's column names in ordinal order
func (p *PG) tableColumns(ctx context.Context, table string) ([]string, error) {
	schema := p.schema
	if schema == "" {
		schema = "public"
	}
	rows, err := p.pool.Query(ctx,
		`SELECT column_name FROM information_schema.columns
		 WHERE table_schema = $1 AND table_name = $2
		 ORDER BY ordinal_position`, schema, table)
	if err != nil {
		return nil, perr.FromPostgresf(err, "pgwh: columns of %s", table)
	}
	defer rows.Close()

	var out []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, perr.FromPostgresf(err, "pgwh: columns of %s", table)
		}
		out = append(out, name)
	}
	if err := rows.Err(); err != nil {
		return nil, perr.FromPostgresf(err, "pgwh: columns of %s", table)
	}
	if len(out) == 0 {
		return nil, perr.Newf(perr.ErrorCodeNotFound, "pgwh: table %s has no columns", table)
	}
	return out, nil
}

// buildCreateSQL renders the CREATE TABLE IF NOT EXISTS statement
func buildCreateSQL(qualified string, cols []column, keyCols []string) string {
	defs := make([]string, 0, len(cols)+1)
	for _, c := range cols {
		null := " NOT NULL"
		if c.Nullable {
			null = ""
		}
		defs = append(defs, fmt.Sprintf("%q %s%s", c.Name, c.SQLType, null))
	}
	if len(keyCols) > 0 {
		quoted := make([]string, len(keyCols))
		for i, k := range keyCols {
			quoted[i] = fmt.Sprintf("%q", k)
		}
		defs = append(defs, fmt.Sprintf("PRIMARY KEY (%s)", strings.Join(quoted, ", ")))
	}
	return fmt.Sprintf("CREATE TABLE IF NOT EXISTS %s (%s)", qualified, strings.Join(defs, ", "))
}

// buildMergeSQL renders the upsert statement
func buildMergeSQL(target, staging string, keyCols, cols []string) string {
	keys := make(map[string]bool, len(keyCols))
	conflict := make([]string, len(keyCols))
	for i, k := range keyCols {
		keys[k] = true
		conflict[i] = fmt.Sprintf("%q", k)
	}

	quoted := make([]string, len(cols))
	sets := make([]string, 0, len(cols))
	for i, c := range cols {
		quoted[i] = fmt.Sprintf("%q", c)
		if !keys[c] {
			sets = append(sets, fmt.Sprintf("%q = EXCLUDED.%q", c, c))
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "INSERT INTO %s (%s)\n", target, strings.Join(quoted, ", "))
	fmt.Fprintf(&b, "SELECT %s FROM %s\n", strings.Join(quoted, ", "), staging)
	fmt.Fprintf(&b, "ON CONFLICT (%s)", strings.Join(conflict, ", "))
	if len(sets) > 0 {
		fmt.Fprintf(&b, " DO UPDATE SET %s", strings.Join(sets, ", "))
	} else {
		b.WriteString(" DO NOTHING")
	}
	return b.String()
}
