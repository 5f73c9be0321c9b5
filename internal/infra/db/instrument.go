package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/offerlab/offerdb/internal/infra/metrics"
)

// Instrument wraps p so every statement, including those inside transactions,
// is counted and timed in the offerdb_db_* metrics.
func Instrument(p Pool) Pool { return &instrumentedPool{Pool: p} }

type instrumentedPool struct{ Pool }

func (p *instrumentedPool) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return exec(ctx, p.Pool, sql, args)
}

func (p *instrumentedPool) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return query(ctx, p.Pool, sql, args)
}

func (p *instrumentedPool) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return &observedRow{row: p.Pool.QueryRow(ctx, sql, args...), verb: Verb(sql), started: time.Now()}
}

func (p *instrumentedPool) Begin(ctx context.Context) (pgx.Tx, error) {
	tx, err := p.Pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &instrumentedTx{Tx: tx}, nil
}

type instrumentedTx struct{ pgx.Tx }

func (t *instrumentedTx) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	return exec(ctx, t.Tx, sql, args)
}

func (t *instrumentedTx) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return query(ctx, t.Tx, sql, args)
}

func (t *instrumentedTx) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return &observedRow{row: t.Tx.QueryRow(ctx, sql, args...), verb: Verb(sql), started: time.Now()}
}

func exec(ctx context.Context, q Querier, sql string, args []any) (pgconn.CommandTag, error) {
	started := time.Now()
	tag, err := q.Exec(ctx, sql, args...)
	metrics.ObserveStatement(Verb(sql), started, err == nil)
	return tag, err
}

func query(ctx context.Context, q Querier, sql string, args []any) (pgx.Rows, error) {
	started := time.Now()
	rows, err := q.Query(ctx, sql, args...)
	if err != nil {
		metrics.ObserveStatement(Verb(sql), started, false)
		return nil, err
	}
	return &observedRows{Rows: rows, verb: Verb(sql), started: started}, nil
}

// observedRows defers the observation to Close, after errors met while reading rows are known.
type observedRows struct {
	pgx.Rows
	verb     string
	started  time.Time
	observed bool
}

func (r *observedRows) Close() {
	r.Rows.Close()
	if r.observed {
		return
	}
	r.observed = true
	metrics.ObserveStatement(r.verb, r.started, r.Rows.Err() == nil)
}

// observedRow defers the observation to Scan, where QueryRow errors surface.
type observedRow struct {
	row     pgx.Row
	verb    string
	started time.Time
}

func (r *observedRow) Scan(dest ...any) error {
	err := r.row.Scan(dest...)
	metrics.ObserveStatement(r.verb, r.started, err == nil || errors.Is(err, pgx.ErrNoRows))
	return err
}

// Verb returns the upper-cased leading keyword of a statement ("SELECT", "UPDATE", ...).
func Verb(sql string) string {
	fields := strings.Fields(sql)
	if len(fields) == 0 {
		return "UNKNOWN"
	}
	return strings.ToUpper(fields[0])
}
