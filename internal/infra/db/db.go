// Package db owns the PostgreSQL pool and the small interfaces repositories are written against.
package db

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	pgxzero "github.com/jackc/pgx-zerolog"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/tracelog"
	"github.com/rs/zerolog"
)

// ErrNotFound is returned (wrapped) by repositories when the requested row does not exist.
var ErrNotFound = errors.New("not found")

// Querier is implemented by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Pool is a Querier that can open transactions.
type Pool interface {
	Querier
	Begin(ctx context.Context) (pgx.Tx, error)
}

const pingTimeout = 10 * time.Second

type Options struct {
	User     string
	Password string
	Host     string
	MaxConns int32
	// TraceSQL logs every statement through the given logger at debug level.
	TraceSQL bool
}

func Connect(ctx context.Context, opts Options, log zerolog.Logger) (*pgxpool.Pool, error) {
	dsn, err := DSN(opts.User, opts.Password, opts.Host)
	if err != nil {
		return nil, err
	}
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse pool config: %w", err)
	}
	if opts.MaxConns > 0 {
		cfg.MaxConns = opts.MaxConns
	}
	if opts.TraceSQL {
		cfg.ConnConfig.Tracer = &tracelog.TraceLog{
			Logger:   pgxzero.NewLogger(log),
			LogLevel: tracelog.LogLevelDebug,
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return pool, nil
}

// DSN turns the (user, password, host) triple into a postgres URL.
// host may be "host[:port]/db", a postgres:// URL or a jdbc:postgresql:// URL;
// user and password always win over credentials embedded in host.
func DSN(user, password, host string) (string, error) {
	host = strings.TrimSpace(host)
	if host == "" {
		return "", errors.New("database host is empty")
	}
	host = strings.TrimPrefix(host, "jdbc:")
	if !strings.Contains(host, "://") {
		host = "postgres://" + host
	}

	u, err := url.Parse(host)
	if err != nil {
		return "", fmt.Errorf("parse database host: %w", err)
	}
	switch u.Scheme {
	case "postgres", "postgresql":
	default:
		return "", fmt.Errorf("unsupported database scheme %q", u.Scheme)
	}
	u.Scheme = "postgres"
	if user != "" {
		if password != "" {
			u.User = url.UserPassword(user, password)
		} else {
			u.User = url.User(user)
		}
	}
	return u.String(), nil
}

// NotFound maps pgx.ErrNoRows to ErrNotFound and leaves other errors alone.
func NotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

// WithTx runs fn inside a transaction. Any error from fn rolls back.
func WithTx(ctx context.Context, p Pool, fn func(q Querier) error) error {
	tx, err := p.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit(ctx)
}
