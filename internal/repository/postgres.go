package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"
)

// DB wraps a bounded pgx connection pool. Acquisition blocks until a
// connection frees up or the acquire timeout elapses; every query path
// releases its connection on all exits.
type DB struct {
	pool           *pgxpool.Pool
	acquireTimeout time.Duration
}

// NewDB connects to Postgres with a bounded pool and verifies the
// connection.
func NewDB(ctx context.Context, url string, maxConns int32, acquireTimeout time.Duration) (*DB, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("failed to parse postgres URL: %w", err)
	}
	cfg.MaxConns = maxConns
	cfg.MinConns = 0

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, acquireTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to connect to postgres: %w", err)
	}

	log.Info().Int32("max_conns", maxConns).Msg("✅ Postgres connected")

	return &DB{pool: pool, acquireTimeout: acquireTimeout}, nil
}

// Query acquires a pooled connection, runs the statement, collects all
// rows through collect, and releases the connection unconditionally.
func (db *DB) Query(ctx context.Context, sql string, args []interface{}, collect func(pgx.Rows) error) error {
	acquireCtx, cancel := context.WithTimeout(ctx, db.acquireTimeout)
	conn, err := db.pool.Acquire(acquireCtx)
	cancel()
	if err != nil {
		return fmt.Errorf("connection acquire failed: %w", err)
	}
	defer conn.Release()

	rows, err := conn.Query(ctx, sql, args...)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	if err := collect(rows); err != nil {
		return err
	}
	return rows.Err()
}

// Exec acquires a pooled connection, runs a statement without results, and
// releases the connection.
func (db *DB) Exec(ctx context.Context, sql string, args ...interface{}) (int64, error) {
	acquireCtx, cancel := context.WithTimeout(ctx, db.acquireTimeout)
	conn, err := db.pool.Acquire(acquireCtx)
	cancel()
	if err != nil {
		return 0, fmt.Errorf("connection acquire failed: %w", err)
	}
	defer conn.Release()

	tag, err := conn.Exec(ctx, sql, args...)
	if err != nil {
		return 0, fmt.Errorf("exec failed: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Close shuts the pool down
func (db *DB) Close() {
	db.pool.Close()
}
