package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// DB wraps a pgx connection pool shared by all repositories.
type DB struct {
	pool *pgxpool.Pool
}

// New connects to PostgreSQL and returns a DB handle.
func New(ctx context.Context, dsn string) (*DB, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}
	return &DB{pool: pool}, nil
}

// Close closes the database connection pool.
func (d *DB) Close() {
	d.pool.Close()
}

// Pool returns the underlying pgx pool.
func (d *DB) Pool() *pgxpool.Pool {
	return d.pool
}

// ResetLiveState truncates every table that mirrors live session state.
// A crashed process must not leave ghost sessions behind blocking
// relogins, and queued packets for dead sessions are expendable.
// Runs once at startup, before bootstrap.
func (d *DB) ResetLiveState(ctx context.Context) error {
	_, err := d.pool.Exec(ctx,
		`TRUNCATE tokens, streams, channels, channel_tokens, stream_tokens, token_buffers`,
	)
	if err != nil {
		return fmt.Errorf("truncating live state tables: %w", err)
	}
	return nil
}
