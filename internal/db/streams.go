package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// StreamRepository manages named packet streams and their subscribers.
// A stream is just a name plus a membership set; fan-out happens at the
// session layer by enqueueing to every member.
type StreamRepository struct {
	db *pgxpool.Pool
}

func NewStreamRepository(db *pgxpool.Pool) *StreamRepository {
	return &StreamRepository{db: db}
}

// Exists reports whether the stream has been created.
func (r *StreamRepository) Exists(ctx context.Context, name string) (bool, error) {
	var found string
	err := r.db.QueryRow(ctx, `SELECT name FROM streams WHERE name = $1`, name).Scan(&found)
	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("querying stream %s: %w", name, err)
	}
	return true, nil
}

// CreateOne ensures the stream exists. Creating twice is a no-op.
func (r *StreamRepository) CreateOne(ctx context.Context, name string) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO streams (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, name)
	if err != nil {
		return fmt.Errorf("creating stream %s: %w", name, err)
	}
	return nil
}

// DeleteOne removes the stream and its memberships.
func (r *StreamRepository) DeleteOne(ctx context.Context, name string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM stream_tokens WHERE stream_name = $1`, name); err != nil {
		return fmt.Errorf("deleting members of stream %s: %w", name, err)
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM streams WHERE name = $1`, name); err != nil {
		return fmt.Errorf("deleting stream %s: %w", name, err)
	}
	return nil
}

// FetchClients returns the token ids subscribed to the stream.
func (r *StreamRepository) FetchClients(ctx context.Context, name string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT token_id FROM stream_tokens WHERE stream_name = $1`, name)
	if err != nil {
		return nil, fmt.Errorf("querying members of stream %s: %w", name, err)
	}
	defer rows.Close()

	var tokenIDs []string
	for rows.Next() {
		var tokenID string
		if err := rows.Scan(&tokenID); err != nil {
			return nil, fmt.Errorf("scanning stream member: %w", err)
		}
		tokenIDs = append(tokenIDs, tokenID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading members of stream %s: %w", name, err)
	}
	return tokenIDs, nil
}

// FetchClientStreams returns the names of the streams a token has joined.
func (r *StreamRepository) FetchClientStreams(ctx context.Context, tokenID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT stream_name FROM stream_tokens WHERE token_id = $1`, tokenID)
	if err != nil {
		return nil, fmt.Errorf("querying streams of token %s: %w", tokenID, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning stream name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading streams of token %s: %w", tokenID, err)
	}
	return names, nil
}

// AddClient subscribes a token to the stream. Rejoining is a no-op.
func (r *StreamRepository) AddClient(ctx context.Context, name, tokenID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO stream_tokens (stream_name, token_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, name, tokenID)
	if err != nil {
		return fmt.Errorf("adding token %s to stream %s: %w", tokenID, name, err)
	}
	return nil
}

// RemoveClient unsubscribes a token from the stream.
func (r *StreamRepository) RemoveClient(ctx context.Context, name, tokenID string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM stream_tokens WHERE stream_name = $1 AND token_id = $2`, name, tokenID)
	if err != nil {
		return fmt.Errorf("removing token %s from stream %s: %w", tokenID, name, err)
	}
	return nil
}
