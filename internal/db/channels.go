package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osuAkatsuki/bancho-core/internal/model"
)

const channelColumns = `name, description, public_read, public_write, moderated, instance`

// ChannelRepository manages live chat channels and their memberships.
type ChannelRepository struct {
	db *pgxpool.Pool
}

func NewChannelRepository(db *pgxpool.Pool) *ChannelRepository {
	return &ChannelRepository{db: db}
}

// FetchOne returns the channel by name.
// Returns nil if no channel exists (not an error).
func (r *ChannelRepository) FetchOne(ctx context.Context, name string) (*model.Channel, error) {
	query := fmt.Sprintf(`SELECT %s FROM channels WHERE name = $1`, channelColumns)

	var c model.Channel
	err := r.db.QueryRow(ctx, query, name).Scan(
		&c.Name, &c.Description, &c.PublicRead, &c.PublicWrite, &c.Moderated, &c.Instance,
	)
	if err == pgx.ErrNoRows {
		return nil, nil // NOT ERROR, just not found
	}
	if err != nil {
		return nil, fmt.Errorf("querying channel %s: %w", name, err)
	}
	return &c, nil
}

// FetchAll returns every live channel, ordered by name for stable listings.
func (r *ChannelRepository) FetchAll(ctx context.Context) ([]model.Channel, error) {
	query := fmt.Sprintf(`SELECT %s FROM channels ORDER BY name`, channelColumns)

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying channels: %w", err)
	}
	defer rows.Close()

	var channels []model.Channel
	for rows.Next() {
		var c model.Channel
		if err := rows.Scan(&c.Name, &c.Description, &c.PublicRead, &c.PublicWrite, &c.Moderated, &c.Instance); err != nil {
			return nil, fmt.Errorf("scanning channel: %w", err)
		}
		channels = append(channels, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading channels: %w", err)
	}
	return channels, nil
}

// FetchCatalog returns the persistent channel catalog used for seeding.
func (r *ChannelRepository) FetchCatalog(ctx context.Context) ([]model.BanchoChannel, error) {
	rows, err := r.db.Query(ctx,
		`SELECT name, description, public_read, public_write, temp FROM bancho_channels ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("querying channel catalog: %w", err)
	}
	defer rows.Close()

	var channels []model.BanchoChannel
	for rows.Next() {
		var c model.BanchoChannel
		if err := rows.Scan(&c.Name, &c.Description, &c.PublicRead, &c.PublicWrite, &c.Temp); err != nil {
			return nil, fmt.Errorf("scanning catalog channel: %w", err)
		}
		channels = append(channels, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading channel catalog: %w", err)
	}
	return channels, nil
}

// CreateOne inserts a live channel row.
func (r *ChannelRepository) CreateOne(ctx context.Context, c model.Channel) error {
	query := fmt.Sprintf(`
		INSERT INTO channels (%s)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (name) DO NOTHING
	`, channelColumns)

	_, err := r.db.Exec(ctx, query,
		c.Name, c.Description, c.PublicRead, c.PublicWrite, c.Moderated, c.Instance)
	if err != nil {
		return fmt.Errorf("inserting channel %s: %w", c.Name, err)
	}
	return nil
}

// DeleteOne removes a channel row and its memberships.
func (r *ChannelRepository) DeleteOne(ctx context.Context, name string) error {
	if _, err := r.db.Exec(ctx, `DELETE FROM channel_tokens WHERE channel_name = $1`, name); err != nil {
		return fmt.Errorf("deleting members of channel %s: %w", name, err)
	}
	if _, err := r.db.Exec(ctx, `DELETE FROM channels WHERE name = $1`, name); err != nil {
		return fmt.Errorf("deleting channel %s: %w", name, err)
	}
	return nil
}

// FetchClients returns the token ids currently in the channel.
func (r *ChannelRepository) FetchClients(ctx context.Context, name string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT token_id FROM channel_tokens WHERE channel_name = $1`, name)
	if err != nil {
		return nil, fmt.Errorf("querying members of channel %s: %w", name, err)
	}
	defer rows.Close()

	var tokenIDs []string
	for rows.Next() {
		var tokenID string
		if err := rows.Scan(&tokenID); err != nil {
			return nil, fmt.Errorf("scanning channel member: %w", err)
		}
		tokenIDs = append(tokenIDs, tokenID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading members of channel %s: %w", name, err)
	}
	return tokenIDs, nil
}

// FetchClientChannels returns the names of the channels a token has joined.
func (r *ChannelRepository) FetchClientChannels(ctx context.Context, tokenID string) ([]string, error) {
	rows, err := r.db.Query(ctx, `SELECT channel_name FROM channel_tokens WHERE token_id = $1`, tokenID)
	if err != nil {
		return nil, fmt.Errorf("querying channels of token %s: %w", tokenID, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scanning channel name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading channels of token %s: %w", tokenID, err)
	}
	return names, nil
}

// AddClient records channel membership. Rejoining is a no-op.
func (r *ChannelRepository) AddClient(ctx context.Context, name, tokenID string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO channel_tokens (channel_name, token_id)
		VALUES ($1, $2)
		ON CONFLICT DO NOTHING
	`, name, tokenID)
	if err != nil {
		return fmt.Errorf("adding token %s to channel %s: %w", tokenID, name, err)
	}
	return nil
}

// RemoveClient drops channel membership.
func (r *ChannelRepository) RemoveClient(ctx context.Context, name, tokenID string) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM channel_tokens WHERE channel_name = $1 AND token_id = $2`, name, tokenID)
	if err != nil {
		return fmt.Errorf("removing token %s from channel %s: %w", tokenID, name, err)
	}
	return nil
}
