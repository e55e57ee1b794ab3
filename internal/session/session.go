// Package session is the live-state registry: tokens (sessions and
// their output queues), streams (broadcast groups) and chat channels.
// It owns the relationships between the three; persistence is injected.
package session

import (
	"context"

	"github.com/osuAkatsuki/bancho-core/internal/model"
)

// TokenStore persists sessions and their output queues.
type TokenStore interface {
	FetchOne(ctx context.Context, filter model.TokenFilter) (*model.Token, error)
	FetchAll(ctx context.Context, filter model.TokenFilter) ([]*model.Token, error)
	CreateOne(ctx context.Context, token *model.Token) error
	PartialUpdate(ctx context.Context, tokenID string, update model.TokenUpdate) (*model.Token, error)
	DeleteOne(ctx context.Context, tokenID string) error
	Enqueue(ctx context.Context, tokenID string, data []byte) error
	Dequeue(ctx context.Context, tokenID string) ([]byte, error)
}

// StreamStore persists streams and their subscriber sets.
type StreamStore interface {
	Exists(ctx context.Context, name string) (bool, error)
	CreateOne(ctx context.Context, name string) error
	DeleteOne(ctx context.Context, name string) error
	FetchClients(ctx context.Context, name string) ([]string, error)
	AddClient(ctx context.Context, name, tokenID string) error
	RemoveClient(ctx context.Context, name, tokenID string) error
}

// ChannelStore persists channels, their memberships and the seed catalog.
type ChannelStore interface {
	FetchOne(ctx context.Context, name string) (*model.Channel, error)
	FetchAll(ctx context.Context) ([]model.Channel, error)
	FetchCatalog(ctx context.Context) ([]model.BanchoChannel, error)
	CreateOne(ctx context.Context, channel model.Channel) error
	DeleteOne(ctx context.Context, name string) error
	FetchClients(ctx context.Context, name string) ([]string, error)
	FetchClientChannels(ctx context.Context, tokenID string) ([]string, error)
	AddClient(ctx context.Context, name, tokenID string) error
	RemoveClient(ctx context.Context, name, tokenID string) error
}

// UserStore is the read-only slice of account persistence the registry
// needs (restriction re-checks and the bot account).
type UserStore interface {
	FetchOne(ctx context.Context, filter model.UserFilter) (*model.User, error)
}

// StatsStore reads per-mode stats snapshots.
type StatsStore interface {
	FetchOne(ctx context.Context, userID int, mode model.Mode, relaxInt int) (*model.Stats, error)
}

// RankSource resolves leaderboard positions.
type RankSource interface {
	GlobalRank(ctx context.Context, userID int, mode model.Mode, relaxInt int) (int, error)
}

// Registry coordinates tokens, streams and channels.
type Registry struct {
	tokens   TokenStore
	streams  StreamStore
	channels ChannelStore
	users    UserStore
	stats    StatsStore
	ranks    RankSource
}

func NewRegistry(
	tokens TokenStore,
	streams StreamStore,
	channels ChannelStore,
	users UserStore,
	stats StatsStore,
	ranks RankSource,
) *Registry {
	return &Registry{
		tokens:   tokens,
		streams:  streams,
		channels: channels,
		users:    users,
		stats:    stats,
		ranks:    ranks,
	}
}

// BotUserID is the resident chat bot. Its session exists from startup
// and bypasses channel visibility gates.
const BotUserID = 999

// MainStream carries presence and other packets addressed to everyone.
const MainStream = "main"
