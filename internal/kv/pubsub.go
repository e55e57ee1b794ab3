package kv

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const banChannel = "peppy:ban"

// BanPublisher notifies the other services (score submission, web) that
// a user's restriction state changed and their caches must drop them.
type BanPublisher struct {
	rdb *redis.Client
}

func NewBanPublisher(rdb *redis.Client) *BanPublisher {
	return &BanPublisher{rdb: rdb}
}

// PublishBan announces a restriction change for the user.
func (p *BanPublisher) PublishBan(ctx context.Context, userID int) error {
	if err := p.rdb.Publish(ctx, banChannel, userID).Err(); err != nil {
		return fmt.Errorf("publishing ban of user %d: %w", userID, err)
	}
	return nil
}
