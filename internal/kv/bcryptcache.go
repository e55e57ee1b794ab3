package kv

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const bcryptCachePrefix = "akatsuki:cache:bcrypt"

// BcryptCache memoizes successful bcrypt verifications so repeat logins
// skip the expensive hash comparison. Keyed by the bcrypt hash itself;
// the value is the md5 that verified against it.
type BcryptCache struct {
	rdb *redis.Client
}

func NewBcryptCache(rdb *redis.Client) *BcryptCache {
	return &BcryptCache{rdb: rdb}
}

// Get returns the cached md5 for a hash and whether one was present.
func (c *BcryptCache) Get(ctx context.Context, bcryptHash string) (string, bool, error) {
	md5, err := c.rdb.Get(ctx, bcryptCacheKey(bcryptHash)).Result()
	if err == redis.Nil {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("reading bcrypt cache: %w", err)
	}
	return md5, true, nil
}

// Set stores a verified (hash, md5) pair.
func (c *BcryptCache) Set(ctx context.Context, bcryptHash, passwordMD5 string) error {
	if err := c.rdb.Set(ctx, bcryptCacheKey(bcryptHash), passwordMD5, 0).Err(); err != nil {
		return fmt.Errorf("writing bcrypt cache: %w", err)
	}
	return nil
}

func bcryptCacheKey(bcryptHash string) string {
	return bcryptCachePrefix + ":" + bcryptHash
}
