package kv

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/redis/go-redis/v9"

	"github.com/osuAkatsuki/bancho-core/internal/model"
)

// boards maps the relax selector onto the leaderboard family holding
// that ruleset's ranks: 0 vanilla, 1 relax, 2 autopilot.
var boards = map[int]string{
	0: "leaderboard",
	1: "relaxboard",
	2: "autoboard",
}

var rankedModes = []string{"std", "taiko", "ctb", "mania"}

// Leaderboard reads ranks from and removes users off the sorted-set
// leaderboards maintained by the score submission service.
type Leaderboard struct {
	rdb *redis.Client
}

func NewLeaderboard(rdb *redis.Client) *Leaderboard {
	return &Leaderboard{rdb: rdb}
}

// GlobalRank returns the user's 1-based rank for one mode and ruleset,
// or 0 when the user is not ranked.
func (l *Leaderboard) GlobalRank(ctx context.Context, userID int, mode model.Mode, relaxInt int) (int, error) {
	key, err := boardKey(relaxInt, mode)
	if err != nil {
		return 0, err
	}

	position, err := l.rdb.ZRevRank(ctx, key, strconv.Itoa(userID)).Result()
	if err == redis.Nil {
		return 0, nil // not on the board
	}
	if err != nil {
		return 0, fmt.Errorf("ranking user %d on %s: %w", userID, key, err)
	}
	return int(position) + 1, nil
}

// RemoveUser drops the user from every board they may appear on,
// including the per-country variants.
func (l *Leaderboard) RemoveUser(ctx context.Context, userID int, country string) error {
	member := strconv.Itoa(userID)
	for _, key := range removalKeys(country) {
		if err := l.rdb.ZRem(ctx, key, member).Err(); err != nil {
			return fmt.Errorf("removing user %d from %s: %w", userID, key, err)
		}
	}
	return nil
}

func boardKey(relaxInt int, mode model.Mode) (string, error) {
	board, ok := boards[relaxInt]
	if !ok {
		return "", fmt.Errorf("no leaderboard for relax selector %d", relaxInt)
	}
	return fmt.Sprintf("ripple:%s:%s", board, mode), nil
}

// removalKeys enumerates every board key across rulesets and modes.
// Country boards are skipped for empty or unresolved ("xx") countries.
func removalKeys(country string) []string {
	country = strings.ToLower(country)
	withCountry := country != "" && country != "xx"

	var keys []string
	for relaxInt := 0; relaxInt < len(boards); relaxInt++ {
		for _, mode := range rankedModes {
			keys = append(keys, fmt.Sprintf("ripple:%s:%s", boards[relaxInt], mode))
			if withCountry {
				keys = append(keys, fmt.Sprintf("ripple:%s:%s:%s", boards[relaxInt], mode, country))
			}
		}
	}
	return keys
}
