package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osuAkatsuki/bancho-core/internal/model"
)

// statsTables maps the relax selector onto the table holding that
// ruleset's stats: 0 vanilla, 1 relax, 2 autopilot.
var statsTables = map[int]string{
	0: "users_stats",
	1: "rx_stats",
	2: "ap_stats",
}

// StatsRepository reads per-mode stats snapshots. Global rank is a
// leaderboard concern and is left zero here.
type StatsRepository struct {
	db *pgxpool.Pool
}

func NewStatsRepository(db *pgxpool.Pool) *StatsRepository {
	return &StatsRepository{db: db}
}

// FetchOne returns the user's stats for one mode and ruleset.
// Returns nil if the user has no stats row (not an error).
func (r *StatsRepository) FetchOne(ctx context.Context, userID int, mode model.Mode, relaxInt int) (*model.Stats, error) {
	table, ok := statsTables[relaxInt]
	if !ok {
		return nil, fmt.Errorf("no stats table for relax selector %d", relaxInt)
	}

	// Table and column suffix both come from closed enums, so building
	// the query with Sprintf is safe.
	suffix := mode.String()
	query := fmt.Sprintf(`
		SELECT ranked_score_%[1]s, avg_accuracy_%[1]s, playcount_%[1]s, total_score_%[1]s, pp_%[1]s
		FROM %[2]s
		WHERE id = $1
	`, suffix, table)

	var s model.Stats
	err := r.db.QueryRow(ctx, query, userID).Scan(
		&s.RankedScore, &s.Accuracy, &s.Playcount, &s.TotalScore, &s.PP,
	)
	if err == pgx.ErrNoRows {
		return nil, nil // NOT ERROR, just not found
	}
	if err != nil {
		return nil, fmt.Errorf("querying %s stats of user %d: %w", suffix, userID, err)
	}
	return &s, nil
}
