package db

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

// RapLogRepository writes admin panel log entries. Automated actions are
// attributed to the bot.
type RapLogRepository struct {
	db *pgxpool.Pool
}

func NewRapLogRepository(db *pgxpool.Pool) *RapLogRepository {
	return &RapLogRepository{db: db}
}

// Create records an action against a user, attributed to Aika.
func (r *RapLogRepository) Create(ctx context.Context, userID int, text string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO rap_logs (userid, text, datetime, through)
		VALUES ($1, $2, $3, 'Aika')
	`, userID, text, time.Now().Unix())
	if err != nil {
		return fmt.Errorf("writing rap log for user %d: %w", userID, err)
	}
	return nil
}
