package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osuAkatsuki/bancho-core/internal/model"
)

const tokenColumns = `token_id, user_id, username, privileges, whitelist, kicked,
	login_time, ping_time, utc_offset, tournament, block_non_friends_dm,
	spectating_token_id, spectating_user_id, latitude, longitude, ip, country,
	away_message, match_id, last_np_beatmap_id, last_np_mods, last_np_accuracy,
	silence_end_time, protocol_version, spam_rate, action_id, action_text,
	action_md5, action_beatmap_id, action_mods, mode, relax, autopilot,
	ranked_score, accuracy, playcount, total_score, global_rank, pp`

// TokenRepository is the live session registry. Tokens and their output
// buffers live in unlogged tables and are truncated on startup.
type TokenRepository struct {
	db *pgxpool.Pool
}

func NewTokenRepository(db *pgxpool.Pool) *TokenRepository {
	return &TokenRepository{db: db}
}

// FetchOne returns the first token matching the filter.
// Returns nil if no token matches (not an error).
func (r *TokenRepository) FetchOne(ctx context.Context, filter model.TokenFilter) (*model.Token, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tokens
		WHERE token_id = COALESCE($1::text, token_id)
		  AND user_id = COALESCE($2::int, user_id)
		  AND username = COALESCE($3::text, username)
		LIMIT 1
	`, tokenColumns)

	token, err := scanToken(r.db.QueryRow(ctx, query, filter.TokenID, filter.UserID, filter.Username))
	if err == pgx.ErrNoRows {
		return nil, nil // NOT ERROR, just not found
	}
	if err != nil {
		return nil, fmt.Errorf("querying token: %w", err)
	}
	return token, nil
}

// FetchAll returns every token matching the filter.
func (r *TokenRepository) FetchAll(ctx context.Context, filter model.TokenFilter) ([]*model.Token, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM tokens
		WHERE token_id = COALESCE($1::text, token_id)
		  AND user_id = COALESCE($2::int, user_id)
		  AND username = COALESCE($3::text, username)
	`, tokenColumns)

	rows, err := r.db.Query(ctx, query, filter.TokenID, filter.UserID, filter.Username)
	if err != nil {
		return nil, fmt.Errorf("querying tokens: %w", err)
	}
	defer rows.Close()

	var tokens []*model.Token
	for rows.Next() {
		token, err := scanToken(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning token: %w", err)
		}
		tokens = append(tokens, token)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading tokens: %w", err)
	}
	return tokens, nil
}

// CreateOne inserts a fully populated token row.
func (r *TokenRepository) CreateOne(ctx context.Context, t *model.Token) error {
	query := fmt.Sprintf(`
		INSERT INTO tokens (%s)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10,
		        $11, $12, $13, $14, $15, $16, $17, $18, $19, $20,
		        $21, $22, $23, $24, $25, $26, $27, $28, $29, $30,
		        $31, $32, $33, $34, $35, $36, $37, $38, $39)
	`, tokenColumns)

	_, err := r.db.Exec(ctx, query,
		t.TokenID, t.UserID, t.Username, t.Privileges, t.Whitelist, t.Kicked,
		t.LoginTime, t.PingTime, t.UTCOffset, t.Tournament, t.BlockNonFriendsDM,
		t.SpectatingTokenID, t.SpectatingUserID, t.Latitude, t.Longitude, t.IP, t.Country,
		t.AwayMessage, t.MatchID, t.LastNpBeatmapID, t.LastNpMods, t.LastNpAccuracy,
		t.SilenceEndTime, t.ProtocolVersion, t.SpamRate, t.ActionID, t.ActionText,
		t.ActionMD5, t.ActionBeatmapID, t.ActionMods, t.Mode, t.Relax, t.Autopilot,
		t.RankedScore, t.Accuracy, t.Playcount, t.TotalScore, t.GlobalRank, t.PP,
	)
	if err != nil {
		return fmt.Errorf("inserting token %s: %w", t.TokenID, err)
	}
	return nil
}

// PartialUpdate applies the non-nil fields and returns the fresh token.
// Returns nil if the token no longer exists.
func (r *TokenRepository) PartialUpdate(ctx context.Context, tokenID string, update model.TokenUpdate) (*model.Token, error) {
	var b setBuilder
	if update.Privileges != nil {
		b.set("privileges", *update.Privileges)
	}
	if update.PingTime != nil {
		b.set("ping_time", *update.PingTime)
	}
	if update.UTCOffset != nil {
		b.set("utc_offset", *update.UTCOffset)
	}
	if update.Latitude != nil {
		b.set("latitude", *update.Latitude)
	}
	if update.Longitude != nil {
		b.set("longitude", *update.Longitude)
	}
	if update.Country != nil {
		b.set("country", *update.Country)
	}
	if update.SilenceEndTime != nil {
		b.set("silence_end_time", *update.SilenceEndTime)
	}
	if update.ProtocolVersion != nil {
		b.set("protocol_version", *update.ProtocolVersion)
	}
	if update.SpamRate != nil {
		b.set("spam_rate", *update.SpamRate)
	}
	if update.ActionID != nil {
		b.set("action_id", *update.ActionID)
	}
	if update.ActionText != nil {
		b.set("action_text", *update.ActionText)
	}
	if update.ActionMD5 != nil {
		b.set("action_md5", *update.ActionMD5)
	}
	if update.ActionBeatmapID != nil {
		b.set("action_beatmap_id", *update.ActionBeatmapID)
	}
	if update.ActionMods != nil {
		b.set("action_mods", *update.ActionMods)
	}
	if update.Mode != nil {
		b.set("mode", *update.Mode)
	}
	if update.Relax != nil {
		b.set("relax", *update.Relax)
	}
	if update.Autopilot != nil {
		b.set("autopilot", *update.Autopilot)
	}
	if update.RankedScore != nil {
		b.set("ranked_score", *update.RankedScore)
	}
	if update.Accuracy != nil {
		b.set("accuracy", *update.Accuracy)
	}
	if update.Playcount != nil {
		b.set("playcount", *update.Playcount)
	}
	if update.TotalScore != nil {
		b.set("total_score", *update.TotalScore)
	}
	if update.GlobalRank != nil {
		b.set("global_rank", *update.GlobalRank)
	}
	if update.PP != nil {
		b.set("pp", *update.PP)
	}
	if update.Kicked != nil {
		b.set("kicked", *update.Kicked)
	}

	if !b.empty() {
		query := fmt.Sprintf(`UPDATE tokens SET %s WHERE token_id = $%d`, b.clause(), b.arg(tokenID))
		if _, err := r.db.Exec(ctx, query, b.args...); err != nil {
			return nil, fmt.Errorf("updating token %s: %w", tokenID, err)
		}
	}

	return r.FetchOne(ctx, model.TokenFilter{TokenID: &tokenID})
}

// DeleteOne removes a token. Buffers and memberships cascade.
func (r *TokenRepository) DeleteOne(ctx context.Context, tokenID string) error {
	_, err := r.db.Exec(ctx, `DELETE FROM tokens WHERE token_id = $1`, tokenID)
	if err != nil {
		return fmt.Errorf("deleting token %s: %w", tokenID, err)
	}
	return nil
}

// Enqueue appends raw packet data to the token's output queue.
// Unknown tokens are dropped silently (FK violation is not surfaced as
// the session may race its own logout).
func (r *TokenRepository) Enqueue(ctx context.Context, tokenID string, data []byte) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO token_buffers (token_id, buffer)
		SELECT $1, $2
		WHERE EXISTS (SELECT 1 FROM tokens WHERE token_id = $1)
	`, tokenID, data)
	if err != nil {
		return fmt.Errorf("enqueueing %d bytes for token %s: %w", len(data), tokenID, err)
	}
	return nil
}

// Dequeue drains the token's output queue and returns the concatenated
// buffers in insertion order. Returns nil when the queue is empty.
func (r *TokenRepository) Dequeue(ctx context.Context, tokenID string) ([]byte, error) {
	rows, err := r.db.Query(ctx, `
		WITH drained AS (
			DELETE FROM token_buffers
			WHERE token_id = $1
			RETURNING buffer_id, buffer
		)
		SELECT buffer FROM drained ORDER BY buffer_id
	`, tokenID)
	if err != nil {
		return nil, fmt.Errorf("dequeueing token %s: %w", tokenID, err)
	}
	defer rows.Close()

	var out []byte
	for rows.Next() {
		var buffer []byte
		if err := rows.Scan(&buffer); err != nil {
			return nil, fmt.Errorf("scanning buffer: %w", err)
		}
		out = append(out, buffer...)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading buffers of token %s: %w", tokenID, err)
	}
	return out, nil
}

func scanToken(row pgx.Row) (*model.Token, error) {
	var t model.Token
	err := row.Scan(
		&t.TokenID, &t.UserID, &t.Username, &t.Privileges, &t.Whitelist, &t.Kicked,
		&t.LoginTime, &t.PingTime, &t.UTCOffset, &t.Tournament, &t.BlockNonFriendsDM,
		&t.SpectatingTokenID, &t.SpectatingUserID, &t.Latitude, &t.Longitude, &t.IP, &t.Country,
		&t.AwayMessage, &t.MatchID, &t.LastNpBeatmapID, &t.LastNpMods, &t.LastNpAccuracy,
		&t.SilenceEndTime, &t.ProtocolVersion, &t.SpamRate, &t.ActionID, &t.ActionText,
		&t.ActionMD5, &t.ActionBeatmapID, &t.ActionMods, &t.Mode, &t.Relax, &t.Autopilot,
		&t.RankedScore, &t.Accuracy, &t.Playcount, &t.TotalScore, &t.GlobalRank, &t.PP,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
