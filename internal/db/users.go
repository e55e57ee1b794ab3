package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/osuAkatsuki/bancho-core/internal/model"
)

const userColumns = `id, username, username_safe, password_md5, salt, email,
	register_datetime, achievements_version, latest_activity, silence_end,
	silence_reason, password_version, privileges, donor_expire, frozen, flags,
	notes, aqn, ban_datetime, switch_notifs, previous_overwrite, whitelist,
	clan_id, clan_privileges, userpage_allowed, converted, freeze_reason`

// UserRepository reads persistent account rows and mutates the handful of
// columns the login flow owns (privileges, freeze state, notes).
type UserRepository struct {
	db *pgxpool.Pool
}

func NewUserRepository(db *pgxpool.Pool) *UserRepository {
	return &UserRepository{db: db}
}

// FetchOne returns the first user matching the filter.
// Returns nil if no user matches (not an error).
func (r *UserRepository) FetchOne(ctx context.Context, filter model.UserFilter) (*model.User, error) {
	query := fmt.Sprintf(`
		SELECT %s
		FROM users
		WHERE id = COALESCE($1::int, id)
		  AND username = COALESCE($2::text, username)
	`, userColumns)

	user, err := scanUser(r.db.QueryRow(ctx, query, filter.ID, filter.Username))
	if err == pgx.ErrNoRows {
		return nil, nil // NOT ERROR, just not found
	}
	if err != nil {
		return nil, fmt.Errorf("querying user: %w", err)
	}
	return user, nil
}

// PartialUpdate applies the non-nil fields and returns the fresh row.
func (r *UserRepository) PartialUpdate(ctx context.Context, userID int, update model.UserUpdate) (*model.User, error) {
	var b setBuilder
	if update.Privileges != nil {
		b.set("privileges", *update.Privileges)
	}
	if update.Frozen != nil {
		b.set("frozen", *update.Frozen)
	}
	if update.FreezeReason != nil {
		b.set("freeze_reason", *update.FreezeReason)
	}
	if update.Notes != nil {
		b.set("notes", *update.Notes)
	}

	if !b.empty() {
		query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, b.clause(), b.arg(userID))
		if _, err := r.db.Exec(ctx, query, b.args...); err != nil {
			return nil, fmt.Errorf("updating user %d: %w", userID, err)
		}
	}

	user, err := r.FetchOne(ctx, model.UserFilter{ID: &userID})
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, fmt.Errorf("user %d vanished during update", userID)
	}
	return user, nil
}

// FetchFriends returns the ids of everyone this user has friended.
func (r *UserRepository) FetchFriends(ctx context.Context, userID int) ([]int, error) {
	rows, err := r.db.Query(ctx, `SELECT user2 FROM users_relationships WHERE user1 = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("querying friends of user %d: %w", userID, err)
	}
	defer rows.Close()

	var friends []int
	for rows.Next() {
		var friendID int
		if err := rows.Scan(&friendID); err != nil {
			return nil, fmt.Errorf("scanning friend id: %w", err)
		}
		friends = append(friends, friendID)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading friends of user %d: %w", userID, err)
	}
	return friends, nil
}

// LogIP records a login from this address, bumping the counter on repeats.
func (r *UserRepository) LogIP(ctx context.Context, userID int, ip string) error {
	_, err := r.db.Exec(ctx, `
		INSERT INTO ip_user (userid, ip, occurencies)
		VALUES ($1, $2, 1)
		ON CONFLICT (userid, ip) DO UPDATE
		SET occurencies = ip_user.occurencies + 1
	`, userID, ip)
	if err != nil {
		return fmt.Errorf("logging ip for user %d: %w", userID, err)
	}
	return nil
}

// FetchCountry reads the persisted country code (e.g. "US") for a user.
func (r *UserRepository) FetchCountry(ctx context.Context, userID int) (string, error) {
	var country string
	err := r.db.QueryRow(ctx, `SELECT country FROM users_stats WHERE id = $1`, userID).Scan(&country)
	if err == pgx.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("querying country of user %d: %w", userID, err)
	}
	return country, nil
}

// RemoveSupporterBadges deletes the supporter and premium profile badges.
func (r *UserRepository) RemoveSupporterBadges(ctx context.Context, userID int) error {
	_, err := r.db.Exec(ctx,
		`DELETE FROM user_badges WHERE badge IN (36, 59) AND "user" = $1`, userID)
	if err != nil {
		return fmt.Errorf("removing supporter badges of user %d: %w", userID, err)
	}
	return nil
}

// ClearCustomBadge revokes the custom badge permission and hides the badge.
func (r *UserRepository) ClearCustomBadge(ctx context.Context, userID int) error {
	_, err := r.db.Exec(ctx, `
		UPDATE users_stats
		SET can_custom_badge = FALSE, show_custom_badge = FALSE
		WHERE id = $1
	`, userID)
	if err != nil {
		return fmt.Errorf("clearing custom badge of user %d: %w", userID, err)
	}
	return nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var u model.User
	err := row.Scan(
		&u.ID, &u.Username, &u.UsernameSafe, &u.PasswordBcrypt, &u.Salt, &u.Email,
		&u.RegisterDatetime, &u.AchievementsVersion, &u.LatestActivity, &u.SilenceEnd,
		&u.SilenceReason, &u.PasswordVersion, &u.Privileges, &u.DonorExpire, &u.Frozen,
		&u.Flags, &u.Notes, &u.AQN, &u.BanDatetime, &u.SwitchNotifs, &u.PreviousOverwrite,
		&u.Whitelist, &u.ClanID, &u.ClanPrivileges, &u.UserpageAllowed, &u.Converted,
		&u.FreezeReason,
	)
	if err != nil {
		return nil, err
	}
	return &u, nil
}
