// Package account implements the moderation actions the login flow can
// trigger: freezing, restriction, supporter expiry and admin notes.
package account

import (
	"context"
	"fmt"
	"time"

	"github.com/osuAkatsuki/bancho-core/internal/model"
)

const freezeWindow = 86_400 * 7 // seconds until an unhandled freeze restricts

// UserStore is the slice of user persistence the service needs.
type UserStore interface {
	FetchOne(ctx context.Context, filter model.UserFilter) (*model.User, error)
	PartialUpdate(ctx context.Context, userID int, update model.UserUpdate) (*model.User, error)
	FetchCountry(ctx context.Context, userID int) (string, error)
	RemoveSupporterBadges(ctx context.Context, userID int) error
	ClearCustomBadge(ctx context.Context, userID int) error
}

// Leaderboard removes users from the rank boards.
type Leaderboard interface {
	RemoveUser(ctx context.Context, userID int, country string) error
}

// BanPublisher fans restriction changes out to the other services.
type BanPublisher interface {
	PublishBan(ctx context.Context, userID int) error
}

// RapLog writes admin panel log lines.
type RapLog interface {
	Create(ctx context.Context, userID int, text string) error
}

// Anticheat posts to the staff Discord channels.
type Anticheat interface {
	NotifyGeneral(ctx context.Context, message string)
	NotifyConfidential(ctx context.Context, message string)
}

type Service struct {
	users       UserStore
	leaderboard Leaderboard
	bans        BanPublisher
	rap         RapLog
	anticheat   Anticheat
}

func NewService(users UserStore, leaderboard Leaderboard, bans BanPublisher, rap RapLog, anticheat Anticheat) *Service {
	return &Service{
		users:       users,
		leaderboard: leaderboard,
		bans:        bans,
		rap:         rap,
		anticheat:   anticheat,
	}
}

// BeginFreezeTimer stamps the user's freeze deadline one week out and
// returns it.
func (s *Service) BeginFreezeTimer(ctx context.Context, userID int) (int64, error) {
	deadline := time.Now().Unix() + freezeWindow
	if _, err := s.users.PartialUpdate(ctx, userID, model.UserUpdate{Frozen: &deadline}); err != nil {
		return 0, fmt.Errorf("starting freeze timer for user %d: %w", userID, err)
	}
	return deadline, nil
}

// RemoveFromLeaderboards drops the user off every rank board, including
// their country's.
func (s *Service) RemoveFromLeaderboards(ctx context.Context, userID int) error {
	country, err := s.users.FetchCountry(ctx, userID)
	if err != nil {
		return err
	}
	return s.leaderboard.RemoveUser(ctx, userID, country)
}

// Restrict takes the user out of public visibility, announces the ban
// and clears their ranks. Restricting an already-restricted user is a
// no-op returning the unchanged privileges.
func (s *Service) Restrict(ctx context.Context, userID int, currentPrivileges model.Privileges) (model.Privileges, error) {
	if currentPrivileges.Restricted() {
		return currentPrivileges, nil
	}

	newPrivileges := currentPrivileges &^ model.UserPublic
	user, err := s.users.PartialUpdate(ctx, userID, model.UserUpdate{Privileges: &newPrivileges})
	if err != nil {
		return 0, fmt.Errorf("restricting user %d: %w", userID, err)
	}

	if err := s.bans.PublishBan(ctx, userID); err != nil {
		return 0, err
	}
	if err := s.RemoveFromLeaderboards(ctx, userID); err != nil {
		return 0, err
	}
	return user.Privileges, nil
}

// AppendNotes date-stamps the note and appends it on its own line to the
// user's admin notes, returning the new notes blob.
func (s *Service) AppendNotes(ctx context.Context, userID int, note string) (string, error) {
	note = fmt.Sprintf("\n[%s] %s", time.Now().Format("2006-01-02 15:04:05"), note)

	user, err := s.users.FetchOne(ctx, model.UserFilter{ID: &userID})
	if err != nil {
		return "", err
	}
	if user == nil {
		return "", fmt.Errorf("appending notes: user %d not found", userID)
	}

	var notes string
	if user.Notes != nil {
		notes = *user.Notes
	}
	notes += note

	if _, err := s.users.PartialUpdate(ctx, userID, model.UserUpdate{Notes: &notes}); err != nil {
		return "", fmt.Errorf("appending notes to user %d: %w", userID, err)
	}
	return notes, nil
}

// Unfreeze clears the user's freeze state. When log is set, the action
// is attributed to author in the user's notes, the admin panel and the
// public anticheat channel.
func (s *Service) Unfreeze(ctx context.Context, userID, authorID int, log bool) error {
	var (
		frozen       int64
		freezeReason = ""
	)
	if _, err := s.users.PartialUpdate(ctx, userID, model.UserUpdate{
		Frozen:       &frozen,
		FreezeReason: &freezeReason,
	}); err != nil {
		return fmt.Errorf("unfreezing user %d: %w", userID, err)
	}

	if !log {
		return nil
	}

	author, err := s.users.FetchOne(ctx, model.UserFilter{ID: &authorID})
	if err != nil {
		return err
	}
	user, err := s.users.FetchOne(ctx, model.UserFilter{ID: &userID})
	if err != nil {
		return err
	}
	if author == nil || user == nil {
		return fmt.Errorf("unfreeze logging: user %d or author %d not found", userID, authorID)
	}

	if _, err := s.AppendNotes(ctx, userID,
		fmt.Sprintf("%s (%d) unfroze this user.", author.Username, authorID)); err != nil {
		return err
	}
	if err := s.rap.Create(ctx, author.ID,
		fmt.Sprintf("unfroze %s (%d).", user.Username, user.ID)); err != nil {
		return err
	}
	s.anticheat.NotifyGeneral(ctx,
		fmt.Sprintf("%s has unfrozen [%s](https://akatsuki.pw/u/%d)", author.Username, user.Username, user.ID))
	return nil
}

// RevokeSupporterPrivileges expires the user's donor perks: drops the
// donor bit (premium holders keep the premium bit), removes the profile
// badges and custom badge, and logs the expiry.
func (s *Service) RevokeSupporterPrivileges(ctx context.Context, userID int, currentPrivileges model.Privileges) (model.Privileges, error) {
	premiumBit := currentPrivileges & model.UserPremium
	roleName := "supporter"
	if premiumBit != 0 {
		roleName = "premium"
	}

	newPrivileges := (currentPrivileges - model.UserDonor) | premiumBit
	user, err := s.users.PartialUpdate(ctx, userID, model.UserUpdate{Privileges: &newPrivileges})
	if err != nil {
		return 0, fmt.Errorf("revoking supporter of user %d: %w", userID, err)
	}

	if err := s.users.RemoveSupporterBadges(ctx, user.ID); err != nil {
		return 0, err
	}
	if err := s.users.ClearCustomBadge(ctx, user.ID); err != nil {
		return 0, err
	}

	s.anticheat.NotifyConfidential(ctx,
		fmt.Sprintf("[%s](https://akatsuki.pw/u/%d)'s %s subscription has expired.", user.Username, user.ID, roleName))
	if err := s.rap.Create(ctx, user.ID, fmt.Sprintf("%s subscription expired.", roleName)); err != nil {
		return 0, err
	}

	return user.Privileges, nil
}

// LogRap writes an admin panel log line for the user.
func (s *Service) LogRap(ctx context.Context, userID int, text string) error {
	return s.rap.Create(ctx, userID, text)
}

// NotifyAnticheat posts to the public anticheat channel.
func (s *Service) NotifyAnticheat(ctx context.Context, message string) {
	s.anticheat.NotifyGeneral(ctx, message)
}
