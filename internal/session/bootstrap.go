package session

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/osuAkatsuki/bancho-core/internal/model"
)

// EnsureBotToken brings up the resident bot session if it is not
// already live. The bot has no remote address and a neutral UTC offset.
func (r *Registry) EnsureBotToken(ctx context.Context) error {
	bot, err := r.tokens.FetchOne(ctx, model.TokenFilter{UserID: intPtr(BotUserID)})
	if err != nil {
		return err
	}
	if bot != nil {
		return nil
	}

	user, err := r.users.FetchOne(ctx, model.UserFilter{ID: intPtr(BotUserID)})
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("connecting bot: user %d not found", BotUserID)
	}

	if _, err := r.CreateToken(ctx, CreateTokenParams{
		UserID:         user.ID,
		Username:       user.Username,
		Privileges:     user.Privileges,
		Whitelist:      user.Whitelist,
		SilenceEndTime: user.SilenceEnd,
		IP:             "",
		UTCOffset:      24,
	}); err != nil {
		return fmt.Errorf("connecting bot: %w", err)
	}

	slog.Info("bot session connected", "user_id", BotUserID)
	return nil
}

// SeedChannels instantiates a live channel for every catalog row that
// does not have one yet. Temporary catalog channels become instance
// channels.
func (r *Registry) SeedChannels(ctx context.Context) error {
	catalog, err := r.channels.FetchCatalog(ctx)
	if err != nil {
		return err
	}

	for _, row := range catalog {
		existing, err := r.channels.FetchOne(ctx, row.Name)
		if err != nil {
			return err
		}
		if existing != nil {
			continue
		}

		if err := r.CreateChannel(ctx, model.Channel{
			Name:        row.Name,
			Description: row.Description,
			PublicRead:  row.PublicRead,
			PublicWrite: row.PublicWrite,
			Moderated:   false,
			Instance:    row.Temp,
		}); err != nil {
			return fmt.Errorf("seeding channel %s: %w", row.Name, err)
		}
	}
	return nil
}
