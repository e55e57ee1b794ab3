package session

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/osuAkatsuki/bancho-core/internal/model"
	"github.com/osuAkatsuki/bancho-core/internal/serverpackets"
)

// Bot DM texts sent when the account's restriction state changed while
// the client was away.
const (
	RestrictedMsg   = "Your account is currently in restricted mode. Please visit Akatsuki's website for more information."
	UnrestrictedMsg = "Your account has been unrestricted! Please log in again."
)

// CreateTokenParams carries the login-time fields of a new session.
// Everything else starts at its idle default.
type CreateTokenParams struct {
	UserID            int
	Username          string
	Privileges        model.Privileges
	Whitelist         int
	SilenceEndTime    int64
	IP                string
	UTCOffset         int
	Tournament        bool
	BlockNonFriendsDM bool
}

// CreateToken mints a session: a fresh UUID, idle action state, a stats
// refresh from the stores, and a subscription to the main stream.
func (r *Registry) CreateToken(ctx context.Context, p CreateTokenParams) (*model.Token, error) {
	now := time.Now().Unix()
	token := &model.Token{
		TokenID:           uuid.NewString(),
		UserID:            p.UserID,
		Username:          p.Username,
		Privileges:        p.Privileges,
		Whitelist:         p.Whitelist,
		LoginTime:         now,
		PingTime:          now,
		UTCOffset:         p.UTCOffset,
		Tournament:        p.Tournament,
		BlockNonFriendsDM: p.BlockNonFriendsDM,
		IP:                p.IP,
		SilenceEndTime:    p.SilenceEndTime,
		ActionID:          model.ActionIdle,
		Mode:              model.ModeStd,
	}

	if err := r.tokens.CreateOne(ctx, token); err != nil {
		return nil, err
	}

	token, err := r.UpdateCachedStats(ctx, token.TokenID)
	if err != nil {
		return nil, err
	}
	if err := r.JoinStream(ctx, token.TokenID, MainStream); err != nil {
		return nil, err
	}
	return token, nil
}

// FetchToken returns the session by id, nil if it does not exist.
func (r *Registry) FetchToken(ctx context.Context, tokenID string) (*model.Token, error) {
	return r.tokens.FetchOne(ctx, model.TokenFilter{TokenID: &tokenID})
}

// FetchUserTokens returns every live session of one user.
func (r *Registry) FetchUserTokens(ctx context.Context, userID int) ([]*model.Token, error) {
	return r.tokens.FetchAll(ctx, model.TokenFilter{UserID: &userID})
}

// FetchAllTokens returns every live session.
func (r *Registry) FetchAllTokens(ctx context.Context) ([]*model.Token, error) {
	return r.tokens.FetchAll(ctx, model.TokenFilter{})
}

// UpdateToken applies a partial update and returns the fresh session.
func (r *Registry) UpdateToken(ctx context.Context, tokenID string, update model.TokenUpdate) (*model.Token, error) {
	return r.tokens.PartialUpdate(ctx, tokenID, update)
}

// DeleteToken removes the session; memberships and queued output go
// with it.
func (r *Registry) DeleteToken(ctx context.Context, tokenID string) error {
	return r.tokens.DeleteOne(ctx, tokenID)
}

// UpdateCachedStats refreshes the session's stat snapshot for its
// current mode and ruleset and returns the fresh session.
func (r *Registry) UpdateCachedStats(ctx context.Context, tokenID string) (*model.Token, error) {
	token, err := r.FetchToken(ctx, tokenID)
	if err != nil {
		return nil, err
	}
	if token == nil {
		return nil, fmt.Errorf("refreshing stats: token %s not found", tokenID)
	}

	relaxInt := token.RelaxInt()
	stats, err := r.stats.FetchOne(ctx, token.UserID, token.Mode, relaxInt)
	if err != nil {
		return nil, err
	}
	if stats == nil {
		return nil, fmt.Errorf("refreshing stats: user %d has no %s stats", token.UserID, token.Mode)
	}

	rank, err := r.ranks.GlobalRank(ctx, token.UserID, token.Mode, relaxInt)
	if err != nil {
		return nil, err
	}

	// Accuracy is stored pre-divided; the stats packet divides once more
	// on the way out, matching what clients expect.
	accuracy := stats.Accuracy / 100
	return r.tokens.PartialUpdate(ctx, tokenID, model.TokenUpdate{
		RankedScore: &stats.RankedScore,
		Accuracy:    &accuracy,
		Playcount:   &stats.Playcount,
		TotalScore:  &stats.TotalScore,
		PP:          &stats.PP,
		GlobalRank:  &rank,
	})
}

// Enqueue appends raw packet bytes to the session's output queue.
func (r *Registry) Enqueue(ctx context.Context, tokenID string, data []byte) error {
	return r.tokens.Enqueue(ctx, tokenID, data)
}

// Dequeue drains the session's output queue in FIFO order.
func (r *Registry) Dequeue(ctx context.Context, tokenID string) ([]byte, error) {
	return r.tokens.Dequeue(ctx, tokenID)
}

// JoinStream subscribes the session to a stream, creating the stream if
// it does not exist yet.
func (r *Registry) JoinStream(ctx context.Context, tokenID, streamName string) error {
	exists, err := r.streams.Exists(ctx, streamName)
	if err != nil {
		return err
	}
	if !exists {
		if err := r.streams.CreateOne(ctx, streamName); err != nil {
			return err
		}
	}
	return r.streams.AddClient(ctx, streamName, tokenID)
}

// LeaveStream unsubscribes the session from a stream.
func (r *Registry) LeaveStream(ctx context.Context, tokenID, streamName string) error {
	return r.streams.RemoveClient(ctx, streamName, tokenID)
}

// EnqueueMessage delivers a chat message to the recipient's queue. A
// vanished sender drops the message silently; a vanished recipient is
// an error.
func (r *Registry) EnqueueMessage(ctx context.Context, tokenID, message, senderTokenID string) error {
	recipient, err := r.FetchToken(ctx, tokenID)
	if err != nil {
		return err
	}
	if recipient == nil {
		return fmt.Errorf("delivering message: token %s not found", tokenID)
	}

	sender, err := r.FetchToken(ctx, senderTokenID)
	if err != nil {
		return err
	}
	if sender == nil {
		return nil
	}

	packet := serverpackets.SendMessage(sender.Username, message, recipient.Username, int32(sender.UserID))
	return r.Enqueue(ctx, tokenID, packet)
}

// EnqueueBotMessage delivers a chat message from the bot.
func (r *Registry) EnqueueBotMessage(ctx context.Context, tokenID, message string) error {
	bot, err := r.tokens.FetchOne(ctx, model.TokenFilter{UserID: intPtr(BotUserID)})
	if err != nil {
		return err
	}
	if bot == nil {
		return fmt.Errorf("delivering bot message: bot session not found")
	}
	return r.EnqueueMessage(ctx, tokenID, message, bot.TokenID)
}

// EnqueueNotification delivers a client notification popup.
func (r *Registry) EnqueueNotification(ctx context.Context, tokenID, message string) error {
	return r.Enqueue(ctx, tokenID, serverpackets.Notification(message))
}

// CheckRestricted compares the session's privilege snapshot against the
// fresh account row and tells the user when the restricted state
// changed either way.
func (r *Registry) CheckRestricted(ctx context.Context, tokenID string, userID int, currentPrivileges model.Privileges) error {
	wasRestricted := currentPrivileges.Restricted()

	user, err := r.users.FetchOne(ctx, model.UserFilter{ID: &userID})
	if err != nil {
		return err
	}
	if user == nil {
		return fmt.Errorf("checking restriction: user %d not found", userID)
	}

	restricted := user.Privileges.Restricted()
	if !restricted && !wasRestricted {
		return nil
	}

	message := UnrestrictedMsg
	if restricted {
		message = RestrictedMsg
	}
	return r.EnqueueBotMessage(ctx, tokenID, message)
}

// RemainingSilence returns the seconds of silence left at now, floored
// at zero.
func RemainingSilence(silenceEndTime, now int64) int64 {
	if remaining := silenceEndTime - now; remaining > 0 {
		return remaining
	}
	return 0
}

func intPtr(v int) *int {
	return &v
}
