package session

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"strings"

	"github.com/osuAkatsuki/bancho-core/internal/model"
	"github.com/osuAkatsuki/bancho-core/internal/serverpackets"
)

// ClientChannelName maps a per-session channel onto the alias the
// client sees: spectator and multiplayer channels exist per target but
// the client always addresses them by the generic name.
func ClientChannelName(channelName string) string {
	switch {
	case strings.HasPrefix(channelName, "#spect_"):
		return "#spectator"
	case strings.HasPrefix(channelName, "#multi_"):
		return "#multiplayer"
	}
	return channelName
}

// chatStream names the stream backing a channel.
func chatStream(channelName string) string {
	return "chat/" + channelName
}

// JoinChannel adds the session to a channel if policy allows: the
// channel must exist, the session must not already be a member, and
// gated channels (#premium, #supporter, non-public-read) require the
// matching privilege. The bot bypasses the gates. Names without a #
// prefix address private messages and are ignored here. Failing a gate
// is silent; the client simply never receives join-success.
func (r *Registry) JoinChannel(ctx context.Context, tokenID, channelName string) error {
	if !strings.HasPrefix(channelName, "#") {
		return nil
	}

	token, err := r.FetchToken(ctx, tokenID)
	if err != nil {
		return err
	}
	if token == nil {
		return fmt.Errorf("joining %s: token %s not found", channelName, tokenID)
	}

	channel, err := r.channels.FetchOne(ctx, channelName)
	if err != nil {
		return err
	}
	if channel == nil {
		return fmt.Errorf("joining %s: channel not found", channelName)
	}

	joined, err := r.channels.FetchClientChannels(ctx, tokenID)
	if err != nil {
		return err
	}
	if slices.Contains(joined, channelName) {
		return nil
	}

	if token.UserID != BotUserID {
		switch {
		case channelName == "#premium" && token.Privileges&model.UserPremium == 0:
			return nil
		case channelName == "#supporter" && token.Privileges&model.UserDonor == 0:
			return nil
		case !channel.PublicRead && !token.Privileges.Staff():
			return nil
		}
	}

	if err := r.JoinStream(ctx, tokenID, chatStream(channelName)); err != nil {
		return err
	}
	if err := r.channels.AddClient(ctx, channelName, tokenID); err != nil {
		return err
	}

	return r.Enqueue(ctx, tokenID, serverpackets.ChannelJoinSuccess(ClientChannelName(channelName)))
}

// LeaveChannel removes the session from a channel. The generic
// #spectator / #multiplayer names resolve to the session's concrete
// channel. When kick is set the client is told to close the tab. An
// instance channel whose last subscriber leaves is deleted.
func (r *Registry) LeaveChannel(ctx context.Context, tokenID, channelName string, kick bool) error {
	if !strings.HasPrefix(channelName, "#") {
		return nil
	}

	token, err := r.FetchToken(ctx, tokenID)
	if err != nil {
		return err
	}
	if token == nil {
		return fmt.Errorf("leaving %s: token %s not found", channelName, tokenID)
	}

	clientChannel := channelName
	switch {
	case channelName == "#spectator":
		hostID := token.UserID
		if token.SpectatingUserID != nil {
			hostID = *token.SpectatingUserID
		}
		channelName = fmt.Sprintf("#spect_%d", hostID)
	case channelName == "#multiplayer":
		matchID := 0
		if token.MatchID != nil {
			matchID = *token.MatchID
		}
		channelName = fmt.Sprintf("#multi_%d", matchID)
	case strings.HasPrefix(channelName, "#spect_"):
		clientChannel = "#spectator"
	case strings.HasPrefix(channelName, "#multi_"):
		clientChannel = "#multiplayer"
	}

	channel, err := r.channels.FetchOne(ctx, channelName)
	if err != nil {
		return err
	}
	if channel == nil {
		return fmt.Errorf("leaving %s: channel not found", channelName)
	}

	members, err := r.channels.FetchClients(ctx, channelName)
	if err != nil {
		return err
	}
	if !slices.Contains(members, tokenID) {
		return nil
	}

	if err := r.channels.RemoveClient(ctx, channelName, tokenID); err != nil {
		return err
	}

	subscribers, err := r.streams.FetchClients(ctx, chatStream(channelName))
	if err != nil {
		return err
	}
	remaining := len(subscribers)
	if slices.Contains(subscribers, tokenID) {
		remaining--
	}

	if channel.Instance && remaining == 0 {
		if err := r.DeleteChannel(ctx, channelName); err != nil {
			return err
		}
	} else {
		if err := r.streams.RemoveClient(ctx, chatStream(channelName), tokenID); err != nil {
			return err
		}
	}

	if kick {
		return r.Enqueue(ctx, tokenID, serverpackets.ChannelKick(clientChannel))
	}
	return nil
}

// Channels returns every live channel.
func (r *Registry) Channels(ctx context.Context) ([]model.Channel, error) {
	return r.channels.FetchAll(ctx)
}

// CreateChannel brings a channel up: backing stream first, then the
// row, then the bot joins as its permanent subscriber.
func (r *Registry) CreateChannel(ctx context.Context, channel model.Channel) error {
	if err := r.streams.CreateOne(ctx, chatStream(channel.Name)); err != nil {
		return err
	}
	if err := r.channels.CreateOne(ctx, channel); err != nil {
		return err
	}

	bot, err := r.tokens.FetchOne(ctx, model.TokenFilter{UserID: intPtr(BotUserID)})
	if err != nil {
		return err
	}
	if bot == nil {
		return fmt.Errorf("creating channel %s: bot session not found", channel.Name)
	}
	if err := r.JoinChannel(ctx, bot.TokenID, channel.Name); err != nil {
		return err
	}

	slog.Info("created channel", "channel", channel.Name)
	return nil
}

// DeleteChannel tears a channel down: kicks every subscriber, then
// removes the backing stream and the channel row.
func (r *Registry) DeleteChannel(ctx context.Context, channelName string) error {
	subscribers, err := r.streams.FetchClients(ctx, chatStream(channelName))
	if err != nil {
		return err
	}
	for _, tokenID := range subscribers {
		token, err := r.FetchToken(ctx, tokenID)
		if err != nil {
			return err
		}
		if token == nil {
			continue
		}
		if err := r.LeaveChannel(ctx, tokenID, channelName, true); err != nil {
			return err
		}
	}

	if err := r.streams.DeleteOne(ctx, chatStream(channelName)); err != nil {
		return err
	}
	if err := r.channels.DeleteOne(ctx, channelName); err != nil {
		return err
	}

	slog.Info("removed channel", "channel", channelName)
	return nil
}
