package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/osuAkatsuki/bancho-core/internal/model"
	"github.com/osuAkatsuki/bancho-core/internal/packet"
	"github.com/osuAkatsuki/bancho-core/internal/testutil"
)

type testStores struct {
	tokens   *testutil.MemTokenStore
	streams  *testutil.MemStreamStore
	channels *testutil.MemChannelStore
	users    *testutil.MemUserStore
	stats    *testutil.MemStatsStore
	ranks    *testutil.MemRankSource
}

func newTestRegistry() (*Registry, *testStores) {
	s := &testStores{
		tokens:   testutil.NewMemTokenStore(),
		streams:  testutil.NewMemStreamStore(),
		channels: testutil.NewMemChannelStore(),
		users:    testutil.NewMemUserStore(),
		stats:    testutil.NewMemStatsStore(),
		ranks:    testutil.NewMemRankSource(),
	}
	return NewRegistry(s.tokens, s.streams, s.channels, s.users, s.stats, s.ranks), s
}

func mustToken(t *testing.T, r *Registry, userID int, username string, privileges model.Privileges) *model.Token {
	t.Helper()
	token, err := r.CreateToken(context.Background(), CreateTokenParams{
		UserID:     userID,
		Username:   username,
		Privileges: privileges,
		IP:         "203.0.113.7",
	})
	require.NoError(t, err)
	return token
}

func connectBot(t *testing.T, r *Registry, s *testStores) *model.Token {
	t.Helper()
	s.users.Put(&model.User{
		ID:         BotUserID,
		Username:   "Aika",
		Privileges: model.UserPublic | model.UserNormal,
	})
	require.NoError(t, r.EnsureBotToken(context.Background()))

	tokens, err := r.FetchUserTokens(context.Background(), BotUserID)
	require.NoError(t, err)
	require.Len(t, tokens, 1)
	return tokens[0]
}

type frame struct {
	id      packet.ID
	payload []byte
}

// drainFrames empties the session's queue and splits it back into frames.
func drainFrames(t *testing.T, r *Registry, tokenID string) []frame {
	t.Helper()
	data, err := r.Dequeue(context.Background(), tokenID)
	require.NoError(t, err)

	var frames []frame
	for len(data) > 0 {
		id, payload, rest, err := packet.ParseFrame(data)
		require.NoError(t, err)
		frames = append(frames, frame{id: id, payload: payload})
		data = rest
	}
	return frames
}

func readString(t *testing.T, payload []byte) string {
	t.Helper()
	s, err := packet.NewReader(payload).ReadString()
	require.NoError(t, err)
	return s
}
