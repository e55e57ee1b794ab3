package login

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osuAkatsuki/bancho-core/internal/model"
	"github.com/osuAkatsuki/bancho-core/internal/packet"
	"github.com/osuAkatsuki/bancho-core/internal/session"
	"github.com/osuAkatsuki/bancho-core/internal/testutil"
)

type mockVerifier struct {
	verifyFunc func(ctx context.Context, passwordMD5, bcryptHash string) (bool, error)
}

// Verify defaults to a plain string compare so tests can seed users with
// their expected md5 in the hash column.
func (m *mockVerifier) Verify(ctx context.Context, passwordMD5, bcryptHash string) (bool, error) {
	if m.verifyFunc != nil {
		return m.verifyFunc(ctx, passwordMD5, bcryptHash)
	}
	return passwordMD5 == bcryptHash, nil
}

type mockGeo struct {
	location model.Geolocation
	lookups  []string
}

func (m *mockGeo) Lookup(ip string) model.Geolocation {
	m.lookups = append(m.lookups, ip)
	return m.location
}

type accountsMock struct {
	beginFreezeTimerFunc func(ctx context.Context, userID int) (int64, error)

	timersArmed []int
	restricted  []int
	unfrozen    []int
	revoked     []int
	rapTexts    []string
	anticheat   []string
}

func (m *accountsMock) BeginFreezeTimer(ctx context.Context, userID int) (int64, error) {
	m.timersArmed = append(m.timersArmed, userID)
	if m.beginFreezeTimerFunc != nil {
		return m.beginFreezeTimerFunc(ctx, userID)
	}
	return time.Now().Unix() + 86_400*7, nil
}

func (m *accountsMock) Restrict(ctx context.Context, userID int, current model.Privileges) (model.Privileges, error) {
	m.restricted = append(m.restricted, userID)
	return current &^ model.UserPublic, nil
}

func (m *accountsMock) Unfreeze(ctx context.Context, userID, authorID int, log bool) error {
	m.unfrozen = append(m.unfrozen, userID)
	return nil
}

func (m *accountsMock) RevokeSupporterPrivileges(ctx context.Context, userID int, current model.Privileges) (model.Privileges, error) {
	m.revoked = append(m.revoked, userID)
	return current &^ model.UserDonor, nil
}

func (m *accountsMock) LogRap(ctx context.Context, userID int, text string) error {
	m.rapTexts = append(m.rapTexts, text)
	return nil
}

func (m *accountsMock) NotifyAnticheat(ctx context.Context, message string) {
	m.anticheat = append(m.anticheat, message)
}

type loginFixture struct {
	controller *Controller
	registry   *session.Registry
	tokens     *testutil.MemTokenStore
	users      *testutil.MemUserStore
	geo        *mockGeo
	accounts   *accountsMock
	botTokenID string
}

// newLoginFixture wires a controller over in-memory stores with the bot
// connected, the stock channels up, and "alice" (1000) registered.
func newLoginFixture(t *testing.T, cfg Config) *loginFixture {
	t.Helper()
	ctx := context.Background()

	users := testutil.NewMemUserStore(
		&model.User{
			ID:         session.BotUserID,
			Username:   "Aika",
			Privileges: model.UserPublic | model.UserNormal,
		},
		&model.User{
			ID:             1000,
			Username:       "alice",
			PasswordBcrypt: "alice-md5",
			Privileges:     model.UserPublic | model.UserNormal,
		},
	)
	tokens := testutil.NewMemTokenStore()
	registry := session.NewRegistry(
		tokens,
		testutil.NewMemStreamStore(),
		testutil.NewMemChannelStore(),
		users,
		testutil.NewMemStatsStore(),
		testutil.NewMemRankSource(),
	)

	require.NoError(t, registry.EnsureBotToken(ctx))
	for _, channel := range []model.Channel{
		{Name: "#osu", Description: "Main channel", PublicRead: true, PublicWrite: true},
		{Name: "#announce", Description: "Announcements", PublicRead: true},
		{Name: "#admin", Description: "Staff chat", PublicRead: false},
	} {
		require.NoError(t, registry.CreateChannel(ctx, channel))
	}

	botTokens, err := registry.FetchUserTokens(ctx, session.BotUserID)
	require.NoError(t, err)
	require.Len(t, botTokens, 1)

	geo := &mockGeo{location: model.Geolocation{Country: "US", Latitude: 40.73, Longitude: -74.01}}
	accounts := &accountsMock{}
	return &loginFixture{
		controller: NewController(users, registry, &mockVerifier{}, geo, testutil.NopLocker{}, accounts, cfg),
		registry:   registry,
		tokens:     tokens,
		users:      users,
		geo:        geo,
		accounts:   accounts,
		botTokenID: botTokens[0].TokenID,
	}
}

func (f *loginFixture) login(t *testing.T, body []byte) Result {
	t.Helper()
	result, err := f.controller.Login(context.Background(), body, "203.0.113.7")
	require.NoError(t, err)
	return result
}

func loginBody(username, password, version string) []byte {
	return []byte(fmt.Sprintf("%s\n%s\n%s|0|0|c1:eth0:a2:u3:d4:|0\n", username, password, version))
}

// currentVersion is a release name a month old, safely inside the
// supported window.
func currentVersion() string {
	return "b" + time.Now().AddDate(0, 0, -30).Format("20060102")
}

type frame struct {
	id      packet.ID
	payload []byte
}

func parseFrames(t *testing.T, data []byte) []frame {
	t.Helper()
	var frames []frame
	for len(data) > 0 {
		id, payload, rest, err := packet.ParseFrame(data)
		require.NoError(t, err)
		frames = append(frames, frame{id: id, payload: payload})
		data = rest
	}
	return frames
}

func frameIDs(frames []frame) []packet.ID {
	ids := make([]packet.ID, 0, len(frames))
	for _, f := range frames {
		ids = append(ids, f.id)
	}
	return ids
}

func readInt(t *testing.T, payload []byte) int32 {
	t.Helper()
	v, err := packet.NewReader(payload).ReadInt()
	require.NoError(t, err)
	return v
}

func readText(t *testing.T, payload []byte) string {
	t.Helper()
	s, err := packet.NewReader(payload).ReadString()
	require.NoError(t, err)
	return s
}

func readChannelInfo(t *testing.T, payload []byte) (string, uint16) {
	t.Helper()
	r := packet.NewReader(payload)
	name, err := r.ReadString()
	require.NoError(t, err)
	_, err = r.ReadString()
	require.NoError(t, err)
	count, err := r.ReadUint16()
	require.NoError(t, err)
	return name, count
}

func readChatMessage(t *testing.T, payload []byte) (sender, message, recipient string, senderID int32) {
	t.Helper()
	r := packet.NewReader(payload)
	var err error
	sender, err = r.ReadString()
	require.NoError(t, err)
	message, err = r.ReadString()
	require.NoError(t, err)
	recipient, err = r.ReadString()
	require.NoError(t, err)
	senderID, err = r.ReadInt()
	require.NoError(t, err)
	return sender, message, recipient, senderID
}

// assertRejected checks the shared failure shape: a "no" token over a
// body of account id -1 plus one notification.
func assertRejected(t *testing.T, result Result, wantText string) {
	t.Helper()
	assert.Equal(t, RejectedToken, result.Token)

	frames := parseFrames(t, result.Body)
	require.Len(t, frames, 2)
	assert.Equal(t, packet.IDAccountID, frames[0].id)
	assert.Equal(t, int32(-1), readInt(t, frames[0].payload))
	assert.Equal(t, packet.IDNotification, frames[1].id)
	assert.Equal(t, wantText, readText(t, frames[1].payload))
}

func TestLoginHappyPath(t *testing.T) {
	ctx := context.Background()
	f := newLoginFixture(t, Config{})
	f.users.Friends[1000] = []int{2, 3}

	result := f.login(t, loginBody("alice", "alice-md5", currentVersion()))

	require.NotEqual(t, RejectedToken, result.Token)
	assert.Len(t, result.Token, 36, "cho-token should be the session uuid")

	frames := parseFrames(t, result.Body)
	require.Equal(t, []packet.ID{
		packet.IDProtocolVersion,
		packet.IDAccountID,
		packet.IDSilenceEnd,
		packet.IDPrivileges,
		packet.IDUserPresence,
		packet.IDUserStats,
		packet.IDChannelInfo,
		packet.IDChannelInfo,
		packet.IDChannelInfoEnd,
		packet.IDFriendsList,
		packet.IDUserPresence,
	}, frameIDs(frames))

	assert.Equal(t, int32(19), readInt(t, frames[0].payload))
	assert.Equal(t, int32(1000), readInt(t, frames[1].payload))
	assert.Equal(t, int32(0), readInt(t, frames[2].payload))
	assert.Equal(t, int32(5), readInt(t, frames[3].payload))
	assert.Equal(t, int32(1000), readInt(t, frames[4].payload), "own presence comes first")
	assert.Equal(t, int32(session.BotUserID), readInt(t, frames[10].payload), "then everyone else")

	// #admin is unlisted; both public channels count the bot and alice.
	name, count := readChannelInfo(t, frames[6].payload)
	assert.Equal(t, "#announce", name)
	assert.Equal(t, uint16(2), count)
	name, count = readChannelInfo(t, frames[7].payload)
	assert.Equal(t, "#osu", name)
	assert.Equal(t, uint16(2), count)

	// Queued output: the two channel joins, then the presence broadcast
	// echoed back to its own sender.
	queued, err := f.registry.Dequeue(ctx, result.Token)
	require.NoError(t, err)
	qframes := parseFrames(t, queued)
	require.Equal(t, []packet.ID{
		packet.IDChannelJoinSuccess,
		packet.IDChannelJoinSuccess,
		packet.IDUserPresence,
	}, frameIDs(qframes))
	assert.Equal(t, "#osu", readText(t, qframes[0].payload))
	assert.Equal(t, "#announce", readText(t, qframes[1].payload))

	assert.Equal(t, []testutil.IPLog{{UserID: 1000, IP: "203.0.113.7"}}, f.users.IPLogs)
	assert.Equal(t, []string{"203.0.113.7"}, f.geo.lookups)

	token, err := f.registry.FetchToken(ctx, result.Token)
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, model.CountryID("US"), token.Country)
	assert.InDelta(t, 40.73, token.Latitude, 1e-9)
	assert.InDelta(t, -74.01, token.Longitude, 1e-9)
}

func TestLoginUnknownUser(t *testing.T) {
	f := newLoginFixture(t, Config{})

	result := f.login(t, loginBody("nadia", "whatever", currentVersion()))

	assertRejected(t, result, invalidCredentialsText)
	all, err := f.registry.FetchAllTokens(context.Background())
	require.NoError(t, err)
	require.Len(t, all, 1, "only the bot session should remain")
	assert.Equal(t, session.BotUserID, all[0].UserID)
}

func TestLoginWrongPassword(t *testing.T) {
	f := newLoginFixture(t, Config{})

	result := f.login(t, loginBody("alice", "not-her-md5", currentVersion()))

	assertRejected(t, result, invalidCredentialsText)
	tokens, err := f.registry.FetchUserTokens(context.Background(), 1000)
	require.NoError(t, err)
	assert.Empty(t, tokens)
}

func TestLoginBotAccountRejected(t *testing.T) {
	f := newLoginFixture(t, Config{})

	result := f.login(t, loginBody("Aika", "anything", currentVersion()))

	assertRejected(t, result, genericFailureText)
}

func TestLoginBanned(t *testing.T) {
	f := newLoginFixture(t, Config{})
	f.users.Put(&model.User{ID: 1003, Username: "mallory", PasswordBcrypt: "m-md5"})

	result := f.login(t, loginBody("mallory", "m-md5", currentVersion()))

	assertRejected(t, result, bannedText)
}

func TestLoginLocked(t *testing.T) {
	f := newLoginFixture(t, Config{})
	f.users.Put(&model.User{
		ID:             1003,
		Username:       "mallory",
		PasswordBcrypt: "m-md5",
		Privileges:     model.UserPublic,
	})

	result := f.login(t, loginBody("mallory", "m-md5", currentVersion()))

	assertRejected(t, result, lockedText)
}

func TestLoginPendingVerificationBypassesStateChecks(t *testing.T) {
	f := newLoginFixture(t, Config{})
	f.users.Put(&model.User{
		ID:             1003,
		Username:       "newbie",
		PasswordBcrypt: "n-md5",
		Privileges:     model.UserPendingVerification,
	})

	result := f.login(t, loginBody("newbie", "n-md5", currentVersion()))

	require.NotEqual(t, RejectedToken, result.Token)

	// Restricted on arrival: the bot whispers the restriction notice
	// and nothing is announced to the main stream.
	queued, err := f.registry.Dequeue(context.Background(), result.Token)
	require.NoError(t, err)
	qframes := parseFrames(t, queued)
	require.NotEmpty(t, qframes)
	require.Equal(t, packet.IDSendMessage, qframes[0].id)
	sender, message, _, senderID := readChatMessage(t, qframes[0].payload)
	assert.Equal(t, "Aika", sender)
	assert.Equal(t, session.RestrictedMsg, message)
	assert.Equal(t, int32(session.BotUserID), senderID)

	assert.Zero(t, f.tokens.QueueLen(f.botTokenID), "no presence broadcast for restricted logins")
}

func TestLoginMalformedVersionRejected(t *testing.T) {
	f := newLoginFixture(t, Config{})

	result := f.login(t, loginBody("alice", "alice-md5", "osu!stable"))

	assertRejected(t, result, genericFailureText)
}

func TestLoginOutdatedClientRejected(t *testing.T) {
	f := newLoginFixture(t, Config{})

	result := f.login(t, loginBody("alice", "alice-md5", "b20200101"))

	assertRejected(t, result, outdatedClientText)
}

func TestLoginDuplicateSessionRejected(t *testing.T) {
	f := newLoginFixture(t, Config{})

	first := f.login(t, loginBody("alice", "alice-md5", currentVersion()))
	require.NotEqual(t, RejectedToken, first.Token)

	second := f.login(t, loginBody("alice", "alice-md5", currentVersion()))
	assertRejected(t, second, alreadyLoggedInText)

	remaining, err := f.registry.FetchUserTokens(context.Background(), 1000)
	require.NoError(t, err)
	require.Len(t, remaining, 1, "the first session must survive")
	assert.Equal(t, first.Token, remaining[0].TokenID)
}

func TestLoginTournamentClientMaySitAlongside(t *testing.T) {
	f := newLoginFixture(t, Config{})

	first := f.login(t, loginBody("alice", "alice-md5", currentVersion()))
	require.NotEqual(t, RejectedToken, first.Token)

	second := f.login(t, loginBody("alice", "alice-md5", currentVersion()+"tourney"))
	require.NotEqual(t, RejectedToken, second.Token)

	tokens, err := f.registry.FetchUserTokens(context.Background(), 1000)
	require.NoError(t, err)
	assert.Len(t, tokens, 2)
}

func TestLoginFrozenGetsWarning(t *testing.T) {
	f := newLoginFixture(t, Config{})
	reason := "multiaccounting"
	f.users.Put(&model.User{
		ID:             1000,
		Username:       "alice",
		PasswordBcrypt: "alice-md5",
		Privileges:     model.UserPublic | model.UserNormal,
		Frozen:         time.Now().Unix() + 86_400*3 + 60,
		FreezeReason:   &reason,
	})

	result := f.login(t, loginBody("alice", "alice-md5", currentVersion()))

	require.NotEqual(t, RejectedToken, result.Token)

	frames := parseFrames(t, result.Body)
	require.Equal(t, packet.IDSendMessage, frames[0].id, "the warning leads the response")
	sender, message, recipient, senderID := readChatMessage(t, frames[0].payload)
	assert.Equal(t, "Aika", sender)
	assert.Equal(t, "alice", recipient)
	assert.Equal(t, int32(session.BotUserID), senderID)
	assert.Contains(t, message, "frozen by an administrator as a result of:\n\nmultiaccounting\n")
	assert.Contains(t, message, "Time until account restriction: 3 days, 0:0")
	assert.Equal(t, packet.IDProtocolVersion, frames[1].id)

	assert.Empty(t, f.accounts.timersArmed, "a running timer must not be re-armed")
	assert.Empty(t, f.accounts.restricted)
}

func TestLoginFreezeTimerArmsOnFirstNotice(t *testing.T) {
	f := newLoginFixture(t, Config{})
	f.accounts.beginFreezeTimerFunc = func(ctx context.Context, userID int) (int64, error) {
		return time.Now().Unix() + 86_400*7 + 60, nil
	}
	f.users.Put(&model.User{
		ID:             1000,
		Username:       "alice",
		PasswordBcrypt: "alice-md5",
		Privileges:     model.UserPublic | model.UserNormal,
		Frozen:         1,
	})

	result := f.login(t, loginBody("alice", "alice-md5", currentVersion()))

	require.NotEqual(t, RejectedToken, result.Token)
	assert.Equal(t, []int{1000}, f.accounts.timersArmed)

	frames := parseFrames(t, result.Body)
	require.Equal(t, packet.IDSendMessage, frames[0].id)
	_, message, _, _ := readChatMessage(t, frames[0].payload)
	assert.Contains(t, message, "frozen by an administrator\n", "no reason text without a stored reason")
	assert.NotContains(t, message, "as a result of")
	assert.Contains(t, message, "Time until account restriction: 7 days, 0:0")
}

func TestLoginFreezeDeadlinePassedAutoRestricts(t *testing.T) {
	f := newLoginFixture(t, Config{})
	f.users.Put(&model.User{
		ID:             1000,
		Username:       "alice",
		PasswordBcrypt: "alice-md5",
		Privileges:     model.UserPublic | model.UserNormal,
		Frozen:         time.Now().Unix() - 60,
	})

	result := f.login(t, loginBody("alice", "alice-md5", currentVersion()))

	require.NotEqual(t, RejectedToken, result.Token)
	assert.Equal(t, []int{1000}, f.accounts.restricted)
	assert.Equal(t, []int{1000}, f.accounts.unfrozen)
	assert.Equal(t,
		[]string{"has been automatically restricted due to a pending freeze."},
		f.accounts.rapTexts)
	assert.Equal(t,
		[]string{"[alice](https://akatsuki.pw/u/1000) has been automatically restricted due to a pending freeze."},
		f.accounts.anticheat)

	frames := parseFrames(t, result.Body)
	require.Equal(t, packet.IDNotification, frames[0].id)
	assert.Equal(t, autoRestrictedText, readText(t, frames[0].payload))
	assert.Equal(t, packet.IDProtocolVersion, frames[1].id)
	assert.Equal(t, int32(1), readInt(t, frames[4].payload), "wire privileges drop the supporter bit once restricted")

	assert.Zero(t, f.tokens.QueueLen(f.botTokenID), "restricted logins are not announced")
}

func TestLoginDonorExpired(t *testing.T) {
	f := newLoginFixture(t, Config{})
	f.users.Put(&model.User{
		ID:             1000,
		Username:       "alice",
		PasswordBcrypt: "alice-md5",
		Privileges:     model.UserPublic | model.UserNormal | model.UserDonor | model.UserPremium,
		DonorExpire:    time.Now().Unix() - 100,
	})

	result := f.login(t, loginBody("alice", "alice-md5", currentVersion()))

	require.NotEqual(t, RejectedToken, result.Token)
	assert.Equal(t, []int{1000}, f.accounts.revoked)

	frames := parseFrames(t, result.Body)
	require.Equal(t, packet.IDNotification, frames[0].id)
	assert.Equal(t, fmt.Sprintf(donorExpiredFormat, "premium"), readText(t, frames[0].payload))

	// With the tag gone the country comes from the IP again.
	assert.Equal(t, []string{"203.0.113.7"}, f.geo.lookups)
}

func TestLoginDonorExpiringSoonWarns(t *testing.T) {
	ctx := context.Background()
	f := newLoginFixture(t, Config{})
	f.users.Countries[1000] = "IT"
	f.users.Put(&model.User{
		ID:             1000,
		Username:       "alice",
		PasswordBcrypt: "alice-md5",
		Privileges:     model.UserPublic | model.UserNormal | model.UserDonor,
		DonorExpire:    time.Now().Unix() + 3662,
	})

	result := f.login(t, loginBody("alice", "alice-md5", currentVersion()))

	require.NotEqual(t, RejectedToken, result.Token)
	assert.Empty(t, f.accounts.revoked)

	frames := parseFrames(t, result.Body)
	require.Equal(t, packet.IDNotification, frames[0].id)
	text := readText(t, frames[0].payload)
	assert.Contains(t, text, "Your supporter tag will expire in 01:01:0",
		"short countdowns are zero-padded")

	// Active donors keep their website country and hide coordinates.
	assert.Empty(t, f.geo.lookups)
	token, err := f.registry.FetchToken(ctx, result.Token)
	require.NoError(t, err)
	require.NotNil(t, token)
	assert.Equal(t, model.CountryID("IT"), token.Country)
	assert.Zero(t, token.Latitude)
	assert.Zero(t, token.Longitude)
}

func TestLoginNotificationShown(t *testing.T) {
	f := newLoginFixture(t, Config{LoginNotification: "Welcome to Akatsuki!"})

	result := f.login(t, loginBody("alice", "alice-md5", currentVersion()))

	require.NotEqual(t, RejectedToken, result.Token)
	frames := parseFrames(t, result.Body)
	require.Equal(t, packet.IDNotification, frames[0].id)
	assert.Equal(t, "Welcome to Akatsuki!", readText(t, frames[0].payload))
	assert.Equal(t, packet.IDProtocolVersion, frames[1].id)
}

func TestLoginMaintenanceLocksOutPlayers(t *testing.T) {
	f := newLoginFixture(t, Config{Maintenance: true})

	result := f.login(t, loginBody("alice", "alice-md5", currentVersion()))

	assert.Equal(t, RejectedToken, result.Token)
	frames := parseFrames(t, result.Body)
	require.Len(t, frames, 2)
	assert.Equal(t, packet.IDAccountID, frames[0].id)
	assert.Equal(t, int32(-1), readInt(t, frames[0].payload))
	assert.Equal(t, maintenanceText, readText(t, frames[1].payload))

	tokens, err := f.registry.FetchUserTokens(context.Background(), 1000)
	require.NoError(t, err)
	assert.Empty(t, tokens, "the provisional session must be torn down")
}

func TestLoginMaintenanceAdmitsStaff(t *testing.T) {
	f := newLoginFixture(t, Config{Maintenance: true})
	f.users.Put(&model.User{
		ID:             1000,
		Username:       "alice",
		PasswordBcrypt: "alice-md5",
		Privileges:     model.UserPublic | model.UserNormal | model.AdminChatMod,
	})

	result := f.login(t, loginBody("alice", "alice-md5", currentVersion()))

	require.NotEqual(t, RejectedToken, result.Token)
	frames := parseFrames(t, result.Body)
	require.Equal(t, packet.IDNotification, frames[0].id)
	assert.Equal(t, maintenanceStaffText, readText(t, frames[0].payload))
	assert.Equal(t, int32(7), readInt(t, frames[4].payload), "staff carry the moderator wire bit")

	tokens, err := f.registry.FetchUserTokens(context.Background(), 1000)
	require.NoError(t, err)
	assert.Len(t, tokens, 1)
}

func TestLoginPresenceListsOthers(t *testing.T) {
	f := newLoginFixture(t, Config{})
	f.users.Put(&model.User{
		ID:             1001,
		Username:       "bob",
		PasswordBcrypt: "bob-md5",
		Privileges:     model.UserPublic | model.UserNormal,
	})
	f.users.Put(&model.User{
		ID:             1002,
		Username:       "rick",
		PasswordBcrypt: "rick-md5",
		Privileges:     model.UserNormal, // restricted
	})

	require.NotEqual(t, RejectedToken, f.login(t, loginBody("bob", "bob-md5", currentVersion())).Token)
	require.NotEqual(t, RejectedToken, f.login(t, loginBody("rick", "rick-md5", currentVersion())).Token)

	result := f.login(t, loginBody("alice", "alice-md5", currentVersion()))
	require.NotEqual(t, RejectedToken, result.Token)

	var presentIDs []int32
	for _, fr := range parseFrames(t, result.Body) {
		if fr.id == packet.IDUserPresence {
			presentIDs = append(presentIDs, readInt(t, fr.payload))
		}
	}
	assert.ElementsMatch(t, []int32{1000, session.BotUserID, 1001}, presentIDs,
		"self once, visible others, restricted sessions hidden")
}
