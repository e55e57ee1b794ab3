// Package testutil provides in-memory implementations of the
// persistence interfaces for registry and login tests.
package testutil

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/osuAkatsuki/bancho-core/internal/model"
)

// MemTokenStore keeps tokens and their output queues in maps.
type MemTokenStore struct {
	mu     sync.Mutex
	tokens map[string]*model.Token
	queues map[string][][]byte
}

func NewMemTokenStore() *MemTokenStore {
	return &MemTokenStore{
		tokens: make(map[string]*model.Token),
		queues: make(map[string][][]byte),
	}
}

func tokenMatches(t *model.Token, f model.TokenFilter) bool {
	if f.TokenID != nil && t.TokenID != *f.TokenID {
		return false
	}
	if f.UserID != nil && t.UserID != *f.UserID {
		return false
	}
	if f.Username != nil && t.Username != *f.Username {
		return false
	}
	return true
}

func (s *MemTokenStore) FetchOne(ctx context.Context, filter model.TokenFilter) (*model.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.tokens {
		if tokenMatches(t, filter) {
			copied := *t
			return &copied, nil
		}
	}
	return nil, nil
}

func (s *MemTokenStore) FetchAll(ctx context.Context, filter model.TokenFilter) ([]*model.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ids []string
	for id, t := range s.tokens {
		if tokenMatches(t, filter) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	tokens := make([]*model.Token, 0, len(ids))
	for _, id := range ids {
		copied := *s.tokens[id]
		tokens = append(tokens, &copied)
	}
	return tokens, nil
}

func (s *MemTokenStore) CreateOne(ctx context.Context, token *model.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[token.TokenID]; ok {
		return fmt.Errorf("token %s already exists", token.TokenID)
	}
	copied := *token
	s.tokens[token.TokenID] = &copied
	return nil
}

func (s *MemTokenStore) PartialUpdate(ctx context.Context, tokenID string, update model.TokenUpdate) (*model.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.tokens[tokenID]
	if !ok {
		return nil, nil
	}
	if update.Privileges != nil {
		t.Privileges = *update.Privileges
	}
	if update.PingTime != nil {
		t.PingTime = *update.PingTime
	}
	if update.UTCOffset != nil {
		t.UTCOffset = *update.UTCOffset
	}
	if update.Latitude != nil {
		t.Latitude = *update.Latitude
	}
	if update.Longitude != nil {
		t.Longitude = *update.Longitude
	}
	if update.Country != nil {
		t.Country = *update.Country
	}
	if update.SilenceEndTime != nil {
		t.SilenceEndTime = *update.SilenceEndTime
	}
	if update.ProtocolVersion != nil {
		t.ProtocolVersion = *update.ProtocolVersion
	}
	if update.SpamRate != nil {
		t.SpamRate = *update.SpamRate
	}
	if update.ActionID != nil {
		t.ActionID = *update.ActionID
	}
	if update.ActionText != nil {
		t.ActionText = *update.ActionText
	}
	if update.ActionMD5 != nil {
		t.ActionMD5 = *update.ActionMD5
	}
	if update.ActionBeatmapID != nil {
		t.ActionBeatmapID = *update.ActionBeatmapID
	}
	if update.ActionMods != nil {
		t.ActionMods = *update.ActionMods
	}
	if update.Mode != nil {
		t.Mode = *update.Mode
	}
	if update.Relax != nil {
		t.Relax = *update.Relax
	}
	if update.Autopilot != nil {
		t.Autopilot = *update.Autopilot
	}
	if update.RankedScore != nil {
		t.RankedScore = *update.RankedScore
	}
	if update.Accuracy != nil {
		t.Accuracy = *update.Accuracy
	}
	if update.Playcount != nil {
		t.Playcount = *update.Playcount
	}
	if update.TotalScore != nil {
		t.TotalScore = *update.TotalScore
	}
	if update.GlobalRank != nil {
		t.GlobalRank = *update.GlobalRank
	}
	if update.PP != nil {
		t.PP = *update.PP
	}
	if update.Kicked != nil {
		t.Kicked = *update.Kicked
	}

	copied := *t
	return &copied, nil
}

func (s *MemTokenStore) DeleteOne(ctx context.Context, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, tokenID)
	delete(s.queues, tokenID)
	return nil
}

func (s *MemTokenStore) Enqueue(ctx context.Context, tokenID string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.tokens[tokenID]; !ok {
		return nil // dead tokens drop silently
	}
	copied := append([]byte(nil), data...)
	s.queues[tokenID] = append(s.queues[tokenID], copied)
	return nil
}

func (s *MemTokenStore) Dequeue(ctx context.Context, tokenID string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []byte
	for _, buf := range s.queues[tokenID] {
		out = append(out, buf...)
	}
	delete(s.queues, tokenID)
	return out, nil
}

// QueueLen reports how many blobs are waiting for a token.
func (s *MemTokenStore) QueueLen(tokenID string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.queues[tokenID])
}

// Mutate edits the stored token in place, standing in for column
// changes made by collaborators outside this module.
func (s *MemTokenStore) Mutate(tokenID string, fn func(*model.Token)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tokens[tokenID]; ok {
		fn(t)
	}
}

// MemStreamStore keeps streams and memberships in maps.
type MemStreamStore struct {
	mu      sync.Mutex
	streams map[string]struct{}
	members map[string]map[string]struct{}
}

func NewMemStreamStore() *MemStreamStore {
	return &MemStreamStore{
		streams: make(map[string]struct{}),
		members: make(map[string]map[string]struct{}),
	}
}

func (s *MemStreamStore) Exists(ctx context.Context, name string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.streams[name]
	return ok, nil
}

func (s *MemStreamStore) CreateOne(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.streams[name] = struct{}{}
	return nil
}

func (s *MemStreamStore) DeleteOne(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.streams, name)
	delete(s.members, name)
	return nil
}

func (s *MemStreamStore) FetchClients(ctx context.Context, name string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.members[name]), nil
}

func (s *MemStreamStore) AddClient(ctx context.Context, name, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.members[name] == nil {
		s.members[name] = make(map[string]struct{})
	}
	s.members[name][tokenID] = struct{}{}
	return nil
}

func (s *MemStreamStore) RemoveClient(ctx context.Context, name, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members[name], tokenID)
	return nil
}

// MemChannelStore keeps channels, memberships and the seed catalog.
type MemChannelStore struct {
	mu       sync.Mutex
	channels map[string]model.Channel
	members  map[string]map[string]struct{}
	Catalog  []model.BanchoChannel
}

func NewMemChannelStore() *MemChannelStore {
	return &MemChannelStore{
		channels: make(map[string]model.Channel),
		members:  make(map[string]map[string]struct{}),
	}
}

func (s *MemChannelStore) FetchOne(ctx context.Context, name string) (*model.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.channels[name]
	if !ok {
		return nil, nil
	}
	return &c, nil
}

func (s *MemChannelStore) FetchAll(ctx context.Context) ([]model.Channel, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var channels []model.Channel
	for _, name := range sortedKeys(s.channels) {
		channels = append(channels, s.channels[name])
	}
	return channels, nil
}

func (s *MemChannelStore) FetchCatalog(ctx context.Context) ([]model.BanchoChannel, error) {
	return s.Catalog, nil
}

func (s *MemChannelStore) CreateOne(ctx context.Context, channel model.Channel) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.channels[channel.Name]; ok {
		return nil // creating twice is a no-op
	}
	s.channels[channel.Name] = channel
	return nil
}

func (s *MemChannelStore) DeleteOne(ctx context.Context, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.channels, name)
	delete(s.members, name)
	return nil
}

func (s *MemChannelStore) FetchClients(ctx context.Context, name string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return sortedKeys(s.members[name]), nil
}

func (s *MemChannelStore) FetchClientChannels(ctx context.Context, tokenID string) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var names []string
	for name, members := range s.members {
		if _, ok := members[tokenID]; ok {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

func (s *MemChannelStore) AddClient(ctx context.Context, name, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.members[name] == nil {
		s.members[name] = make(map[string]struct{})
	}
	s.members[name][tokenID] = struct{}{}
	return nil
}

func (s *MemChannelStore) RemoveClient(ctx context.Context, name, tokenID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.members[name], tokenID)
	return nil
}

// IPLog is one recorded (user, ip) login.
type IPLog struct {
	UserID int
	IP     string
}

// MemUserStore keeps account rows and records the mutations tests want
// to observe.
type MemUserStore struct {
	mu    sync.Mutex
	users map[int]*model.User

	IPLogs             []IPLog
	BadgesRemoved      []int
	CustomBadgeCleared []int
	Countries          map[int]string
	Friends            map[int][]int
}

func NewMemUserStore(users ...*model.User) *MemUserStore {
	s := &MemUserStore{
		users:     make(map[int]*model.User),
		Countries: make(map[int]string),
		Friends:   make(map[int][]int),
	}
	for _, u := range users {
		s.Put(u)
	}
	return s
}

func (s *MemUserStore) Put(u *model.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	copied := *u
	s.users[u.ID] = &copied
}

func (s *MemUserStore) FetchOne(ctx context.Context, filter model.UserFilter) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if filter.ID != nil && u.ID != *filter.ID {
			continue
		}
		if filter.Username != nil && u.Username != *filter.Username {
			continue
		}
		copied := *u
		return &copied, nil
	}
	return nil, nil
}

func (s *MemUserStore) PartialUpdate(ctx context.Context, userID int, update model.UserUpdate) (*model.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, fmt.Errorf("user %d not found", userID)
	}
	if update.Privileges != nil {
		u.Privileges = *update.Privileges
	}
	if update.Frozen != nil {
		u.Frozen = *update.Frozen
	}
	if update.FreezeReason != nil {
		u.FreezeReason = update.FreezeReason
	}
	if update.Notes != nil {
		u.Notes = update.Notes
	}
	copied := *u
	return &copied, nil
}

func (s *MemUserStore) FetchFriends(ctx context.Context, userID int) ([]int, error) {
	return s.Friends[userID], nil
}

func (s *MemUserStore) LogIP(ctx context.Context, userID int, ip string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.IPLogs = append(s.IPLogs, IPLog{UserID: userID, IP: ip})
	return nil
}

func (s *MemUserStore) FetchCountry(ctx context.Context, userID int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Countries[userID], nil
}

func (s *MemUserStore) RemoveSupporterBadges(ctx context.Context, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.BadgesRemoved = append(s.BadgesRemoved, userID)
	return nil
}

func (s *MemUserStore) ClearCustomBadge(ctx context.Context, userID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.CustomBadgeCleared = append(s.CustomBadgeCleared, userID)
	return nil
}

// MemStatsStore returns the stats set with Put, or zeroes for everyone
// else (mirroring the always-present stats rows in the real store).
type MemStatsStore struct {
	mu    sync.Mutex
	stats map[string]*model.Stats
}

func NewMemStatsStore() *MemStatsStore {
	return &MemStatsStore{stats: make(map[string]*model.Stats)}
}

func statsKey(userID int, mode model.Mode, relaxInt int) string {
	return fmt.Sprintf("%d/%d/%d", userID, mode, relaxInt)
}

func (s *MemStatsStore) Put(userID int, mode model.Mode, relaxInt int, stats model.Stats) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.stats[statsKey(userID, mode, relaxInt)] = &stats
}

func (s *MemStatsStore) FetchOne(ctx context.Context, userID int, mode model.Mode, relaxInt int) (*model.Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if stats, ok := s.stats[statsKey(userID, mode, relaxInt)]; ok {
		copied := *stats
		return &copied, nil
	}
	return &model.Stats{}, nil
}

// MemRankSource returns ranks set with Put, 0 for everyone else.
type MemRankSource struct {
	mu    sync.Mutex
	ranks map[string]int
}

func NewMemRankSource() *MemRankSource {
	return &MemRankSource{ranks: make(map[string]int)}
}

func (s *MemRankSource) Put(userID int, mode model.Mode, relaxInt int, rank int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ranks[statsKey(userID, mode, relaxInt)] = rank
}

func (s *MemRankSource) GlobalRank(ctx context.Context, userID int, mode model.Mode, relaxInt int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ranks[statsKey(userID, mode, relaxInt)], nil
}

// NopLocker satisfies the login controller's locker without any
// cross-process coordination.
type NopLocker struct{}

func (NopLocker) WithLock(ctx context.Context, name string, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
