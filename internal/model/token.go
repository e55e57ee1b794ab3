package model

// Token is a live session. It exists from login until logout or eviction
// and is addressed on the wire by its opaque TokenID.
type Token struct {
	TokenID           string
	UserID            int
	Username          string
	Privileges        Privileges
	Whitelist         int
	Kicked            bool
	LoginTime         int64
	PingTime          int64
	UTCOffset         int
	Tournament        bool
	BlockNonFriendsDM bool
	SpectatingTokenID *string
	SpectatingUserID  *int
	Latitude          float64
	Longitude         float64
	IP                string
	Country           int
	AwayMessage       *string
	MatchID           *int
	LastNpBeatmapID   *int
	LastNpMods        *int
	LastNpAccuracy    *float64
	SilenceEndTime    int64
	ProtocolVersion   int
	SpamRate          int
	ActionID          Action
	ActionText        string
	ActionMD5         string
	ActionBeatmapID   int
	ActionMods        int
	Mode              Mode
	Relax             bool
	Autopilot         bool
	RankedScore       int64
	Accuracy          float64
	Playcount         int
	TotalScore        int64
	GlobalRank        int
	PP                int
}

// RelaxInt maps the relax/autopilot flags onto the stats table selector:
// 0 vanilla, 1 relax, 2 autopilot.
func (t *Token) RelaxInt() int {
	switch {
	case t.Relax:
		return 1
	case t.Autopilot:
		return 2
	default:
		return 0
	}
}

// TokenFilter narrows token lookups. Nil fields match everything.
type TokenFilter struct {
	TokenID  *string
	UserID   *int
	Username *string
}

// TokenUpdate names the token columns session operations mutate.
// Nil fields are left untouched.
type TokenUpdate struct {
	Privileges      *Privileges
	PingTime        *int64
	UTCOffset       *int
	Latitude        *float64
	Longitude       *float64
	Country         *int
	SilenceEndTime  *int64
	ProtocolVersion *int
	SpamRate        *int
	ActionID        *Action
	ActionText      *string
	ActionMD5       *string
	ActionBeatmapID *int
	ActionMods      *int
	Mode            *Mode
	Relax           *bool
	Autopilot       *bool
	RankedScore     *int64
	Accuracy        *float64
	Playcount       *int
	TotalScore      *int64
	GlobalRank      *int
	PP              *int
	Kicked          *bool
}
