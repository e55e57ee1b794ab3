package model

// User is an account row as stored in the users table. The login flow
// mutates privileges, frozen state and notes; everything else is read-only
// here and owned by the website.
type User struct {
	ID                  int
	Username            string
	UsernameSafe        string
	PasswordBcrypt      string
	Salt                string
	Email               string
	RegisterDatetime    int64
	AchievementsVersion int
	LatestActivity      int64
	SilenceEnd          int64
	SilenceReason       string
	PasswordVersion     int
	Privileges          Privileges
	DonorExpire         int64
	Frozen              int64
	Flags               int64
	Notes               *string
	AQN                 bool
	BanDatetime         int64
	SwitchNotifs        bool
	PreviousOverwrite   int64
	Whitelist           int
	ClanID              int
	ClanPrivileges      int
	UserpageAllowed     bool
	Converted           int
	FreezeReason        *string
}

// UserFilter narrows user lookups. Nil fields match everything.
type UserFilter struct {
	ID       *int
	Username *string
}

// UserUpdate names the user columns the core is allowed to mutate.
// Nil fields are left untouched.
type UserUpdate struct {
	Privileges   *Privileges
	Frozen       *int64
	FreezeReason *string
	Notes        *string
}
