package model

// Privileges is the persistent account permission bitmask.
type Privileges int

const (
	UserPublic Privileges = 1 << iota
	UserNormal
	UserDonor
	AdminAccessRAP
	AdminManageUsers
	AdminBanUsers
	AdminSilenceUsers
	AdminWipeUsers
	AdminManageBeatmaps
	AdminManageServers
	AdminManageSettings
	AdminManageBetaKeys
	AdminManageReports
	AdminManageDocs
	AdminManageBadges
	AdminViewRAPLogs
	AdminManagePrivileges
	AdminSendAlerts
	AdminChatMod
	AdminKickUsers
	UserPendingVerification
	UserTournamentStaff
	AdminCaker
	UserPremium
)

// Restricted reports whether the account is in restricted mode.
func (p Privileges) Restricted() bool {
	return p&UserPublic == 0
}

// Staff reports whether the account holds chat moderation powers.
func (p Privileges) Staff() bool {
	return p&AdminChatMod != 0
}

// TournamentStaff reports whether the account is tournament staff.
func (p Privileges) TournamentStaff() bool {
	return p&UserTournamentStaff != 0
}

// PendingVerification reports whether the account has not yet completed
// its first login verification.
func (p Privileges) PendingVerification() bool {
	return p&UserPendingVerification != 0
}

// Bancho reduces the account privileges to the wire form sent to clients:
// bit 0 is always set, bit 2 while not restricted, bit 1 for staff and
// bit 5 for tournament staff.
func (p Privileges) Bancho() int32 {
	out := int32(1)
	if !p.Restricted() {
		out |= 4
	}
	if p.Staff() {
		out |= 2
	}
	if p.TournamentStaff() {
		out |= 32
	}
	return out
}
