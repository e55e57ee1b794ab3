package model

// Mode is an osu! game mode.
type Mode uint8

const (
	ModeStd Mode = iota
	ModeTaiko
	ModeCtb
	ModeMania
)

// String returns the short mode name used in stats columns and
// leaderboard keys.
func (m Mode) String() string {
	switch m {
	case ModeStd:
		return "std"
	case ModeTaiko:
		return "taiko"
	case ModeCtb:
		return "ctb"
	case ModeMania:
		return "mania"
	default:
		return "std"
	}
}
