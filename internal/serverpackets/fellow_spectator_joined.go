package serverpackets

import (
	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

// FellowSpectatorJoined tells a spectator about another spectator of the
// same host.
func FellowSpectatorJoined(userID int32) []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteInt(userID)
	return w.Frame(packet.IDFellowSpectatorJoined)
}
