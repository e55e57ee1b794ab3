package serverpackets

import (
	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

// FellowSpectatorLeft tells a spectator another spectator stopped watching.
func FellowSpectatorLeft(userID int32) []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteInt(userID)
	return w.Frame(packet.IDFellowSpectatorLeft)
}
