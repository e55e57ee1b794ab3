package serverpackets

import (
	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

// SpectatorJoined tells the host a user started spectating them.
func SpectatorJoined(userID int32) []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteInt(userID)
	return w.Frame(packet.IDSpectatorJoined)
}
