package serverpackets

import (
	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

// SpectatorLeft tells the host a spectator stopped watching.
func SpectatorLeft(userID int32) []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteInt(userID)
	return w.Frame(packet.IDSpectatorLeft)
}
