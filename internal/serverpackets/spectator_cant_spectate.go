package serverpackets

import (
	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

// SpectatorCantSpectate tells the host a spectator lacks the beatmap.
func SpectatorCantSpectate(userID int32) []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteInt(userID)
	return w.Frame(packet.IDSpectatorCantSpectate)
}
