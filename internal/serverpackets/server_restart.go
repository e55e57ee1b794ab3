package serverpackets

import (
	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

// ServerRestart tells the client to reconnect after the given delay.
func ServerRestart(ms int32) []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteInt(ms)
	return w.Frame(packet.IDRestart)
}
