package serverpackets

import (
	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

// SilenceEnd tells the client how many seconds of silence remain.
func SilenceEnd(remainingSec int32) []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteInt(remainingSec)
	return w.Frame(packet.IDSilenceEnd)
}
