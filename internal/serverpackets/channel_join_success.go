package serverpackets

import (
	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

// ChannelJoinSuccess confirms a channel join. The name is the
// client-facing one, so instance channels send their alias here.
func ChannelJoinSuccess(channel string) []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteString(channel)
	return w.Frame(packet.IDChannelJoinSuccess)
}
