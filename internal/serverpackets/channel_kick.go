package serverpackets

import (
	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

// ChannelKick forces the client out of a channel.
func ChannelKick(channel string) []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteString(channel)
	return w.Frame(packet.IDChannelKick)
}
