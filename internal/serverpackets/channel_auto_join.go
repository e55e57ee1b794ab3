package serverpackets

import (
	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

// ChannelAutoJoin advertises a channel the client should join on its own.
// Same payload as ChannelInfo.
func ChannelAutoJoin(channel, topic string, userCount uint16) []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteString(channel)
	w.WriteString(topic)
	w.WriteUint16(userCount)
	return w.Frame(packet.IDChannelAutoJoin)
}
