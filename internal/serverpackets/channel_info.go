package serverpackets

import (
	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

// ChannelInfo advertises a joinable channel.
//
// Payload:
//   - channel   string
//   - topic     string
//   - userCount uint16
func ChannelInfo(channel, topic string, userCount uint16) []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteString(channel)
	w.WriteString(topic)
	w.WriteUint16(userCount)
	return w.Frame(packet.IDChannelInfo)
}
