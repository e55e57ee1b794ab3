package serverpackets

import (
	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

// ChannelInfoEnd marks the end of the channel listing. Empty payload.
func ChannelInfoEnd() []byte {
	return packet.Frame(packet.IDChannelInfoEnd, nil)
}
