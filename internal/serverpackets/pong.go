package serverpackets

import (
	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

// Pong answers a client ping. Empty payload.
func Pong() []byte {
	return packet.Frame(packet.IDPong, nil)
}
