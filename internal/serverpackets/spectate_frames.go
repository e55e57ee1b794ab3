package serverpackets

import (
	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

// SpectateFrames relays raw replay frames from the host to spectators.
// The payload is passed through untouched.
func SpectateFrames(rawData []byte) []byte {
	return packet.Frame(packet.IDSpectateFrames, rawData)
}
