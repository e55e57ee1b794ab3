package serverpackets

import (
	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

// ProtocolVersionNumber is the bancho protocol revision spoken here.
const ProtocolVersionNumber = 19

// ProtocolVersion tells the client which protocol revision to use.
func ProtocolVersion(version int32) []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteInt(version)
	return w.Frame(packet.IDProtocolVersion)
}
