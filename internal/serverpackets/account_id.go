package serverpackets

import (
	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

// AccountID tells the client which account it authenticated as.
// Negative ids signal a failed login (-1 wrong credentials).
func AccountID(id int32) []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteInt(id)
	return w.Frame(packet.IDAccountID)
}
