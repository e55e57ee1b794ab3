package serverpackets

import (
	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

// UserLogout tells clients a user went offline.
//
// Payload:
//   - userID int32
//   - state  uint8  always 0
func UserLogout(userID int32) []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteInt(userID)
	w.WriteByte(0)
	return w.Frame(packet.IDUserLogout)
}
