package serverpackets

import (
	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

// FriendsList sends the client's friend user ids.
//
// Payload:
//   - count   uint16
//   - friends uint32 x count
func FriendsList(friends []int) []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteUint16(uint16(len(friends)))
	for _, friend := range friends {
		w.WriteUint32(uint32(friend))
	}
	return w.Frame(packet.IDFriendsList)
}
