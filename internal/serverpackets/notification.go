package serverpackets

import (
	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

// Notification pops a toast message on the client.
func Notification(message string) []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteString(message)
	return w.Frame(packet.IDNotification)
}
