package serverpackets

import (
	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

// SendMessage carries a chat message to the client.
//
// Payload:
//   - sender    string
//   - message   string
//   - recipient string  channel name or username for DMs
//   - senderID  int32
func SendMessage(sender, message, recipient string, senderID int32) []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteString(sender)
	w.WriteString(message)
	w.WriteString(recipient)
	w.WriteInt(senderID)
	return w.Frame(packet.IDSendMessage)
}
