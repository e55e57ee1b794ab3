package serverpackets

import (
	"github.com/osuAkatsuki/bancho-core/internal/model"
	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

// UserPresence announces a session to other clients.
//
// Payload:
//   - accountID   int32
//   - username    string
//   - utcOffset   uint8   offset + 24
//   - countryCode uint8
//   - infoByte    uint8   wire privileges | mode << 5
//   - latitude    float32
//   - longitude   float32
//   - globalRank  int32
//
// Wire privileges are derived from the token's stored privilege bitmask.
func UserPresence(t *model.Token) []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteInt(int32(t.UserID))
	w.WriteString(t.Username)
	w.WriteByte(byte(t.UTCOffset + 24))
	w.WriteByte(byte(t.Country))
	w.WriteByte(byte(t.Privileges.Bancho()) | byte(t.Mode)<<5)
	w.WriteFloat(float32(t.Latitude))
	w.WriteFloat(float32(t.Longitude))
	w.WriteInt(int32(t.GlobalRank))
	return w.Frame(packet.IDUserPresence)
}
