package serverpackets

import (
	"github.com/osuAkatsuki/bancho-core/internal/model"
	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

// UserStats reports a session's current action and cached gameplay stats.
//
// Payload:
//   - accountID    int32
//   - action       uint8
//   - infoText     string
//   - mapMD5       string
//   - mods         int32
//   - mode         uint8
//   - mapID        int32
//   - rankedScore  int64
//   - accuracy     float32  stored percentage divided by 100
//   - playCount    int32
//   - totalScore   int64
//   - globalRank   int32
//   - pp           int16
func UserStats(t *model.Token) []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteInt(int32(t.UserID))
	w.WriteByte(byte(t.ActionID))
	w.WriteString(t.ActionText)
	w.WriteString(t.ActionMD5)
	w.WriteInt(int32(t.ActionMods))
	w.WriteByte(byte(t.Mode))
	w.WriteInt(int32(t.ActionBeatmapID))
	w.WriteLong(t.RankedScore)
	w.WriteFloat(float32(t.Accuracy / 100.0))
	w.WriteInt(int32(t.Playcount))
	w.WriteLong(t.TotalScore)
	w.WriteInt(int32(t.GlobalRank))
	w.WriteShort(int16(t.PP))
	return w.Frame(packet.IDUserStats)
}
