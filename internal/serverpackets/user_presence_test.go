package serverpackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osuAkatsuki/bancho-core/internal/model"
	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

func TestUserPresence(t *testing.T) {
	tok := &model.Token{
		UserID:     1000,
		Username:   "alice",
		Privileges: model.UserPublic | model.UserNormal,
		UTCOffset:  -5,
		Country:    225,
		Mode:       model.ModeMania,
		Latitude:   40.7,
		Longitude:  -74.0,
		GlobalRank: 12,
	}

	data := UserPresence(tok)

	id, payload, rest, err := packet.ParseFrame(data)
	require.NoError(t, err)
	assert.Equal(t, packet.IDUserPresence, id)
	assert.Empty(t, rest)

	r := packet.NewReader(payload)

	accountID, err := r.ReadInt()
	require.NoError(t, err)
	assert.Equal(t, int32(1000), accountID)

	username, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "alice", username)

	// utc offset is shifted into unsigned range
	utcOffset, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(-5+24), utcOffset)

	country, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(225), country)

	// wire privileges 1|4 for a plain public user, mode in the top bits
	infoByte, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(5|3<<5), infoByte)

	lat, err := r.ReadFloat()
	require.NoError(t, err)
	assert.Equal(t, float32(40.7), lat)

	lon, err := r.ReadFloat()
	require.NoError(t, err)
	assert.Equal(t, float32(-74.0), lon)

	globalRank, err := r.ReadInt()
	require.NoError(t, err)
	assert.Equal(t, int32(12), globalRank)

	assert.Equal(t, 0, r.Remaining())
}

func TestUserPresence_RestrictedUser(t *testing.T) {
	tok := &model.Token{
		UserID:     1001,
		Username:   "bob",
		Privileges: model.UserNormal, // no UserPublic
		Mode:       model.ModeStd,
	}

	data := UserPresence(tok)

	_, payload, _, err := packet.ParseFrame(data)
	require.NoError(t, err)

	r := packet.NewReader(payload)
	_, _ = r.ReadInt()
	_, _ = r.ReadString()
	_, _ = r.ReadByte()
	_, _ = r.ReadByte()

	infoByte, err := r.ReadByte()
	require.NoError(t, err)
	// restricted users carry only the player bit
	assert.Equal(t, byte(1), infoByte)
}
