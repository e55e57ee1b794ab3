package serverpackets

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

func TestSendMessage(t *testing.T) {
	data := SendMessage("Aika", "hello there", "alice", 999)

	id, payload, _, err := packet.ParseFrame(data)
	require.NoError(t, err)
	assert.Equal(t, packet.IDSendMessage, id)

	r := packet.NewReader(payload)

	sender, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "Aika", sender)

	message, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "hello there", message)

	recipient, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "alice", recipient)

	senderID, err := r.ReadInt()
	require.NoError(t, err)
	assert.Equal(t, int32(999), senderID)

	assert.Equal(t, 0, r.Remaining())
}

func TestNotification(t *testing.T) {
	data := Notification("Welcome back!")

	id, payload, _, err := packet.ParseFrame(data)
	require.NoError(t, err)
	assert.Equal(t, packet.IDNotification, id)

	r := packet.NewReader(payload)
	message, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "Welcome back!", message)
}

func TestMainMenuIcon(t *testing.T) {
	data := MainMenuIcon("https://example.com/icon.png", "https://example.com")

	id, payload, _, err := packet.ParseFrame(data)
	require.NoError(t, err)
	assert.Equal(t, packet.IDMainMenuIcon, id)

	r := packet.NewReader(payload)
	combined, err := r.ReadString()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/icon.png|https://example.com", combined)
}

func TestUserLogout(t *testing.T) {
	data := UserLogout(1000)

	id, payload, _, err := packet.ParseFrame(data)
	require.NoError(t, err)
	assert.Equal(t, packet.IDUserLogout, id)

	r := packet.NewReader(payload)

	userID, err := r.ReadInt()
	require.NoError(t, err)
	assert.Equal(t, int32(1000), userID)

	state, err := r.ReadByte()
	require.NoError(t, err)
	assert.Equal(t, byte(0), state)
}

func TestPong(t *testing.T) {
	data := Pong()

	assert.Equal(t, []byte{0x08, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00}, data)
}
