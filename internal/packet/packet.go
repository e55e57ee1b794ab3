package packet

import (
	"encoding/binary"
	"fmt"
)

// ID identifies a server-to-client packet. The client dispatches on these
// values, so they are part of the wire protocol.
type ID uint16

// Server packet ids.
const (
	IDAccountID               ID = 5
	IDSendMessage             ID = 7
	IDPong                    ID = 8
	IDHandleIRCChangeUsername ID = 9
	IDHandleIRCQuit           ID = 10
	IDUserStats               ID = 11
	IDUserLogout              ID = 12
	IDSpectatorJoined         ID = 13
	IDSpectatorLeft           ID = 14
	IDSpectateFrames          ID = 15
	IDVersionUpdate           ID = 19
	IDSpectatorCantSpectate   ID = 22
	IDGetAttention            ID = 23
	IDNotification            ID = 24
	IDUpdateMatch             ID = 26
	IDNewMatch                ID = 27
	IDDisposeMatch            ID = 28
	IDToggleBlockNonFriendDMs ID = 34
	IDMatchJoinSuccess        ID = 36
	IDMatchJoinFail           ID = 37
	IDFellowSpectatorJoined   ID = 42
	IDFellowSpectatorLeft     ID = 43
	IDAllPlayersLoaded        ID = 45
	IDMatchStart              ID = 46
	IDMatchScoreUpdate        ID = 48
	IDMatchTransferHost       ID = 50
	IDMatchAllPlayersLoaded   ID = 53
	IDMatchPlayerFailed       ID = 57
	IDMatchComplete           ID = 58
	IDMatchSkip               ID = 61
	IDUnauthorized            ID = 62
	IDChannelJoinSuccess      ID = 64
	IDChannelInfo             ID = 65
	IDChannelKick             ID = 66
	IDChannelAutoJoin         ID = 67
	IDBeatmapInfoReply        ID = 69
	IDPrivileges              ID = 71
	IDFriendsList             ID = 72
	IDProtocolVersion         ID = 75
	IDMainMenuIcon            ID = 76
	IDMonitor                 ID = 80
	IDMatchPlayerSkipped      ID = 81
	IDUserPresence            ID = 83
	IDRestart                 ID = 86
	IDMatchInvite             ID = 88
	IDChannelInfoEnd          ID = 89
	IDMatchChangePassword     ID = 91
	IDSilenceEnd              ID = 92
	IDUserSilenced            ID = 94
	IDUserPresenceSingle      ID = 95
	IDUserPresenceBundle      ID = 96
	IDUserDMBlocked           ID = 100
	IDTargetIsSilenced        ID = 101
	IDVersionUpdateForced     ID = 102
	IDSwitchServer            ID = 103
	IDAccountRestricted       ID = 104
	IDRTX                     ID = 105
	IDMatchAbort              ID = 106
	IDSwitchTournamentServer  ID = 107
)

// HeaderSize is the fixed length of a frame header:
// packet id (2) + reserved byte (1) + payload length (4).
const HeaderSize = 7

// Frame wraps a payload into a wire frame: packet id (uint16 LE), one
// reserved zero byte, payload length (uint32 LE), then the payload bytes.
func Frame(id ID, payload []byte) []byte {
	out := make([]byte, HeaderSize+len(payload))
	binary.LittleEndian.PutUint16(out[0:2], uint16(id))
	binary.LittleEndian.PutUint32(out[3:7], uint32(len(payload)))
	copy(out[HeaderSize:], payload)
	return out
}

// ParseFrame splits one frame off the front of data. Returns the packet id,
// its payload and the unread remainder.
func ParseFrame(data []byte) (ID, []byte, []byte, error) {
	if len(data) < HeaderSize {
		return 0, nil, nil, fmt.Errorf("ParseFrame: not enough data (len=%d)", len(data))
	}
	id := ID(binary.LittleEndian.Uint16(data[0:2]))
	size := int(binary.LittleEndian.Uint32(data[3:7]))
	if len(data)-HeaderSize < size {
		return 0, nil, nil, fmt.Errorf("ParseFrame: truncated payload (have=%d, need=%d)", len(data)-HeaderSize, size)
	}
	return id, data[HeaderSize : HeaderSize+size], data[HeaderSize+size:], nil
}
