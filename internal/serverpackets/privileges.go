package serverpackets

import (
	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

// Privileges sends the client its reduced wire privilege bits.
func Privileges(banchoPrivileges int32) []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteInt(banchoPrivileges)
	return w.Frame(packet.IDPrivileges)
}
