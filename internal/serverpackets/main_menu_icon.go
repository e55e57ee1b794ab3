package serverpackets

import (
	"github.com/osuAkatsuki/bancho-core/internal/packet"
)

// MainMenuIcon sends the main menu banner as "icon_url|onclick_url".
func MainMenuIcon(iconURL, onClickURL string) []byte {
	w := packet.Get()
	defer w.Put()

	w.WriteString(iconURL + "|" + onClickURL)
	return w.Frame(packet.IDMainMenuIcon)
}
