package netcomponents

import (
	"github.com/automoto/haulers-mp/shared/netconfig"
	"github.com/yohamta/donburi"
)

type NetHolderData struct {
	HolderID netconfig.HolderID
	Name     string
	Carrying netconfig.ItemID // 0 when empty handed
}

var NetHolder = donburi.NewComponentType[NetHolderData]()
