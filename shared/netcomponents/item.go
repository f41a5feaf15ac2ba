package netcomponents

import (
	"github.com/automoto/haulers-mp/shared/netconfig"
	"github.com/yohamta/donburi"
)

type NetItemData struct {
	ItemID      netconfig.ItemID
	TypeName    string
	Value       float64
	BaseValue   float64
	HolderCount int
	State       netconfig.ItemState
}

var NetItem = donburi.NewComponentType[NetItemData]()
