package messages

import "github.com/automoto/haulers-mp/shared/netconfig"

// ItemSummaryEvent is broadcast whenever an item's value or holder count
// changes.
type ItemSummaryEvent struct {
	ItemID      netconfig.ItemID
	Value       float64
	HolderCount int
	State       netconfig.ItemState
}

// ItemGrabbedEvent is broadcast when a holder takes a slot on an item
type ItemGrabbedEvent struct {
	ItemID   netconfig.ItemID
	HolderID netconfig.HolderID
	Slot     netconfig.Slot
}

// ItemReleasedEvent is broadcast when an item stops being carried. Releasing
// one slot of a two-handed item while the other stays filled does not send it.
type ItemReleasedEvent struct {
	ItemID           netconfig.ItemID
	Kind             netconfig.ReleaseKind
	VelX, VelY, VelZ float64
}

// ItemDamagedEvent is broadcast after a collision took value off an item
type ItemDamagedEvent struct {
	ItemID        netconfig.ItemID
	Damage        float64
	Value         float64
	ImpactSpeed   float64
	PointX        float64
	PointY        float64
	PointZ        float64
	WhileHeld     bool
	AfterThrowHit bool
}

// ItemBrokenEvent is broadcast once when an item's value reaches its floor.
// It always follows the ItemDamagedEvent that broke the item.
type ItemBrokenEvent struct {
	ItemID netconfig.ItemID
}

// SessionResetEvent is broadcast after the level was reset
type SessionResetEvent struct {
	Resets int
}
