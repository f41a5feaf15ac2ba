// Package netconfig defines lightweight types shared between client and server
// for network serialization. It must have zero dependencies on the server
// simulation so observer binaries stay small.
package netconfig

// ItemState is the carry state of an item as seen by observers.
type ItemState int

const (
	ItemFree          ItemState = iota // Free rigid body
	ItemPartiallyHeld                  // Two-handed item with one slot filled
	ItemHeld                           // Driven by the carry constraint
	ItemBroken                         // Value hit the floor; terminal until reset
)

var itemStateNames = map[ItemState]string{
	ItemFree:          "free",
	ItemPartiallyHeld: "partially_held",
	ItemHeld:          "held",
	ItemBroken:        "broken",
}

func (s ItemState) String() string {
	if name, ok := itemStateNames[s]; ok {
		return name
	}
	return "unknown"
}

// Slot identifies a holder slot on an item.
type Slot int

const (
	SlotNone Slot = iota
	SlotSingle
	SlotFront
	SlotBack
)

func (s Slot) String() string {
	switch s {
	case SlotSingle:
		return "single"
	case SlotFront:
		return "front"
	case SlotBack:
		return "back"
	}
	return "none"
}

// HolderID identifies a holder for the lifetime of a session. Zero means none.
type HolderID uint32

// ItemID identifies an item for the lifetime of a level (stable across resets).
type ItemID uint32

// ReleaseKind distinguishes how an item stopped being carried.
type ReleaseKind int

const (
	ReleasePlaced ReleaseKind = iota // Holder let go normally
	ReleaseThrown                    // Holder threw it
	ReleaseForced                    // Authority detached it
)

func (k ReleaseKind) String() string {
	switch k {
	case ReleaseThrown:
		return "thrown"
	case ReleaseForced:
		return "forced"
	}
	return "placed"
}
