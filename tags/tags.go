package tags

import "github.com/yohamta/donburi"

var (
	Item    = donburi.NewTag().SetName("Item")
	Holder  = donburi.NewTag().SetName("Holder")
	Session = donburi.NewTag().SetName("Session")
)

// Resolv tags for physics collision
const (
	ResolvSolid = "solid"
	ResolvMover = "mover"
	ResolvItem  = "item"

	// Reported for floor contacts; the floor has no resolv object
	Floor = "floor"
)
