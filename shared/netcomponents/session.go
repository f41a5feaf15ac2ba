package netcomponents

import "github.com/yohamta/donburi"

// NetSessionData is the per-session summary observers use for HUDs.
type NetSessionData struct {
	TotalValue       float64 // Sum of current item values
	HeldItems        int     // Items with at least one holder
	BrokenItems      int
	DeliverableValue float64 // Value resting in delivery zones, not held and not broken
	Resets           int
}

var NetSession = donburi.NewComponentType[NetSessionData]()
