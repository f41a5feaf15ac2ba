package messages

import "github.com/automoto/haulers-mp/shared/netconfig"

// Requests travel client -> server. The server validates each one against
// its own state; a rejected request simply has no effect.

// HolderPoseUpdate is sent by a client every frame with its avatar pose.
// Updates older than the last applied Sequence are dropped.
type HolderPoseUpdate struct {
	Sequence uint32
	X, Y, Z  float64
	Yaw      float64 // radians around +Y, 0 faces +Z
}

// GrabRequest asks the server to put the sender on an item.
type GrabRequest struct {
	ItemID netconfig.ItemID
}

// ReleaseRequest asks the server to take the sender off an item.
type ReleaseRequest struct {
	ItemID           netconfig.ItemID
	VelX, VelY, VelZ float64
}

// ThrowRequest asks the server to throw an item the sender is holding.
type ThrowRequest struct {
	ItemID           netconfig.ItemID
	VelX, VelY, VelZ float64
}

// ResetRequest asks the server to reset the level. Only the host seat may.
type ResetRequest struct{}
