package carry

import (
	"github.com/automoto/haulers-mp/server/physics"
	"github.com/automoto/haulers-mp/shared/gamemath"
	"github.com/automoto/haulers-mp/shared/netconfig"
)

// Dual is the two-handed coordinator. The front slot fills before the back
// slot; the item is only constraint-driven with both filled.
type Dual struct {
	front netconfig.HolderID
	back  netconfig.HolderID
}

func (d *Dual) CanGrab(holder netconfig.HolderID) bool {
	if holder == 0 || holder == d.front || holder == d.back {
		return false
	}
	return d.front == 0 || d.back == 0
}

func (d *Dual) Assign(holder netconfig.HolderID) netconfig.Slot {
	if !d.CanGrab(holder) {
		return netconfig.SlotNone
	}
	if d.front == 0 {
		d.front = holder
		return netconfig.SlotFront
	}
	d.back = holder
	return netconfig.SlotBack
}

func (d *Dual) Vacate(holder netconfig.HolderID) bool {
	switch {
	case holder == 0:
		return false
	case d.front == holder:
		d.front = 0
	case d.back == holder:
		d.back = 0
	default:
		return false
	}
	return true
}

func (d *Dual) Clear() {
	d.front = 0
	d.back = 0
}

func (d *Dual) Holders() []netconfig.HolderID {
	var out []netconfig.HolderID
	if d.front != 0 {
		out = append(out, d.front)
	}
	if d.back != 0 {
		out = append(out, d.back)
	}
	return out
}

func (d *Dual) SlotOf(holder netconfig.HolderID) netconfig.Slot {
	switch {
	case holder == 0:
		return netconfig.SlotNone
	case d.front == holder:
		return netconfig.SlotFront
	case d.back == holder:
		return netconfig.SlotBack
	}
	return netconfig.SlotNone
}

func (d *Dual) Occupied() bool  { return d.front != 0 || d.back != 0 }
func (d *Dual) FullyHeld() bool { return d.front != 0 && d.back != 0 }

// Target centers the item between both holders, facing from back to front.
func (d *Dual) Target(poses HolderPoses, hold Hold) (physics.Pose, bool) {
	if !d.FullyHeld() {
		return physics.Pose{}, false
	}
	front, ok := poses.HolderPose(d.front)
	if !ok {
		return physics.Pose{}, false
	}
	back, ok := poses.HolderPose(d.back)
	if !ok {
		return physics.Pose{}, false
	}
	pos, rot := gamemath.CalculateDualHoldTarget(front.Position, back.Position, hold.Offset)
	return physics.NewPose(pos, rot), true
}
