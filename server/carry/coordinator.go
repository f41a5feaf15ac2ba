package carry

import (
	"github.com/automoto/haulers-mp/server/physics"
	"github.com/automoto/haulers-mp/shared/gamemath"
	"github.com/automoto/haulers-mp/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
)

// HolderPoses supplies the attach pose (hands) of each holder. The authority
// implements it from the freshest pose updates it has received.
type HolderPoses interface {
	HolderPose(holder netconfig.HolderID) (physics.Pose, bool)
}

// Hold is an item type's carry offset and rotation relative to the attach
// point.
type Hold struct {
	Offset   mgl64.Vec3
	Rotation mgl64.Quat
}

// Coordinator owns the holder slots of one item and turns holder poses into
// a constraint target.
type Coordinator interface {
	// CanGrab reports whether holder could take a slot right now.
	CanGrab(holder netconfig.HolderID) bool
	// Assign puts holder into the next free slot. SlotNone means refused.
	Assign(holder netconfig.HolderID) netconfig.Slot
	// Vacate clears holder's slot. False when holder had none.
	Vacate(holder netconfig.HolderID) bool
	Clear()
	Holders() []netconfig.HolderID
	SlotOf(holder netconfig.HolderID) netconfig.Slot
	// Occupied reports whether any slot is filled.
	Occupied() bool
	// FullyHeld reports whether the item should be driven by the constraint.
	FullyHeld() bool
	// Target computes the constraint target. False when a needed holder
	// pose is unknown.
	Target(poses HolderPoses, hold Hold) (physics.Pose, bool)
}

// Single lets one holder carry an item.
type Single struct {
	holder netconfig.HolderID
}

func (s *Single) CanGrab(holder netconfig.HolderID) bool {
	return holder != 0 && s.holder == 0
}

func (s *Single) Assign(holder netconfig.HolderID) netconfig.Slot {
	if !s.CanGrab(holder) {
		return netconfig.SlotNone
	}
	s.holder = holder
	return netconfig.SlotSingle
}

func (s *Single) Vacate(holder netconfig.HolderID) bool {
	if holder == 0 || s.holder != holder {
		return false
	}
	s.holder = 0
	return true
}

func (s *Single) Clear() { s.holder = 0 }

func (s *Single) Holders() []netconfig.HolderID {
	if s.holder == 0 {
		return nil
	}
	return []netconfig.HolderID{s.holder}
}

func (s *Single) SlotOf(holder netconfig.HolderID) netconfig.Slot {
	if holder != 0 && s.holder == holder {
		return netconfig.SlotSingle
	}
	return netconfig.SlotNone
}

func (s *Single) Occupied() bool  { return s.holder != 0 }
func (s *Single) FullyHeld() bool { return s.holder != 0 }

// Target is the holder's attach pose composed with the hold offset and
// rotation.
func (s *Single) Target(poses HolderPoses, hold Hold) (physics.Pose, bool) {
	if s.holder == 0 {
		return physics.Pose{}, false
	}
	p, ok := poses.HolderPose(s.holder)
	if !ok {
		return physics.Pose{}, false
	}
	pos, rot := gamemath.CalculateSingleHoldTarget(p.Position, p.Rotation, hold.Offset, hold.Rotation)
	return physics.NewPose(pos, rot), true
}
