// Package carry implements carriable items: their value and damage, the
// constraint that makes a held item follow its holders, and the single and
// two-handed holder coordination. Everything here runs on the authority's
// game loop goroutine and is not safe for concurrent use.
package carry

import (
	"log"

	"github.com/automoto/haulers-mp/config"
	"github.com/automoto/haulers-mp/server/physics"
	"github.com/automoto/haulers-mp/shared/gamemath"
	"github.com/automoto/haulers-mp/shared/messages"
	"github.com/automoto/haulers-mp/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
)

// Clock returns the authority's simulation time in seconds.
type Clock interface {
	Now() float64
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() float64

func (f ClockFunc) Now() float64 { return f() }

// Emitter receives the one-shot and summary events an item produces, in
// order. Events are values from shared/messages.
type Emitter interface {
	Emit(event any)
}

// EmitterFunc adapts a function to Emitter.
type EmitterFunc func(event any)

func (f EmitterFunc) Emit(event any) { f(event) }

type discard struct{}

func (discard) Emit(any) {}

// Env is what an item needs from the authority around it.
type Env struct {
	Rig    Rig
	Clock  Clock
	Events Emitter
	Carry  config.CarryConfig
	Damage config.DamageConfig
}

// Item is a carriable, damageable physics object.
type Item struct {
	ID   netconfig.ItemID
	Type config.ItemType

	body   *physics.Body
	ctrl   *Controller
	coord  Coordinator
	hold   Hold
	clock  Clock
	events Emitter
	damage config.DamageConfig

	value float64
	spawn physics.Pose

	released   bool
	releasedAt float64
	thrown     bool
	thrownAt   float64
}

// NewItem wraps body as an item of type typ. The body's current pose becomes
// the spawn pose used by Reset, and its collision callback is taken over.
func NewItem(id netconfig.ItemID, typ config.ItemType, body *physics.Body, env Env) *Item {
	it := &Item{
		ID:     id,
		Type:   typ,
		body:   body,
		ctrl:   NewController(body, env.Rig, env.Carry),
		clock:  env.Clock,
		events: env.Events,
		damage: env.Damage,
		value:  typ.BaseValue,
		spawn:  body.Pose(),
		hold: Hold{
			Offset:   mgl64.Vec3(typ.HoldOffset),
			Rotation: gamemath.EulerDegrees(typ.HoldRotation[0], typ.HoldRotation[1], typ.HoldRotation[2]),
		},
	}
	if typ.TwoHanded {
		it.coord = &Dual{}
	} else {
		it.coord = &Single{}
	}
	if it.events == nil {
		it.events = discard{}
	}
	if it.clock == nil {
		it.clock = ClockFunc(func() float64 { return 0 })
	}
	body.OnCollision = it.OnCollision
	return it
}

// Body returns the item's rigid body.
func (it *Item) Body() *physics.Body { return it.body }

// Controller returns the item's carry constraint.
func (it *Item) Controller() *Controller { return it.ctrl }

// Coordinator returns the item's holder slots.
func (it *Item) Coordinator() Coordinator { return it.coord }

// Value returns the current worth of the item.
func (it *Item) Value() float64 { return it.value }

// IsBroken reports whether the value reached the item's floor.
func (it *Item) IsBroken() bool { return it.value <= it.Type.MinValue }

// IsHeld reports whether the item is fully held and constraint-driven.
func (it *Item) IsHeld() bool { return it.coord.FullyHeld() }

// IsGrabbed reports whether any holder has a slot.
func (it *Item) IsGrabbed() bool { return it.coord.Occupied() }

// Holders returns the holders in slot order.
func (it *Item) Holders() []netconfig.HolderID { return it.coord.Holders() }

// State returns the observer-facing carry state.
func (it *Item) State() netconfig.ItemState {
	switch {
	case it.IsBroken():
		return netconfig.ItemBroken
	case it.coord.FullyHeld():
		return netconfig.ItemHeld
	case it.coord.Occupied():
		return netconfig.ItemPartiallyHeld
	}
	return netconfig.ItemFree
}

// TryGrab gives holder a slot on the item. It fails without side effects
// when the item is broken or has no slot for holder.
func (it *Item) TryGrab(holder netconfig.HolderID) bool {
	if it.IsBroken() || !it.coord.CanGrab(holder) {
		return false
	}
	slot := it.coord.Assign(holder)
	if slot == netconfig.SlotNone {
		return false
	}
	if !it.coord.FullyHeld() {
		// One of two hands: the item stays free and struggles from rest.
		it.body.SetVelocity(mgl64.Vec3{})
		it.body.SetAngularVelocity(mgl64.Vec3{})
	}
	it.thrown = false

	it.events.Emit(messages.ItemGrabbedEvent{ItemID: it.ID, HolderID: holder, Slot: slot})
	it.emitSummary()
	return true
}

// Release lets holder go. When another holder keeps its slot the item falls
// back to struggling from rest and no release is announced. Otherwise the
// item is dropped with velocity and the grace window opens.
func (it *Item) Release(holder netconfig.HolderID, velocity mgl64.Vec3) bool {
	if !it.coord.Vacate(holder) {
		return false
	}
	it.ctrl.Deactivate()
	if it.coord.Occupied() {
		it.body.SetVelocity(mgl64.Vec3{})
		it.body.SetAngularVelocity(mgl64.Vec3{})
		it.emitSummary()
		return true
	}
	it.drop(velocity, netconfig.ReleasePlaced)
	return true
}

// Throw tears the constraint down, releases every holder and launches the
// item with velocity. Hits inside the thrown window deal extra damage.
func (it *Item) Throw(velocity mgl64.Vec3) bool {
	it.ctrl.Deactivate()
	if !it.coord.Occupied() {
		return false
	}
	it.coord.Clear()
	it.body.SetVelocity(mgl64.Vec3{})
	it.body.AddImpulse(velocity.Mul(it.body.Mass()))

	now := it.clock.Now()
	it.released = true
	it.releasedAt = now
	it.thrown = true
	it.thrownAt = now

	it.events.Emit(messages.ItemReleasedEvent{
		ItemID: it.ID,
		Kind:   netconfig.ReleaseThrown,
		VelX:   velocity[0],
		VelY:   velocity[1],
		VelZ:   velocity[2],
	})
	it.emitSummary()
	return true
}

// ForceDrop unconditionally detaches the item. It always frees the
// constraint; with nobody holding the item there is nothing else to do and
// it returns false.
func (it *Item) ForceDrop(velocity mgl64.Vec3) bool {
	it.ctrl.Deactivate()
	if !it.coord.Occupied() {
		return false
	}
	it.coord.Clear()
	it.drop(velocity, netconfig.ReleaseForced)
	return true
}

func (it *Item) drop(velocity mgl64.Vec3, kind netconfig.ReleaseKind) {
	it.body.SetVelocity(velocity)
	it.released = true
	it.releasedAt = it.clock.Now()
	it.thrown = false

	it.events.Emit(messages.ItemReleasedEvent{
		ItemID: it.ID,
		Kind:   kind,
		VelX:   velocity[0],
		VelY:   velocity[1],
		VelZ:   velocity[2],
	})
	it.emitSummary()
}

// FixedStep drives the constraint for one physics step. Activation is
// retried every step until the holders' poses give a target.
func (it *Item) FixedStep(dt float64, poses HolderPoses) {
	if !it.coord.FullyHeld() {
		if it.ctrl.Active() {
			it.ctrl.Deactivate()
		}
		return
	}
	if target, ok := it.coord.Target(poses, it.hold); ok {
		it.ctrl.SetTarget(target)
	}
	if !it.ctrl.Active() && !it.ctrl.Activate() {
		return
	}
	it.ctrl.Step(dt)
}

// Reset restores the item to how the level spawned it.
func (it *Item) Reset() {
	it.coord.Clear()
	it.value = it.Type.BaseValue
	it.released = false
	it.thrown = false
	it.body.Teleport(it.spawn)
	it.body.SetVelocity(mgl64.Vec3{})
	it.body.SetAngularVelocity(mgl64.Vec3{})
	it.ctrl.Deactivate()
	it.emitSummary()
}

func (it *Item) emitSummary() {
	it.events.Emit(messages.ItemSummaryEvent{
		ItemID:      it.ID,
		Value:       it.value,
		HolderCount: len(it.coord.Holders()),
		State:       it.State(),
	})
}

func (it *Item) logf(format string, args ...any) {
	log.Printf("[carry] item %d (%s): "+format, append([]any{it.ID, it.Type.Name}, args...)...)
}
