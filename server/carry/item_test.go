package carry

import (
	"math"
	"testing"

	"github.com/automoto/haulers-mp/config"
	"github.com/automoto/haulers-mp/server/physics"
	"github.com/automoto/haulers-mp/shared/messages"
	"github.com/automoto/haulers-mp/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
)

const stepDt = 1.0 / 60

type fakeClock struct{ now float64 }

func (c *fakeClock) Now() float64 { return c.now }

type recorder struct{ events []any }

func (r *recorder) Emit(e any) { r.events = append(r.events, e) }

func (r *recorder) reset() { r.events = nil }

func (r *recorder) names() []string {
	out := make([]string, 0, len(r.events))
	for _, e := range r.events {
		switch e.(type) {
		case messages.ItemGrabbedEvent:
			out = append(out, "grabbed")
		case messages.ItemReleasedEvent:
			out = append(out, "released")
		case messages.ItemDamagedEvent:
			out = append(out, "damaged")
		case messages.ItemBrokenEvent:
			out = append(out, "broken")
		case messages.ItemSummaryEvent:
			out = append(out, "summary")
		default:
			out = append(out, "other")
		}
	}
	return out
}

type poseTable map[netconfig.HolderID]physics.Pose

func (p poseTable) HolderPose(h netconfig.HolderID) (physics.Pose, bool) {
	pose, ok := p[h]
	return pose, ok
}

func testDamage() config.DamageConfig {
	return config.DamageConfig{
		DamagePerCollision: 10,
		CollisionThreshold: 2,
		FragileMultiplier:  2,
		CarriedMultiplier:  0.5,
		ThrownMultiplier:   1.5,
		ThrownWindow:       2,
		GraceWindow:        0.5,
		GraceIgnoreBelow:   5,
		RecoilStrength:     0.15,
		DropFraction:       0.5,
	}
}

func testType(twoHanded bool) config.ItemType {
	return config.ItemType{
		Name:               "crate",
		BaseValue:          100,
		MinValue:           0,
		Mass:               4,
		Size:               config.Vec3{0.5, 0.5, 0.5},
		TwoHanded:          twoHanded,
		DamagePerCollision: 10,
		CollisionThreshold: 2,
	}
}

type fixture struct {
	world  *physics.World
	clock  *fakeClock
	events *recorder
	item   *Item
}

func newFixture(t *testing.T, typ config.ItemType) *fixture {
	t.Helper()
	world := physics.NewWorld(config.Physics, 20, 20)
	half := mgl64.Vec3(typ.Size).Mul(0.5)
	body := world.NewBody(physics.BodySpec{
		Pose:        physics.NewPose(mgl64.Vec3{5, half[1], 5}, mgl64.QuatIdent()),
		Mass:        typ.Mass,
		HalfExtents: half,
	})
	f := &fixture{world: world, clock: &fakeClock{now: 10}, events: &recorder{}}
	f.item = NewItem(1, typ, body, Env{
		Rig:    world,
		Clock:  f.clock,
		Events: f.events,
		Carry:  config.Carry,
		Damage: testDamage(),
	})
	return f
}

func hit(speed float64) physics.Collision {
	return physics.Collision{
		Tag:              physics.TagSolid,
		RelativeVelocity: mgl64.Vec3{speed, 0, 0},
		Normal:           mgl64.Vec3{1, 0, 0},
	}
}

func assertNames(t *testing.T, r *recorder, want ...string) {
	t.Helper()
	got := r.names()
	if len(got) != len(want) {
		t.Fatalf("events = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("events = %v, want %v", got, want)
		}
	}
}

func near(a, b float64) bool { return math.Abs(a-b) < 1e-9 }

func TestImpactDamageWhileFree(t *testing.T) {
	f := newFixture(t, testType(false))
	f.item.OnCollision(hit(4))
	if !near(f.item.Value(), 80) {
		t.Fatalf("value = %f, want 80", f.item.Value())
	}
	assertNames(t, f.events, "damaged", "summary")
	dmg := f.events.events[0].(messages.ItemDamagedEvent)
	if !near(dmg.Damage, 20) || dmg.WhileHeld || dmg.AfterThrowHit {
		t.Fatalf("damage event = %+v", dmg)
	}
}

func TestFragileImpactDamage(t *testing.T) {
	typ := testType(false)
	typ.Fragile = true
	typ.FragileMultiplier = 2
	f := newFixture(t, typ)
	f.item.OnCollision(hit(4))
	if !near(f.item.Value(), 60) {
		t.Fatalf("value = %f, want 60", f.item.Value())
	}
}

func TestSlowImpactIsIgnored(t *testing.T) {
	f := newFixture(t, testType(false))
	f.item.OnCollision(hit(1.9))
	if f.item.Value() != 100 || len(f.events.events) != 0 {
		t.Fatalf("slow impact changed the item: value %f, events %v", f.item.Value(), f.events.names())
	}
}

func TestReleaseAppliesVelocityAndGrace(t *testing.T) {
	f := newFixture(t, testType(false))
	if !f.item.TryGrab(7) {
		t.Fatalf("grab failed")
	}
	v := mgl64.Vec3{1, 2, 3}
	if !f.item.Release(7, v) {
		t.Fatalf("release failed")
	}
	if f.item.IsGrabbed() {
		t.Fatalf("still grabbed after release")
	}
	if f.item.Body().Velocity().Sub(v).Len() >= 1e-9 {
		t.Fatalf("velocity = %v, want %v", f.item.Body().Velocity(), v)
	}

	f.events.reset()
	f.clock.now += 0.2
	f.item.OnCollision(hit(1))
	f.item.OnCollision(hit(3)) // above threshold, still settling
	if f.item.Value() != 100 || len(f.events.events) != 0 {
		t.Fatalf("grace window let damage through: value %f", f.item.Value())
	}

	f.item.OnCollision(hit(6)) // hard enough to count even now
	if !near(f.item.Value(), 70) {
		t.Fatalf("value = %f, want 70", f.item.Value())
	}

	f.clock.now += 1
	f.item.OnCollision(hit(3))
	if !near(f.item.Value(), 55) {
		t.Fatalf("value after grace = %f, want 55", f.item.Value())
	}
}

func TestReleaseEvents(t *testing.T) {
	f := newFixture(t, testType(false))
	f.item.TryGrab(7)
	assertNames(t, f.events, "grabbed", "summary")
	f.events.reset()

	f.item.Release(7, mgl64.Vec3{})
	assertNames(t, f.events, "released", "summary")
	rel := f.events.events[0].(messages.ItemReleasedEvent)
	if rel.Kind != netconfig.ReleasePlaced {
		t.Fatalf("release kind = %v, want placed", rel.Kind)
	}
}

func TestReleaseByNonHolderIsNoop(t *testing.T) {
	f := newFixture(t, testType(false))
	f.item.TryGrab(7)
	f.events.reset()
	if f.item.Release(8, mgl64.Vec3{1, 0, 0}) {
		t.Fatalf("release by non-holder succeeded")
	}
	if !f.item.IsHeld() || len(f.events.events) != 0 {
		t.Fatalf("non-holder release had side effects")
	}
}

func TestSingleGrabRules(t *testing.T) {
	f := newFixture(t, testType(false))
	if f.item.TryGrab(0) {
		t.Fatalf("holder 0 grabbed")
	}
	if !f.item.TryGrab(1) {
		t.Fatalf("first grab failed")
	}
	if f.item.State() != netconfig.ItemHeld || !f.item.IsHeld() {
		t.Fatalf("state = %v, want held", f.item.State())
	}
	if f.item.TryGrab(2) {
		t.Fatalf("second holder grabbed a single-holder item")
	}
}

func TestTwoHandedHolding(t *testing.T) {
	f := newFixture(t, testType(true))
	poses := poseTable{
		1: physics.NewPose(mgl64.Vec3{5, 1, 6}, mgl64.QuatIdent()),
		2: physics.NewPose(mgl64.Vec3{5, 1, 4}, mgl64.QuatIdent()),
	}
	body := f.item.Body()
	body.SetVelocity(mgl64.Vec3{2, 0, 0})

	if !f.item.TryGrab(1) {
		t.Fatalf("front grab failed")
	}
	if f.item.IsHeld() || f.item.State() != netconfig.ItemPartiallyHeld {
		t.Fatalf("one hand should leave the item partially held, got %v", f.item.State())
	}
	if body.Velocity().Len() != 0 {
		t.Fatalf("velocity not zeroed on first grab: %v", body.Velocity())
	}
	f.item.FixedStep(stepDt, poses)
	if f.item.Controller().Active() {
		t.Fatalf("constraint active with one holder")
	}

	if f.item.TryGrab(1) {
		t.Fatalf("holder took a second slot")
	}
	if !f.item.TryGrab(2) {
		t.Fatalf("back grab failed")
	}
	if !f.item.IsHeld() {
		t.Fatalf("both slots filled but not held")
	}
	f.item.FixedStep(stepDt, poses)
	f.world.Step(stepDt)
	if !f.item.Controller().Active() {
		t.Fatalf("constraint not driving a fully held item")
	}
	if f.item.TryGrab(3) {
		t.Fatalf("third holder grabbed")
	}

	f.events.reset()
	if !f.item.Release(1, mgl64.Vec3{5, 5, 5}) {
		t.Fatalf("front release failed")
	}
	if f.item.IsHeld() || !f.item.IsGrabbed() {
		t.Fatalf("after one release: held=%v grabbed=%v", f.item.IsHeld(), f.item.IsGrabbed())
	}
	if f.item.Controller().Active() {
		t.Fatalf("constraint still active with one holder")
	}
	if body.Velocity().Len() != 0 || body.AngularVelocity().Len() != 0 {
		t.Fatalf("residual velocity after partial release: %v %v", body.Velocity(), body.AngularVelocity())
	}
	assertNames(t, f.events, "summary")

	f.events.reset()
	f.item.Release(2, mgl64.Vec3{})
	assertNames(t, f.events, "released", "summary")
}

func TestTwoHandedSlotOrder(t *testing.T) {
	f := newFixture(t, testType(true))
	f.item.TryGrab(4)
	f.item.TryGrab(9)
	coord := f.item.Coordinator()
	if coord.SlotOf(4) != netconfig.SlotFront || coord.SlotOf(9) != netconfig.SlotBack {
		t.Fatalf("slots = %v/%v, want front/back", coord.SlotOf(4), coord.SlotOf(9))
	}
	f.item.Release(4, mgl64.Vec3{})
	if !f.item.TryGrab(5) || coord.SlotOf(5) != netconfig.SlotFront {
		t.Fatalf("freed front slot not refilled first")
	}
}

func TestHeavyHitWhileHeldForcesDrop(t *testing.T) {
	f := newFixture(t, testType(false))
	poses := poseTable{1: physics.NewPose(mgl64.Vec3{5, 1, 5}, mgl64.QuatIdent())}
	f.item.TryGrab(1)
	f.item.FixedStep(stepDt, poses)
	if !f.item.Controller().Active() {
		t.Fatalf("constraint not active")
	}
	f.events.reset()

	// 10 * 20/2 * carried 0.5 = 50, half of what was left
	f.item.OnCollision(hit(20))
	if !near(f.item.Value(), 50) {
		t.Fatalf("value = %f, want 50", f.item.Value())
	}
	if f.item.IsGrabbed() || f.item.Controller().Active() {
		t.Fatalf("item not dropped: grabbed=%v active=%v", f.item.IsGrabbed(), f.item.Controller().Active())
	}
	assertNames(t, f.events, "damaged", "released", "summary")
	rel := f.events.events[1].(messages.ItemReleasedEvent)
	if rel.Kind != netconfig.ReleaseForced {
		t.Fatalf("release kind = %v, want forced", rel.Kind)
	}
}

func TestLightHitWhileHeldRecoils(t *testing.T) {
	f := newFixture(t, testType(false))
	f.item.TryGrab(1)
	f.events.reset()

	f.item.OnCollision(hit(4))
	if !near(f.item.Value(), 90) {
		t.Fatalf("value = %f, want 90 with the carried multiplier", f.item.Value())
	}
	if !f.item.IsHeld() {
		t.Fatalf("light hit dropped the item")
	}
	// -normal * 4 * 0.15 over mass 4
	if v := f.item.Body().Velocity(); !near(v[0], -0.15) {
		t.Fatalf("recoil velocity = %v, want -0.15 along x", v)
	}
	assertNames(t, f.events, "damaged", "summary")
}

func TestBreakingAndReset(t *testing.T) {
	f := newFixture(t, testType(false))
	f.item.OnCollision(hit(40))
	if !f.item.IsBroken() || f.item.Value() != 0 {
		t.Fatalf("value = %f, broken = %v", f.item.Value(), f.item.IsBroken())
	}
	assertNames(t, f.events, "damaged", "broken", "summary")
	if f.item.State() != netconfig.ItemBroken {
		t.Fatalf("state = %v, want broken", f.item.State())
	}
	if f.item.TryGrab(1) {
		t.Fatalf("broken item grabbed")
	}

	f.events.reset()
	f.item.OnCollision(hit(40))
	if len(f.events.events) != 0 {
		t.Fatalf("broken item reported more damage")
	}

	f.item.Body().Teleport(physics.NewPose(mgl64.Vec3{9, 3, 9}, mgl64.QuatIdent()))
	f.item.Reset()
	if f.item.Value() != 100 || f.item.IsBroken() {
		t.Fatalf("reset value = %f", f.item.Value())
	}
	if f.item.Body().Position().Sub(mgl64.Vec3{5, 0.25, 5}).Len() >= 1e-9 {
		t.Fatalf("reset position = %v", f.item.Body().Position())
	}
	if !f.item.TryGrab(1) {
		t.Fatalf("grab after reset failed")
	}
}

func TestBreakWhileHeldDrops(t *testing.T) {
	typ := testType(false)
	typ.BaseValue = 20
	f := newFixture(t, typ)
	f.item.TryGrab(1)
	f.events.reset()

	f.item.OnCollision(hit(10)) // 10 * 5 * 0.5 = 25
	if !f.item.IsBroken() || f.item.IsGrabbed() {
		t.Fatalf("broken=%v grabbed=%v", f.item.IsBroken(), f.item.IsGrabbed())
	}
	assertNames(t, f.events, "damaged", "broken", "released", "summary")
}

func TestValueStaysInRange(t *testing.T) {
	typ := testType(false)
	typ.MinValue = 25
	f := newFixture(t, typ)
	last := f.item.Value()
	for _, speed := range []float64{1, 3, 4, 7, 2.5, 10, 30, 0.5, 80} {
		f.item.OnCollision(hit(speed))
		v := f.item.Value()
		if v > last || v < typ.MinValue || v > typ.BaseValue {
			t.Fatalf("value %f after speed %f (previous %f)", v, speed, last)
		}
		if f.item.IsBroken() != (v <= typ.MinValue) {
			t.Fatalf("broken flag %v disagrees with value %f", f.item.IsBroken(), v)
		}
		last = v
	}
	if !f.item.IsBroken() {
		t.Fatalf("expected the item to break")
	}
}

func TestThrow(t *testing.T) {
	f := newFixture(t, testType(false))
	if f.item.Throw(mgl64.Vec3{1, 0, 0}) {
		t.Fatalf("threw an item nobody held")
	}
	f.item.TryGrab(1)
	f.item.FixedStep(stepDt, poseTable{1: physics.NewPose(mgl64.Vec3{5, 1, 5}, mgl64.QuatIdent())})
	f.events.reset()

	v := mgl64.Vec3{6, 2, 0}
	if !f.item.Throw(v) {
		t.Fatalf("throw failed")
	}
	if f.item.IsGrabbed() || f.item.Controller().Active() {
		t.Fatalf("thrown item still attached")
	}
	if f.item.Body().Velocity().Sub(v).Len() >= 1e-9 {
		t.Fatalf("velocity = %v, want %v", f.item.Body().Velocity(), v)
	}
	assertNames(t, f.events, "released", "summary")
	if f.events.events[0].(messages.ItemReleasedEvent).Kind != netconfig.ReleaseThrown {
		t.Fatalf("release kind not thrown")
	}

	// Thrown hits skip the grace rule and take the thrown multiplier.
	f.clock.now += 0.1
	f.item.OnCollision(hit(4))
	if !near(f.item.Value(), 70) {
		t.Fatalf("value = %f, want 70", f.item.Value())
	}

	f.clock.now += 5
	f.item.OnCollision(hit(4))
	if !near(f.item.Value(), 50) {
		t.Fatalf("value after thrown window = %f, want 50", f.item.Value())
	}
}

func TestForceDrop(t *testing.T) {
	f := newFixture(t, testType(false))
	if f.item.ForceDrop(mgl64.Vec3{}) {
		t.Fatalf("force drop of a free item reported a drop")
	}
	if len(f.events.events) != 0 {
		t.Fatalf("force drop of a free item emitted %v", f.events.names())
	}

	f.item.TryGrab(1)
	f.item.FixedStep(stepDt, poseTable{1: physics.NewPose(mgl64.Vec3{5, 1, 5}, mgl64.QuatIdent())})
	f.events.reset()
	if !f.item.ForceDrop(mgl64.Vec3{0, 1, 0}) {
		t.Fatalf("force drop failed")
	}
	if f.item.IsGrabbed() || f.item.Controller().Active() {
		t.Fatalf("item still attached")
	}
	assertNames(t, f.events, "released", "summary")
	if f.item.ForceDrop(mgl64.Vec3{}) {
		t.Fatalf("second force drop reported a drop")
	}
}

func TestHeldItemFollowsHolder(t *testing.T) {
	f := newFixture(t, testType(false))
	poses := poseTable{1: physics.NewPose(mgl64.Vec3{6, 1.2, 5}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}))}
	f.item.TryGrab(1)
	for i := 0; i < 180; i++ {
		f.item.FixedStep(stepDt, poses)
		f.world.Step(stepDt)
	}
	target := poses[1].Position
	if d := f.item.Body().Position().Sub(target).Len(); d > 0.1 {
		t.Fatalf("held item is %f from its holder", d)
	}
}

func TestActivationWaitsForHolderPose(t *testing.T) {
	f := newFixture(t, testType(false))
	f.item.TryGrab(1)
	f.item.FixedStep(stepDt, poseTable{})
	if f.item.Controller().Active() {
		t.Fatalf("activated without a target")
	}
	f.item.FixedStep(stepDt, poseTable{1: physics.NewPose(mgl64.Vec3{5, 1, 5}, mgl64.QuatIdent())})
	if !f.item.Controller().Active() {
		t.Fatalf("activation not retried once a pose arrived")
	}
}

func TestRegrabNeedsFreshTarget(t *testing.T) {
	f := newFixture(t, testType(false))
	f.item.TryGrab(1)
	f.item.FixedStep(stepDt, poseTable{1: physics.NewPose(mgl64.Vec3{15, 1, 15}, mgl64.QuatIdent())})
	if !f.item.Controller().Active() {
		t.Fatalf("first hold did not activate")
	}
	f.item.Release(1, mgl64.Vec3{})
	if f.item.Controller().HasTarget() {
		t.Fatalf("release kept the previous holder's target")
	}

	f.item.TryGrab(2)
	before := f.item.Controller().AnchorPose()
	f.item.FixedStep(stepDt, poseTable{})
	if f.item.Controller().Active() {
		t.Fatalf("second hold activated on the first holder's target")
	}
	if f.item.Controller().AnchorPose() != before {
		t.Fatalf("anchor moved without a target for the new holder")
	}

	f.item.Reset()
	if f.item.Controller().HasTarget() {
		t.Fatalf("reset kept a target")
	}
}
