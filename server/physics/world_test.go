package physics

import (
	"math"
	"testing"

	"github.com/automoto/haulers-mp/config"
	"github.com/go-gl/mathgl/mgl64"
)

const testDt = 1.0 / 60

func testConfig() config.PhysicsConfig {
	cfg := config.Physics
	cfg.Friction = 1
	return cfg
}

func newTestBody(w *World, pos mgl64.Vec3) *Body {
	return w.NewBody(BodySpec{
		Pose:        NewPose(pos, mgl64.QuatIdent()),
		Mass:        4,
		HalfExtents: mgl64.Vec3{0.25, 0.25, 0.25},
	})
}

func TestBodyLandsOnFloor(t *testing.T) {
	w := NewWorld(testConfig(), 20, 20)
	b := newTestBody(w, mgl64.Vec3{5, 2, 5})

	var hits []Collision
	b.OnCollision = func(c Collision) { hits = append(hits, c) }

	for i := 0; i < 180; i++ {
		w.Step(testDt)
	}
	if math.Abs(b.Position()[1]-0.25) > 1e-6 {
		t.Fatalf("resting height = %f, want 0.25", b.Position()[1])
	}
	if len(hits) == 0 {
		t.Fatalf("expected a floor collision")
	}
	first := hits[0]
	if first.Tag != TagFloor {
		t.Fatalf("tag = %q, want %q", first.Tag, TagFloor)
	}
	if first.Normal.Sub(mgl64.Vec3{0, -1, 0}).Len() >= 1e-9 {
		t.Fatalf("normal = %v, want (0,-1,0)", first.Normal)
	}
	if first.ImpactSpeed() < 5 {
		t.Fatalf("impact speed = %f, want > 5 after a 1.75m fall", first.ImpactSpeed())
	}
}

func TestBodyHitsWall(t *testing.T) {
	cfg := testConfig()
	cfg.Gravity = 0
	w := NewWorld(cfg, 20, 20)
	w.AddSolid(10, 0, 1, 20)
	b := newTestBody(w, mgl64.Vec3{8, 0.25, 5})
	b.SetVelocity(mgl64.Vec3{5, 0, 0})

	var hits []Collision
	b.OnCollision = func(c Collision) { hits = append(hits, c) }

	for i := 0; i < 60; i++ {
		w.Step(testDt)
	}
	if len(hits) != 1 {
		t.Fatalf("collisions = %d, want 1", len(hits))
	}
	if hits[0].Tag != TagSolid {
		t.Fatalf("tag = %q, want solid", hits[0].Tag)
	}
	if hits[0].Normal.Sub(mgl64.Vec3{1, 0, 0}).Len() >= 1e-9 {
		t.Fatalf("normal = %v, want +X", hits[0].Normal)
	}
	if hits[0].ImpactSpeed() < 4.9 {
		t.Fatalf("impact speed = %f, want ~5", hits[0].ImpactSpeed())
	}
	if b.Position()[0]+0.25 > 10+1e-6 {
		t.Fatalf("body penetrated the wall: x = %f", b.Position()[0])
	}
	if b.Velocity()[0] >= 0 {
		t.Fatalf("velocity after bounce = %v, want moving away", b.Velocity())
	}
}

func TestBodiesExchangeMomentum(t *testing.T) {
	cfg := testConfig()
	cfg.Gravity = 0
	cfg.Restitution = 0
	w := NewWorld(cfg, 20, 20)
	a := newTestBody(w, mgl64.Vec3{5, 0.25, 5})
	b := newTestBody(w, mgl64.Vec3{7, 0.25, 5})
	a.SetVelocity(mgl64.Vec3{4, 0, 0})

	var aHits, bHits int
	a.OnCollision = func(c Collision) {
		aHits++
		if c.Other != b {
			t.Fatalf("a hit %v, want b", c.Other)
		}
	}
	b.OnCollision = func(Collision) { bHits++ }

	for i := 0; i < 60; i++ {
		w.Step(testDt)
	}
	if aHits != 1 || bHits != 1 {
		t.Fatalf("hits a=%d b=%d, want 1 each", aHits, bHits)
	}
	if b.Velocity()[0] <= 0 {
		t.Fatalf("b should have been pushed along +X, v = %v", b.Velocity())
	}
}

func TestJointPullsBodyToAnchor(t *testing.T) {
	cfg := testConfig()
	cfg.Gravity = 0
	w := NewWorld(cfg, 20, 20)
	b := newTestBody(w, mgl64.Vec3{5, 1, 5})
	anchor := w.NewAnchor(NewPose(mgl64.Vec3{6, 1.5, 5}, mgl64.QuatRotate(0.5, mgl64.Vec3{0, 1, 0})))
	j := w.Connect(b, anchor)
	j.SetDrives(Drive{Spring: 900, Damper: 60}, Drive{Spring: 500, Damper: 40}, 0.001)

	for i := 0; i < 120; i++ {
		w.Step(testDt)
	}
	if d := b.Position().Sub(anchor.Position()).Len(); d > 0.02 {
		t.Fatalf("distance to anchor = %f, want < 0.02", d)
	}
	if a := angleBetween(b.Pose().Rotation, anchor.Pose().Rotation); a > 0.02 {
		t.Fatalf("angle to anchor = %f, want < 0.02", a)
	}
}

func TestFreeJointAppliesNothing(t *testing.T) {
	cfg := testConfig()
	cfg.Gravity = 0
	w := NewWorld(cfg, 20, 20)
	b := newTestBody(w, mgl64.Vec3{5, 1, 5})
	anchor := w.NewAnchor(NewPose(mgl64.Vec3{8, 1, 5}, mgl64.QuatIdent()))
	j := w.Connect(b, anchor)
	j.SetDrives(Drive{Spring: 900, Damper: 60}, Drive{Spring: 500, Damper: 40}, 0)
	j.Free()
	j.Free()

	if j.Driving() {
		t.Fatalf("freed joint still driving")
	}
	for i := 0; i < 30; i++ {
		w.Step(testDt)
	}
	if b.Position().Sub(mgl64.Vec3{5, 1, 5}).Len() >= 1e-9 {
		t.Fatalf("free body moved to %v", b.Position())
	}
}

func TestKinematicVelocityFromMoves(t *testing.T) {
	w := NewWorld(testConfig(), 20, 20)
	anchor := w.NewAnchor(NewPose(mgl64.Vec3{1, 1, 1}, mgl64.QuatIdent()))
	anchor.MoveKinematic(NewPose(mgl64.Vec3{1.1, 1, 1}, mgl64.QuatIdent()))
	w.Step(0.1)
	if anchor.Velocity().Sub(mgl64.Vec3{1, 0, 0}).Len() >= 1e-9 {
		t.Fatalf("anchor velocity = %v, want (1,0,0)", anchor.Velocity())
	}
}

func TestMoverTravelsAndResets(t *testing.T) {
	w := NewWorld(testConfig(), 20, 20)
	m := w.AddMover(2, 2, 1, 1, 4, 0, 1)
	for i := 0; i < 60; i++ {
		w.Step(testDt)
	}
	if off := m.Offset(); math.Abs(off[0]-4) > 0.05 {
		t.Fatalf("offset after one leg = %v, want ~4", off)
	}
	w.ResetMovers()
	if off := m.Offset(); off.Len() != 0 {
		t.Fatalf("offset after reset = %v, want 0", off)
	}
}

func TestContinuousCollisionStopsFastBody(t *testing.T) {
	cfg := testConfig()
	cfg.Gravity = 0
	w := NewWorld(cfg, 40, 20)
	w.AddSolid(10, 0, 0.1, 20)
	b := newTestBody(w, mgl64.Vec3{9, 0.25, 5})
	tun := b.Tuning()
	tun.Continuous = true
	b.SetTuning(tun)
	b.SetVelocity(mgl64.Vec3{120, 0, 0}) // 2m per step, wall is 0.1m thick

	for i := 0; i < 10; i++ {
		w.Step(testDt)
	}
	if b.Position()[0] > 10 {
		t.Fatalf("fast body tunneled through the wall: x = %f", b.Position()[0])
	}
}

func angleBetween(a, b mgl64.Quat) float64 {
	_, angle := axisAngleBetween(a, b)
	return angle
}
