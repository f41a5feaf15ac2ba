package mathutil

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestMoveTowardsClampsDistance(t *testing.T) {
	got := MoveTowards(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{10, 0, 0}, 2)
	if got.Sub(mgl64.Vec3{2, 0, 0}).Len() >= 1e-9 {
		t.Fatalf("MoveTowards = %v, want (2,0,0)", got)
	}
	got = MoveTowards(mgl64.Vec3{0, 0, 0}, mgl64.Vec3{1, 0, 0}, 2)
	if got.Sub(mgl64.Vec3{1, 0, 0}).Len() >= 1e-9 {
		t.Fatalf("MoveTowards overshoot guard = %v, want (1,0,0)", got)
	}
}

func TestRotateTowardsClampsAngle(t *testing.T) {
	from := mgl64.QuatIdent()
	to := mgl64.QuatRotate(math.Pi/2, Up)
	got := RotateTowards(from, to, 0.1)
	if a := QuatAngle(from, got); math.Abs(a-0.1) > 1e-6 {
		t.Fatalf("rotated by %f, want 0.1", a)
	}
}

func TestLookRotationPointsForward(t *testing.T) {
	dir := mgl64.Vec3{1, 0, 0}
	q := LookRotation(dir, Up)
	got := q.Rotate(Forward)
	if !near(got, dir) {
		t.Fatalf("forward = %v, want %v", got, dir)
	}
	if up := q.Rotate(Up); !near(up, Up) {
		t.Fatalf("up = %v, want %v", up, Up)
	}
}

func TestAxisAngleShortestArc(t *testing.T) {
	q := mgl64.QuatRotate(0.5, mgl64.Vec3{0, 0, 1})
	neg := mgl64.Quat{W: -q.W, V: q.V.Mul(-1)}
	axis, angle := AxisAngle(neg)
	if math.Abs(angle-0.5) > 1e-9 {
		t.Fatalf("angle = %f, want 0.5", angle)
	}
	if axis.Sub(mgl64.Vec3{0, 0, 1}).Len() >= 1e-9 {
		t.Fatalf("axis = %v", axis)
	}
}

func TestNonFiniteInputsStayPut(t *testing.T) {
	nan := mgl64.Vec3{math.NaN(), 0, 0}
	from := mgl64.Vec3{1, 2, 3}
	if got := MoveTowards(from, nan, 1); got != from {
		t.Fatalf("MoveTowards toward NaN = %v, want %v", got, from)
	}
	if got := ClampLength(nan, 5); got != (mgl64.Vec3{}) {
		t.Fatalf("ClampLength(NaN) = %v, want zero", got)
	}
	if got := ClampLength(mgl64.Vec3{math.Inf(1), 0, 0}, 5); got != (mgl64.Vec3{}) {
		t.Fatalf("ClampLength(Inf) = %v, want zero", got)
	}
	q := mgl64.QuatRotate(0.3, Up)
	bad := mgl64.Quat{W: math.NaN()}
	if got := RotateTowards(q, bad, 0.1); got != q {
		t.Fatalf("RotateTowards toward NaN = %v, want %v", got, q)
	}
	if Finite(1, math.Inf(-1)) || !Finite(0, -3) {
		t.Fatalf("Finite misclassified values")
	}
}

func near(a, b mgl64.Vec3) bool { return a.Sub(b).Len() < 1e-9 }
