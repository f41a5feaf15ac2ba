package netcomponents

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestLerpNetTransformMidpoint(t *testing.T) {
	from := NewNetTransform(mgl64.Vec3{0, 0, 0}, mgl64.QuatIdent())
	to := NewNetTransform(mgl64.Vec3{2, 4, 6}, mgl64.QuatRotate(math.Pi/2, mgl64.Vec3{0, 1, 0}))

	mid := LerpNetTransform(from, to, 0.5)
	if mid.Position().Sub(mgl64.Vec3{1, 2, 3}).Len() >= 1e-9 {
		t.Fatalf("position = %v, want (1,2,3)", mid.Position())
	}
	want := mgl64.QuatRotate(math.Pi/4, mgl64.Vec3{0, 1, 0})
	if 1-math.Abs(mid.Rotation().Dot(want)) > 1e-9 {
		t.Fatalf("rotation = %v, want %v", mid.Rotation(), want)
	}
}
