package netcomponents

import (
	"github.com/automoto/haulers-mp/shared/mathutil"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/yohamta/donburi"
)

type NetTransformData struct {
	X, Y, Z          float64
	RotW             float64
	RotX, RotY, RotZ float64
}

var NetTransform = donburi.NewComponentType[NetTransformData]()

// Position returns the translation as a vector.
func (t NetTransformData) Position() mgl64.Vec3 {
	return mgl64.Vec3{t.X, t.Y, t.Z}
}

// Rotation returns the orientation as a quaternion.
func (t NetTransformData) Rotation() mgl64.Quat {
	return mgl64.Quat{W: t.RotW, V: mgl64.Vec3{t.RotX, t.RotY, t.RotZ}}
}

// NewNetTransform packs a position and rotation.
func NewNetTransform(p mgl64.Vec3, q mgl64.Quat) NetTransformData {
	return NetTransformData{
		X: p[0], Y: p[1], Z: p[2],
		RotW: q.W,
		RotX: q.V[0], RotY: q.V[1], RotZ: q.V[2],
	}
}

// LerpNetTransform interpolates between two transforms
func LerpNetTransform(from, to NetTransformData, t float64) *NetTransformData {
	p := mathutil.Lerp(from.Position(), to.Position(), t)
	q := mathutil.Slerp(from.Rotation(), to.Rotation(), t)
	out := NewNetTransform(p, q)
	return &out
}
