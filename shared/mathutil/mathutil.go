// Package mathutil holds small scalar, vector and quaternion helpers shared by
// the server simulation and the observer client.
package mathutil

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Epsilon is the tolerance used for "close enough to zero" checks.
const Epsilon = 1e-9

var (
	Up      = mgl64.Vec3{0, 1, 0}
	Forward = mgl64.Vec3{0, 0, 1}
)

// ClampFloat clamps v to [lo, hi].
func ClampFloat(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Lerp interpolates linearly between two vectors.
func Lerp(from, to mgl64.Vec3, t float64) mgl64.Vec3 {
	return from.Add(to.Sub(from).Mul(t))
}

// Finite reports whether every value is neither NaN nor infinite.
func Finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// MoveTowards moves from toward to by at most maxDelta. A non-finite
// distance leaves from where it is.
func MoveTowards(from, to mgl64.Vec3, maxDelta float64) mgl64.Vec3 {
	delta := to.Sub(from)
	dist := delta.Len()
	if !Finite(dist) {
		return from
	}
	if dist <= maxDelta || dist < Epsilon {
		return to
	}
	return from.Add(delta.Mul(maxDelta / dist))
}

// ClampLength scales v down so its length does not exceed max. Vectors
// with a non-finite length become zero.
func ClampLength(v mgl64.Vec3, max float64) mgl64.Vec3 {
	l := v.Len()
	if !Finite(l) {
		return mgl64.Vec3{}
	}
	if l <= max || l < Epsilon {
		return v
	}
	return v.Mul(max / l)
}

// QuatAngle returns the angle in radians of the rotation taking a onto b.
func QuatAngle(a, b mgl64.Quat) float64 {
	d := math.Abs(a.Normalize().Dot(b.Normalize()))
	if d > 1 {
		d = 1
	}
	return 2 * math.Acos(d)
}

// Slerp interpolates along the shortest arc between two rotations.
func Slerp(from, to mgl64.Quat, t float64) mgl64.Quat {
	if from.Dot(to) < 0 {
		to = mgl64.Quat{W: -to.W, V: to.V.Mul(-1)}
	}
	return mgl64.QuatSlerp(from, to, t).Normalize()
}

// RotateTowards rotates from toward to by at most maxRadians. A non-finite
// angle leaves from unchanged.
func RotateTowards(from, to mgl64.Quat, maxRadians float64) mgl64.Quat {
	angle := QuatAngle(from, to)
	if !Finite(angle) {
		return from
	}
	if angle <= maxRadians || angle < Epsilon {
		return to.Normalize()
	}
	return Slerp(from, to, maxRadians/angle)
}

// LookRotation returns the rotation whose local +Z axis points along forward
// and whose local +Y axis is as close to up as possible.
func LookRotation(forward, up mgl64.Vec3) mgl64.Quat {
	if forward.Len() < Epsilon {
		return mgl64.QuatIdent()
	}
	f := forward.Normalize()
	r := up.Cross(f)
	if r.Len() < Epsilon {
		// forward is parallel to up; any perpendicular right axis will do
		r = mgl64.Vec3{1, 0, 0}.Cross(f)
		if r.Len() < Epsilon {
			r = mgl64.Vec3{0, 0, 1}.Cross(f)
		}
	}
	r = r.Normalize()
	u := f.Cross(r)
	return mgl64.Mat4ToQuat(mgl64.Mat3FromCols(r, u, f).Mat4()).Normalize()
}

// AxisAngle decomposes a rotation into a unit axis and an angle in
// [0, pi], taking the shortest arc.
func AxisAngle(q mgl64.Quat) (mgl64.Vec3, float64) {
	q = q.Normalize()
	if q.W < 0 {
		q = mgl64.Quat{W: -q.W, V: q.V.Mul(-1)}
	}
	s := q.V.Len()
	if s < Epsilon {
		return Up, 0
	}
	angle := 2 * math.Atan2(s, q.W)
	return q.V.Mul(1 / s), angle
}
