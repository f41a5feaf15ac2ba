package gamemath

import (
	"github.com/automoto/haulers-mp/shared/mathutil"
	"github.com/go-gl/mathgl/mgl64"
)

// StepAnchorPosition smooths a fraction of the way toward target, then clamps
// the displacement to maxSpeed*dt.
func StepAnchorPosition(current, target mgl64.Vec3, smoothing, maxSpeed, dt float64) mgl64.Vec3 {
	desired := mathutil.Lerp(current, target, mathutil.ClampFloat(smoothing, 0, 1))
	return mathutil.MoveTowards(current, desired, maxSpeed*dt)
}

// StepAnchorRotation smooths a fraction of the way toward target, then clamps
// the turn to maxAngularSpeed*dt radians.
func StepAnchorRotation(current, target mgl64.Quat, smoothing, maxAngularSpeed, dt float64) mgl64.Quat {
	desired := mathutil.Slerp(current, target, mathutil.ClampFloat(smoothing, 0, 1))
	return mathutil.RotateTowards(current, desired, maxAngularSpeed*dt)
}
