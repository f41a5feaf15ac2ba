package physics

import (
	"math"

	"github.com/automoto/haulers-mp/shared/mathutil"
	"github.com/go-gl/mathgl/mgl64"
)

// Motion says how a joint axis is constrained.
type Motion int

const (
	MotionFree    Motion = iota // No drive on the axis
	MotionLimited               // Drive engages beyond the joint's linear limit
	MotionLocked                // Drive engages on any offset
)

// Drive is a spring/damper pair. Drives act as accelerations, so the same
// settings feel alike on light and heavy bodies.
type Drive struct {
	Spring float64
	Damper float64
}

// Joint is a compliant six degree of freedom constraint pulling Body toward
// Anchor. Axes are expressed in the anchor's local frame.
type Joint struct {
	Body   *Body
	Anchor *Body

	LinearMotion  [3]Motion
	AngularMotion [3]Motion
	LinearLimit   float64

	LinearDrive  Drive
	AngularDrive Drive
}

// SetDrives limits every axis and installs the given drives.
func (j *Joint) SetDrives(linear, angular Drive, limit float64) {
	for i := 0; i < 3; i++ {
		j.LinearMotion[i] = MotionLimited
		j.AngularMotion[i] = MotionLocked
	}
	j.LinearLimit = limit
	j.LinearDrive = linear
	j.AngularDrive = angular
}

// Free releases every axis and zeroes the drives. The body then moves as if
// the joint did not exist.
func (j *Joint) Free() {
	for i := 0; i < 3; i++ {
		j.LinearMotion[i] = MotionFree
		j.AngularMotion[i] = MotionFree
	}
	j.LinearLimit = 0
	j.LinearDrive = Drive{}
	j.AngularDrive = Drive{}
}

// Driving reports whether the joint applies any force at all.
func (j *Joint) Driving() bool {
	if j.LinearDrive == (Drive{}) && j.AngularDrive == (Drive{}) {
		return false
	}
	for i := 0; i < 3; i++ {
		if j.LinearMotion[i] != MotionFree || j.AngularMotion[i] != MotionFree {
			return true
		}
	}
	return false
}

// solve applies one sub-iteration of the drives over h seconds.
func (j *Joint) solve(h float64) {
	b, a := j.Body, j.Anchor
	if b.kinematic || b.mass <= 0 {
		return
	}
	inv := a.pose.Rotation.Inverse()

	// Linear: spring on the offset beyond the limit, damper on relative velocity.
	offset := inv.Rotate(a.pose.Position.Sub(b.pose.Position))
	relVel := inv.Rotate(a.velocity.Sub(b.velocity))
	var accel mgl64.Vec3
	for i := 0; i < 3; i++ {
		switch j.LinearMotion[i] {
		case MotionFree:
			continue
		case MotionLimited:
			accel[i] = j.LinearDrive.Spring*beyond(offset[i], j.LinearLimit) + j.LinearDrive.Damper*relVel[i]
		case MotionLocked:
			accel[i] = j.LinearDrive.Spring*offset[i] + j.LinearDrive.Damper*relVel[i]
		}
	}
	b.velocity = b.velocity.Add(a.pose.Rotation.Rotate(accel).Mul(h))

	// Angular: spring on the rotation taking body onto anchor.
	axis, angle := mathutil.AxisAngle(a.pose.Rotation.Mul(b.pose.Rotation.Inverse()))
	rotErr := inv.Rotate(axis.Mul(angle))
	relAng := inv.Rotate(a.angularVelocity.Sub(b.angularVelocity))
	var angAccel mgl64.Vec3
	for i := 0; i < 3; i++ {
		if j.AngularMotion[i] == MotionFree {
			continue
		}
		angAccel[i] = j.AngularDrive.Spring*rotErr[i] + j.AngularDrive.Damper*relAng[i]
	}
	b.angularVelocity = b.angularVelocity.Add(a.pose.Rotation.Rotate(angAccel).Mul(h))
}

func beyond(v, limit float64) float64 {
	if math.Abs(v) <= limit {
		return 0
	}
	if v > 0 {
		return v - limit
	}
	return v + limit
}
