package gamemath

import (
	"github.com/automoto/haulers-mp/shared/mathutil"
	"github.com/go-gl/mathgl/mgl64"
)

// YawRotation returns the rotation of a holder facing yaw radians around +Y.
func YawRotation(yaw float64) mgl64.Quat {
	return mgl64.QuatRotate(yaw, mathutil.Up)
}

// CalculateAttachPoint places a holder's hands: offset is in the holder's
// local frame.
func CalculateAttachPoint(pos mgl64.Vec3, rot mgl64.Quat, offset mgl64.Vec3) mgl64.Vec3 {
	return pos.Add(rot.Rotate(offset))
}

// CalculateSingleHoldTarget composes the attach pose with an item type's hold
// offset and hold rotation.
func CalculateSingleHoldTarget(attachPos mgl64.Vec3, attachRot mgl64.Quat, holdOffset mgl64.Vec3, holdRot mgl64.Quat) (mgl64.Vec3, mgl64.Quat) {
	pos := attachPos.Add(attachRot.Rotate(holdOffset))
	rot := attachRot.Mul(holdRot).Normalize()
	return pos, rot
}

// CalculateDualHoldTarget centers an item between two holders and faces it
// along back -> front. holdOffset is applied in that facing frame.
func CalculateDualHoldTarget(front, back, holdOffset mgl64.Vec3) (mgl64.Vec3, mgl64.Quat) {
	mid := front.Add(back).Mul(0.5)
	dir := front.Sub(back)
	rot := mathutil.LookRotation(dir, mathutil.Up)
	return mid.Add(rot.Rotate(holdOffset)), rot
}

// EulerDegrees converts x, y, z euler angles in degrees to a rotation,
// applied in z, x, y order like most engine inspectors.
func EulerDegrees(x, y, z float64) mgl64.Quat {
	qx := mgl64.QuatRotate(mgl64.DegToRad(x), mgl64.Vec3{1, 0, 0})
	qy := mgl64.QuatRotate(mgl64.DegToRad(y), mathutil.Up)
	qz := mgl64.QuatRotate(mgl64.DegToRad(z), mgl64.Vec3{0, 0, 1})
	return qy.Mul(qx).Mul(qz).Normalize()
}
