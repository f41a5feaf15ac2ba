// Package physics is the server's rigid-body world: dynamic bodies with box
// footprints, kinematic anchors, compliant joints between them, tweened
// moving obstacles and static level geometry. Broadphase and contact
// resolution in the ground plane run on resolv (world X maps to resolv X,
// world Z to resolv Y); height is resolved against a flat floor.
package physics

import "github.com/go-gl/mathgl/mgl64"

// Pose is a position and orientation in world space.
type Pose struct {
	Position mgl64.Vec3
	Rotation mgl64.Quat
}

// NewPose builds a pose, normalizing the rotation.
func NewPose(p mgl64.Vec3, q mgl64.Quat) Pose {
	return Pose{Position: p, Rotation: q.Normalize()}
}

// IdentityPose is a pose at the origin with no rotation.
func IdentityPose() Pose {
	return Pose{Rotation: mgl64.QuatIdent()}
}

// Tuning holds the solver-facing properties of a body that the carry
// constraint changes while an item is held.
type Tuning struct {
	Drag                     float64
	AngularDrag              float64
	SolverIterations         int
	SolverVelocityIterations int
	Continuous               bool
}

// Collision is delivered to a body's OnCollision callback when a new contact
// begins.
type Collision struct {
	Body  *Body
	Other *Body  // nil for static geometry, movers and the floor
	Tag   string // resolv tag of what was hit, or TagFloor

	// Body velocity minus the other side's velocity, before the response.
	RelativeVelocity mgl64.Vec3
	Point            mgl64.Vec3
	// Normal points from the body toward the surface it hit.
	Normal mgl64.Vec3
}

// ImpactSpeed is the magnitude of the relative velocity.
func (c Collision) ImpactSpeed() float64 {
	return c.RelativeVelocity.Len()
}
