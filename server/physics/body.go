package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/solarlune/resolv"
)

// BodySpec describes a dynamic body to create.
type BodySpec struct {
	Pose        Pose
	Mass        float64
	HalfExtents mgl64.Vec3
	Tag         string // resolv tag for the footprint; TagItem when empty
	Data        any    // Copied to Body.Data
}

// Body is a rigid body. Dynamic bodies are simulated and collide; kinematic
// bodies only move where they are told to. Anchors are kinematic bodies
// without a footprint.
type Body struct {
	ID   uint32
	Data any

	pose            Pose
	prevPosition    mgl64.Vec3
	prevRotation    mgl64.Quat
	velocity        mgl64.Vec3
	angularVelocity mgl64.Vec3

	mass        float64
	halfExtents mgl64.Vec3
	kinematic   bool
	tuning      Tuning

	object   *resolv.Object // nil for anchors
	tag      string
	grounded bool
	touching map[*resolv.Object]bool

	// OnCollision is called on the stepping goroutine, after the step that
	// produced the contact has finished moving every body.
	OnCollision func(Collision)
}

// Pose returns the current pose.
func (b *Body) Pose() Pose { return b.pose }

// Position returns the current position.
func (b *Body) Position() mgl64.Vec3 { return b.pose.Position }

// Velocity returns the linear velocity.
func (b *Body) Velocity() mgl64.Vec3 { return b.velocity }

// SetVelocity sets the linear velocity. Ignored for kinematic bodies.
func (b *Body) SetVelocity(v mgl64.Vec3) {
	if b.kinematic {
		return
	}
	b.velocity = v
}

// AngularVelocity returns the angular velocity in rad/s around each world axis.
func (b *Body) AngularVelocity() mgl64.Vec3 { return b.angularVelocity }

// SetAngularVelocity sets the angular velocity. Ignored for kinematic bodies.
func (b *Body) SetAngularVelocity(w mgl64.Vec3) {
	if b.kinematic {
		return
	}
	b.angularVelocity = w
}

// AddImpulse changes the linear velocity by impulse / mass.
func (b *Body) AddImpulse(impulse mgl64.Vec3) {
	if b.kinematic || b.mass <= 0 {
		return
	}
	b.velocity = b.velocity.Add(impulse.Mul(1 / b.mass))
}

// Mass returns the body mass in kilograms.
func (b *Body) Mass() float64 { return b.mass }

// HalfExtents returns the unrotated half size of the body's box.
func (b *Body) HalfExtents() mgl64.Vec3 { return b.halfExtents }

// Tuning returns the solver-facing properties.
func (b *Body) Tuning() Tuning { return b.tuning }

// SetTuning replaces the solver-facing properties.
func (b *Body) SetTuning(t Tuning) {
	if t.SolverIterations < 1 {
		t.SolverIterations = 1
	}
	if t.SolverVelocityIterations < 1 {
		t.SolverVelocityIterations = 1
	}
	b.tuning = t
}

// Teleport places the body without sweeping and without implying velocity.
func (b *Body) Teleport(p Pose) {
	b.pose = NewPose(p.Position, p.Rotation)
	b.prevPosition = b.pose.Position
	b.prevRotation = b.pose.Rotation
	b.syncFootprint()
	b.touching = make(map[*resolv.Object]bool)
}

// MoveKinematic moves a kinematic body. Its velocity for the next step is
// derived from the displacement since the previous step.
func (b *Body) MoveKinematic(p Pose) {
	b.pose = NewPose(p.Position, p.Rotation)
	b.syncFootprint()
}

// worldExtents is the axis aligned half size of the rotated box.
func (b *Body) worldExtents() mgl64.Vec3 {
	m := b.pose.Rotation.Mat4().Mat3()
	var e mgl64.Vec3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			e[i] += math.Abs(m.At(i, j)) * b.halfExtents[j]
		}
	}
	return e
}

// inertia is a scalar stand-in for the box inertia tensor.
func (b *Body) inertia() float64 {
	h := b.halfExtents
	r2 := (h[0]*h[0] + h[1]*h[1] + h[2]*h[2]) / 3
	if r2 < 0.01 {
		r2 = 0.01
	}
	return b.mass * r2
}

func (b *Body) syncFootprint() {
	if b.object == nil {
		return
	}
	e := b.worldExtents()
	b.object.X = toUnits(b.pose.Position[0] - e[0])
	b.object.Y = toUnits(b.pose.Position[2] - e[2])
	b.object.W = toUnits(2 * e[0])
	b.object.H = toUnits(2 * e[2])
	b.object.Update()
}
