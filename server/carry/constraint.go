package carry

import (
	"github.com/automoto/haulers-mp/config"
	"github.com/automoto/haulers-mp/server/physics"
	"github.com/automoto/haulers-mp/shared/gamemath"
)

// Rig creates the anchor and joint a Controller drives. *physics.World
// satisfies it.
type Rig interface {
	NewAnchor(p physics.Pose) *physics.Body
	Connect(body, anchor *physics.Body) *physics.Joint
}

// Controller makes a held body follow a target pose. It moves an invisible
// kinematic anchor toward the target and pulls the body after it with a
// spring/damper joint, so the body keeps colliding like any other.
type Controller struct {
	cfg  config.CarryConfig
	rig  Rig
	body *physics.Body

	// Created on first activation, reused afterwards
	anchor *physics.Body
	joint  *physics.Joint

	active    bool
	target    physics.Pose
	hasTarget bool
	saved     physics.Tuning
}

// NewController creates an inactive controller for body.
func NewController(body *physics.Body, rig Rig, cfg config.CarryConfig) *Controller {
	return &Controller{cfg: cfg, rig: rig, body: body}
}

// SetTarget records the pose the anchor should head for.
func (c *Controller) SetTarget(p physics.Pose) {
	c.target = physics.NewPose(p.Position, p.Rotation)
	c.hasTarget = true
}

// HasTarget reports whether a target was set since the last deactivation.
func (c *Controller) HasTarget() bool { return c.hasTarget }

// Active reports whether the joint is driving the body.
func (c *Controller) Active() bool { return c.active }

// AnchorPose returns the anchor's pose, or the body's before the anchor exists.
func (c *Controller) AnchorPose() physics.Pose {
	if c.anchor == nil {
		return c.body.Pose()
	}
	return c.anchor.Pose()
}

// Activate starts driving the body. It refuses until a target was set.
func (c *Controller) Activate() bool {
	if c.active {
		return true
	}
	if !c.hasTarget {
		return false
	}
	if c.anchor == nil {
		c.anchor = c.rig.NewAnchor(c.body.Pose())
		c.joint = c.rig.Connect(c.body, c.anchor)
	} else {
		c.anchor.Teleport(c.body.Pose())
	}

	c.saved = c.body.Tuning()
	held := physics.Tuning{
		Drag:                     c.cfg.HeldDrag,
		AngularDrag:              c.cfg.HeldAngularDrag,
		SolverIterations:         max(c.saved.SolverIterations, c.cfg.HeldSolverIterations),
		SolverVelocityIterations: max(c.saved.SolverVelocityIterations, c.cfg.HeldSolverVelocityIterations),
		Continuous:               true,
	}
	c.body.SetTuning(held)
	c.joint.SetDrives(
		physics.Drive{Spring: c.cfg.LinearSpring, Damper: c.cfg.LinearDamper},
		physics.Drive{Spring: c.cfg.AngularSpring, Damper: c.cfg.AngularDamper},
		c.cfg.LinearLimit,
	)
	c.active = true
	return true
}

// Deactivate frees every joint axis and leaves the body an ordinary rigid
// body. The target is forgotten, so the next hold must supply its own. Safe
// to call at any time, any number of times.
func (c *Controller) Deactivate() {
	if c.joint != nil {
		c.joint.Free()
	}
	if c.active {
		c.body.SetTuning(c.saved)
	}
	c.active = false
	c.hasTarget = false
	if c.anchor != nil {
		c.anchor.Teleport(c.body.Pose())
	}
}

// Step moves the anchor one physics step toward the target, never faster
// than the configured linear and angular speeds.
func (c *Controller) Step(dt float64) {
	if !c.active || dt <= 0 {
		return
	}
	cur := c.anchor.Pose()
	pos := gamemath.StepAnchorPosition(cur.Position, c.target.Position, c.cfg.Smoothing, c.cfg.MaxLinearSpeed, dt)
	rot := gamemath.StepAnchorRotation(cur.Rotation, c.target.Rotation, c.cfg.Smoothing, c.cfg.MaxAngularSpeed, dt)
	c.anchor.MoveKinematic(physics.NewPose(pos, rot))
}
