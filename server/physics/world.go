package physics

import (
	"math"

	"github.com/automoto/haulers-mp/config"
	"github.com/automoto/haulers-mp/tags"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/solarlune/resolv"
)

// Resolv tags for world geometry
const (
	TagSolid = tags.ResolvSolid
	TagMover = tags.ResolvMover
	TagItem  = tags.ResolvItem
	TagFloor = tags.Floor
)

// unitsPerMeter scales meters into resolv space units. resolv treats one
// unit as a pixel when computing cell bounds.
const unitsPerMeter = 100.0

func toUnits(m float64) float64 { return m * unitsPerMeter }

func toMeters(u float64) float64 { return u / unitsPerMeter }

// World owns every body, joint and obstacle. It is not safe for concurrent
// use; the authority steps it from its game loop only.
type World struct {
	cfg    config.PhysicsConfig
	space  *resolv.Space
	nextID uint32

	bodies []*Body
	joints []*Joint
	movers []*Mover

	pending []Collision
}

// NewWorld creates an empty world covering [0, width] x [0, depth] meters in
// the ground plane.
func NewWorld(cfg config.PhysicsConfig, width, depth float64) *World {
	cellMeters := cfg.CellSize
	if cellMeters < 1 {
		cellMeters = 1
	}
	cell := int(toUnits(float64(cellMeters)))
	w := int(math.Ceil(width/float64(cellMeters))) * cell
	d := int(math.Ceil(depth/float64(cellMeters))) * cell
	return &World{
		cfg:   cfg,
		space: resolv.NewSpace(w, d, cell, cell),
	}
}

// AddSolid adds a static wall block. x and z are the min corner.
func (w *World) AddSolid(x, z, width, depth float64) *resolv.Object {
	obj := resolv.NewObject(toUnits(x), toUnits(z), toUnits(width), toUnits(depth), TagSolid)
	w.space.Add(obj)
	return obj
}

// AddMover adds a block that travels by (travelX, travelZ) and back, taking
// duration seconds each way.
func (w *World) AddMover(x, z, width, depth, travelX, travelZ, duration float64) *Mover {
	obj := resolv.NewObject(toUnits(x), toUnits(z), toUnits(width), toUnits(depth), TagMover)
	w.space.Add(obj)
	m := newMover(obj, mgl64.Vec3{x, 0, z}, mgl64.Vec3{travelX, 0, travelZ}, duration)
	obj.Data = m
	w.movers = append(w.movers, m)
	return m
}

// Movers returns the moving obstacles.
func (w *World) Movers() []*Mover { return w.movers }

// ResetMovers returns every mover to its origin.
func (w *World) ResetMovers() {
	for _, m := range w.movers {
		m.reset()
	}
}

// NewBody creates a dynamic body with a box footprint.
func (w *World) NewBody(spec BodySpec) *Body {
	tag := spec.Tag
	if tag == "" {
		tag = TagItem
	}
	w.nextID++
	b := &Body{
		ID:          w.nextID,
		Data:        spec.Data,
		mass:        spec.Mass,
		halfExtents: spec.HalfExtents,
		object:      resolv.NewObject(0, 0, 1, 1, tag),
		tag:         tag,
		touching:    make(map[*resolv.Object]bool),
	}
	b.object.Data = b
	b.SetTuning(Tuning{
		Drag:                     w.cfg.Drag,
		AngularDrag:              w.cfg.AngularDrag,
		SolverIterations:         w.cfg.SolverIterations,
		SolverVelocityIterations: w.cfg.SolverVelocityIterations,
	})
	w.space.Add(b.object)
	b.Teleport(spec.Pose)
	w.bodies = append(w.bodies, b)
	return b
}

// NewAnchor creates an invisible kinematic body with no footprint.
func (w *World) NewAnchor(p Pose) *Body {
	w.nextID++
	b := &Body{
		ID:        w.nextID,
		kinematic: true,
		touching:  make(map[*resolv.Object]bool),
	}
	b.SetTuning(Tuning{})
	b.Teleport(p)
	w.bodies = append(w.bodies, b)
	return b
}

// Connect creates a free joint between body and anchor.
func (w *World) Connect(body, anchor *Body) *Joint {
	j := &Joint{Body: body, Anchor: anchor}
	j.Free()
	w.joints = append(w.joints, j)
	return j
}

// Step advances the world by dt seconds and then delivers collision
// callbacks in body creation order.
func (w *World) Step(dt float64) {
	if dt <= 0 {
		return
	}
	for _, m := range w.movers {
		m.update(dt)
	}

	for _, b := range w.bodies {
		if b.kinematic {
			b.velocity = b.pose.Position.Sub(b.prevPosition).Mul(1 / dt)
			axis, angle := axisAngleBetween(b.prevRotation, b.pose.Rotation)
			b.angularVelocity = axis.Mul(angle / dt)
		}
	}

	for _, j := range w.joints {
		if !j.Driving() {
			continue
		}
		iters := j.Body.tuning.SolverIterations
		h := dt / float64(iters)
		for i := 0; i < iters; i++ {
			j.solve(h)
		}
	}

	for _, b := range w.bodies {
		if b.kinematic {
			continue
		}
		b.velocity[1] -= w.cfg.Gravity * dt
		b.velocity = b.velocity.Mul(1 / (1 + b.tuning.Drag*dt))
		b.angularVelocity = b.angularVelocity.Mul(1 / (1 + b.tuning.AngularDrag*dt))
	}

	for _, b := range w.bodies {
		if b.kinematic {
			continue
		}
		w.advance(b, dt)
	}

	for _, b := range w.bodies {
		b.prevPosition = b.pose.Position
		b.prevRotation = b.pose.Rotation
	}

	pending := w.pending
	w.pending = nil
	for _, c := range pending {
		if c.Body.OnCollision != nil {
			c.Body.OnCollision(c)
		}
	}
}

// advance moves one dynamic body through the level, splitting the motion
// into sweeps when continuous collision is on.
func (w *World) advance(b *Body, dt float64) {
	sweeps := 1
	if b.tuning.Continuous {
		e := b.worldExtents()
		minExtent := math.Min(e[0], math.Min(e[1], e[2]))
		if minExtent > 0 {
			sweeps = int(math.Ceil(b.velocity.Len() * dt / minExtent))
		}
		if sweeps > w.cfg.MaxSweepSteps {
			sweeps = w.cfg.MaxSweepSteps
		}
		if sweeps < 1 {
			sweeps = 1
		}
	}

	wasGrounded := b.grounded
	b.grounded = false
	touching := make(map[*resolv.Object]bool)
	h := dt / float64(sweeps)
	for s := 0; s < sweeps; s++ {
		w.moveAxis(b, 0, b.velocity[0]*h, touching)
		w.moveAxis(b, 2, b.velocity[2]*h, touching)
		w.moveVertical(b, b.velocity[1]*h, wasGrounded)
	}
	b.touching = touching

	// Integrate orientation: q' = q + 0.5 * (0, w) * q * dt
	omega := mgl64.Quat{W: 0, V: b.angularVelocity}
	q := b.pose.Rotation
	b.pose.Rotation = q.Add(omega.Mul(q).Scale(0.5 * dt)).Normalize()

	if b.grounded {
		f := w.cfg.Friction
		b.velocity[0] *= f
		b.velocity[2] *= f
		b.angularVelocity = b.angularVelocity.Mul(f)
	}
	b.syncFootprint()
}

// moveAxis moves b along world axis 0 (X) or 2 (Z) and resolves contacts with
// solids, movers and other bodies.
func (w *World) moveAxis(b *Body, axis int, delta float64, touching map[*resolv.Object]bool) {
	if delta == 0 {
		return
	}
	dx, dy := 0.0, 0.0
	if axis == 0 {
		dx = toUnits(delta)
	} else {
		dy = toUnits(delta)
	}
	check := b.object.Check(dx, dy, TagSolid, TagMover, TagItem)
	if check == nil {
		b.pose.Position[axis] += delta
		b.syncFootprint()
		return
	}

	var hit *resolv.Object
	best := math.Inf(1)
	bestMove := delta
	for _, obj := range check.Objects {
		if !w.overlapsAfter(b, obj, dx, dy) {
			continue
		}
		contact := check.ContactWithObject(obj)
		move := toMeters(contact.X())
		if axis == 2 {
			move = toMeters(contact.Y())
		}
		if math.Abs(move) < best {
			best = math.Abs(move)
			bestMove = move
			hit = obj
		}
	}
	if hit == nil {
		b.pose.Position[axis] += delta
		b.syncFootprint()
		return
	}

	b.pose.Position[axis] += bestMove
	b.syncFootprint()

	var normal mgl64.Vec3
	if delta > 0 {
		normal[axis] = 1
	} else {
		normal[axis] = -1
	}
	w.respond(b, hit, normal, touching)
}

// overlapsAfter reports whether b's footprint moved by (dx, dy) units overlaps obj,
// including the height range for other bodies.
func (w *World) overlapsAfter(b *Body, obj *resolv.Object, dx, dy float64) bool {
	if obj == b.object {
		return false
	}
	o := b.object
	if o.X+dx >= obj.X+obj.W || o.X+dx+o.W <= obj.X || o.Y+dy >= obj.Y+obj.H || o.Y+dy+o.H <= obj.Y {
		return false
	}
	if other, ok := obj.Data.(*Body); ok {
		eb, eo := b.worldExtents(), other.worldExtents()
		if math.Abs(b.pose.Position[1]-other.pose.Position[1]) >= eb[1]+eo[1] {
			return false
		}
	}
	return true
}

// respond applies the velocity response for a contact along normal and
// queues a collision event when the contact is new.
func (w *World) respond(b *Body, hit *resolv.Object, normal mgl64.Vec3, touching map[*resolv.Object]bool) {
	axis := 0
	if normal[2] != 0 {
		axis = 2
	}
	e := w.cfg.Restitution
	var (
		otherVel mgl64.Vec3
		other    *Body
		tag      = TagSolid
	)
	switch data := hit.Data.(type) {
	case *Mover:
		otherVel = data.Velocity()
		tag = TagMover
	case *Body:
		other = data
		otherVel = data.velocity
		tag = TagItem
	}
	rel := b.velocity.Sub(otherVel)
	approach := rel.Dot(normal)

	isNew := !b.touching[hit]
	touching[hit] = true
	if isNew && approach > w.cfg.RestingSpeed {
		ext := b.worldExtents()
		point := b.pose.Position.Add(normal.Mul(ext[axis]))
		w.pending = append(w.pending, Collision{
			Body:             b,
			Other:            other,
			Tag:              tag,
			RelativeVelocity: rel,
			Point:            point,
			Normal:           normal,
		})
		if other != nil {
			w.pending = append(w.pending, Collision{
				Body:             other,
				Other:            b,
				Tag:              b.tag,
				RelativeVelocity: rel.Mul(-1),
				Point:            point,
				Normal:           normal.Mul(-1),
			})
			other.touching[b.object] = true
		}
	}
	if approach <= 0 {
		return
	}

	if other != nil && !other.kinematic {
		iters := b.tuning.SolverVelocityIterations
		for i := 0; i < iters; i++ {
			u1, u2 := b.velocity[axis], other.velocity[axis]
			if (u1-u2)*normal[axis] <= 0 {
				break
			}
			m1, m2 := b.mass, other.mass
			p := m1*u1 + m2*u2
			b.velocity[axis] = (p - m2*e*(u1-u2)) / (m1 + m2)
			other.velocity[axis] = (p + m1*e*(u1-u2)) / (m1 + m2)
		}
		return
	}
	// Static or moving obstacle: reflect the approaching component.
	b.velocity[axis] = otherVel[axis] - e*rel[axis]
}

// moveVertical moves b along Y and lands it on the floor.
func (w *World) moveVertical(b *Body, delta float64, wasGrounded bool) {
	ey := b.worldExtents()[1]
	floor := w.cfg.FloorY + ey
	next := b.pose.Position[1] + delta
	if next > floor {
		b.pose.Position[1] = next
		return
	}
	b.pose.Position[1] = floor
	vy := b.velocity[1]
	if !b.grounded && !wasGrounded && -vy > w.cfg.RestingSpeed {
		w.pending = append(w.pending, Collision{
			Body:             b,
			Tag:              TagFloor,
			RelativeVelocity: b.velocity,
			Point:            b.pose.Position.Sub(mgl64.Vec3{0, ey, 0}),
			Normal:           mgl64.Vec3{0, -1, 0},
		})
	}
	b.grounded = true
	if vy < 0 {
		bounce := -vy * w.cfg.Restitution
		if bounce < w.cfg.RestingSpeed {
			bounce = 0
		}
		b.velocity[1] = bounce
	}
}

func axisAngleBetween(from, to mgl64.Quat) (mgl64.Vec3, float64) {
	q := to.Mul(from.Inverse())
	if q.W < 0 {
		q = mgl64.Quat{W: -q.W, V: q.V.Mul(-1)}
	}
	s := q.V.Len()
	if s < 1e-12 {
		return mgl64.Vec3{}, 0
	}
	return q.V.Mul(1 / s), 2 * math.Atan2(s, q.W)
}
