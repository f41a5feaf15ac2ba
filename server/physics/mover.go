package physics

import (
	"github.com/go-gl/mathgl/mgl64"
	"github.com/solarlune/resolv"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// Mover is a kinematic obstacle that slides back and forth between its
// origin and origin+travel.
type Mover struct {
	object   *resolv.Object
	origin   mgl64.Vec3 // min corner, meters
	travel   mgl64.Vec3
	tween    *gween.Sequence
	progress float64
	velocity mgl64.Vec3
}

func newMover(obj *resolv.Object, origin, travel mgl64.Vec3, duration float64) *Mover {
	if duration <= 0 {
		duration = 1
	}
	// Out and back, eased at both ends.
	seq := gween.NewSequence()
	seq.Add(
		gween.New(0, 1, float32(duration), ease.InOutQuad),
		gween.New(1, 0, float32(duration), ease.InOutQuad),
	)
	return &Mover{
		object: obj,
		origin: origin,
		travel: travel,
		tween:  seq,
	}
}

// Velocity returns the mover's velocity over the last step.
func (m *Mover) Velocity() mgl64.Vec3 { return m.velocity }

// Offset returns the current displacement from the origin.
func (m *Mover) Offset() mgl64.Vec3 { return m.travel.Mul(m.progress) }

func (m *Mover) update(dt float64) {
	t, _, done := m.tween.Update(float32(dt))
	if done {
		m.tween.Reset()
	}
	prev := m.Offset()
	m.progress = float64(t)
	cur := m.Offset()
	if dt > 0 {
		m.velocity = cur.Sub(prev).Mul(1 / dt)
	}
	m.place(cur)
}

func (m *Mover) place(offset mgl64.Vec3) {
	m.object.X = toUnits(m.origin[0] + offset[0])
	m.object.Y = toUnits(m.origin[2] + offset[2])
	m.object.Update()
}

func (m *Mover) reset() {
	m.tween.Reset()
	m.progress = 0
	m.velocity = mgl64.Vec3{}
	m.place(mgl64.Vec3{})
}
