package core

import (
	"fmt"
	"log"

	"github.com/automoto/haulers-mp/archetypes"
	cfg "github.com/automoto/haulers-mp/config"
	"github.com/automoto/haulers-mp/server/carry"
	"github.com/automoto/haulers-mp/server/physics"
	"github.com/automoto/haulers-mp/shared/gamemath"
	"github.com/automoto/haulers-mp/shared/messages"
	"github.com/automoto/haulers-mp/shared/mathutil"
	"github.com/automoto/haulers-mp/shared/netcomponents"
	"github.com/automoto/haulers-mp/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/leap-fish/necs/esync/srvsync"
	"github.com/yohamta/donburi"
)

// itemEntry ties a carry.Item to its replicated entity.
type itemEntry struct {
	item   *carry.Item
	entity donburi.Entity
}

// spawnItems creates one item per level spawn, in level order. Item IDs
// start at 1 and stay stable across resets.
func (s *Server) spawnItems() error {
	env := carry.Env{
		Rig:    s.level.World,
		Clock:  s.clock(),
		Events: s,
		Carry:  cfg.Carry,
		Damage: cfg.Damage,
	}
	for i, sp := range s.level.Items {
		typ, err := s.catalog.Lookup(sp.ItemType)
		if err != nil {
			return fmt.Errorf("level %s item %d: %w", s.level.Name, i, err)
		}
		half := mgl64.Vec3(typ.Size).Mul(0.5)
		pose := physics.NewPose(
			mgl64.Vec3{sp.X, cfg.Physics.FloorY + half[1], sp.Y},
			gamemath.YawRotation(mgl64.DegToRad(sp.Yaw)),
		)
		id := netconfig.ItemID(i + 1)
		body := s.level.World.NewBody(physics.BodySpec{
			Pose:        pose,
			Mass:        typ.Mass,
			HalfExtents: half,
			Data:        id,
		})
		it := carry.NewItem(id, typ, body, env)

		entry := archetypes.Item.Spawn(s.world)
		e := &itemEntry{item: it, entity: entry.Entity()}
		netcomponents.NetItem.Set(entry, &netcomponents.NetItemData{
			ItemID:    id,
			TypeName:  typ.Name,
			Value:     it.Value(),
			BaseValue: typ.BaseValue,
			State:     it.State(),
		})
		netcomponents.NetTransform.Set(entry, ptr(netcomponents.NewNetTransform(pose.Position, pose.Rotation)))
		if err := srvsync.NetworkSync(s.world, &e.entity,
			srvsync.WithInterp(netcomponents.NetTransform),
			netcomponents.NetItem,
		); err != nil {
			log.Printf("[server] failed to set up network sync for item %d: %v", id, err)
		}

		s.items = append(s.items, e)
		s.itemsByID[id] = e
	}
	return nil
}

// Item returns the item with the given ID.
func (s *Server) Item(id netconfig.ItemID) (*carry.Item, bool) {
	e, ok := s.itemsByID[id]
	if !ok {
		return nil, false
	}
	return e.item, true
}

// Items returns every item in spawn order.
func (s *Server) Items() []*carry.Item {
	out := make([]*carry.Item, len(s.items))
	for i, e := range s.items {
		out[i] = e.item
	}
	return out
}

// grab validates reach and the one-item-per-holder rule before handing the
// request to the item.
func (s *Server) grab(peer Peer, msg messages.GrabRequest) {
	h, e, ok := s.lookup(peer, msg.ItemID)
	if !ok {
		return
	}
	if held := s.carrying(h.id); held != nil {
		log.Printf("[server] holder %d already carries item %d", h.id, held.item.ID)
		return
	}
	hands := h.attachPose().Position
	if d := hands.Sub(e.item.Body().Position()).Len(); d > cfg.Holder.ReachDistance {
		log.Printf("[server] holder %d out of reach of item %d (%.2fm)", h.id, msg.ItemID, d)
		return
	}
	if !e.item.TryGrab(h.id) {
		log.Printf("[server] holder %d could not grab item %d (%s)", h.id, msg.ItemID, e.item.State())
	}
}

func (s *Server) release(peer Peer, msg messages.ReleaseRequest) {
	h, e, ok := s.lookup(peer, msg.ItemID)
	if !ok {
		return
	}
	vel, ok := clampVelocity(msg.VelX, msg.VelY, msg.VelZ)
	if !ok {
		log.Printf("[server] holder %d sent a non-finite release velocity for item %d", h.id, msg.ItemID)
		return
	}
	if !e.item.Release(h.id, vel) {
		log.Printf("[server] holder %d released item %d it does not hold", h.id, msg.ItemID)
	}
}

func (s *Server) throw(peer Peer, msg messages.ThrowRequest) {
	h, e, ok := s.lookup(peer, msg.ItemID)
	if !ok {
		return
	}
	if e.item.Coordinator().SlotOf(h.id) == netconfig.SlotNone {
		log.Printf("[server] holder %d threw item %d it does not hold", h.id, msg.ItemID)
		return
	}
	vel, ok := clampVelocity(msg.VelX, msg.VelY, msg.VelZ)
	if !ok {
		log.Printf("[server] holder %d sent a non-finite throw velocity for item %d", h.id, msg.ItemID)
		return
	}
	e.item.Throw(vel)
}

func (s *Server) lookup(peer Peer, id netconfig.ItemID) (*holder, *itemEntry, bool) {
	h, ok := s.peers[peer]
	if !ok {
		return nil, nil, false
	}
	e, ok := s.itemsByID[id]
	if !ok {
		log.Printf("[server] holder %d asked for unknown item %d", h.id, id)
		return nil, nil, false
	}
	return h, e, true
}

// clampVelocity caps client supplied velocities at MaxThrowSpeed. It fails
// for NaN or infinite components.
func clampVelocity(x, y, z float64) (mgl64.Vec3, bool) {
	if !mathutil.Finite(x, y, z) {
		return mgl64.Vec3{}, false
	}
	return mathutil.ClampLength(mgl64.Vec3{x, y, z}, cfg.Holder.MaxThrowSpeed), true
}

// updatePhysics runs the fixed physics steps for one tick. Each step drives
// every held item from the freshest holder poses, then steps the world;
// collision callbacks run inside the world step on this goroutine.
func (s *Server) updatePhysics() {
	steps := s.loop.stepsPerTick()
	dt := s.loop.stepDuration()
	for step := 0; step < steps; step++ {
		for _, e := range s.items {
			e.item.FixedStep(dt, s)
		}
		s.now += dt
		s.level.World.Step(dt)
	}
}

// applySummary mirrors an item summary into its replicated component.
func (s *Server) applySummary(sum messages.ItemSummaryEvent) {
	e, ok := s.itemsByID[sum.ItemID]
	if !ok || !s.world.Valid(e.entity) {
		return
	}
	ni := netcomponents.NetItem.Get(s.world.Entry(e.entity))
	ni.Value = sum.Value
	ni.HolderCount = sum.HolderCount
	ni.State = sum.State
}
