package core

import (
	"log"

	"github.com/automoto/haulers-mp/archetypes"
	"github.com/automoto/haulers-mp/shared/netcomponents"
	"github.com/leap-fish/necs/esync/srvsync"
)

// spawnSession creates the single replicated session summary entity.
func (s *Server) spawnSession() {
	entry := archetypes.Session.Spawn(s.world)
	s.session = entry.Entity()
	netcomponents.NetSession.Set(entry, &netcomponents.NetSessionData{})
	if err := srvsync.NetworkSync(s.world, &s.session, netcomponents.NetSession); err != nil {
		log.Printf("[server] failed to set up network sync for session: %v", err)
	}
	s.refreshSession()
}

// replicate copies authority state into the synced components. It only
// writes; nothing read back from these components feeds the simulation.
func (s *Server) replicate() {
	for _, e := range s.items {
		if !s.world.Valid(e.entity) {
			continue
		}
		pose := e.item.Body().Pose()
		nt := netcomponents.NetTransform.Get(s.world.Entry(e.entity))
		*nt = netcomponents.NewNetTransform(pose.Position, pose.Rotation)
	}

	for _, h := range s.holders {
		if !s.world.Valid(h.entity) {
			continue
		}
		entry := s.world.Entry(h.entity)
		nt := netcomponents.NetTransform.Get(entry)
		*nt = netcomponents.NewNetTransform(h.position, h.rotation())
		nh := netcomponents.NetHolder.Get(entry)
		nh.Carrying = 0
		if e := s.carrying(h.id); e != nil {
			nh.Carrying = e.item.ID
		}
	}

	s.refreshSession()
}

// SessionSummary computes the session totals from the items.
func (s *Server) SessionSummary() netcomponents.NetSessionData {
	sum := netcomponents.NetSessionData{
		DeliverableValue: s.DeliverableValue(),
		Resets:           s.resets,
	}
	for _, e := range s.items {
		sum.TotalValue += e.item.Value()
		if e.item.IsGrabbed() {
			sum.HeldItems++
		}
		if e.item.IsBroken() {
			sum.BrokenItems++
		}
	}
	return sum
}

func (s *Server) refreshSession() {
	if !s.world.Valid(s.session) {
		return
	}
	ns := netcomponents.NetSession.Get(s.world.Entry(s.session))
	*ns = s.SessionSummary()
}
