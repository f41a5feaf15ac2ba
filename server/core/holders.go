package core

import (
	"log"
	"sort"

	"github.com/automoto/haulers-mp/archetypes"
	cfg "github.com/automoto/haulers-mp/config"
	"github.com/automoto/haulers-mp/server/physics"
	"github.com/automoto/haulers-mp/shared/gamemath"
	"github.com/automoto/haulers-mp/shared/mathutil"
	"github.com/automoto/haulers-mp/shared/messages"
	"github.com/automoto/haulers-mp/shared/netcomponents"
	"github.com/automoto/haulers-mp/shared/netconfig"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/leap-fish/necs/esync"
	"github.com/leap-fish/necs/esync/srvsync"
	"github.com/yohamta/donburi"
)

// holder is a joined client's avatar as the authority tracks it. It is
// server-only state and never synced; NetHolder carries what observers see.
type holder struct {
	id     netconfig.HolderID
	name   string
	peer   Peer
	seat   int
	entity donburi.Entity

	position mgl64.Vec3
	yaw      float64
	seq      uint32
	hasPose  bool
}

// rotation is the avatar's facing.
func (h *holder) rotation() mgl64.Quat {
	return gamemath.YawRotation(h.yaw)
}

// attachPose is where the holder's hands are.
func (h *holder) attachPose() physics.Pose {
	rot := h.rotation()
	pos := gamemath.CalculateAttachPoint(h.position, rot, mgl64.Vec3(cfg.Holder.AttachOffset))
	return physics.NewPose(pos, rot)
}

// HolderPose implements carry.HolderPoses from the latest applied updates.
func (s *Server) HolderPose(id netconfig.HolderID) (physics.Pose, bool) {
	h, ok := s.holders[id]
	if !ok || !h.hasPose {
		return physics.Pose{}, false
	}
	return h.attachPose(), true
}

func (s *Server) join(peer Peer, req messages.JoinRequest) {
	if _, joined := s.peers[peer]; joined {
		return
	}
	if s.version != "" && req.Version != s.version {
		s.reject(peer, "version mismatch: server requires "+s.version)
		return
	}
	if len(s.holders) >= cfg.Server.MaxHolders {
		s.reject(peer, "server full")
		return
	}

	s.nextHolder++
	h := &holder{
		id:   s.nextHolder,
		name: req.PlayerName,
		peer: peer,
		seat: s.freeSeat(),
	}
	h.position = s.level.SpawnPoint(h.seat)
	h.hasPose = true

	entry := archetypes.Holder.Spawn(s.world)
	h.entity = entry.Entity()
	netcomponents.NetHolder.Set(entry, &netcomponents.NetHolderData{HolderID: h.id, Name: h.name})
	netcomponents.NetTransform.Set(entry, ptr(netcomponents.NewNetTransform(h.position, h.rotation())))
	if err := srvsync.NetworkSync(s.world, &h.entity,
		srvsync.WithInterp(netcomponents.NetTransform),
		netcomponents.NetHolder,
	); err != nil {
		log.Printf("[server] failed to set up network sync for holder %d: %v", h.id, err)
	}

	s.holders[h.id] = h
	s.peers[peer] = h
	s.players.Store(int32(len(s.holders)))

	var netID esync.NetworkId
	if nid := esync.GetNetworkId(entry); nid != nil {
		netID = *nid
	}
	accepted := messages.JoinAccepted{
		NetworkID:  netID,
		HolderID:   h.id,
		ServerName: s.name,
		Level:      s.level.Name,
		TickRate:   s.tickRate,
		Host:       s.hostID() == h.id,
	}
	if err := peer.SendMessage(accepted); err != nil {
		log.Printf("[server] send join accept to %s: %v", peer.Id(), err)
	}
	log.Printf("[server] holder %d (%q) joined in seat %d", h.id, h.name, h.seat)
}

func (s *Server) reject(peer Peer, reason string) {
	log.Printf("[server] rejecting %s: %s", peer.Id(), reason)
	if err := peer.SendMessage(messages.JoinRejected{Reason: reason}); err != nil {
		log.Printf("[server] send join reject to %s: %v", peer.Id(), err)
	}
}

// leave removes the avatar and drops whatever the holder carried through the
// forced-drop path.
func (s *Server) leave(peer Peer) {
	h, ok := s.peers[peer]
	if !ok {
		return
	}
	delete(s.peers, peer)
	delete(s.holders, h.id)
	for _, e := range s.items {
		if e.item.Coordinator().SlotOf(h.id) == netconfig.SlotNone {
			continue
		}
		e.item.ForceDrop(e.item.Body().Velocity())
	}
	s.players.Store(int32(len(s.holders)))
	if s.world.Valid(h.entity) {
		s.world.Remove(h.entity)
	}
	log.Printf("[server] holder %d left", h.id)
}

// updatePose applies an avatar pose. Updates older than the last applied one
// are dropped so a late packet never moves the holder back.
func (s *Server) updatePose(peer Peer, msg messages.HolderPoseUpdate) {
	h, ok := s.peers[peer]
	if !ok {
		return
	}
	if h.seq != 0 && msg.Sequence <= h.seq {
		return
	}
	if !mathutil.Finite(msg.X, msg.Y, msg.Z, msg.Yaw) {
		log.Printf("[server] holder %d sent a non-finite pose, dropped", h.id)
		return
	}
	h.seq = msg.Sequence
	h.position = mgl64.Vec3{msg.X, msg.Y, msg.Z}
	h.yaw = msg.Yaw
	h.hasPose = true
}

// hostID is the longest-joined holder still present.
func (s *Server) hostID() netconfig.HolderID {
	var host netconfig.HolderID
	for id := range s.holders {
		if host == 0 || id < host {
			host = id
		}
	}
	return host
}

// freeSeat returns the lowest seat index not taken.
func (s *Server) freeSeat() int {
	taken := make([]int, 0, len(s.holders))
	for _, h := range s.holders {
		taken = append(taken, h.seat)
	}
	sort.Ints(taken)
	seat := 0
	for _, t := range taken {
		if t == seat {
			seat++
		}
	}
	return seat
}

// carrying returns the item holder has a slot on, or nil.
func (s *Server) carrying(id netconfig.HolderID) *itemEntry {
	for _, e := range s.items {
		if e.item.Coordinator().SlotOf(id) != netconfig.SlotNone {
			return e
		}
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
