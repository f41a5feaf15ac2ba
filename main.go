package main

import (
	"flag"
	"log"
	"math"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/automoto/haulers-mp/config"
	"github.com/automoto/haulers-mp/levels"
	"github.com/automoto/haulers-mp/network"
	"github.com/automoto/haulers-mp/shared/leveldata"
	"github.com/automoto/haulers-mp/shared/netconfig"
	"github.com/automoto/haulers-mp/shared/protocol"
	"github.com/go-gl/mathgl/mgl64"
)

// hauler is a headless client that walks to the nearest free item, picks it
// up and carries it to a delivery zone. With -observe it only logs events.
type hauler struct {
	client  *network.Client
	replica *network.Replica
	zones   []leveldata.Rect // meters
	observe bool

	pos      mgl64.Vec3
	yaw      float64
	spawned  bool
	carrying netconfig.ItemID
}

func main() {
	addr := flag.String("server", "localhost:7373", "Server address")
	name := flag.String("name", "hauler", "Player name")
	version := flag.String("version", "", "Client version sent on join")
	observe := flag.Bool("observe", false, "Only log replicated state and events")
	flag.Parse()

	if err := protocol.RegisterComponents(); err != nil {
		log.Fatalf("Failed to register network components: %v", err)
	}

	client := network.NewClient()
	client.Connect(*addr, *version, *name)

	h := &hauler{
		client:  client,
		replica: network.NewReplica(),
		observe: *observe,
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	ticker := time.NewTicker(time.Second / time.Duration(config.Server.TickRate))
	defer ticker.Stop()
	for {
		select {
		case <-sigChan:
			log.Println("[client] shutting down")
			client.Disconnect()
			return
		case <-ticker.C:
			switch client.State() {
			case network.StateError:
				log.Fatalf("[client] %v", client.LastError())
			case network.StateJoinedGame:
				h.update(1 / float64(config.Server.TickRate))
			}
		}
	}
}

func (h *hauler) update(dt float64) {
	if h.zones == nil {
		h.loadZones()
	}
	if snap := h.client.LatestSnapshot(); snap != nil {
		h.replica.Apply(*snap)
	}
	h.logEvents()
	if h.observe {
		return
	}

	me, ok := h.replica.Holders[h.client.HolderID()]
	if !ok {
		return
	}
	if !h.spawned {
		h.pos = me.Transform.Position()
		h.spawned = true
	}
	h.carrying = me.Carrying

	const walkSpeed = 3.0
	var goal mgl64.Vec3
	if h.carrying != 0 {
		if len(h.zones) == 0 {
			return
		}
		z := h.zones[0]
		goal = mgl64.Vec3{z.X + z.W/2, h.pos[1], z.Y + z.H/2}
		if h.inZone() {
			if err := h.client.Release(h.carrying, mgl64.Vec3{}); err != nil {
				log.Printf("[client] release: %v", err)
			}
			return
		}
	} else {
		it, ok := h.replica.Nearest(h.client.HolderID())
		if !ok {
			return
		}
		goal = it.Transform.Position()
		goal[1] = h.pos[1]
		if goal.Sub(h.pos).Len() < config.Holder.ReachDistance*0.8 {
			if err := h.client.Grab(it.ItemID); err != nil {
				log.Printf("[client] grab: %v", err)
			}
		}
	}

	to := goal.Sub(h.pos)
	if to.Len() > 0.05 {
		h.yaw = math.Atan2(to[0], to[2])
		step := math.Min(walkSpeed*dt, to.Len())
		h.pos = h.pos.Add(to.Normalize().Mul(step))
	}
	if err := h.client.SendPose(h.pos, h.yaw); err != nil {
		log.Printf("[client] send pose: %v", err)
	}
}

func (h *hauler) inZone() bool {
	for _, z := range h.zones {
		if z.Contains(h.pos[0], h.pos[2]) {
			return true
		}
	}
	return false
}

// loadZones reads the delivery zones of the joined level from the built-in
// levels.
func (h *hauler) loadZones() {
	h.zones = []leveldata.Rect{}
	all, _, err := leveldata.LoadAllLevels(levels.FS, ".")
	if err != nil {
		log.Printf("[client] no level data: %v", err)
		return
	}
	lvl, ok := all[h.client.Level()]
	if !ok {
		log.Printf("[client] level %q is not built in, delivering disabled", h.client.Level())
		return
	}
	ppm := config.Physics.PixelsPerMeter
	for _, z := range lvl.Zones {
		h.zones = append(h.zones, leveldata.Rect{X: z.X / ppm, Y: z.Y / ppm, W: z.W / ppm, H: z.H / ppm})
	}
}

func (h *hauler) logEvents() {
	for _, e := range h.client.DrainGrabs() {
		log.Printf("[client] item %d grabbed by %d (%s)", e.ItemID, e.HolderID, e.Slot)
	}
	for _, e := range h.client.DrainReleases() {
		log.Printf("[client] item %d released (%s)", e.ItemID, e.Kind)
	}
	for _, e := range h.client.DrainDamage() {
		log.Printf("[client] item %d took %.1f at %.1fm/s, now %.1f", e.ItemID, e.Damage, e.ImpactSpeed, e.Value)
	}
	for _, e := range h.client.DrainBreaks() {
		log.Printf("[client] item %d broke", e.ItemID)
	}
	for _, e := range h.client.DrainResets() {
		log.Printf("[client] level reset (%d)", e.Resets)
	}
	if sums := h.client.DrainSummaries(); len(sums) > 0 && h.observe {
		s := h.replica.Session
		log.Printf("[client] session: total %.1f, deliverable %.1f, held %d, broken %d",
			s.TotalValue, s.DeliverableValue, s.HeldItems, s.BrokenItems)
	}
}
