package core

import (
	"fmt"
	"log"
	"sync/atomic"

	cfg "github.com/automoto/haulers-mp/config"
	"github.com/automoto/haulers-mp/server/carry"
	"github.com/automoto/haulers-mp/shared/leveldata"
	"github.com/automoto/haulers-mp/shared/messages"
	"github.com/automoto/haulers-mp/shared/netconfig"
	"github.com/leap-fish/necs/esync/srvsync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
	"github.com/yohamta/donburi"
)

// Peer is a connected client as the server sees it. *router.NetworkClient
// satisfies it.
type Peer interface {
	Id() string
	SendMessage(msg any) error
}

// EventSink receives every event the server broadcasts, on the game loop
// goroutine. Sinks must not block.
type EventSink interface {
	HandleEvent(tick uint64, at float64, event any)
}

// Options configures a Server.
type Options struct {
	Name     string
	Version  string // Required client version, empty accepts any
	TickRate int
	Level    *leveldata.LevelData
	Catalog  *cfg.Catalog
	Records  *Records // optional
	Sinks    []EventSink
}

// Server is the authority. Router callbacks only enqueue commands; all
// simulation state is owned by the game loop goroutine.
type Server struct {
	world     donburi.World
	loop      *GameLoop
	transport *transports.WsServerTransport

	name     string
	version  string
	tickRate int
	catalog  *cfg.Catalog
	records  *Records
	sinks    []EventSink

	commands chan command
	players  atomic.Int32

	// Loop goroutine only
	level      *ServerLevel
	holders    map[netconfig.HolderID]*holder
	peers      map[Peer]*holder
	nextHolder netconfig.HolderID
	items      []*itemEntry
	itemsByID  map[netconfig.ItemID]*itemEntry
	session    donburi.Entity
	now        float64
	tick       uint64
	resets     int
}

// NewServer creates a server for one level.
func NewServer(opts Options) (*Server, error) {
	if opts.Level == nil {
		return nil, fmt.Errorf("new server: no level")
	}
	if opts.Catalog == nil {
		opts.Catalog = cfg.DefaultCatalog()
	}
	if opts.TickRate <= 0 {
		opts.TickRate = cfg.Server.TickRate
	}
	queue := cfg.Server.CommandQueueSize
	if queue < 1 {
		queue = 1
	}

	world := donburi.NewWorld()
	s := &Server{
		world:     world,
		name:      opts.Name,
		version:   opts.Version,
		tickRate:  opts.TickRate,
		catalog:   opts.Catalog,
		records:   opts.Records,
		sinks:     opts.Sinks,
		commands:  make(chan command, queue),
		holders:   make(map[netconfig.HolderID]*holder),
		peers:     make(map[Peer]*holder),
		itemsByID: make(map[netconfig.ItemID]*itemEntry),
	}
	s.loop = NewGameLoop(s, opts.TickRate)

	// Set up the world for esync
	srvsync.UseEsync(world)

	s.level = NewServerLevel(opts.Level, cfg.Physics)
	if err := s.spawnItems(); err != nil {
		return nil, err
	}
	s.spawnSession()

	s.setupRouterCallbacks()
	return s, nil
}

// Start begins the server on the given port
func (s *Server) Start(port uint) error {
	go s.loop.Run()

	s.transport = transports.NewWsServerTransport(port, "", nil)
	return s.transport.Start()
}

// Stop gracefully shuts down the server
func (s *Server) Stop() {
	s.loop.Stop()
}

func (s *Server) setupRouterCallbacks() {
	router.OnConnect(func(client *router.NetworkClient) {
		log.Printf("[server] client connected: %s", client.Id())
	})

	router.OnDisconnect(func(client *router.NetworkClient, err error) {
		if err != nil {
			log.Printf("[server] client %s disconnected with error: %v", client.Id(), err)
		} else {
			log.Printf("[server] client %s disconnected", client.Id())
		}
		s.enqueueAlways(leaveCommand{peer: client})
	})

	router.On(func(client *router.NetworkClient, msg messages.JoinRequest) {
		s.enqueue(joinCommand{peer: client, req: msg})
	})
	router.On(func(client *router.NetworkClient, msg messages.HolderPoseUpdate) {
		s.enqueue(poseCommand{peer: client, msg: msg})
	})
	router.On(func(client *router.NetworkClient, msg messages.GrabRequest) {
		s.enqueue(grabCommand{peer: client, msg: msg})
	})
	router.On(func(client *router.NetworkClient, msg messages.ReleaseRequest) {
		s.enqueue(releaseCommand{peer: client, msg: msg})
	})
	router.On(func(client *router.NetworkClient, msg messages.ThrowRequest) {
		s.enqueue(throwCommand{peer: client, msg: msg})
	})
	router.On(func(client *router.NetworkClient, msg messages.ResetRequest) {
		s.enqueue(resetCommand{peer: client})
	})

	router.OnError(func(client *router.NetworkClient, err error) {
		log.Printf("[server] client error: %v", err)
	})
}

// Tick runs one authority tick: apply queued requests, step physics, then
// refresh replicated components. The game loop syncs to clients afterwards.
func (s *Server) Tick() {
	s.ProcessCommands()
	s.updatePhysics()
	s.replicate()
	s.tick++
}

// Emit implements carry.Emitter: item events go to every client and sink.
func (s *Server) Emit(event any) {
	if sum, ok := event.(messages.ItemSummaryEvent); ok {
		s.applySummary(sum)
	}
	s.broadcastEvent(event)
}

// broadcastEvent sends a one-shot event to every joined client and sink.
func (s *Server) broadcastEvent(event any) {
	for peer := range s.peers {
		if err := peer.SendMessage(event); err != nil {
			log.Printf("[server] send %T to %s: %v", event, peer.Id(), err)
		}
	}
	for _, sink := range s.sinks {
		sink.HandleEvent(s.tick, s.now, event)
	}
}

func (s *Server) clock() carry.Clock {
	return carry.ClockFunc(func() float64 { return s.now })
}

// World returns the ECS world
func (s *Server) World() donburi.World {
	return s.world
}

// Level returns the loaded level.
func (s *Server) Level() *ServerLevel {
	return s.level
}

// PlayerCount returns the number of joined holders. Safe from any goroutine.
func (s *Server) PlayerCount() int {
	return int(s.players.Load())
}

// Now returns the simulation time in seconds.
func (s *Server) Now() float64 {
	return s.now
}
