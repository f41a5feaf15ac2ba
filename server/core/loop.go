package core

import (
	"log"
	"sync"
	"sync/atomic"
	"time"

	cfg "github.com/automoto/haulers-mp/config"
	"github.com/leap-fish/necs/esync/srvsync"
)

type GameLoop struct {
	server   *Server
	tickRate int
	running  atomic.Bool
	stopOnce sync.Once
	stopChan chan struct{}
	done     chan struct{}
}

func NewGameLoop(server *Server, tickRate int) *GameLoop {
	return &GameLoop{
		server:   server,
		tickRate: tickRate,
		stopChan: make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (g *GameLoop) Run() {
	g.running.Store(true)
	defer close(g.done)
	ticker := time.NewTicker(time.Second / time.Duration(g.tickRate))
	defer ticker.Stop()

	log.Printf("[loop] started at %d ticks/second, %d physics steps per tick", g.tickRate, g.stepsPerTick())

	for {
		select {
		case <-g.stopChan:
			log.Println("[loop] stopped")
			return
		case <-ticker.C:
			g.tick()
		}
	}
}

// Stop ends the loop and waits for the tick in progress to finish. Calling
// it again is a no-op.
func (g *GameLoop) Stop() {
	g.stopOnce.Do(func() { close(g.stopChan) })
	if g.running.Load() {
		<-g.done
	}
}

func (g *GameLoop) tick() {
	g.server.Tick()

	if err := srvsync.DoSync(); err != nil {
		log.Printf("[loop] sync error: %v", err)
	}
}

// stepsPerTick is how many fixed physics steps run per server tick, so the
// physics rate holds at any tick rate.
func (g *GameLoop) stepsPerTick() int {
	steps := cfg.Server.PhysicsHz / g.tickRate
	if steps < 1 {
		steps = 1
	}
	return steps
}

// stepDuration is the length of one physics step in seconds.
func (g *GameLoop) stepDuration() float64 {
	return 1 / float64(g.tickRate*g.stepsPerTick())
}
