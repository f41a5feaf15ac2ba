package core

import (
	"log"

	"github.com/automoto/haulers-mp/shared/messages"
)

// command is a client request waiting for the game loop. Router callbacks
// create them; only ProcessCommands applies them.
type command interface {
	apply(s *Server)
}

type joinCommand struct {
	peer Peer
	req  messages.JoinRequest
}

type leaveCommand struct {
	peer Peer
}

type poseCommand struct {
	peer Peer
	msg  messages.HolderPoseUpdate
}

type grabCommand struct {
	peer Peer
	msg  messages.GrabRequest
}

type releaseCommand struct {
	peer Peer
	msg  messages.ReleaseRequest
}

type throwCommand struct {
	peer Peer
	msg  messages.ThrowRequest
}

type resetCommand struct {
	peer Peer
}

func (c joinCommand) apply(s *Server)    { s.join(c.peer, c.req) }
func (c leaveCommand) apply(s *Server)   { s.leave(c.peer) }
func (c poseCommand) apply(s *Server)    { s.updatePose(c.peer, c.msg) }
func (c grabCommand) apply(s *Server)    { s.grab(c.peer, c.msg) }
func (c releaseCommand) apply(s *Server) { s.release(c.peer, c.msg) }
func (c throwCommand) apply(s *Server)   { s.throw(c.peer, c.msg) }
func (c resetCommand) apply(s *Server)   { s.requestReset(c.peer) }

// enqueue queues a request for the next tick. It never blocks; when the queue
// is full the request is dropped like a lost packet.
func (s *Server) enqueue(c command) {
	select {
	case s.commands <- c:
	default:
		log.Printf("[server] command queue full, dropping %T", c)
	}
}

// enqueueAlways queues a command that must not be lost, waiting for room.
func (s *Server) enqueueAlways(c command) {
	select {
	case s.commands <- c:
	case <-s.loop.stopChan:
	}
}

// ProcessCommands applies every request queued before this call, in arrival
// order. Requests arriving meanwhile wait for the next tick.
func (s *Server) ProcessCommands() {
	for n := len(s.commands); n > 0; n-- {
		c := <-s.commands
		c.apply(s)
	}
}
