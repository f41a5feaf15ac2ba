package core

import (
	"log"

	cfg "github.com/automoto/haulers-mp/config"
	"github.com/automoto/haulers-mp/shared/messages"
)

// ResetAll puts every item back on its spawn at full value and restarts the
// movers. Holders lose whatever they carried. Must run on the loop goroutine.
func (s *Server) ResetAll() {
	if s.records != nil {
		before := s.SessionSummary()
		rec := Record{
			Level:            s.level.Name,
			DeliverableValue: before.DeliverableValue,
			TotalValue:       before.TotalValue,
			Resets:           s.resets,
		}
		best, err := s.records.Submit(rec)
		if err != nil {
			log.Printf("[server] %v", err)
		} else if best {
			log.Printf("[server] new best on %s: %.1f delivered", rec.Level, rec.DeliverableValue)
		}
	}

	for _, e := range s.items {
		e.item.Reset()
	}
	s.level.World.ResetMovers()
	s.resets++
	s.refreshSession()

	log.Printf("[server] level %s reset (%d)", s.level.Name, s.resets)
	s.broadcastEvent(messages.SessionResetEvent{Resets: s.resets})
}

// requestReset honors a client reset only from the host seat.
func (s *Server) requestReset(peer Peer) {
	h, ok := s.peers[peer]
	if !ok {
		return
	}
	if !cfg.Server.AllowClientReset {
		log.Printf("[server] holder %d asked for a reset, client resets are disabled", h.id)
		return
	}
	if h.id != s.hostID() {
		log.Printf("[server] holder %d asked for a reset but is not the host", h.id)
		return
	}
	s.ResetAll()
}
