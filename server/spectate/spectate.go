// Package spectate streams item events to read-only websocket observers as
// JSON text frames. A new observer first receives a snapshot of the latest
// summary of every item, then live events.
package spectate

import (
	"encoding/json"
	"fmt"
	"log"
	"net"
	"net/http"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/automoto/haulers-mp/shared/messages"
	"github.com/automoto/haulers-mp/shared/netconfig"
	"github.com/gorilla/websocket"
)

// Frame types.
const (
	FrameSnapshot = "SNAPSHOT"
	FrameEvent    = "EVENT"
)

// Frame is one JSON message sent to observers.
type Frame struct {
	Type  string                      `json:"type"`
	Tick  uint64                      `json:"tick"`
	At    float64                     `json:"at"`
	Kind  string                      `json:"kind,omitempty"`
	Event any                         `json:"event,omitempty"`
	Items []messages.ItemSummaryEvent `json:"items,omitempty"`
}

// Hub fans server events out to connected observers. HandleEvent never
// blocks; a slow observer loses frames.
type Hub struct {
	upgrader    websocket.Upgrader
	allowRemote bool

	mu      sync.Mutex
	clients map[uint64]chan []byte
	latest  map[netconfig.ItemID]messages.ItemSummaryEvent
	tick    uint64
	at      float64

	nextID atomic.Uint64
}

// NewHub creates a hub. Unless allowRemote is set only loopback observers
// may connect.
func NewHub(allowRemote bool) *Hub {
	return &Hub{
		allowRemote: allowRemote,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4 * 1024,
			WriteBufferSize: 16 * 1024,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
		clients: make(map[uint64]chan []byte),
		latest:  make(map[netconfig.ItemID]messages.ItemSummaryEvent),
	}
}

func kindOf(event any) string {
	switch event.(type) {
	case messages.ItemSummaryEvent:
		return "item_summary"
	case messages.ItemGrabbedEvent:
		return "item_grabbed"
	case messages.ItemReleasedEvent:
		return "item_released"
	case messages.ItemDamagedEvent:
		return "item_damaged"
	case messages.ItemBrokenEvent:
		return "item_broken"
	case messages.SessionResetEvent:
		return "session_reset"
	}
	return ""
}

// HandleEvent implements core.EventSink.
func (h *Hub) HandleEvent(tick uint64, at float64, event any) {
	kind := kindOf(event)
	if kind == "" {
		return
	}
	b, err := json.Marshal(Frame{Type: FrameEvent, Tick: tick, At: at, Kind: kind, Event: event})
	if err != nil {
		log.Printf("[spectate] marshal %s: %v", kind, err)
		return
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.tick, h.at = tick, at
	if sum, ok := event.(messages.ItemSummaryEvent); ok {
		h.latest[sum.ItemID] = sum
	}
	for _, out := range h.clients {
		select {
		case out <- b:
		default:
		}
	}
}

// Observers returns the number of connected observers.
func (h *Hub) Observers() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// join registers an observer and queues its snapshot under the same lock
// so no event slips between the two.
func (h *Hub) join() (uint64, chan []byte, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	items := make([]messages.ItemSummaryEvent, 0, len(h.latest))
	for _, sum := range h.latest {
		items = append(items, sum)
	}
	sort.Slice(items, func(i, j int) bool { return items[i].ItemID < items[j].ItemID })
	b, err := json.Marshal(Frame{Type: FrameSnapshot, Tick: h.tick, At: h.at, Items: items})
	if err != nil {
		return 0, nil, fmt.Errorf("marshal snapshot: %w", err)
	}

	id := h.nextID.Add(1)
	out := make(chan []byte, 256)
	out <- b
	h.clients[id] = out
	return id, out, nil
}

func (h *Hub) leave(id uint64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.clients, id)
}

// Handler upgrades observer connections.
func (h *Hub) Handler() http.HandlerFunc {
	return func(rw http.ResponseWriter, r *http.Request) {
		if !h.allowRemote && !isLoopbackRemote(r.RemoteAddr) {
			http.Error(rw, "forbidden", http.StatusForbidden)
			return
		}
		conn, err := h.upgrader.Upgrade(rw, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()

		id, out, err := h.join()
		if err != nil {
			log.Printf("[spectate] %v", err)
			return
		}
		defer h.leave(id)
		log.Printf("[spectate] observer %d connected from %s", id, r.RemoteAddr)

		// Reader only detects the close; observers send nothing we use.
		done := make(chan struct{})
		go func() {
			defer close(done)
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		for {
			select {
			case <-done:
				log.Printf("[spectate] observer %d disconnected", id)
				return
			case b := <-out:
				_ = conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
				if err := conn.WriteMessage(websocket.TextMessage, b); err != nil {
					log.Printf("[spectate] observer %d write: %v", id, err)
					return
				}
			}
		}
	}
}

// Serve listens on addr and serves observers at /spectate until the
// listener fails.
func (h *Hub) Serve(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/spectate", h.Handler())
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	log.Printf("[spectate] listening on %s", addr)
	return srv.ListenAndServe()
}

func isLoopbackRemote(remoteAddr string) bool {
	host := remoteAddr
	if hst, _, err := net.SplitHostPort(remoteAddr); err == nil {
		host = hst
	}
	host = strings.TrimPrefix(host, "[")
	host = strings.TrimSuffix(host, "]")
	ip := net.ParseIP(host)
	return ip != nil && ip.IsLoopback()
}
