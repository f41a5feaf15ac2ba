package network

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/automoto/haulers-mp/shared/messages"
	"github.com/automoto/haulers-mp/shared/netconfig"
	"github.com/coder/websocket"
	"github.com/go-gl/mathgl/mgl64"
	"github.com/leap-fish/necs/esync"
	"github.com/leap-fish/necs/router"
	"github.com/leap-fish/necs/transports"
)

type ClientState int

const (
	StateDisconnected ClientState = iota
	StateConnecting
	StateConnected
	StateJoinedGame
	StateError
)

// Client manages a WebSocket connection to the authority. It only sends
// requests and reads back replicated state and events.
// All shared fields are protected by mu (router callbacks run on necs goroutines).
type Client struct {
	mu sync.RWMutex

	state      ClientState
	lastError  error
	networkID  esync.NetworkId
	holderID   netconfig.HolderID
	host       bool
	serverName string
	tickRate   int
	level      string
	conn       *websocket.Conn

	poses PoseHistory

	snapshotCh chan esync.WorldSnapshot // size-1 buffered; latest wins

	summaryCh  chan messages.ItemSummaryEvent
	grabbedCh  chan messages.ItemGrabbedEvent
	releasedCh chan messages.ItemReleasedEvent
	damagedCh  chan messages.ItemDamagedEvent
	brokenCh   chan messages.ItemBrokenEvent
	resetCh    chan messages.SessionResetEvent
}

func NewClient() *Client {
	return &Client{
		state:      StateDisconnected,
		snapshotCh: make(chan esync.WorldSnapshot, 1),
		summaryCh:  make(chan messages.ItemSummaryEvent, 64),
		grabbedCh:  make(chan messages.ItemGrabbedEvent, 16),
		releasedCh: make(chan messages.ItemReleasedEvent, 16),
		damagedCh:  make(chan messages.ItemDamagedEvent, 32),
		brokenCh:   make(chan messages.ItemBrokenEvent, 16),
		resetCh:    make(chan messages.SessionResetEvent, 4),
	}
}

// Connect dials the server in a background goroutine and initiates the join handshake.
func (c *Client) Connect(address, version, playerName string) {
	c.mu.Lock()
	c.state = StateConnecting
	c.lastError = nil
	c.mu.Unlock()

	router.OnConnect(func(_ *router.NetworkClient) {
		log.Println("[client] connected to server")
		c.mu.Lock()
		c.state = StateConnected
		c.mu.Unlock()

		if err := c.SendMessage(messages.JoinRequest{
			Version:    version,
			PlayerName: playerName,
		}); err != nil {
			c.setError(fmt.Errorf("failed to send join request: %w", err))
		}
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinAccepted) {
		log.Printf("[client] join accepted: holder=%d server=%s level=%s tickRate=%d host=%v",
			msg.HolderID, msg.ServerName, msg.Level, msg.TickRate, msg.Host)
		c.mu.Lock()
		c.networkID = msg.NetworkID
		c.holderID = msg.HolderID
		c.host = msg.Host
		c.serverName = msg.ServerName
		c.tickRate = msg.TickRate
		c.level = msg.Level
		c.state = StateJoinedGame
		c.mu.Unlock()
	})

	router.On(func(_ *router.NetworkClient, msg messages.JoinRejected) {
		log.Printf("[client] join rejected: %s", msg.Reason)
		c.setError(fmt.Errorf("join rejected: %s", msg.Reason))
	})

	router.On(func(_ *router.NetworkClient, snapshot esync.WorldSnapshot) {
		select { // drain stale, push latest
		case <-c.snapshotCh:
		default:
		}
		c.snapshotCh <- snapshot
	})

	router.On(func(_ *router.NetworkClient, evt messages.ItemSummaryEvent) { offer(c.summaryCh, evt) })
	router.On(func(_ *router.NetworkClient, evt messages.ItemGrabbedEvent) { offer(c.grabbedCh, evt) })
	router.On(func(_ *router.NetworkClient, evt messages.ItemReleasedEvent) { offer(c.releasedCh, evt) })
	router.On(func(_ *router.NetworkClient, evt messages.ItemDamagedEvent) { offer(c.damagedCh, evt) })
	router.On(func(_ *router.NetworkClient, evt messages.ItemBrokenEvent) { offer(c.brokenCh, evt) })
	router.On(func(_ *router.NetworkClient, evt messages.SessionResetEvent) { offer(c.resetCh, evt) })

	router.OnDisconnect(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] disconnected: %v", err)
		c.mu.Lock()
		if c.state != StateError {
			c.state = StateDisconnected
		}
		c.conn = nil
		c.mu.Unlock()
	})

	router.OnError(func(_ *router.NetworkClient, err error) {
		log.Printf("[client] error: %v", err)
	})

	go func() {
		transport := transports.NewWsClientTransport("ws://" + address)
		err := transport.Start(func(conn *websocket.Conn) {
			c.mu.Lock()
			c.conn = conn
			c.mu.Unlock()
		})
		if err != nil {
			c.setError(fmt.Errorf("connection failed: %w", err))
		}
	}()
}

func (c *Client) Disconnect() {
	c.mu.Lock()
	conn := c.conn
	c.state = StateDisconnected
	c.conn = nil
	c.mu.Unlock()

	if conn != nil {
		_ = conn.CloseNow()
	}

	router.ResetRouter()
}

func (c *Client) State() ClientState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.state
}

func (c *Client) LastError() error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastError
}

func (c *Client) NetworkID() esync.NetworkId {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.networkID
}

// HolderID is the id the server assigned on join, 0 before that.
func (c *Client) HolderID() netconfig.HolderID {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.holderID
}

// IsHost reports whether this client joined first and may request resets.
func (c *Client) IsHost() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.host
}

func (c *Client) Level() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.level
}

func (c *Client) TickRate() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.tickRate
}

// LatestSnapshot returns the most recent WorldSnapshot, or nil. Non-blocking.
func (c *Client) LatestSnapshot() *esync.WorldSnapshot {
	select {
	case snap := <-c.snapshotCh:
		return &snap
	default:
		return nil
	}
}

func (c *Client) SendMessage(msg any) error {
	c.mu.RLock()
	conn := c.conn
	c.mu.RUnlock()

	if conn == nil {
		return fmt.Errorf("not connected")
	}

	payload, err := router.Serialize(msg)
	if err != nil {
		return fmt.Errorf("serialize: %w", err)
	}

	return conn.Write(context.Background(), websocket.MessageBinary, payload)
}

// SendPose sends the avatar pose stamped with the next sequence number.
func (c *Client) SendPose(pos mgl64.Vec3, yaw float64) error {
	c.mu.Lock()
	update := c.poses.Next(pos, yaw)
	c.mu.Unlock()
	return c.SendMessage(update)
}

// PoseError compares a replicated holder position with what was sent.
func (c *Client) PoseError(seq uint32, server mgl64.Vec3) float64 {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.poses.Error(seq, server)
}

func (c *Client) Grab(item netconfig.ItemID) error {
	return c.SendMessage(messages.GrabRequest{ItemID: item})
}

func (c *Client) Release(item netconfig.ItemID, vel mgl64.Vec3) error {
	return c.SendMessage(messages.ReleaseRequest{ItemID: item, VelX: vel[0], VelY: vel[1], VelZ: vel[2]})
}

func (c *Client) Throw(item netconfig.ItemID, vel mgl64.Vec3) error {
	return c.SendMessage(messages.ThrowRequest{ItemID: item, VelX: vel[0], VelY: vel[1], VelZ: vel[2]})
}

// RequestReset asks for a level reset. The server ignores it unless this
// client holds the host seat.
func (c *Client) RequestReset() error {
	return c.SendMessage(messages.ResetRequest{})
}

func (c *Client) setError(err error) {
	c.mu.Lock()
	c.state = StateError
	c.lastError = err
	c.mu.Unlock()
}

// DrainSummaries returns all pending item summaries, non-blocking.
func (c *Client) DrainSummaries() []messages.ItemSummaryEvent { return drainChan(c.summaryCh) }

// DrainGrabs returns all pending grab events, non-blocking.
func (c *Client) DrainGrabs() []messages.ItemGrabbedEvent { return drainChan(c.grabbedCh) }

// DrainReleases returns all pending release events, non-blocking.
func (c *Client) DrainReleases() []messages.ItemReleasedEvent { return drainChan(c.releasedCh) }

// DrainDamage returns all pending damage events, non-blocking.
func (c *Client) DrainDamage() []messages.ItemDamagedEvent { return drainChan(c.damagedCh) }

// DrainBreaks returns all pending broken events, non-blocking.
func (c *Client) DrainBreaks() []messages.ItemBrokenEvent { return drainChan(c.brokenCh) }

// DrainResets returns all pending reset events, non-blocking.
func (c *Client) DrainResets() []messages.SessionResetEvent { return drainChan(c.resetCh) }

// offer queues v, dropping it when the consumer is behind.
func offer[T any](ch chan T, v T) {
	select {
	case ch <- v:
	default:
	}
}

func drainChan[T any](ch chan T) []T {
	var out []T
	for {
		select {
		case v := <-ch:
			out = append(out, v)
		default:
			return out
		}
	}
}
