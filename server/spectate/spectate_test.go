package spectate

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/automoto/haulers-mp/shared/messages"
	"github.com/gorilla/websocket"
)

func dial(t *testing.T, srv *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readFrame(t *testing.T, conn *websocket.Conn) Frame {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, b, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var f Frame
	if err := json.Unmarshal(b, &f); err != nil {
		t.Fatalf("decode %s: %v", b, err)
	}
	return f
}

func waitObservers(t *testing.T, h *Hub, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for h.Observers() != n {
		if time.Now().After(deadline) {
			t.Fatalf("observers = %d, want %d", h.Observers(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestObserverGetsSnapshotThenEvents(t *testing.T) {
	h := NewHub(false)
	h.HandleEvent(3, 0.15, messages.ItemSummaryEvent{ItemID: 2, Value: 80})
	h.HandleEvent(3, 0.15, messages.ItemSummaryEvent{ItemID: 1, Value: 100})
	h.HandleEvent(4, 0.20, messages.ItemSummaryEvent{ItemID: 2, Value: 60})

	srv := httptest.NewServer(h.Handler())
	defer srv.Close()
	conn := dial(t, srv)

	snap := readFrame(t, conn)
	if snap.Type != FrameSnapshot {
		t.Fatalf("first frame type = %s, want %s", snap.Type, FrameSnapshot)
	}
	if len(snap.Items) != 2 || snap.Items[0].ItemID != 1 || snap.Items[1].Value != 60 {
		t.Fatalf("snapshot items = %+v", snap.Items)
	}
	if snap.Tick != 4 {
		t.Fatalf("snapshot tick = %d, want 4", snap.Tick)
	}

	waitObservers(t, h, 1)
	h.HandleEvent(5, 0.25, messages.ItemBrokenEvent{ItemID: 2})
	ev := readFrame(t, conn)
	if ev.Type != FrameEvent || ev.Kind != "item_broken" || ev.Tick != 5 {
		t.Fatalf("event frame = %+v", ev)
	}
}

func TestHubIgnoresNonItemEvents(t *testing.T) {
	h := NewHub(false)
	h.HandleEvent(1, 0, messages.JoinRejected{Reason: "full"})

	srv := httptest.NewServer(h.Handler())
	defer srv.Close()
	conn := dial(t, srv)
	if snap := readFrame(t, conn); len(snap.Items) != 0 {
		t.Fatalf("snapshot items = %+v", snap.Items)
	}
	waitObservers(t, h, 1)

	h.HandleEvent(2, 0, messages.JoinRejected{Reason: "full"})
	h.HandleEvent(2, 0, messages.SessionResetEvent{Resets: 1})
	if ev := readFrame(t, conn); ev.Kind != "session_reset" {
		t.Fatalf("kind = %q, want session_reset", ev.Kind)
	}
}

func TestObserverLeaves(t *testing.T) {
	h := NewHub(false)
	srv := httptest.NewServer(h.Handler())
	defer srv.Close()

	conn := dial(t, srv)
	readFrame(t, conn)
	waitObservers(t, h, 1)
	conn.Close()
	waitObservers(t, h, 0)
}

func TestLoopbackCheck(t *testing.T) {
	cases := map[string]bool{
		"127.0.0.1:5000": true,
		"[::1]:5000":     true,
		"10.0.0.4:5000":  false,
		"garbage":        false,
	}
	for addr, want := range cases {
		if got := isLoopbackRemote(addr); got != want {
			t.Fatalf("isLoopbackRemote(%q) = %v, want %v", addr, got, want)
		}
	}
}
