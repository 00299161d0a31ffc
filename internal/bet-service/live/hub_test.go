package live

import (
	"context"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/radieske/bet-tracker/pkg/contracts/events"
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

func readMsg(t *testing.T, conn *websocket.Conn) map[string]any {
	t.Helper()
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var m map[string]any
	if err := conn.ReadJSON(&m); err != nil {
		t.Fatalf("read: %v", err)
	}
	return m
}

func subscribe(t *testing.T, conn *websocket.Conn, betID string) {
	t.Helper()
	if err := conn.WriteJSON(ClientMsg{Type: "subscribe", BetID: betID}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if m := readMsg(t, conn); m["type"] != "subscribed" {
		t.Fatalf("ack=%v", m)
	}
}

func TestHubDeliversToSubscribers(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	all := dial(t, srv)
	subscribe(t, all, "")
	one := dial(t, srv)
	subscribe(t, one, "42")

	if hub.Subscribers() != 2 {
		t.Fatalf("subscribers=%d", hub.Subscribers())
	}

	hub.Publish(context.Background(), events.BetChanged{EventID: "e-1", Action: events.BetUpdated, BetID: 42, Description: "LAL-spread"})
	for _, c := range []*websocket.Conn{all, one} {
		m := readMsg(t, c)
		if m["event_id"] != "e-1" || m["description"] != "LAL-spread" {
			t.Fatalf("event=%v", m)
		}
	}

	// aposta 7 só chega em quem assinou todas
	hub.Broadcast(events.BetChanged{EventID: "e-2", Action: events.BetCreated, BetID: 7})
	if m := readMsg(t, all); m["event_id"] != "e-2" {
		t.Fatalf("event=%v", m)
	}
	if err := one.WriteJSON(ClientMsg{Type: "ping"}); err != nil {
		t.Fatalf("ping: %v", err)
	}
	if m := readMsg(t, one); m["type"] != "pong" {
		t.Fatalf("expected pong before any other message, got %v", m)
	}
}

func TestHubUnsubscribe(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	c := dial(t, srv)
	subscribe(t, c, "9")
	c.WriteJSON(ClientMsg{Type: "unsubscribe", BetID: "9"})
	if m := readMsg(t, c); m["type"] != "unsubscribed" {
		t.Fatalf("ack=%v", m)
	}
	if hub.Subscribers() != 0 {
		t.Fatalf("subscribers=%d want 0", hub.Subscribers())
	}
}

func TestBroadcastPayloadIsEvent(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	c := dial(t, srv)
	subscribe(t, c, "*")
	hub.Broadcast(events.BetChanged{EventID: "e-3", Action: events.BetDeleted, BetID: 3})

	_ = c.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, raw, err := c.ReadMessage()
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	var e events.BetChanged
	if err := json.Unmarshal(raw, &e); err != nil || e.Action != events.BetDeleted || e.BetID != 3 {
		t.Fatalf("event=%s err=%v", raw, err)
	}
}

func TestBroadcastDoesNotWaitForSlowPeer(t *testing.T) {
	hub := NewHub(zap.NewNop(), nil)
	srv := httptest.NewServer(hub)
	defer srv.Close()

	// assina e nunca mais lê
	slow := dial(t, srv)
	subscribe(t, slow, "*")

	big := strings.Repeat("x", 64<<10)
	start := time.Now()
	for i := 0; i < 1000; i++ {
		hub.Broadcast(events.BetChanged{EventID: "e-slow", Action: events.BetUpdated, BetID: 1, Description: big})
	}
	if took := time.Since(start); took > 2*time.Second {
		t.Fatalf("broadcast blocked for %v", took)
	}
	if hub.Subscribers() != 0 {
		t.Fatalf("slow peer still subscribed: %d", hub.Subscribers())
	}
}

func TestAllowOrigins(t *testing.T) {
	check := AllowOrigins([]string{"http://localhost:3000"})
	cases := map[string]bool{
		"":                      true,
		"http://localhost:3000": true,
		"http://evil.example":   false,
	}
	for origin, want := range cases {
		r := httptest.NewRequest("GET", "/ws/bets", nil)
		if origin != "" {
			r.Header.Set("Origin", origin)
		}
		if got := check(r); got != want {
			t.Fatalf("origin %q allowed=%v want %v", origin, got, want)
		}
	}
}
