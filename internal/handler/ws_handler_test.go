package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	ws "github.com/luoxi-lab/hanyu-arena-backend/internal/websocket"
)

// feedTestServer upgrades one connection and runs the relay loop against a
// test-fed events channel instead of a Redis subscription.
func feedTestServer(t *testing.T, events chan *redis.Message) (*httptest.Server, *websocket.Conn) {
	t.Helper()
	h := NewWSHandler(nil, zerolog.Nop(), nil)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := h.upgrader.Upgrade(w, r, nil)
		if err != nil {
			t.Errorf("upgrade: %v", err)
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		h.relay(ctx, cancel, conn, events)
	}))

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	client, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		srv.Close()
		t.Fatalf("dial: %v", err)
	}
	return srv, client
}

// Pings racing the pubsub stream must come back as intact frames: the
// relay loop is the connection's only writer. Run under -race.
func TestFeedStreamInterleavedPingsAndEvents(t *testing.T) {
	const n = 50

	events := make(chan *redis.Message)
	srv, client := feedTestServer(t, events)
	defer srv.Close()
	defer client.Close()

	go func() {
		for i := 0; i < n; i++ {
			events <- &redis.Message{Payload: `{"type":"GAME_COMPLETED"}`}
		}
	}()
	go func() {
		for i := 0; i < n; i++ {
			if err := client.WriteJSON(ws.RequestPayload{Action: ws.ActionPing}); err != nil {
				t.Errorf("write ping: %v", err)
				return
			}
		}
	}()

	pongs, feeds := 0, 0
	client.SetReadDeadline(time.Now().Add(10 * time.Second))
	for i := 0; i < 2*n; i++ {
		var msg struct {
			Event ws.Event `json:"event"`
		}
		if err := client.ReadJSON(&msg); err != nil {
			t.Fatalf("frame %d: %v", i, err)
		}
		switch msg.Event {
		case ws.EventPong:
			pongs++
		case ws.EventFeed:
			feeds++
		default:
			t.Fatalf("frame %d: unexpected event %q", i, msg.Event)
		}
	}
	if pongs != n || feeds != n {
		t.Errorf("got %d pongs and %d feeds, want %d each", pongs, feeds, n)
	}
}

func TestFeedStreamSubscribeFiltersEvents(t *testing.T) {
	events := make(chan *redis.Message)
	srv, client := feedTestServer(t, events)
	defer srv.Close()
	defer client.Close()

	client.SetReadDeadline(time.Now().Add(10 * time.Second))

	if err := client.WriteJSON(ws.RequestPayload{Action: ws.ActionSubscribe, EventType: "ACHIEVEMENT_UNLOCKED"}); err != nil {
		t.Fatal(err)
	}
	var ack ws.AckResponse
	if err := client.ReadJSON(&ack); err != nil {
		t.Fatal(err)
	}
	if ack.Event != ws.EventAck || ack.Action != ws.ActionSubscribe {
		t.Fatalf("got %+v, want subscribe ack", ack)
	}

	events <- &redis.Message{Payload: `{"type":"GAME_COMPLETED"}`}
	events <- &redis.Message{Payload: `{"type":"ACHIEVEMENT_UNLOCKED","achievement":"FIRST_WIN"}`}

	var feed ws.FeedMessage
	if err := client.ReadJSON(&feed); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(feed.Payload), "ACHIEVEMENT_UNLOCKED") {
		t.Errorf("filtered stream delivered %s", feed.Payload)
	}
}
