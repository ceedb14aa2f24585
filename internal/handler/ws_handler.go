package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/luoxi-lab/hanyu-arena-backend/internal/config"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	ws "github.com/luoxi-lab/hanyu-arena-backend/internal/websocket"
)

// buildUpgrader creates a WebSocket upgrader with origin validation.
// An empty allow-list permits all origins (development mode).
func buildUpgrader(allowedOrigins []string) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range allowedOrigins {
				if strings.EqualFold(allowed, origin) {
					return true
				}
			}
			return false
		},
	}
}

// WSHandler streams the live game feed: completions, achievement unlocks
// and rank changes published on the Redis feed channel.
type WSHandler struct {
	rdb      *redis.Client
	log      zerolog.Logger
	upgrader websocket.Upgrader
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(rdb *redis.Client, log zerolog.Logger, allowedOrigins []string) *WSHandler {
	return &WSHandler{
		rdb:      rdb,
		log:      log.With().Str("component", "ws_handler").Logger(),
		upgrader: buildUpgrader(allowedOrigins),
	}
}

// FeedStream godoc
// WS /ws/v1/feed
// Upgrades to WebSocket and relays feed events. Clients may narrow the
// stream to one event type with a subscribe message.
func (h *WSHandler) FeedStream(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.log.Error().Err(err).Msg("WebSocket upgrade failed")
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(c.Request.Context())
	defer cancel()

	sub := h.rdb.Subscribe(ctx, config.CacheKey.GameFeedChannel())
	defer sub.Close()

	h.log.Info().Str("remote", c.ClientIP()).Msg("Feed client connected")

	h.relay(ctx, cancel, conn, sub.Channel())
}

// relay is the connection's single writer: client requests and feed events
// are funneled into one select so pong/ack responses never interleave with
// a concurrent feed write.
func (h *WSHandler) relay(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, events <-chan *redis.Message) {
	defer cancel()

	// Client messages arrive on their own goroutine so this loop can
	// block on the pubsub channel; the reader never writes.
	requests := make(chan ws.RequestPayload, 4)
	go h.readLoop(ctx, conn, requests, cancel)

	eventType := ""
	for {
		var err error
		select {
		case <-ctx.Done():
			h.log.Debug().Msg("Feed client disconnected")
			return

		case req := <-requests:
			switch req.Action {
			case ws.ActionPing:
				err = ws.WriteTyped(conn, ws.PongResponse{Event: ws.EventPong})
			case ws.ActionSubscribe:
				eventType = req.EventType
				err = ws.WriteTyped(conn, ws.AckResponse{Event: ws.EventAck, Action: req.Action})
			case ws.ActionUnsubscribe:
				eventType = ""
				err = ws.WriteTyped(conn, ws.AckResponse{Event: ws.EventAck, Action: req.Action})
			default:
				err = ws.WriteError(conn, "unknown action: "+string(req.Action))
			}

		case msg, ok := <-events:
			if !ok {
				return
			}
			if eventType != "" && !payloadMatches(msg.Payload, eventType) {
				continue
			}
			err = ws.WriteFeed(conn, []byte(msg.Payload))
		}
		if err != nil {
			h.log.Debug().Err(err).Msg("Feed write failed")
			return
		}
	}
}

// readLoop parses client messages and hands them to the relay loop until
// the connection drops.
func (h *WSHandler) readLoop(ctx context.Context, conn *websocket.Conn, requests chan<- ws.RequestPayload, cancel context.CancelFunc) {
	defer cancel()

	for {
		var msg ws.RequestPayload
		if err := ws.ReadJSON(conn, &msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.log.Warn().Err(err).Msg("Unexpected close")
			}
			return
		}
		select {
		case requests <- msg:
		case <-ctx.Done():
			return
		}
	}
}

// payloadMatches peeks at the event type without a full decode.
func payloadMatches(payload, eventType string) bool {
	var envelope struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		return false
	}
	return envelope.Type == eventType
}
