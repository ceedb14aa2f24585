package websocket

import "encoding/json"

// ─── Actions (Client → Server) ──────────────────────────────────────

type Action string

const (
	ActionPing        Action = "ping"
	ActionSubscribe   Action = "subscribe"
	ActionUnsubscribe Action = "unsubscribe"
)

// RequestPayload is the single client → server message shape. Subscribe
// and unsubscribe optionally narrow the feed to one event type.
type RequestPayload struct {
	Action    Action `json:"action"`
	EventType string `json:"event_type,omitempty"`
}

// ─── Events (Server → Client) ───────────────────────────────────────

type Event string

const (
	EventError Event = "error"
	EventFeed  Event = "feed"
	EventAck   Event = "ack"
	EventPong  Event = "pong"
)

// FeedMessage wraps one feed event for delivery. Payload carries the
// raw JSON published on the feed channel.
type FeedMessage struct {
	Event   Event           `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

type AckResponse struct {
	Event  Event  `json:"event"`
	Action Action `json:"action"`
}

type ErrorResponse struct {
	Event Event  `json:"event"`
	Error string `json:"error"`
}

type PongResponse struct {
	Event Event `json:"event"`
}
