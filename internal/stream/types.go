package stream

import (
	"encoding/json"
	"time"
)

// State is the connection status exposed to consumers.
type State string

const (
	StateDisconnected State = "disconnected"
	StateConnecting   State = "connecting"
	StateConnected    State = "connected"
)

// Handler receives the data payload of every frame on a subscribed channel.
// Handlers run synchronously on the dispatch goroutine and must treat data as read-only.
type Handler interface {
	Handle(data json.RawMessage)
}

// HandlerFunc is a function adapter for Handler.
type HandlerFunc func(data json.RawMessage)

func (f HandlerFunc) Handle(data json.RawMessage) {
	f(data)
}

// Control frame types.
const (
	frameSubscribe   = "subscribe"
	frameUnsubscribe = "unsubscribe"
)

// controlFrame is an outbound subscribe/unsubscribe request.
type controlFrame struct {
	Type    string `json:"type"`
	Channel string `json:"channel"`
}

// dataFrame is the wire format of an inbound frame.
type dataFrame struct {
	Channel string          `json:"channel"`
	Data    json.RawMessage `json:"data"`
}

// Config configures a Mux.
type Config struct {
	ReconnectBaseDelay time.Duration // First reconnect delay
	ReconnectMaxDelay  time.Duration // Cap for reconnect delay
	ReconnectFactor    float64       // Delay multiplier per failed attempt
}

// DefaultConfig returns the stay-connected-at-all-costs policy: 1s doubling to 30s, forever.
func DefaultConfig() Config {
	return Config{
		ReconnectBaseDelay: 1 * time.Second,
		ReconnectMaxDelay:  30 * time.Second,
		ReconnectFactor:    2,
	}
}

// Stats provides statistics about the multiplexer.
type Stats struct {
	State            State
	Channels         int   // Channels with at least one registration
	Subscriptions    int   // Live registrations across all channels
	Attempt          int   // Current backoff attempt (0 after a successful open)
	Reconnects       int64 // Successful opens after the first
	FramesReceived   int64
	FramesDispatched int64 // Frames delivered to at least one handler
	FramesMalformed  int64 // Frames that failed to parse as {"channel","data"}
	FramesUnrouted   int64 // Well-formed frames for channels nobody listens to
	HandlerPanics    int64
	ControlPending   int64 // Control frames queued but not yet written
}
