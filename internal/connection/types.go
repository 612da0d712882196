package connection

import (
	"errors"
	"time"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (nothing received)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// TimestampedMessage wraps raw frame bytes with the receive timestamp.
type TimestampedMessage struct {
	Data       []byte    // Raw frame bytes from WebSocket
	ReceivedAt time.Time // Local timestamp when ReadMessage() returned
}

// keepaliveFrame is the application-level ping understood by the stream server.
// The server answers with {"channel":"pong"}.
var keepaliveFrame = []byte(`{"method":"ping"}`)

// ClientConfig configures a WebSocket client.
type ClientConfig struct {
	URL              string        // Stream URL (e.g., wss://hyperscope.example.com/ws)
	PingInterval     time.Duration // How often a keepalive frame is sent
	PingTimeout      time.Duration // Max time without any inbound traffic before the connection is stale
	WriteTimeout     time.Duration // Write deadline for sends
	HandshakeTimeout time.Duration // Dial handshake timeout
	BufferSize       int           // Message channel buffer size
	ReadLimit        int64         // Max inbound frame size in bytes (0 = unlimited)
	UserAgent        string        // Sent on the handshake when set
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingInterval:     15 * time.Second,
		PingTimeout:      60 * time.Second,
		WriteTimeout:     5 * time.Second,
		HandshakeTimeout: 10 * time.Second,
		BufferSize:       1000,
		ReadLimit:        2 << 20,
	}
}
