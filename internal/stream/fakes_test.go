package stream

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/rickgao/hyperscope-stream/internal/connection"
)

var errDialRefused = errors.New("dial refused")

// fakeClient is an in-memory connection.Client.
type fakeClient struct {
	session  uuid.UUID
	messages chan connection.TimestampedMessage
	errors   chan error

	mu      sync.Mutex
	sent    []controlFrame
	closed  bool
	hold    chan struct{} // if set, Send waits for it
	waiting int           // Sends blocked on hold
}

func newFakeClient() *fakeClient {
	return &fakeClient{
		session:  uuid.New(),
		messages: make(chan connection.TimestampedMessage, 64),
		errors:   make(chan error, 1),
	}
}

func (c *fakeClient) Connect(ctx context.Context) error { return nil }

func (c *fakeClient) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeClient) Send(data []byte) error {
	c.mu.Lock()
	if hold := c.hold; hold != nil {
		c.waiting++
		c.mu.Unlock()
		<-hold
		c.mu.Lock()
		c.waiting--
	}
	defer c.mu.Unlock()
	if c.closed {
		return connection.ErrNotConnected
	}
	var frame controlFrame
	if err := json.Unmarshal(data, &frame); err != nil {
		return err
	}
	c.sent = append(c.sent, frame)
	return nil
}

func (c *fakeClient) Messages() <-chan connection.TimestampedMessage { return c.messages }
func (c *fakeClient) Errors() <-chan error { return c.errors }
func (c *fakeClient) SessionID() uuid.UUID { return c.session }

func (c *fakeClient) IsConnected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return !c.closed
}

func (c *fakeClient) isClosed() bool {
	return !c.IsConnected()
}

// holdSends makes Send block, like a socket write stuck on a slow peer,
// until the returned release is called.
func (c *fakeClient) holdSends() (release func()) {
	hold := make(chan struct{})
	c.mu.Lock()
	c.hold = hold
	c.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			c.mu.Lock()
			c.hold = nil
			c.mu.Unlock()
			close(hold)
		})
	}
}

func (c *fakeClient) blockedSends() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waiting
}

// deliver pushes a raw inbound frame.
func (c *fakeClient) deliver(raw string) {
	c.messages <- connection.TimestampedMessage{Data: []byte(raw), ReceivedAt: time.Now()}
}

// drop simulates the server closing the connection.
func (c *fakeClient) drop() {
	c.errors <- io.ErrUnexpectedEOF
}

// count returns how many control frames of type typ were sent for channel.
func (c *fakeClient) count(typ, channel string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, f := range c.sent {
		if f.Type == typ && f.Channel == channel {
			n++
		}
	}
	return n
}

func (c *fakeClient) frames() []controlFrame {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]controlFrame(nil), c.sent...)
}

// fakeDialer hands out fakeClients, optionally failing or blocking.
type fakeDialer struct {
	mu       sync.Mutex
	clients  []*fakeClient
	attempts int
	failures int           // upcoming dials to fail
	gate     chan struct{} // if set, dials wait for it
}

func (d *fakeDialer) dial(ctx context.Context) (connection.Client, error) {
	d.mu.Lock()
	gate := d.gate
	d.mu.Unlock()
	if gate != nil {
		<-gate
	}

	d.mu.Lock()
	defer d.mu.Unlock()
	d.attempts++
	if d.failures > 0 {
		d.failures--
		return nil, errDialRefused
	}
	c := newFakeClient()
	d.clients = append(d.clients, c)
	return c, nil
}

func (d *fakeDialer) setFailures(n int) {
	d.mu.Lock()
	d.failures = n
	d.mu.Unlock()
}

func (d *fakeDialer) attemptCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.attempts
}

func (d *fakeDialer) clientCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.clients)
}

func (d *fakeDialer) last() *fakeClient {
	d.mu.Lock()
	defer d.mu.Unlock()
	if len(d.clients) == 0 {
		return nil
	}
	return d.clients[len(d.clients)-1]
}

// fakeClock records timers and fires them only on request.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	clock   *fakeClock
	delay   time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	wasPending := !t.stopped && !t.fired
	t.stopped = true
	return wasPending
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{clock: c, delay: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

func (c *fakeClock) pending() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	var out []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			out = append(out, t)
		}
	}
	return out
}

func (c *fakeClock) all() []*fakeTimer {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*fakeTimer(nil), c.timers...)
}

// fire runs the oldest pending timer and reports whether there was one.
func (c *fakeClock) fire() bool {
	c.mu.Lock()
	var next *fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			next = t
			break
		}
	}
	if next != nil {
		next.fired = true
	}
	c.mu.Unlock()

	if next == nil {
		return false
	}
	next.f()
	return true
}

// spyHandler is a Handler that keeps every payload it sees.
type spyHandler struct {
	mu    sync.Mutex
	calls []json.RawMessage
}

func (r *spyHandler) Handle(data json.RawMessage) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, append(json.RawMessage(nil), data...))
}

func (r *spyHandler) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *spyHandler) last() json.RawMessage {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.calls) == 0 {
		return nil
	}
	return r.calls[len(r.calls)-1]
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestMux(t *testing.T) (*Mux, *fakeDialer, *fakeClock) {
	t.Helper()
	dialer := &fakeDialer{}
	clock := &fakeClock{}
	m := New(DefaultConfig(), dialer.dial, WithClock(clock), WithLogger(quietLogger()))
	t.Cleanup(m.Disconnect)
	return m, dialer, clock
}
