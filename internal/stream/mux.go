package stream

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/rickgao/hyperscope-stream/internal/connection"
)

// Dialer opens a new, connected transport. Each call must return a fresh Client.
type Dialer func(ctx context.Context) (connection.Client, error)

// NewDialer returns a Dialer backed by connection.NewClient.
func NewDialer(cfg connection.ClientConfig, logger *slog.Logger) Dialer {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context) (connection.Client, error) {
		c := connection.NewClient(cfg, logger)
		if err := c.Connect(ctx); err != nil {
			c.Close()
			return nil, err
		}
		return c, nil
	}
}

// Option configures a Mux.
type Option func(*Mux)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Mux) {
		m.logger = logger
	}
}

// WithClock replaces the timer source used for reconnect delays.
func WithClock(clock Clock) Option {
	return func(m *Mux) {
		m.clock = clock
	}
}

// Mux multiplexes many channel subscriptions over one streaming connection.
// Build one per process and pass it to consumers; instances are fully independent.
type Mux struct {
	cfg    Config
	dial   Dialer
	clock  Clock
	logger *slog.Logger

	mu       sync.Mutex
	registry *registry
	sched    *scheduler
	client   connection.Client  // live transport, nil unless phaseOpen
	out      chan controlFrame  // outbound control frames for client, drained by write
	cancel   context.CancelFunc // cancels the current dial/pump/write
	timer    Timer              // the single pending reconnect timer
	gen      uint64             // bumped per dial and on teardown; stale callbacks compare against it
	opened   bool               // at least one successful open since construction

	stats struct {
		reconnects atomic.Int64
		received   atomic.Int64
		dispatched atomic.Int64
		malformed  atomic.Int64
		unrouted   atomic.Int64
		panics     atomic.Int64
		pending    atomic.Int64
	}
}

// outboxSize bounds control frames queued on top of the resubscribe batch.
const outboxSize = 64

// New creates a Mux. Nothing is dialed until the first Subscribe.
func New(cfg Config, dial Dialer, opts ...Option) *Mux {
	def := DefaultConfig()
	if cfg.ReconnectBaseDelay <= 0 {
		cfg.ReconnectBaseDelay = def.ReconnectBaseDelay
	}
	if cfg.ReconnectMaxDelay <= 0 {
		cfg.ReconnectMaxDelay = def.ReconnectMaxDelay
	}
	if cfg.ReconnectFactor <= 1 {
		cfg.ReconnectFactor = def.ReconnectFactor
	}

	m := &Mux{
		cfg:      cfg,
		dial:     dial,
		clock:    realClock{},
		logger:   slog.Default(),
		registry: newRegistry(),
		sched:    newScheduler(cfg),
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.logger == nil {
		m.logger = slog.Default()
	}
	m.logger = m.logger.With("component", "stream")

	return m
}

// Subscription is the handle returned by Subscribe.
type Subscription struct {
	mux *Mux
	reg *registration
}

// ID identifies the registration.
func (s *Subscription) ID() uuid.UUID {
	if s == nil || s.reg == nil {
		return uuid.Nil
	}
	return s.reg.id
}

// Channel returns the subscribed channel.
func (s *Subscription) Channel() string {
	if s == nil || s.reg == nil {
		return ""
	}
	return s.reg.channel
}

// Active reports whether the registration still receives frames.
func (s *Subscription) Active() bool {
	return s != nil && s.reg != nil && s.reg.active.Load()
}

// Unsubscribe is the teardown for this registration. Safe to call more than once.
func (s *Subscription) Unsubscribe() {
	if s == nil || s.mux == nil {
		return
	}
	s.mux.Unsubscribe(s)
}

// Subscribe registers h for channel and returns its teardown handle.
// The first registration for a channel opens the connection if needed and
// sends one subscribe frame. It never fails: an empty channel or nil handler
// yields an inert Subscription.
func (m *Mux) Subscribe(channel string, h Handler) *Subscription {
	if channel == "" || h == nil {
		m.logger.Warn("ignoring subscribe with empty channel or nil handler", "channel", channel)
		return &Subscription{}
	}

	reg := &registration{
		id:      uuid.New(),
		channel: channel,
		handler: h,
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.registry.add(reg) {
		m.logger.Debug("channel activated", "channel", channel)
		m.connectLocked()
		m.sendLocked(controlFrame{Type: frameSubscribe, Channel: channel})
	}

	return &Subscription{mux: m, reg: reg}
}

// SubscribeFunc is Subscribe for a plain function.
func (m *Mux) SubscribeFunc(channel string, fn func(data json.RawMessage)) *Subscription {
	if fn == nil {
		return m.Subscribe(channel, nil)
	}
	return m.Subscribe(channel, HandlerFunc(fn))
}

// Unsubscribe removes one registration. Removing the last registration of a
// channel deletes it and sends exactly one unsubscribe frame. Unknown or
// already-removed subscriptions are ignored.
func (m *Mux) Unsubscribe(sub *Subscription) {
	if sub == nil || sub.reg == nil || sub.mux != m {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !sub.reg.active.Load() {
		return
	}
	if m.registry.remove(sub.reg) {
		m.logger.Debug("channel deactivated", "channel", sub.reg.channel)
		m.sendLocked(controlFrame{Type: frameUnsubscribe, Channel: sub.reg.channel})
	}
}

// Disconnect tears everything down: the pending timer is cancelled, the socket
// closed and the registry cleared. It is the only way to stop reconnecting.
// A later Subscribe starts over from scratch.
func (m *Mux) Disconnect() {
	m.mu.Lock()
	defer m.mu.Unlock()

	prev := m.sched.phase
	m.sched.fire(evTeardown)

	if m.timer != nil {
		m.timer.Stop()
		m.timer = nil
	}
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	if m.client != nil {
		m.client.Close()
		m.client = nil
	}
	m.out = nil

	m.gen++
	m.registry.clear()
	m.sched.reset()

	m.logger.Info("stream torn down", "previous_phase", prev)
}

// Status returns the current connection state. Consumers poll it.
func (m *Mux) Status() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sched.phase.state()
}

// IsConnected reports whether the transport is open.
func (m *Mux) IsConnected() bool {
	return m.Status() == StateConnected
}

// Channels returns the currently registered channels, sorted.
func (m *Mux) Channels() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.registry.channels()
}

// Stats returns current statistics.
func (m *Mux) Stats() Stats {
	m.mu.Lock()
	state := m.sched.phase.state()
	channels, subs := m.registry.len()
	attempt := m.sched.attempt()
	m.mu.Unlock()

	return Stats{
		State:            state,
		Channels:         channels,
		Subscriptions:    subs,
		Attempt:          attempt,
		Reconnects:       m.stats.reconnects.Load(),
		FramesReceived:   m.stats.received.Load(),
		FramesDispatched: m.stats.dispatched.Load(),
		FramesMalformed:  m.stats.malformed.Load(),
		FramesUnrouted:   m.stats.unrouted.Load(),
		HandlerPanics:    m.stats.panics.Load(),
		ControlPending:   m.stats.pending.Load(),
	}
}

// connectLocked starts a dial unless one is open or in progress (or a reconnect
// timer is already pending). Must be called with m.mu held.
func (m *Mux) connectLocked() {
	if !m.sched.fire(evConnect) {
		return
	}
	m.startDialLocked()
}

// startDialLocked launches a dial for a fresh connection generation.
// The phase must already be phaseConnecting.
func (m *Mux) startDialLocked() {
	m.gen++
	gen := m.gen

	ctx, cancel := context.WithCancel(context.Background())
	m.cancel = cancel

	m.logger.Debug("dialing", "attempt", m.sched.attempt(), "gen", gen)
	go m.run(ctx, gen)
}

// run dials, installs the client on success and pumps its frames until the
// connection dies or the generation is retired.
func (m *Mux) run(ctx context.Context, gen uint64) {
	client, err := m.dial(ctx)

	m.mu.Lock()
	if gen != m.gen || m.sched.phase != phaseConnecting {
		// Torn down or superseded while dialing.
		m.mu.Unlock()
		if client != nil {
			client.Close()
		}
		return
	}
	if err != nil {
		m.logger.Warn("stream dial failed", "error", err)
		if m.cancel != nil {
			m.cancel()
			m.cancel = nil
		}
		m.closedLocked()
		m.mu.Unlock()
		return
	}

	channels := m.registry.channels()
	m.client = client
	m.out = make(chan controlFrame, outboxSize+len(channels))
	out := m.out
	m.sched.fire(evOpened)
	m.sched.reset()
	if m.opened {
		m.stats.reconnects.Add(1)
	}
	m.opened = true

	for _, ch := range channels {
		m.sendLocked(controlFrame{Type: frameSubscribe, Channel: ch})
	}
	m.logger.Info("stream connected",
		"session", client.SessionID(),
		"resubscribed", len(channels),
	)
	m.mu.Unlock()

	go m.write(ctx, client, out)
	m.pump(ctx, gen, client)
}

// write is the single writer of a connection life. Frames go out in the order
// they were queued; socket writes never hold m.mu.
func (m *Mux) write(ctx context.Context, client connection.Client, out <-chan controlFrame) {
	defer func() {
		// Nothing queues to out once ctx is cancelled.
		for {
			select {
			case <-out:
				m.stats.pending.Add(-1)
			default:
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case frame := <-out:
			m.writeFrame(client, frame)
			m.stats.pending.Add(-1)
		}
	}
}

func (m *Mux) writeFrame(client connection.Client, frame controlFrame) {
	data, err := json.Marshal(frame)
	if err != nil {
		return
	}
	if err := client.Send(data); err != nil {
		m.logger.Debug("control frame send failed",
			"type", frame.Type,
			"channel", frame.Channel,
			"error", err,
		)
	}
}

// pump is the single dispatch goroutine of a connection life.
func (m *Mux) pump(ctx context.Context, gen uint64, client connection.Client) {
	for {
		select {
		case <-ctx.Done():
			return
		case err := <-client.Errors():
			// Frames read before the failure are still buffered.
			m.drain(ctx, client)
			m.handleClosed(gen, err)
			return
		case msg := <-client.Messages():
			// select may pick a buffered frame after ctx is done.
			if ctx.Err() != nil {
				return
			}
			m.dispatch(msg.Data)
		}
	}
}

func (m *Mux) drain(ctx context.Context, client connection.Client) {
	for ctx.Err() == nil {
		select {
		case msg := <-client.Messages():
			m.dispatch(msg.Data)
		default:
			return
		}
	}
}

// handleClosed reacts to a transport close/error for connection generation gen.
func (m *Mux) handleClosed(gen uint64, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		return
	}

	m.logger.Warn("stream connection lost", "error", err)
	if m.client != nil {
		m.client.Close()
		m.client = nil
	}
	m.out = nil
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.closedLocked()
}

// closedLocked moves into Backoff and arms the single reconnect timer.
// A close observed while already in Backoff (or torn down) is ignored.
func (m *Mux) closedLocked() {
	if !m.sched.fire(evClosed) {
		return
	}

	delay := m.sched.nextDelay()
	gen := m.gen
	m.timer = m.clock.AfterFunc(delay, func() {
		m.timerFired(gen)
	})

	m.logger.Info("reconnect scheduled",
		"delay", delay,
		"attempt", m.sched.attempt(),
	)
}

// timerFired starts the next dial if the timer is still the current one.
func (m *Mux) timerFired(gen uint64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if gen != m.gen {
		return
	}
	if !m.sched.fire(evTimerFired) {
		return
	}
	m.timer = nil
	m.startDialLocked()
}

// sendLocked queues a control frame for the connection writer if the transport
// is open and silently drops it otherwise. Dropped frames are recovered by the
// resubscribe on the next open.
func (m *Mux) sendLocked(frame controlFrame) {
	if m.sched.phase != phaseOpen || m.out == nil {
		m.logger.Debug("not connected, dropping control frame",
			"type", frame.Type,
			"channel", frame.Channel,
		)
		return
	}

	m.stats.pending.Add(1)
	select {
	case m.out <- frame:
	default:
		m.stats.pending.Add(-1)
		m.logger.Warn("control outbox full, dropping frame",
			"type", frame.Type,
			"channel", frame.Channel,
		)
	}
}
