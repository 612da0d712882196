package stream

import (
	"time"

	"github.com/jpillora/backoff"
)

// phase is the reconnection state machine's state.
type phase int

const (
	phaseDisconnected phase = iota // never connected
	phaseConnecting                // dial in flight
	phaseOpen                      // connected, no pending timer
	phaseBackoff                   // waiting on the single reconnect timer
	phaseTornDown                  // Disconnect called; Subscribe restarts from scratch
)

func (p phase) String() string {
	switch p {
	case phaseDisconnected:
		return "disconnected"
	case phaseConnecting:
		return "connecting"
	case phaseOpen:
		return "open"
	case phaseBackoff:
		return "backoff"
	case phaseTornDown:
		return "torn_down"
	default:
		return "unknown"
	}
}

// state maps the internal phase onto the consumer-facing State.
func (p phase) state() State {
	switch p {
	case phaseOpen:
		return StateConnected
	case phaseConnecting:
		return StateConnecting
	default:
		return StateDisconnected
	}
}

// event drives phase transitions.
type event int

const (
	evConnect    event = iota // first subscriber needs a connection
	evOpened                  // dial succeeded
	evClosed                  // dial failed, socket closed or errored
	evTimerFired              // reconnect timer elapsed
	evTeardown                // Disconnect
)

func (e event) String() string {
	switch e {
	case evConnect:
		return "connect"
	case evOpened:
		return "opened"
	case evClosed:
		return "closed"
	case evTimerFired:
		return "timer_fired"
	case evTeardown:
		return "teardown"
	default:
		return "unknown"
	}
}

// transitions is the complete transition table. A missing entry means the event
// is ignored in that phase; in particular evClosed has no entry for phaseBackoff,
// which is what keeps the reconnect timer unique.
var transitions = map[phase]map[event]phase{
	phaseDisconnected: {
		evConnect:  phaseConnecting,
		evTeardown: phaseTornDown,
	},
	phaseConnecting: {
		evOpened:   phaseOpen,
		evClosed:   phaseBackoff,
		evTeardown: phaseTornDown,
	},
	phaseOpen: {
		evClosed:   phaseBackoff,
		evTeardown: phaseTornDown,
	},
	phaseBackoff: {
		evTimerFired: phaseConnecting,
		evTeardown:   phaseTornDown,
	},
	phaseTornDown: {
		evConnect:  phaseConnecting,
		evTeardown: phaseTornDown,
	},
}

// scheduler holds the FSM and the backoff counter. Callers hold Mux.mu.
type scheduler struct {
	phase   phase
	backoff *backoff.Backoff
}

func newScheduler(cfg Config) *scheduler {
	return &scheduler{
		phase: phaseDisconnected,
		backoff: &backoff.Backoff{
			Min:    cfg.ReconnectBaseDelay,
			Max:    cfg.ReconnectMaxDelay,
			Factor: cfg.ReconnectFactor,
			Jitter: false,
		},
	}
}

// fire applies ev and reports whether the transition was legal.
func (s *scheduler) fire(ev event) bool {
	next, ok := transitions[s.phase][ev]
	if !ok {
		return false
	}
	s.phase = next
	return true
}

// nextDelay returns min(base * factor^attempt, max) and increments the attempt counter.
func (s *scheduler) nextDelay() time.Duration {
	return s.backoff.Duration()
}

func (s *scheduler) attempt() int {
	return int(s.backoff.Attempt())
}

func (s *scheduler) reset() {
	s.backoff.Reset()
}

// Timer is a pending reconnect timer.
type Timer interface {
	Stop() bool
}

// Clock schedules reconnect timers. Tests substitute a manual clock.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}
