package stream

import (
	"sort"
	"sync/atomic"

	"github.com/google/uuid"
)

// registration is one Subscribe call. Two calls with the same handler are two registrations.
type registration struct {
	id      uuid.UUID
	channel string
	handler Handler

	// active flips to false the moment the registration is torn down, so an
	// in-flight fan-out skips it even if it already holds a snapshot.
	active atomic.Bool
}

// registry maps channel -> registrations in insertion order.
// A channel key exists iff its list is non-empty. Callers hold Mux.mu.
type registry struct {
	subs map[string][]*registration
	size int
}

func newRegistry() *registry {
	return &registry{
		subs: make(map[string][]*registration),
	}
}

// add records reg and reports whether it is the first registration for its channel.
func (r *registry) add(reg *registration) (first bool) {
	regs := r.subs[reg.channel]
	first = len(regs) == 0
	r.subs[reg.channel] = append(regs, reg)
	r.size++
	reg.active.Store(true)
	return first
}

// remove drops reg and reports whether its channel became empty (and was deleted).
// Unknown registrations are ignored.
func (r *registry) remove(reg *registration) (last bool) {
	regs, ok := r.subs[reg.channel]
	if !ok {
		return false
	}

	idx := -1
	for i, candidate := range regs {
		if candidate == reg {
			idx = i
			break
		}
	}
	if idx < 0 {
		return false
	}

	reg.active.Store(false)
	r.size--

	if len(regs) == 1 {
		delete(r.subs, reg.channel)
		return true
	}

	// Copy so snapshots handed to the dispatcher are never mutated.
	next := make([]*registration, 0, len(regs)-1)
	next = append(next, regs[:idx]...)
	next = append(next, regs[idx+1:]...)
	r.subs[reg.channel] = next
	return false
}

// lookup returns the registrations for channel. The slice must not be modified.
func (r *registry) lookup(channel string) []*registration {
	return r.subs[channel]
}

// channels returns every registered channel, sorted.
func (r *registry) channels() []string {
	out := make([]string, 0, len(r.subs))
	for ch := range r.subs {
		out = append(out, ch)
	}
	sort.Strings(out)
	return out
}

func (r *registry) has(channel string) bool {
	_, ok := r.subs[channel]
	return ok
}

func (r *registry) len() (channels, registrations int) {
	return len(r.subs), r.size
}

// clear deactivates and drops every registration.
func (r *registry) clear() {
	for _, regs := range r.subs {
		for _, reg := range regs {
			reg.active.Store(false)
		}
	}
	r.subs = make(map[string][]*registration)
	r.size = 0
}
