package stream

import (
	"encoding/json"
)

// jsonNull is delivered when a frame carries a channel but no data.
var jsonNull = json.RawMessage("null")

// parseFrame extracts {channel, data} from a raw frame.
// Anything that is not a JSON object with a non-empty string channel is rejected.
func parseFrame(raw []byte) (dataFrame, bool) {
	var frame dataFrame
	if err := json.Unmarshal(raw, &frame); err != nil {
		return dataFrame{}, false
	}
	if frame.Channel == "" {
		return dataFrame{}, false
	}
	if len(frame.Data) == 0 {
		frame.Data = jsonNull
	}
	return frame, true
}

// dispatch routes one inbound frame to every live registration on its channel.
// Malformed and unrouted frames are protocol noise (heartbeats, late frames after
// an unsubscribe) and are dropped without surfacing an error.
func (m *Mux) dispatch(raw []byte) {
	m.stats.received.Add(1)

	frame, ok := parseFrame(raw)
	if !ok {
		m.stats.malformed.Add(1)
		m.logger.Debug("discarding malformed frame", "size", len(raw))
		return
	}

	m.mu.Lock()
	regs := m.registry.lookup(frame.Channel)
	m.mu.Unlock()

	if len(regs) == 0 {
		m.stats.unrouted.Add(1)
		return
	}

	delivered := false
	for _, reg := range regs {
		if !reg.active.Load() {
			continue
		}
		m.invoke(reg, frame.Data)
		delivered = true
	}
	if delivered {
		m.stats.dispatched.Add(1)
	}
}

// invoke runs a single handler, isolating its panics from siblings and from the read loop.
func (m *Mux) invoke(reg *registration, data json.RawMessage) {
	defer func() {
		if r := recover(); r != nil {
			m.stats.panics.Add(1)
			m.logger.Error("handler panicked",
				"channel", reg.channel,
				"subscription", reg.id,
				"panic", r,
			)
		}
	}()

	reg.handler.Handle(data)
}
