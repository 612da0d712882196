// Package stream implements the subscription multiplexer.
//
// One Mux owns one streaming connection and fans inbound frames out to any
// number of consumers keyed by channel name:
//   - Channel Registry: channel -> ordered registrations, the only authority on
//     whether anyone listens to a channel
//   - Dispatcher: parses {"channel","data"} frames and invokes handlers in order
//   - Scheduler: explicit state machine for capped exponential reconnects; every
//     registered channel is resubscribed when a new connection opens
//
// The Mux never surfaces transport errors to consumers. Status and IsConnected
// are the only connectivity signals; Disconnect is the only way to stop retrying.
package stream
