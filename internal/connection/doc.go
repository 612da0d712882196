// Package connection implements the Transport Connection component.
//
// A Client owns exactly one WebSocket to the HyperScope stream endpoint:
//   - Connect dials once; a Client is single-use and is replaced on reconnect
//   - Messages delivers every inbound frame with its local receive time
//   - Errors delivers at most one terminal error per connection life
//   - A heartbeat loop sends {"method":"ping"} and detects stale connections
//
// Reconnection and subscription bookkeeping live in package stream.
package connection
