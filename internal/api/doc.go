// Package api provides the HyperScope REST client used to seed live views.
//
// Endpoints:
//   - GET /api/orderbook/{PAIR}?depth=N  order book snapshot (depth 1-100)
//   - GET /health                        liveness and server version
//
// The stream overlays these snapshots; see package feed.
package api
