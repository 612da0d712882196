// Package model defines the market data types carried by the stream and the REST snapshot API.
//
// Conventions:
//   - Prices and sizes: shopspring decimal.Decimal, decoded from JSON strings or numbers
//   - Timestamps: int64 milliseconds since Unix epoch, as sent by the exchange
//   - Pairs: upper-case coin or pair names (e.g. "BTC", "BTC-PERP")
package model
