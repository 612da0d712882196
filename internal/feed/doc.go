// Package feed gives structure to the stream's opaque channels and payloads.
//
// The stream package treats channels as plain strings and payloads as raw JSON.
// Consumers that want typed data use this package:
//
//	Parse / Channel.String - channel name <-> {Kind, Pair, Interval}
//	Expand                 - build channel lists from configured feeds and pairs
//	Decode                 - payload -> Event tagged by Kind
//	Book                   - REST snapshot with l2book updates merged on top
//	Handler / BookHandler  - stream.Handler adapters
package feed
