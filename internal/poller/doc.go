// Package poller periodically refetches REST order book snapshots.
//
// Stream updates only ever modify a book; levels missed during a reconnect
// stay wrong until the next snapshot. The poller bounds that drift by
// handing fresh snapshots to a SnapshotHandler on a fixed interval.
package poller
