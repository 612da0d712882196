// Package recorder persists stream frames in batches.
//
// A Recorder hands out stream handlers that enqueue frames into a growable
// Queue. A single loop drains the queue into a Sink whenever BatchSize
// frames are pending or FlushInterval elapses, whichever comes first.
//
// PGSink writes batches to PostgreSQL with COPY.
package recorder
