// Package database provides the PostgreSQL connection pool used by the
// frame recorder.
//
// Recorded frames land in a single append-only table; see EnsureFramesTable.
package database
