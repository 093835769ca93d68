// Package sqlite provides SQLite-backed persistence for murmur.
//
// A single Store owns the database file and hands out the recording store
// and the persistent vector index. The driver is modernc.org/sqlite, so
// no CGO is required. Schema changes live in the migrations package and
// are applied in order on open.
package sqlite
