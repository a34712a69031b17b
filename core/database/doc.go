// Package database manages the connection to the kiosk's local MySQL store.
//
// The sync engine owns a handful of relational tables (plants, lines,
// stations, documents, sync_runs) mirrored from the remote MES API. The
// connection is built once and injected into the engine, keeping test runs
// isolated from any process-wide state.
package database
