// Package sync implements the mirroring engine that reconciles the kiosk's
// local tables (plants, lines, stations, documents) against the remote MES
// API.
//
// # Matching cascade
//
// Remote identifier schemes are unstable: lines and stations carry both a
// numeric remote id and a legacy alphanumeric code, and older deployments
// stored the numeric id in the external_id column. Each record is therefore
// matched through an ordered list of strategies (ByRemoteID, ByExternalID,
// ByLegacyExternalID) tried until one finds a local row, so re-running a
// sync never duplicates an entity however it was first written.
//
// # Failure isolation
//
// A failed fetch fails its whole scope and marks the result unsuccessful.
// A failure while processing a single record is formatted into the result's
// error list and the batch continues; one bad record never aborts a run.
//
// # Ordering
//
// Stages run strictly in dependency order, one parent at a time, and each
// stage refuses to run when no parent has resolved the remote identifier it
// needs. Every top-level invocation appends one sync_runs audit row.
package sync
