// Package models defines the local mirror tables owned by the sync engine
// (plants, lines, stations, documents, sync_runs) and the SyncResult shape
// returned to callers.
//
// Lines and stations carry two remote identifiers each: a numeric id in a
// dedicated column (id_l2l, station_id) and a legacy alphanumeric code in
// external_id. Older deployments stored the numeric id in external_id, which
// is why the matching cascade in the sync package also probes that column
// with the numeric key.
package models
