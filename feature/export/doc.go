// Package export drives the remote system's asynchronous bulk export
// workflow: start a job, poll its status on a fixed interval with a bounded
// attempt budget, then download and scan the resulting newline-delimited
// JSON file for a target record.
//
// The workflow is independent of the main sync orchestrator; its failures
// are reported to the export caller only and never touch the mirror tables.
package export
