// Package remote provides a thin client for the manufacturing-execution API
// that supplies sites, lines, machines and documents to the kiosk.
//
// The remote API is GET-only. Authentication is a token passed as the "auth"
// query parameter; every response is wrapped in a {success, data, error}
// envelope. The client unwraps the envelope and normalizes both transport
// failures and success:false responses into *APIError values, so callers can
// treat "the fetch failed" as a single error class regardless of cause.
//
// Long-running bulk retrieval goes through StartExport/AsyncStatus; the
// polling loop that drives those jobs lives in feature/export.
package remote
