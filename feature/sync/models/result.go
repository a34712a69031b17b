package models

// Run statuses derived from a SyncResult.
const (
	RunStatusSuccess = "success"
	RunStatusPartial = "partial"
	RunStatusError   = "error"
)

// SyncResult is the aggregate outcome of one reconciliation invocation.
// Success is false only when a whole fetch scope failed; per-record errors
// leave Success true and populate Errors. Deactivated is always 0 today:
// remote deletions are mirrored append-only (see DESIGN.md).
type SyncResult struct {
	Success     bool     `json:"success"`
	Created     int      `json:"created"`
	Updated     int      `json:"updated"`
	Deactivated int      `json:"deactivated"`
	Errors      []string `json:"errors"`
}

// NewSyncResult returns an empty successful result.
func NewSyncResult() SyncResult {
	return SyncResult{Success: true, Errors: []string{}}
}

// Merge folds another result into this one: counters sum, error lists
// concatenate, success is the logical AND.
func (r *SyncResult) Merge(other SyncResult) {
	r.Success = r.Success && other.Success
	r.Created += other.Created
	r.Updated += other.Updated
	r.Deactivated += other.Deactivated
	r.Errors = append(r.Errors, other.Errors...)
}

// AddError appends a single error message.
func (r *SyncResult) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
}

// Status derives the audit status for this result.
func (r SyncResult) Status() string {
	if !r.Success {
		return RunStatusError
	}
	if len(r.Errors) > 0 {
		return RunStatusPartial
	}
	return RunStatusSuccess
}
