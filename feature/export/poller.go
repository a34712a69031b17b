package export

import (
	"context"
	"net/url"
	"time"

	"kiosk-sync/core/remote"

	"go.uber.org/zap"
)

// State is the lifecycle state of one export retrieval.
type State string

const (
	StateStarted  State = "started"
	StatePolling  State = "polling"
	StateFinished State = "finished"
	StateFailed   State = "failed"
	StateTimedOut State = "timed_out"
)

// Remote status values reported by the async job endpoint.
const (
	jobStatusFinished = "finished"
	jobStatusFailed   = "failed"
)

// JobAPI is the slice of the remote client the poller consumes.
type JobAPI interface {
	StartExport(ctx context.Context, params url.Values) (string, error)
	AsyncStatus(ctx context.Context, jobID string) (remote.JobStatus, error)
}

// Result is the terminal outcome of one export retrieval.
type Result struct {
	State       State  `json:"state"`
	JobID       string `json:"job_id"`
	DownloadURL string `json:"download_url,omitempty"`
	Err         string `json:"error,omitempty"`
	Polls       int    `json:"polls"`
}

// Poller drives a remote bulk export job to a terminal state: start the job,
// poll its status on a fixed interval, and give up after a fixed budget of
// attempts. It is independent of the main sync orchestrator.
type Poller struct {
	client      JobAPI
	logger      *zap.Logger
	interval    time.Duration
	maxAttempts int
}

// NewPoller creates a poller. A non-positive interval defaults to 5s and a
// non-positive attempt budget to 20 (a ceiling of roughly 100s per job).
func NewPoller(client JobAPI, l *zap.Logger, interval time.Duration, maxAttempts int) *Poller {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	if maxAttempts <= 0 {
		maxAttempts = 20
	}
	return &Poller{
		client:      client,
		logger:      l,
		interval:    interval,
		maxAttempts: maxAttempts,
	}
}

// Run starts an export job and polls it to completion, failure, or the
// attempt budget. The returned error covers only the start call; once a job
// id exists, every outcome is reported through the Result.
func (p *Poller) Run(ctx context.Context, params url.Values) (*Result, error) {
	jobID, err := p.client.StartExport(ctx, params)
	if err != nil {
		return nil, err
	}

	p.logger.Info("Export job started", zap.String("jobid", jobID))
	result := &Result{State: StatePolling, JobID: jobID}

	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		status, err := p.client.AsyncStatus(ctx, jobID)
		if err != nil {
			// A failed poll is transient but still spends the budget.
			p.logger.Warn("Status poll failed",
				zap.String("jobid", jobID),
				zap.Int("attempt", attempt),
				zap.Error(err))
		} else {
			switch {
			case status.Status == jobStatusFinished:
				result.State = StateFinished
				result.DownloadURL = status.DownloadURL
				result.Polls = attempt
				p.logger.Info("Export job finished", zap.String("jobid", jobID), zap.Int("polls", attempt))
				return result, nil
			case status.Status == jobStatusFailed || status.Error != "":
				result.State = StateFailed
				result.Err = status.Error
				if result.Err == "" {
					result.Err = "export job reported failure"
				}
				result.Polls = attempt
				p.logger.Warn("Export job failed", zap.String("jobid", jobID), zap.String("error", result.Err))
				return result, nil
			}
		}

		if attempt == p.maxAttempts {
			break
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.interval):
		}
	}

	result.State = StateTimedOut
	result.Polls = p.maxAttempts
	p.logger.Warn("Export job timed out", zap.String("jobid", jobID), zap.Int("polls", p.maxAttempts))
	return result, nil
}
