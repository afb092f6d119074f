package engine

import (
	"context"
	"errors"
	"time"

	"wikigen/internal/storage"
)

// Polling contract defaults: a fixed interval bounded by a hard wall-clock
// timeout.
const (
	DefaultPollInterval = 1 * time.Second
	DefaultPollTimeout  = 5 * time.Minute
)

// Poller observes a job until it reaches a terminal state. It never mutates
// the job: on timeout the record is left exactly as it was.
type Poller struct {
	Interval time.Duration
	Timeout  time.Duration
}

// NewPoller creates a Poller, substituting defaults for non-positive values.
func NewPoller(interval, timeout time.Duration) Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	if timeout <= 0 {
		timeout = DefaultPollTimeout
	}
	return Poller{Interval: interval, Timeout: timeout}
}

// Wait polls the job until completed or failed. It returns the completed job,
// or the failed job together with a JobFailedError carrying its recorded
// error. A job that disappears mid-poll is a consistency fault and aborts
// immediately with ErrNotFound. ErrPollTimeout is returned once the deadline
// elapses.
func (p Poller) Wait(ctx context.Context, jobs storage.JobStore, id string) (*storage.Job, error) {
	deadline := time.NewTimer(p.Timeout)
	defer deadline.Stop()
	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for {
		job, err := jobs.GetByID(ctx, id)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, ErrNotFound
		}
		if err != nil {
			return nil, WrapError(err, "failed to poll job")
		}

		switch job.Status {
		case storage.JobCompleted:
			return job, nil
		case storage.JobFailed:
			return job, &JobFailedError{JobID: job.ID, Message: job.Error}
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, ErrPollTimeout
		case <-ticker.C:
		}
	}
}
