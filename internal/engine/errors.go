package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a requested job or page is not found.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when dispatching a job that is already being
	// processed or has already failed.
	ErrConflict = errors.New("job is not in a dispatchable state")
	// ErrPollTimeout is returned when the polling deadline elapses before the
	// job reaches a terminal state.
	ErrPollTimeout = errors.New("timed out waiting for job")
)

// ValidationError reports malformed or missing job input, raised before any
// state is persisted.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on field %s: %s", e.Field, e.Message)
}

// JobFailedError carries the error string recorded on a failed job.
type JobFailedError struct {
	JobID   string
	Message string
}

func (e *JobFailedError) Error() string {
	if e.Message == "" {
		return "job failed"
	}
	return e.Message
}

// WrapError wraps an error with additional context.
func WrapError(err error, msg string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", msg, err)
}
