package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// JobStore defines the interface for generation job storage operations.
type JobStore interface {
	// GetAll returns every job, newest first.
	GetAll(ctx context.Context) ([]*Job, error)
	// GetByID returns a job by id, or ErrNotFound.
	GetByID(ctx context.Context, id string) (*Job, error)
	// GetPending returns pending jobs, oldest first.
	GetPending(ctx context.Context) ([]*Job, error)
	// Save inserts or replaces a job.
	Save(ctx context.Context, job *Job) error
	// ClaimPending atomically transitions a job from pending to processing.
	// It reports whether this caller won the claim.
	ClaimPending(ctx context.Context, id string) (bool, error)
	// UpdateStatus sets a job's status and optional error message.
	UpdateStatus(ctx context.Context, id string, status JobStatus, errMsg string) error
	// UpdateOutput records the generated page on a job and marks it completed.
	UpdateOutput(ctx context.Context, id string, page *Page) error
	// DeleteByID deletes a job by id.
	DeleteByID(ctx context.Context, id string) error
	// DeleteAll deletes every job.
	DeleteAll(ctx context.Context) error
	// DeleteTerminalBefore deletes completed and failed jobs last updated
	// before the cutoff. Returns the count removed.
	DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int, error)
}

// JobRepo provides methods for generation job operations.
// It implements the JobStore interface.
type JobRepo struct {
	db  *sql.DB
	now func() time.Time
}

// NewJobRepo creates a new JobRepo.
func NewJobRepo(db *sql.DB) *JobRepo {
	return &JobRepo{db: db, now: time.Now}
}

const jobColumns = "id, status, type, input, output, error, created_at, updated_at"

func scanJob(scanner interface{ Scan(dest ...any) error }) (*Job, error) {
	var j Job
	var input string
	var output, errMsg sql.NullString

	err := scanner.Scan(&j.ID, &j.Status, &j.Type, &input, &output, &errMsg,
		&j.CreatedAt, &j.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(input), &j.Input); err != nil {
		return nil, fmt.Errorf("failed to decode job input: %w", err)
	}
	if output.Valid {
		var page Page
		if err := json.Unmarshal([]byte(output.String), &page); err != nil {
			return nil, fmt.Errorf("failed to decode job output: %w", err)
		}
		j.Output = &page
	}
	j.Error = errMsg.String
	return &j, nil
}

func (r *JobRepo) queryJobs(ctx context.Context, query string, args ...any) ([]*Job, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query jobs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	jobs := []*Job{}
	for rows.Next() {
		j, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan job: %w", err)
		}
		jobs = append(jobs, j)
	}
	return jobs, rows.Err()
}

// GetAll returns every job, newest first.
func (r *JobRepo) GetAll(ctx context.Context) ([]*Job, error) {
	return r.queryJobs(ctx,
		"SELECT "+jobColumns+" FROM generation_jobs ORDER BY created_at DESC")
}

// GetByID returns a job by id, or ErrNotFound.
func (r *JobRepo) GetByID(ctx context.Context, id string) (*Job, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+jobColumns+" FROM generation_jobs WHERE id = ?", id)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query job: %w", err)
	}
	return j, nil
}

// GetPending returns pending jobs, oldest first.
func (r *JobRepo) GetPending(ctx context.Context) ([]*Job, error) {
	return r.queryJobs(ctx,
		"SELECT "+jobColumns+" FROM generation_jobs WHERE status = ? ORDER BY created_at ASC",
		JobPending)
}

// Save inserts or replaces a job.
func (r *JobRepo) Save(ctx context.Context, job *Job) error {
	if job.ID == "" {
		return fmt.Errorf("job id is required")
	}

	input, err := json.Marshal(job.Input)
	if err != nil {
		return fmt.Errorf("failed to encode job input: %w", err)
	}
	var output any
	if job.Output != nil {
		raw, err := json.Marshal(job.Output)
		if err != nil {
			return fmt.Errorf("failed to encode job output: %w", err)
		}
		output = string(raw)
	}
	var errMsg any
	if job.Error != "" {
		errMsg = job.Error
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT OR REPLACE INTO generation_jobs
		 (id, status, type, input, output, error, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		job.ID, job.Status, job.Type, string(input), output, errMsg,
		job.CreatedAt, job.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save job: %w", err)
	}
	return nil
}

// ClaimPending transitions a job from pending to processing. The conditional
// update is the linearization point: exactly one concurrent caller observes
// an affected row.
func (r *JobRepo) ClaimPending(ctx context.Context, id string) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE generation_jobs SET status = ?, updated_at = ? WHERE id = ? AND status = ?",
		JobProcessing, r.now().UnixMilli(), id, JobPending)
	if err != nil {
		return false, fmt.Errorf("failed to claim job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check job claim: %w", err)
	}
	return affected == 1, nil
}

// UpdateStatus sets a job's status and optional error message.
func (r *JobRepo) UpdateStatus(ctx context.Context, id string, status JobStatus, errMsg string) error {
	var errVal any
	if errMsg != "" {
		errVal = errMsg
	}
	_, err := r.db.ExecContext(ctx,
		"UPDATE generation_jobs SET status = ?, error = ?, updated_at = ? WHERE id = ?",
		status, errVal, r.now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("failed to update job status: %w", err)
	}
	return nil
}

// UpdateOutput records the generated page and marks the job completed.
func (r *JobRepo) UpdateOutput(ctx context.Context, id string, page *Page) error {
	raw, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("failed to encode job output: %w", err)
	}
	_, err = r.db.ExecContext(ctx,
		"UPDATE generation_jobs SET status = ?, output = ?, error = NULL, updated_at = ? WHERE id = ?",
		JobCompleted, string(raw), r.now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("failed to update job output: %w", err)
	}
	return nil
}

// DeleteByID deletes a job by id.
func (r *JobRepo) DeleteByID(ctx context.Context, id string) error {
	if _, err := r.db.ExecContext(ctx,
		"DELETE FROM generation_jobs WHERE id = ?", id); err != nil {
		return fmt.Errorf("failed to delete job: %w", err)
	}
	return nil
}

// DeleteAll deletes every job.
func (r *JobRepo) DeleteAll(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, "DELETE FROM generation_jobs"); err != nil {
		return fmt.Errorf("failed to delete jobs: %w", err)
	}
	return nil
}

// DeleteTerminalBefore deletes completed and failed jobs last updated before
// the cutoff.
func (r *JobRepo) DeleteTerminalBefore(ctx context.Context, cutoff time.Time) (int, error) {
	res, err := r.db.ExecContext(ctx,
		"DELETE FROM generation_jobs WHERE status IN (?, ?) AND updated_at < ?",
		JobCompleted, JobFailed, cutoff.UnixMilli())
	if err != nil {
		return 0, fmt.Errorf("failed to prune jobs: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count pruned jobs: %w", err)
	}
	return int(removed), nil
}
