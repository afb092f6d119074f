package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"wikigen/internal/storage"
)

func newTestJobs(t *testing.T) storage.JobStore {
	t.Helper()
	store, err := storage.NewStore(t.TempDir() + "/test.db")
	if err != nil {
		t.Fatalf("NewStore() error = %v", err)
	}
	t.Cleanup(func() {
		_ = store.Close()
	})
	return store.Jobs
}

func saveJob(t *testing.T, jobs storage.JobStore, job *storage.Job) {
	t.Helper()
	if err := jobs.Save(context.Background(), job); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
}

func TestPoller_Wait_Completed(t *testing.T) {
	jobs := newTestJobs(t)
	ctx := context.Background()

	saveJob(t, jobs, &storage.Job{ID: "j1", Status: storage.JobProcessing, Type: storage.JobWikiPage})

	// The job completes while the poller waits
	go func() {
		time.Sleep(30 * time.Millisecond)
		_ = jobs.UpdateOutput(ctx, "j1", &storage.Page{ID: "p1", Title: "P", Content: "c"})
	}()

	p := NewPoller(10*time.Millisecond, time.Second)
	job, err := p.Wait(ctx, jobs, "j1")
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if job.Status != storage.JobCompleted || job.Output == nil {
		t.Errorf("Wait() = %+v, want completed with output", job)
	}
}

func TestPoller_Wait_AlreadyTerminal(t *testing.T) {
	jobs := newTestJobs(t)

	saveJob(t, jobs, &storage.Job{ID: "done", Status: storage.JobCompleted, Type: storage.JobWikiPage})

	// A terminal job returns without a single tick
	p := NewPoller(time.Hour, time.Hour)
	job, err := p.Wait(context.Background(), jobs, "done")
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if job.Status != storage.JobCompleted {
		t.Errorf("Wait() status = %s, want completed", job.Status)
	}
}

func TestPoller_Wait_Failed(t *testing.T) {
	jobs := newTestJobs(t)

	saveJob(t, jobs, &storage.Job{
		ID:     "j1",
		Status: storage.JobFailed,
		Type:   storage.JobWikiPage,
		Error:  "model unavailable",
	})

	p := NewPoller(10*time.Millisecond, time.Second)
	job, err := p.Wait(context.Background(), jobs, "j1")

	var failed *JobFailedError
	if !errors.As(err, &failed) {
		t.Fatalf("Wait() error = %v, want JobFailedError", err)
	}
	if failed.Message != "model unavailable" {
		t.Errorf("JobFailedError message = %q", failed.Message)
	}
	if job == nil || job.Status != storage.JobFailed {
		t.Errorf("Wait() job = %+v, want the failed job alongside the error", job)
	}
}

func TestPoller_Wait_Timeout(t *testing.T) {
	jobs := newTestJobs(t)
	ctx := context.Background()

	saveJob(t, jobs, &storage.Job{ID: "stuck", Status: storage.JobProcessing, Type: storage.JobWikiPage})

	p := NewPoller(5*time.Millisecond, 30*time.Millisecond)
	if _, err := p.Wait(ctx, jobs, "stuck"); !errors.Is(err, ErrPollTimeout) {
		t.Fatalf("Wait() error = %v, want ErrPollTimeout", err)
	}

	// Timeout observes, never mutates
	job, err := jobs.GetByID(ctx, "stuck")
	if err != nil {
		t.Fatalf("GetByID() error = %v", err)
	}
	if job.Status != storage.JobProcessing {
		t.Errorf("status after timeout = %s, want processing untouched", job.Status)
	}
}

func TestPoller_Wait_NotFound(t *testing.T) {
	jobs := newTestJobs(t)

	p := NewPoller(10*time.Millisecond, time.Second)
	if _, err := p.Wait(context.Background(), jobs, "missing"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Wait() error = %v, want ErrNotFound", err)
	}
}

func TestPoller_Wait_ContextCanceled(t *testing.T) {
	jobs := newTestJobs(t)

	saveJob(t, jobs, &storage.Job{ID: "j1", Status: storage.JobPending, Type: storage.JobWikiPage})

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	p := NewPoller(5*time.Millisecond, time.Minute)
	if _, err := p.Wait(ctx, jobs, "j1"); !errors.Is(err, context.Canceled) {
		t.Errorf("Wait() error = %v, want context.Canceled", err)
	}
}

func TestNewPoller_Defaults(t *testing.T) {
	p := NewPoller(0, 0)
	if p.Interval != DefaultPollInterval {
		t.Errorf("Interval = %v, want %v", p.Interval, DefaultPollInterval)
	}
	if p.Timeout != DefaultPollTimeout {
		t.Errorf("Timeout = %v, want %v", p.Timeout, DefaultPollTimeout)
	}
}
