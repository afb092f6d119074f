// Package engine implements the generation job lifecycle: creation with typed
// input validation, dispatch to the generation collaborator, result
// persistence and failure recording.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"wikigen/internal/contextutil"
	"wikigen/internal/generator"
	"wikigen/internal/graph"
	"wikigen/internal/storage"
)

// DefaultGenerationTimeout bounds a single collaborator call.
const DefaultGenerationTimeout = 5 * time.Minute

// Engine drives jobs through pending -> processing -> {completed | failed}.
type Engine struct {
	gen        generator.Service
	genTimeout time.Duration
	logger     *slog.Logger
	now        func() time.Time
}

// New creates an Engine. A non-positive genTimeout falls back to the default.
func New(gen generator.Service, genTimeout time.Duration) *Engine {
	if genTimeout <= 0 {
		genTimeout = DefaultGenerationTimeout
	}
	return &Engine{
		gen:        gen,
		genTimeout: genTimeout,
		logger:     slog.Default(),
		now:        time.Now,
	}
}

// Create validates the typed input and persists a new pending job. Validation
// failures surface before any state is written.
func (e *Engine) Create(ctx context.Context, store *storage.Store, jobType storage.JobType, input storage.JobInput) (*storage.Job, error) {
	if err := validateInput(jobType, input); err != nil {
		return nil, err
	}

	now := e.now()
	job := &storage.Job{
		ID:        newJobID(jobType, now),
		Status:    storage.JobPending,
		Type:      jobType,
		Input:     input,
		CreatedAt: now.UnixMilli(),
		UpdatedAt: now.UnixMilli(),
	}
	if err := store.Jobs.Save(ctx, job); err != nil {
		return nil, WrapError(err, "failed to persist job")
	}
	return job, nil
}

// Submit creates a job and starts its dispatch in the background, so callers
// never observe a created job that has not been told to start. The returned
// job is pending; its progress is observed through polling.
func (e *Engine) Submit(ctx context.Context, store *storage.Store, jobType storage.JobType, input storage.JobInput) (*storage.Job, error) {
	job, err := e.Create(ctx, store, jobType, input)
	if err != nil {
		return nil, err
	}

	bg := context.WithoutCancel(ctx)
	go func() {
		if _, err := e.Process(bg, store, job.ID); err != nil {
			contextutil.LoggerFromContext(bg).Error("background job dispatch failed",
				"job_id", job.ID, "error", err)
		}
	}()

	return job, nil
}

// Process dispatches a job by id. A completed job is returned unchanged
// without invoking the collaborator again; a processing or failed job yields
// ErrConflict. Generation failures are recorded on the job and returned as a
// failed job, not as an error.
func (e *Engine) Process(ctx context.Context, store *storage.Store, id string) (*storage.Job, error) {
	logger := contextutil.LoggerFromContext(ctx)

	job, err := store.Jobs.GetByID(ctx, id)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, WrapError(err, "failed to load job")
	}

	switch job.Status {
	case storage.JobCompleted:
		return job, nil
	case storage.JobProcessing, storage.JobFailed:
		return nil, ErrConflict
	}

	claimed, err := store.Jobs.ClaimPending(ctx, id)
	if err != nil {
		return nil, WrapError(err, "failed to claim job")
	}
	if !claimed {
		// Lost the race. The winner either finished already or still runs.
		job, err := store.Jobs.GetByID(ctx, id)
		if err != nil {
			return nil, WrapError(err, "failed to reload job")
		}
		if job.Status == storage.JobCompleted {
			return job, nil
		}
		return nil, ErrConflict
	}

	page, genErr := e.execute(ctx, store, job)
	if genErr != nil {
		logger.Warn("generation failed", "job_id", id, "type", job.Type, "error", genErr)
		if err := store.Jobs.UpdateStatus(ctx, id, storage.JobFailed, genErr.Error()); err != nil {
			return nil, WrapError(err, "failed to record job failure")
		}
		e.markPlaceholderFailed(ctx, store, job)
		return store.Jobs.GetByID(ctx, id)
	}

	if err := store.Pages.Save(ctx, page); err != nil {
		if uerr := store.Jobs.UpdateStatus(ctx, id, storage.JobFailed, "failed to persist generated page"); uerr != nil {
			logger.Error("failed to record job failure", "job_id", id, "error", uerr)
		}
		return nil, WrapError(err, "failed to persist generated page")
	}
	if err := graph.Record(ctx, store.Nodes, page); err != nil {
		// The page is saved; a graph hiccup should not fail the job.
		logger.Error("failed to update knowledge graph", "job_id", id, "page_id", page.ID, "error", err)
	}
	if err := store.Jobs.UpdateOutput(ctx, id, page); err != nil {
		return nil, WrapError(err, "failed to record job output")
	}

	logger.Info("job completed", "job_id", id, "type", job.Type, "page_id", page.ID)
	return store.Jobs.GetByID(ctx, id)
}

// execute runs the type-specific generation and stamps identity fields onto
// the collaborator's payload.
func (e *Engine) execute(parent context.Context, store *storage.Store, job *storage.Job) (*storage.Page, error) {
	ctx, cancel := context.WithTimeout(parent, e.genTimeout)
	defer cancel()

	in := job.Input
	now := e.now()

	var (
		content *generator.PageContent
		pageID  string
		err     error
	)

	switch job.Type {
	case storage.JobWikiPage:
		pageID = in.ExistingPageID
		if pageID == "" && in.ForceRegenerate {
			// Forced regeneration overwrites the newest page with this title
			// instead of minting a duplicate.
			if p, perr := store.Pages.GetNewestByTitle(ctx, in.Topic); perr == nil {
				pageID = p.ID
			}
		}
		if pageID == "" {
			// Regenerating an already-shown placeholder reuses its id instead
			// of minting a duplicate.
			if ph, perr := store.Pages.GetPlaceholderByTitle(ctx, in.Topic); perr == nil {
				pageID = ph.ID
			}
		}
		if pageID == "" {
			pageID = PageID(in.Topic, now)
		}
		content, err = e.gen.GenerateWikiPage(ctx, generator.WikiParams{
			Topic:   in.Topic,
			Context: in.Context,
		})

	case storage.JobQuestion:
		title := "Current Page"
		if in.ParentID != "" {
			if p, perr := store.Pages.GetByID(ctx, in.ParentID); perr == nil {
				title = p.Title
			}
		}
		pageID = PageID(in.Question, now)
		content, err = e.gen.AnswerQuestion(ctx, generator.QuestionParams{
			Question:    in.Question,
			PageTitle:   title,
			PageContent: in.CurrentPageContent,
		})

	case storage.JobSelection:
		parentPage, perr := store.Pages.GetByID(ctx, in.ParentID)
		if errors.Is(perr, storage.ErrNotFound) {
			return nil, fmt.Errorf("parent page %q not found for selection job", in.ParentID)
		}
		if perr != nil {
			return nil, WrapError(perr, "failed to load parent page")
		}
		pageID = PageID(in.SelectedText, now)
		content, err = e.gen.GenerateFromSelection(ctx, generator.SelectionParams{
			SelectedText: in.SelectedText,
			Context:      in.Context,
			PageTitle:    parentPage.Title,
		})

	default:
		return nil, fmt.Errorf("unknown job type: %s", job.Type)
	}

	if err != nil {
		return nil, err
	}

	return &storage.Page{
		ID:                 pageID,
		Title:              content.Title,
		Content:            content.Content,
		RelatedTopics:      content.RelatedTopics,
		SuggestedQuestions: content.SuggestedQuestions,
		CreatedAt:          now.UnixMilli(),
		ParentID:           in.ParentID,
		IsPlaceholder:      false,
	}, nil
}

// markPlaceholderFailed flips a visible "generating" placeholder into the
// failed state so the reader can tell the difference and regenerate.
func (e *Engine) markPlaceholderFailed(ctx context.Context, store *storage.Store, job *storage.Job) {
	var page *storage.Page
	if job.Input.ExistingPageID != "" {
		page, _ = store.Pages.GetByID(ctx, job.Input.ExistingPageID)
	} else if job.Type == storage.JobWikiPage {
		page, _ = store.Pages.GetPlaceholderByTitle(ctx, job.Input.Topic)
	}
	if page == nil || !page.IsPlaceholder {
		return
	}

	page.Content = storage.PlaceholderFailedContent
	if err := store.Pages.Save(ctx, page); err != nil {
		contextutil.LoggerFromContext(ctx).Error("failed to mark placeholder as failed",
			"page_id", page.ID, "error", err)
	}
}

func validateInput(jobType storage.JobType, in storage.JobInput) error {
	switch jobType {
	case storage.JobWikiPage:
		if in.Topic == "" {
			return &ValidationError{Field: "topic", Message: "required for wiki_page jobs"}
		}
	case storage.JobQuestion:
		if in.Question == "" {
			return &ValidationError{Field: "question", Message: "required for question jobs"}
		}
		if in.CurrentPageContent == "" {
			return &ValidationError{Field: "currentPageContent", Message: "required for question jobs"}
		}
	case storage.JobSelection:
		if in.SelectedText == "" {
			return &ValidationError{Field: "selectedText", Message: "required for selection jobs"}
		}
		if in.Context == "" {
			return &ValidationError{Field: "context", Message: "required for selection jobs"}
		}
		if in.ParentID == "" {
			return &ValidationError{Field: "parentId", Message: "required for selection jobs"}
		}
	default:
		return &ValidationError{Field: "type", Message: fmt.Sprintf("unknown job type %q", jobType)}
	}
	return nil
}
