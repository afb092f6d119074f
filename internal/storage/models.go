package storage

import "strings"

// Position is a 2D mindmap coordinate. It is persisted opaquely for the UI.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Page is a generated wiki content unit.
type Page struct {
	ID                 string    `json:"id"`
	Title              string    `json:"title"`
	Content            string    `json:"content"`
	RelatedTopics      []string  `json:"relatedTopics"`
	SuggestedQuestions []string  `json:"suggestedQuestions"`
	CreatedAt          int64     `json:"createdAt"` // unix milliseconds
	ParentID           string    `json:"parentId,omitempty"`
	IsPlaceholder      bool      `json:"isPlaceholder"`
	MindmapPosition    *Position `json:"mindmapPosition,omitempty"`
}

// Reserved content markers for placeholder pages. A placeholder signals
// "still generating" or "generation failed" through its content body.
const (
	PlaceholderGeneratingContent = "# Generating content...\n\nPlease wait while we create this page for you. This usually takes a few seconds."
	PlaceholderFailedContent     = "# Generation failed\n\nWe encountered an error while generating this page. Please check your API configuration and try again."
)

// IsGenerating reports whether the page is a placeholder still waiting for content.
func (p *Page) IsGenerating() bool {
	return p.IsPlaceholder && strings.HasPrefix(p.Content, "# Generating content")
}

// IsFailed reports whether the page is a placeholder whose generation failed.
func (p *Page) IsFailed() bool {
	return p.IsPlaceholder && strings.HasPrefix(p.Content, "# Generation failed")
}

// Breadcrumb is one entry in a session's navigation history.
type Breadcrumb struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// MaxBreadcrumbs caps a session's breadcrumb trail to the most recent entries.
const MaxBreadcrumbs = 10

// Session is one browsing path through pages.
type Session struct {
	ID            string       `json:"id"`
	Name          string       `json:"name"`
	StartedAt     int64        `json:"startedAt"`
	Pages         []string     `json:"pages"`
	CurrentPageID string       `json:"currentPageId"`
	Breadcrumbs   []Breadcrumb `json:"breadcrumbs"`
}

// NormalizeBreadcrumbs collapses consecutive entries with the same page id and
// keeps only the MaxBreadcrumbs most recent entries.
func NormalizeBreadcrumbs(crumbs []Breadcrumb) []Breadcrumb {
	if len(crumbs) == 0 {
		return []Breadcrumb{}
	}
	deduped := []Breadcrumb{crumbs[0]}
	for _, c := range crumbs[1:] {
		if c.ID != deduped[len(deduped)-1].ID {
			deduped = append(deduped, c)
		}
	}
	if len(deduped) > MaxBreadcrumbs {
		deduped = deduped[len(deduped)-MaxBreadcrumbs:]
	}
	return deduped
}

// Bookmark pins a page for quick access.
type Bookmark struct {
	PageID    string `json:"pageId"`
	Title     string `json:"title"`
	Timestamp int64  `json:"timestamp"`
}

// KnowledgeNode mirrors a page's position in the generated-content tree.
type KnowledgeNode struct {
	ID       string   `json:"id"`
	Title    string   `json:"title"`
	Children []string `json:"children"`
	Parent   string   `json:"parent,omitempty"`
	Depth    int      `json:"depth"`
}

// PageView tracks per-page view accounting.
type PageView struct {
	PageID        string `json:"pageId"`
	FirstViewedAt int64  `json:"firstViewedAt"`
	LastViewedAt  int64  `json:"lastViewedAt"`
	ViewCount     int    `json:"viewCount"`
}

// JobStatus is the lifecycle state of a generation job.
type JobStatus string

const (
	JobPending    JobStatus = "pending"
	JobProcessing JobStatus = "processing"
	JobCompleted  JobStatus = "completed"
	JobFailed     JobStatus = "failed"
)

// Terminal reports whether no further transitions may leave this status.
func (s JobStatus) Terminal() bool {
	return s == JobCompleted || s == JobFailed
}

// JobType selects which generation the job performs.
type JobType string

const (
	JobWikiPage  JobType = "wiki_page"
	JobQuestion  JobType = "question"
	JobSelection JobType = "selection"
)

// JobInput is the union of per-type input fields. Which fields are required
// depends on the job type and is validated at creation time.
type JobInput struct {
	Topic              string `json:"topic,omitempty"`
	Question           string `json:"question,omitempty"`
	CurrentPageContent string `json:"currentPageContent,omitempty"`
	SelectedText       string `json:"selectedText,omitempty"`
	Context            string `json:"context,omitempty"`
	ParentID           string `json:"parentId,omitempty"`
	ExistingPageID     string `json:"existingPageId,omitempty"`
	ForceRegenerate    bool   `json:"forceRegenerate,omitempty"`
}

// Job is the durable record of one asynchronous generation request.
type Job struct {
	ID        string    `json:"id"`
	Status    JobStatus `json:"status"`
	Type      JobType   `json:"type"`
	Input     JobInput  `json:"input"`
	Output    *Page     `json:"output,omitempty"`
	Error     string    `json:"error,omitempty"`
	CreatedAt int64     `json:"createdAt"`
	UpdatedAt int64     `json:"updatedAt"`
}
