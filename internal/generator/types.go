// Package generator is the external content-generation collaborator: it turns
// a job's typed input into a page-shaped payload. Identity fields (id,
// createdAt, parentId, isPlaceholder) are stamped by the job engine, never
// here.
package generator

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_service.go -package=mocks wikigen/internal/generator Service

import "context"

// PageContent is the structured payload a generation produces.
type PageContent struct {
	Title              string   `json:"title"`
	Content            string   `json:"content"`
	RelatedTopics      []string `json:"relatedTopics"`
	SuggestedQuestions []string `json:"suggestedQuestions"`
}

// WikiParams describes a page-from-topic generation.
type WikiParams struct {
	Topic         string
	Context       string
	RelatedTitles []string
}

// QuestionParams describes an answer-question generation against the page the
// reader is currently on.
type QuestionParams struct {
	Question    string
	PageTitle   string
	PageContent string
}

// SelectionParams describes a generate-from-selection generation.
type SelectionParams struct {
	SelectedText string
	Context      string
	PageTitle    string
}

// Service is the interface consumed by the job engine.
type Service interface {
	// GenerateWikiPage creates a full wiki page about a topic.
	GenerateWikiPage(ctx context.Context, p WikiParams) (*PageContent, error)
	// AnswerQuestion answers a question in the context of the current page.
	AnswerQuestion(ctx context.Context, p QuestionParams) (*PageContent, error)
	// GenerateFromSelection explains highlighted text from the current page.
	GenerateFromSelection(ctx context.Context, p SelectionParams) (*PageContent, error)
}
