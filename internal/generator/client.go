package generator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"unicode/utf8"
)

// Client generates page content through an OpenAI-compatible chat completions
// API. It implements the Service interface.
type Client struct {
	BaseURL string
	APIKey  string
	Model   string
	client  *http.Client
}

// NewClient creates a new generation client.
func NewClient(baseURL, apiKey, model string) *Client {
	return &Client{
		BaseURL: baseURL,
		APIKey:  apiKey,
		Model:   model,
		client:  http.DefaultClient,
	}
}

// ChatMessage represents a single message in a chat conversation.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatRequest struct {
	Model               string         `json:"model"`
	Messages            []ChatMessage  `json:"messages"`
	ResponseFormat      responseFormat `json:"response_format"`
	MaxCompletionTokens int            `json:"max_completion_tokens"`
	Temperature         *float64       `json:"temperature,omitempty"`
}

type chatChoice struct {
	Index        int         `json:"index"`
	Message      ChatMessage `json:"message"`
	FinishReason string      `json:"finish_reason"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Object  string       `json:"object"`
	Choices []chatChoice `json:"choices"`
}

const maxCompletionTokens = 8000

const wikiSystemPrompt = `You are an expert educator. Create a comprehensive wiki page as JSON:
{
  "title": "Topic Title",
  "content": "Markdown content with ## headings, **bold**, lists, examples",
  "relatedTopics": ["Topic 1", "Topic 2", "Topic 3"],
  "suggestedQuestions": ["Question 1?", "Question 2?", "Question 3?"]
}`

const questionSystemPrompt = `Expert educator answering questions. Return JSON:
{
  "title": "Concise answer title",
  "content": "Markdown answer with examples",
  "relatedTopics": ["Topic 1", "Topic 2"],
  "suggestedQuestions": ["Question 1?", "Question 2?"]
}`

const selectionSystemPrompt = `Expert educator explaining highlighted text. Return JSON:
{
  "title": "Clear concept title",
  "content": "Markdown explanation with examples",
  "relatedTopics": ["Topic 1", "Topic 2", "Topic 3"],
  "suggestedQuestions": ["Question 1?", "Question 2?"]
}`

// GenerateWikiPage creates a full wiki page about a topic.
func (c *Client) GenerateWikiPage(ctx context.Context, p WikiParams) (*PageContent, error) {
	var user string
	if p.Context != "" {
		related := "None"
		if len(p.RelatedTitles) > 0 {
			related = strings.Join(p.RelatedTitles, ", ")
		}
		user = fmt.Sprintf("Wiki page: %q\nContext: %s\nRelated: %s", p.Topic, p.Context, related)
	} else {
		user = fmt.Sprintf("Create a comprehensive wiki page about %q with overview, key concepts, details, and applications.", p.Topic)
	}
	return c.complete(ctx, wikiSystemPrompt, user)
}

// AnswerQuestion answers a question in the context of the current page.
func (c *Client) AnswerQuestion(ctx context.Context, p QuestionParams) (*PageContent, error) {
	user := fmt.Sprintf("Topic: %s\nPage excerpt: %s\nQuestion: %s\n\nAnswer comprehensively, building on the current topic.",
		p.PageTitle, truncate(p.PageContent, 2000), p.Question)
	return c.complete(ctx, questionSystemPrompt, user)
}

// GenerateFromSelection explains highlighted text from the current page.
func (c *Client) GenerateFromSelection(ctx context.Context, p SelectionParams) (*PageContent, error) {
	user := fmt.Sprintf("Page: %s\nSelected: %q\nContext: %q\n\nExplain %q as it relates to %q.",
		p.PageTitle, p.SelectedText, p.Context, p.SelectedText, p.PageTitle)
	return c.complete(ctx, selectionSystemPrompt, user)
}

// complete sends a chat completion request and parses the JSON page payload.
func (c *Client) complete(ctx context.Context, system, user string) (*PageContent, error) {
	url := fmt.Sprintf("%s/chat/completions", strings.TrimSuffix(c.BaseURL, "/"))

	payload := chatRequest{
		Model: c.Model,
		Messages: []ChatMessage{
			{Role: "system", Content: system},
			{Role: "user", Content: user},
		},
		ResponseFormat:      responseFormat{Type: "json_object"},
		MaxCompletionTokens: maxCompletionTokens,
	}
	// gpt-5 family models reject a temperature override
	if !strings.HasPrefix(c.Model, "gpt-5") {
		temp := 0.7
		payload.Temperature = &temp
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", c.APIKey))
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("generation API returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(raw)))
	}

	var chat chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&chat); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(chat.Choices) == 0 {
		return nil, fmt.Errorf("generation API returned no choices")
	}

	var content PageContent
	if err := json.Unmarshal([]byte(chat.Choices[0].Message.Content), &content); err != nil {
		return nil, fmt.Errorf("failed to parse generated page payload: %w", err)
	}
	if content.Title == "" || content.Content == "" {
		return nil, fmt.Errorf("generated page payload is missing title or content")
	}
	return &content, nil
}

// truncate cuts s to at most n bytes without splitting a multi-byte rune.
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	for n > 0 && !utf8.RuneStart(s[n]) {
		n--
	}
	return s[:n]
}
