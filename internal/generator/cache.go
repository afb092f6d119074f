package generator

import (
	"context"
	"strings"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

// Cache is a non-authoritative speed-up over generation: a hit skips the
// collaborator call, a miss or disabled cache changes nothing about
// correctness.
type Cache interface {
	Get(key string) (*PageContent, bool)
	Add(key string, content *PageContent)
}

// Reference bounds from the original service: at most 50 recent generations,
// each valid for five minutes.
const (
	DefaultCacheSize = 50
	DefaultCacheTTL  = 5 * time.Minute
)

type lruCache struct {
	inner *expirable.LRU[string, *PageContent]
}

// NewLRUCache creates a bounded LRU cache whose entries expire after ttl.
func NewLRUCache(size int, ttl time.Duration) Cache {
	return &lruCache{inner: expirable.NewLRU[string, *PageContent](size, nil, ttl)}
}

func (c *lruCache) Get(key string) (*PageContent, bool) {
	return c.inner.Get(key)
}

func (c *lruCache) Add(key string, content *PageContent) {
	c.inner.Add(key, content)
}

const cacheKeyDelimiter = ":"

// CacheKey builds a cache key from a generation kind and its normalized
// source text.
func CacheKey(kind string, parts ...string) string {
	normalized := make([]string, 0, len(parts)+1)
	normalized = append(normalized, kind)
	for _, p := range parts {
		normalized = append(normalized, strings.ToLower(strings.TrimSpace(p)))
	}
	return strings.Join(normalized, cacheKeyDelimiter)
}

// CachedService decorates a Service with a cache keyed by normalized input
// text. It implements the Service interface.
type CachedService struct {
	next  Service
	cache Cache
}

// NewCachedService wraps next with cache.
func NewCachedService(next Service, cache Cache) *CachedService {
	return &CachedService{next: next, cache: cache}
}

// GenerateWikiPage serves from cache when the same topic and context were
// generated recently.
func (s *CachedService) GenerateWikiPage(ctx context.Context, p WikiParams) (*PageContent, error) {
	key := CacheKey("wiki", p.Topic, p.Context)
	if content, ok := s.cache.Get(key); ok {
		return content, nil
	}
	content, err := s.next.GenerateWikiPage(ctx, p)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, content)
	return content, nil
}

// AnswerQuestion serves from cache when the same question was asked against
// the same page recently.
func (s *CachedService) AnswerQuestion(ctx context.Context, p QuestionParams) (*PageContent, error) {
	key := CacheKey("question", p.Question, p.PageTitle)
	if content, ok := s.cache.Get(key); ok {
		return content, nil
	}
	content, err := s.next.AnswerQuestion(ctx, p)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, content)
	return content, nil
}

// GenerateFromSelection serves from cache for a repeated selection on the
// same page.
func (s *CachedService) GenerateFromSelection(ctx context.Context, p SelectionParams) (*PageContent, error) {
	key := CacheKey("selection", p.SelectedText, p.PageTitle)
	if content, ok := s.cache.Get(key); ok {
		return content, nil
	}
	content, err := s.next.GenerateFromSelection(ctx, p)
	if err != nil {
		return nil, err
	}
	s.cache.Add(key, content)
	return content, nil
}
