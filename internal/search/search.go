// Package search wraps the external web-search and LLM services with rate
// limiting, retries, and per-service circuit breakers.
package search

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/timi233/enterprise-brain/internal/extract"
	"github.com/timi233/enterprise-brain/internal/resilience"
	"github.com/timi233/enterprise-brain/pkg/bocha"
)

// Searcher runs a web search and returns ranked hits.
type Searcher interface {
	Search(ctx context.Context, query string) ([]extract.SearchHit, error)
}

// WebSearcher implements Searcher over the Bocha API.
type WebSearcher struct {
	client   bocha.Client
	limiter  *rate.Limiter
	breakers *resilience.ServiceBreakers
	retry    resilience.RetryConfig

	count     int
	freshness string
}

// SearchOption configures a WebSearcher.
type SearchOption func(*WebSearcher)

// WithCount sets how many hits to request per search.
func WithCount(n int) SearchOption {
	return func(s *WebSearcher) {
		if n > 0 {
			s.count = n
		}
	}
}

// WithFreshness restricts results to a recency window ("oneYear", "oneMonth").
func WithFreshness(freshness string) SearchOption {
	return func(s *WebSearcher) {
		s.freshness = freshness
	}
}

// WithSearchRateLimit overrides the default requests-per-second limit.
func WithSearchRateLimit(rps float64, burst int) SearchOption {
	return func(s *WebSearcher) {
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewWebSearcher creates a searcher over the Bocha client. All searches share
// the breakers registry so repeated provider failures short-circuit quickly.
func NewWebSearcher(client bocha.Client, breakers *resilience.ServiceBreakers, opts ...SearchOption) *WebSearcher {
	s := &WebSearcher{
		client:   client,
		limiter:  rate.NewLimiter(rate.Limit(2), 4),
		breakers: breakers,
		retry:    resilience.DefaultRetryConfig(),
		count:    10,
	}
	s.retry.OnRetry = resilience.RetryLogger("bocha", "web_search")
	for _, o := range opts {
		o(s)
	}
	return s
}

// Search runs one rate-limited web search with retry on transient failures.
func (s *WebSearcher) Search(ctx context.Context, query string) ([]extract.SearchHit, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, eris.Wrap(err, "search: rate limit wait")
	}

	breaker := s.breakers.Get("bocha")
	resp, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) (*bocha.WebSearchResponse, error) {
		return resilience.ExecuteVal(ctx, breaker, func(ctx context.Context) (*bocha.WebSearchResponse, error) {
			return s.client.WebSearch(ctx, bocha.WebSearchRequest{
				Query:     query,
				Count:     s.count,
				Freshness: s.freshness,
				Summary:   true,
			})
		})
	})
	if err != nil {
		return nil, eris.Wrap(err, "search: web search")
	}

	hits := make([]extract.SearchHit, 0, len(resp.Data.WebPages.Value))
	for _, page := range resp.Data.WebPages.Value {
		snippet := page.Snippet
		if snippet == "" {
			snippet = page.Summary
		}
		hits = append(hits, extract.SearchHit{
			Title:   page.Name,
			URL:     page.URL,
			Snippet: snippet,
		})
	}

	zap.L().Debug("search: web search completed",
		zap.String("query", query),
		zap.Int("hits", len(hits)),
	)
	return hits, nil
}
