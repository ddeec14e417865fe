package search

import (
	"context"
	"strings"

	"github.com/rotisserie/eris"
	"golang.org/x/time/rate"

	"github.com/timi233/enterprise-brain/internal/resilience"
	"github.com/timi233/enterprise-brain/pkg/anthropic"
)

// Summarizer produces analysis text from a prompt.
type Summarizer interface {
	Generate(ctx context.Context, stage, prompt string) (string, error)
}

// LLMSummarizer implements Summarizer over the Anthropic client.
type LLMSummarizer struct {
	client   anthropic.Client
	limiter  *rate.Limiter
	breakers *resilience.ServiceBreakers
	retry    resilience.RetryConfig

	model     string
	maxTokens int64
	system    []anthropic.SystemBlock
}

// SummarizeOption configures an LLMSummarizer.
type SummarizeOption func(*LLMSummarizer)

// WithModel sets the model used for generation.
func WithModel(model string) SummarizeOption {
	return func(s *LLMSummarizer) {
		s.model = model
	}
}

// WithMaxTokens caps generation length.
func WithMaxTokens(n int64) SummarizeOption {
	return func(s *LLMSummarizer) {
		if n > 0 {
			s.maxTokens = n
		}
	}
}

// WithSystemPrompt sets a stable system preamble, cached server-side across
// runs.
func WithSystemPrompt(text string) SummarizeOption {
	return func(s *LLMSummarizer) {
		s.system = anthropic.BuildCachedSystemBlocks(text)
	}
}

// WithSummarizeRateLimit overrides the default requests-per-second limit.
func WithSummarizeRateLimit(rps float64, burst int) SummarizeOption {
	return func(s *LLMSummarizer) {
		s.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

// NewLLMSummarizer creates a summarizer over the Anthropic client.
func NewLLMSummarizer(client anthropic.Client, breakers *resilience.ServiceBreakers, opts ...SummarizeOption) *LLMSummarizer {
	s := &LLMSummarizer{
		client:    client,
		limiter:   rate.NewLimiter(rate.Limit(1), 2),
		breakers:  breakers,
		retry:     resilience.DefaultRetryConfig(),
		model:     "claude-haiku-4-5-20251001",
		maxTokens: 1024,
	}
	s.retry.OnRetry = resilience.RetryLogger("anthropic", "create_message")
	for _, o := range opts {
		o(s)
	}
	return s
}

// Generate runs one rate-limited completion and returns its trimmed text.
// The stage name is used for cost attribution only.
func (s *LLMSummarizer) Generate(ctx context.Context, stage, prompt string) (string, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return "", eris.Wrap(err, "search: rate limit wait")
	}

	breaker := s.breakers.Get("anthropic")
	resp, err := resilience.DoVal(ctx, s.retry, func(ctx context.Context) (*anthropic.MessageResponse, error) {
		return resilience.ExecuteVal(ctx, breaker, func(ctx context.Context) (*anthropic.MessageResponse, error) {
			return s.client.CreateMessage(ctx, anthropic.MessageRequest{
				Model:     s.model,
				MaxTokens: s.maxTokens,
				System:    s.system,
				Messages:  []anthropic.Message{{Role: "user", Content: prompt}},
			})
		})
	})
	if err != nil {
		return "", eris.Wrapf(err, "search: generate %s", stage)
	}

	resp.Usage.LogCost(s.model, stage)
	return strings.TrimSpace(resp.Text()), nil
}
