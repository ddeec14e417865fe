package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/timi233/enterprise-brain/internal/cache"
	"github.com/timi233/enterprise-brain/internal/extract"
	"github.com/timi233/enterprise-brain/internal/pipeline"
	"github.com/timi233/enterprise-brain/internal/records"
	"github.com/timi233/enterprise-brain/internal/resilience"
	"github.com/timi233/enterprise-brain/internal/resolve"
	"github.com/timi233/enterprise-brain/internal/search"
	anthropicpkg "github.com/timi233/enterprise-brain/pkg/anthropic"
	"github.com/timi233/enterprise-brain/pkg/bocha"
)

// pipelineEnv holds the initialized stores, clients, and pipeline needed by
// the serve/enrich commands.
type pipelineEnv struct {
	Pool     records.Pool
	Cache    *cache.Store
	Breakers *resilience.ServiceBreakers
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Cache != nil {
		_ = pe.Cache.Close()
	}
	if pe.Pool != nil {
		pe.Pool.Close()
	}
}

// initPipeline sets up the record pool, cache, API clients, and the
// pipeline. Callers should defer env.Close().
func initPipeline(ctx context.Context) (*pipelineEnv, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	pool, err := records.NewPool(ctx, cfg.Records.DatabaseURL, &cfg.Records.Pool)
	if err != nil {
		return nil, err
	}

	cacheStore, err := cache.New(cfg.Cache.Path, cfg.Cache.TTL())
	if err != nil {
		pool.Close()
		return nil, err
	}
	if err := cacheStore.Migrate(ctx); err != nil {
		_ = cacheStore.Close()
		pool.Close()
		return nil, eris.Wrap(err, "migrate cache")
	}

	names, err := extract.NewNameExtractor()
	if err != nil {
		_ = cacheStore.Close()
		pool.Close()
		return nil, err
	}

	breakers := resilience.NewServiceBreakers(resilience.DefaultCircuitBreakerConfig())

	bochaClient := bocha.NewClient(cfg.Bocha.Key, bocha.WithBaseURL(cfg.Bocha.BaseURL))
	searcher := search.NewWebSearcher(bochaClient, breakers,
		search.WithCount(cfg.Bocha.Count),
		search.WithFreshness(cfg.Bocha.Freshness),
		search.WithSearchRateLimit(cfg.Search.WebRPS, cfg.Search.WebBurst),
	)

	anthropicClient := anthropicpkg.NewClient(cfg.Anthropic.Key)
	summarizer := search.NewLLMSummarizer(anthropicClient, breakers,
		search.WithModel(cfg.Anthropic.Model),
		search.WithMaxTokens(cfg.Anthropic.MaxTokens),
		search.WithSystemPrompt(pipeline.SystemPrompt),
		search.WithSummarizeRateLimit(cfg.Search.GenerateRPS, cfg.Search.GenerateBurst),
	)

	customers := records.NewCustomerStore(pool)
	chains := records.NewChainLeaderStore(pool)
	brains := records.NewBrainStore(pool)
	resolver := resolve.NewResolver(customers, chains, names)
	runner := pipeline.NewRunner(names, searcher, summarizer, customers, chains, brains)

	zap.L().Info("pipeline initialized",
		zap.String("cache", cfg.Cache.Path),
		zap.String("model", cfg.Anthropic.Model),
	)

	return &pipelineEnv{
		Pool:     pool,
		Cache:    cacheStore,
		Breakers: breakers,
		Pipeline: pipeline.New(names, resolver, cacheStore, runner),
	}, nil
}
