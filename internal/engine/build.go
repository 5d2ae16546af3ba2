package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/ppiankov/ragroute/internal/cache"
	"github.com/ppiankov/ragroute/internal/llm"
	"github.com/ppiankov/ragroute/internal/model"
	"github.com/ppiankov/ragroute/internal/retrieve"
	"github.com/ppiankov/ragroute/internal/store"
	"github.com/ppiankov/ragroute/internal/terminology"
	"github.com/ppiankov/ragroute/internal/util"
	"github.com/ppiankov/ragroute/internal/worker"
	"go.uber.org/zap"
)

// FromConfig loads the static tables and connects the collaborators named in
// cfg. Static data that fails to load is a *model.ConfigurationError.
// An unavailable generator or vector store is logged and left out; queries
// that need it degrade instead of failing startup.
func FromConfig(ctx context.Context, cfg *model.Config, logger *zap.Logger) (*Engine, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	table, err := loadTable(cfg.Data.TerminologyPath)
	if err != nil {
		return nil, err
	}

	templates, err := LoadTemplates(cfg)
	if err != nil {
		return nil, err
	}

	limiter := newLimiter(cfg.RateLimiting)

	vector, err := buildVectorStore(ctx, cfg, limiter, logger)
	if err != nil {
		return nil, err
	}

	generator, err := llm.NewProvider(llm.ConfigFromModel(cfg.LLM))
	if err != nil {
		logger.Warn("generation provider unavailable", zap.String("provider", cfg.LLM.Provider), zap.Error(err))
	}
	generator = llm.NewRateLimited(generator, limiter)

	return New(Deps{
		Table:        table,
		Structured:   templates,
		Vector:       vector,
		Generator:    generator,
		Retrieval:    retrieve.ConfigFromModel(cfg.Retrieval, cfg.Vector.Collection),
		PreviewChars: cfg.Retrieval.PassagePreviewChars,
		Logger:       logger,
	}), nil
}

// LoadTemplates reads the template dataset and applies the direct-search
// limits from cfg.Retrieval
func LoadTemplates(cfg *model.Config) (*store.TemplateStore, error) {
	templates, err := store.LoadTemplatesCSV(cfg.Data.TemplatesPath)
	if err != nil {
		return nil, err
	}
	return templates.WithLimits(cfg.Retrieval.MaxResults, cfg.Retrieval.DirectFuzzyThreshold), nil
}

// newLimiter gives every service the shared rate, then applies the
// embedding override
func newLimiter(cfg model.RateLimitingConfig) *worker.Limiter {
	limiter := worker.NewLimiter(cfg.RequestsPerSecond, cfg.BurstSize)
	if cfg.EmbeddingRequestsPerSecond > 0 {
		limiter.SetRate(store.EmbeddingService, cfg.EmbeddingRequestsPerSecond, cfg.EmbeddingBurstSize)
	}
	return limiter
}

func loadTable(path string) (*terminology.Table, error) {
	if path == "" {
		return terminology.DefaultTable(), nil
	}
	return terminology.LoadTable(path)
}

func buildEmbedder(cfg *model.Config, limiter *worker.Limiter, logger *zap.Logger) store.Embedder {
	apiKey := EmbeddingAPIKey(cfg)
	if apiKey == "" {
		logger.Warn("no embedding API key; passage search is disabled")
		return nil
	}

	httpClient := util.NewHTTPClient(cfg.Vector.Timeout, util.ProxyConfig{
		HTTPProxy:  cfg.LLM.HTTPProxy,
		HTTPSProxy: cfg.LLM.HTTPSProxy,
		NoProxy:    cfg.LLM.NoProxy,
	})

	openaiEmbedder, err := store.NewOpenAIEmbedder(apiKey, cfg.Embedding.Model, cfg.Embedding.BaseURL, httpClient)
	if err != nil {
		logger.Warn("embedder unavailable", zap.Error(err))
		return nil
	}

	var embedder store.Embedder = openaiEmbedder
	embedder = store.NewRateLimitedEmbedder(embedder, limiter)
	embedder = store.NewCachedEmbedder(embedder, cache.FromConfig(cfg.Cache), openaiEmbedder.Model(), 0, logger)
	return embedder
}

// EmbeddingAPIKey returns the embedding key, falling back to the OpenAI
// generation key
func EmbeddingAPIKey(cfg *model.Config) string {
	if cfg.Embedding.APIKey != "" {
		return cfg.Embedding.APIKey
	}
	if strings.EqualFold(cfg.LLM.Provider, "openai") {
		return cfg.LLM.APIKey
	}
	return ""
}

func buildVectorStore(ctx context.Context, cfg *model.Config, limiter *worker.Limiter, logger *zap.Logger) (store.VectorStore, error) {
	switch strings.ToLower(cfg.Vector.Provider) {
	case "", "none":
		return nil, nil

	case "chroma":
		embedder := buildEmbedder(cfg, limiter, logger)
		httpClient := util.NewHTTPClient(cfg.Vector.Timeout, util.ProxyConfig{})
		return store.NewChromaStore(cfg.Vector.BaseURL, httpClient, embedder, logger), nil

	case "memory":
		embedder := buildEmbedder(cfg, limiter, logger)
		var passages []store.Passage
		if cfg.Vector.PassagesPath != "" {
			var err error
			passages, err = store.LoadPassagesFile(ctx, cfg.Vector.PassagesPath, embedder)
			if err != nil {
				return nil, err
			}
		}
		return store.NewMemoryVectorStore(cfg.Vector.Collection, passages, embedder, logger), nil

	default:
		return nil, &model.ConfigurationError{
			Source: "vector.provider",
			Cause:  fmt.Errorf("unknown vector provider %q (supported: chroma, memory, none)", cfg.Vector.Provider),
		}
	}
}
