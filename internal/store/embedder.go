package store

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ppiankov/ragroute/internal/cache"
	"github.com/ppiankov/ragroute/internal/worker"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"
)

// EmbeddingService is the limiter key for embedding calls
const EmbeddingService = "embedding"

// OpenAIEmbedder embeds text with the OpenAI embeddings API
type OpenAIEmbedder struct {
	client *openai.Client
	model  string
}

// NewOpenAIEmbedder creates an embedder. baseURL and httpClient are optional.
func NewOpenAIEmbedder(apiKey, model, baseURL string, httpClient *http.Client) (*OpenAIEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required for embeddings")
	}
	if model == "" {
		model = string(openai.AdaEmbeddingV2)
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}

	return &OpenAIEmbedder{
		client: openai.NewClientWithConfig(cfg),
		model:  model,
	}, nil
}

// Model returns the embedding model name
func (e *OpenAIEmbedder) Model() string {
	return e.model
}

func (e *OpenAIEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := e.client.CreateEmbeddings(ctx, openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(e.model),
	})
	if err != nil {
		return nil, fmt.Errorf("OpenAI embeddings error: %w", err)
	}
	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embedding returned")
	}
	return resp.Data[0].Embedding, nil
}

// CachedEmbedder memoizes embeddings by (model, text)
type CachedEmbedder struct {
	next   Embedder
	cache  cache.Cache
	model  string
	ttl    time.Duration
	logger *zap.Logger
}

// NewCachedEmbedder wraps next with a cache. A nil cache disables caching.
func NewCachedEmbedder(next Embedder, c cache.Cache, model string, ttl time.Duration, logger *zap.Logger) Embedder {
	if c == nil {
		return next
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedEmbedder{
		next:   next,
		cache:  c,
		model:  model,
		ttl:    ttl,
		logger: logger.With(zap.String("component", "embedding_cache")),
	}
}

func (e *CachedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	key := cache.Key(e.model, text)

	if data, ok := e.cache.Get(key); ok {
		var vec []float32
		if err := json.Unmarshal(data, &vec); err == nil {
			return vec, nil
		}
		_ = e.cache.Delete(key)
	}

	vec, err := e.next.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(vec); err == nil {
		if err := e.cache.Set(key, data, e.ttl); err != nil {
			e.logger.Warn("cache write failed", zap.Error(err))
		}
	}
	return vec, nil
}

// RateLimitedEmbedder waits on the shared limiter before each call
type RateLimitedEmbedder struct {
	next    Embedder
	limiter *worker.Limiter
}

// NewRateLimitedEmbedder wraps next; a nil limiter disables limiting
func NewRateLimitedEmbedder(next Embedder, limiter *worker.Limiter) Embedder {
	if limiter == nil {
		return next
	}
	return &RateLimitedEmbedder{next: next, limiter: limiter}
}

func (e *RateLimitedEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := e.limiter.Wait(ctx, EmbeddingService); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}
	return e.next.Embed(ctx, text)
}
