package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/ppiankov/ragroute/internal/model"
	"go.uber.org/zap"
)

// Passage is one stored passage with its embedding
type Passage struct {
	Text      string    `json:"text"`
	Source    string    `json:"source"`
	Page      int       `json:"page"`
	Embedding []float32 `json:"embedding,omitempty"`
}

// MemoryVectorStore is a brute-force cosine store for small corpora and tests
type MemoryVectorStore struct {
	collection string
	passages   []Passage
	embedder   Embedder
	logger     *zap.Logger
}

// NewMemoryVectorStore creates a store over passages that already carry embeddings
func NewMemoryVectorStore(collection string, passages []Passage, embedder Embedder, logger *zap.Logger) *MemoryVectorStore {
	if collection == "" {
		collection = DefaultCollection
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryVectorStore{
		collection: collection,
		passages:   passages,
		embedder:   embedder,
		logger:     logger.With(zap.String("component", "memory_vector_store")),
	}
}

// LoadPassagesFile reads a JSON array of passages. Passages without an
// embedding are embedded with embedder.
func LoadPassagesFile(ctx context.Context, path string, embedder Embedder) ([]Passage, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &model.ConfigurationError{Source: path, Cause: err}
	}

	var passages []Passage
	if err := json.Unmarshal(data, &passages); err != nil {
		return nil, &model.ConfigurationError{Source: path, Cause: fmt.Errorf("parse passages: %w", err)}
	}

	for i := range passages {
		if len(passages[i].Embedding) > 0 {
			continue
		}
		if embedder == nil {
			return nil, &model.ConfigurationError{Source: path, Cause: fmt.Errorf("passage %d has no embedding and no embedder is configured", i)}
		}
		vec, err := embedder.Embed(ctx, passages[i].Text)
		if err != nil {
			return nil, fmt.Errorf("embed passage %d: %w", i, err)
		}
		passages[i].Embedding = vec
	}

	return passages, nil
}

// Len returns the number of passages
func (s *MemoryVectorStore) Len() int {
	return len(s.passages)
}

// QuerySimilar embeds text and returns the k nearest passages by cosine distance
func (s *MemoryVectorStore) QuerySimilar(ctx context.Context, collection, text string, k int) ([]PassageHit, error) {
	if collection != s.collection {
		return nil, fmt.Errorf("collection %q not found", collection)
	}
	if s.embedder == nil {
		return nil, fmt.Errorf("no embedder configured")
	}
	if k <= 0 || len(s.passages) == 0 {
		return nil, nil
	}

	query, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	hits := make([]PassageHit, len(s.passages))
	for i, p := range s.passages {
		hits[i] = PassageHit{
			Text:     p.Text,
			Source:   p.Source,
			Page:     p.Page,
			Distance: CosineDistance(query, p.Embedding),
		}
	}
	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].Distance < hits[j].Distance
	})

	if len(hits) > k {
		hits = hits[:k]
	}

	s.logger.Debug("memory query", zap.Int("k", k), zap.Int("hits", len(hits)))
	return hits, nil
}

// Ping always succeeds
func (s *MemoryVectorStore) Ping(context.Context) error {
	return nil
}
