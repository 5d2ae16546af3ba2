package store

import (
	"context"
	"math"
)

// DefaultCollection is the passage collection name used by the ingestion pipeline
const DefaultCollection = "pdf_documents"

// PassageHit is one raw vector-store result
type PassageHit struct {
	Text     string  `json:"text"`
	Source   string  `json:"source"`
	Page     int     `json:"page"`
	Distance float64 `json:"distance"`
}

// VectorStore is the passage-source contract used by the orchestrator
type VectorStore interface {
	QuerySimilar(ctx context.Context, collection, text string, k int) ([]PassageHit, error)
}

// Pinger is implemented by stores that can report reachability
type Pinger interface {
	Ping(ctx context.Context) error
}

// Embedder turns text into a vector
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// CosineDistance returns 1 - cosine similarity. Zero vectors are maximally distant.
func CosineDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
	}
	for _, v := range a {
		na += float64(v) * float64(v)
	}
	for _, v := range b {
		nb += float64(v) * float64(v)
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
