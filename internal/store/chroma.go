package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ChromaStore queries a Chroma server over its REST API
type ChromaStore struct {
	baseURL    string
	httpClient *http.Client
	embedder   Embedder
	logger     *zap.Logger

	mu  sync.Mutex
	ids map[string]string // collection name -> id
}

// NewChromaStore creates a Chroma client. Query text is embedded client-side.
func NewChromaStore(baseURL string, httpClient *http.Client, embedder Embedder, logger *zap.Logger) *ChromaStore {
	if baseURL == "" {
		baseURL = "http://localhost:8000"
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 15 * time.Second}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ChromaStore{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: httpClient,
		embedder:   embedder,
		logger:     logger.With(zap.String("component", "chroma")),
		ids:        make(map[string]string),
	}
}

type chromaCollection struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type chromaQueryRequest struct {
	QueryEmbeddings [][]float32 `json:"query_embeddings"`
	NResults        int         `json:"n_results"`
	Include         []string    `json:"include"`
}

type chromaQueryResponse struct {
	IDs       [][]string         `json:"ids"`
	Documents [][]string         `json:"documents"`
	Metadatas [][]map[string]any `json:"metadatas"`
	Distances [][]float64        `json:"distances"`
}

// QuerySimilar embeds text and returns the k nearest passages
func (s *ChromaStore) QuerySimilar(ctx context.Context, collection, text string, k int) ([]PassageHit, error) {
	if s.embedder == nil {
		return nil, fmt.Errorf("no embedder configured")
	}
	if k <= 0 {
		return nil, nil
	}

	id, err := s.collectionID(ctx, collection)
	if err != nil {
		return nil, err
	}

	vec, err := s.embedder.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	reqBody := chromaQueryRequest{
		QueryEmbeddings: [][]float32{vec},
		NResults:        k,
		Include:         []string{"documents", "metadatas", "distances"},
	}

	var resp chromaQueryResponse
	if err := s.do(ctx, http.MethodPost, "/api/v1/collections/"+url.PathEscape(id)+"/query", reqBody, &resp); err != nil {
		return nil, err
	}

	hits := resp.hits()
	s.logger.Debug("chroma query", zap.String("collection", collection), zap.Int("k", k), zap.Int("hits", len(hits)))
	return hits, nil
}

// Ping checks the heartbeat endpoint
func (s *ChromaStore) Ping(ctx context.Context) error {
	return s.do(ctx, http.MethodGet, "/api/v1/heartbeat", nil, nil)
}

func (s *ChromaStore) collectionID(ctx context.Context, name string) (string, error) {
	s.mu.Lock()
	id, ok := s.ids[name]
	s.mu.Unlock()
	if ok {
		return id, nil
	}

	var c chromaCollection
	if err := s.do(ctx, http.MethodGet, "/api/v1/collections/"+url.PathEscape(name), nil, &c); err != nil {
		return "", fmt.Errorf("get collection %q: %w", name, err)
	}
	if c.ID == "" {
		return "", fmt.Errorf("collection %q has no id", name)
	}

	s.mu.Lock()
	s.ids[name] = c.ID
	s.mu.Unlock()

	return c.ID, nil
}

func (s *ChromaStore) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("chroma request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("chroma %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(msg)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func (r chromaQueryResponse) hits() []PassageHit {
	if len(r.Documents) == 0 {
		return nil
	}

	docs := r.Documents[0]
	hits := make([]PassageHit, 0, len(docs))
	for i, doc := range docs {
		hit := PassageHit{Text: doc}
		if len(r.Distances) > 0 && i < len(r.Distances[0]) {
			hit.Distance = r.Distances[0][i]
		}
		if len(r.Metadatas) > 0 && i < len(r.Metadatas[0]) {
			meta := r.Metadatas[0][i]
			hit.Source, _ = meta["source"].(string)
			hit.Page = pageNumber(meta["page"])
		}
		hits = append(hits, hit)
	}
	return hits
}

func pageNumber(v any) int {
	switch p := v.(type) {
	case float64:
		return int(p)
	case string:
		n, _ := strconv.Atoi(p)
		return n
	default:
		return 0
	}
}
