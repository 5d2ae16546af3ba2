package model

import "time"

// Config is the full runtime configuration.
// Hierarchy: CLI flags > RAGROUTE_* env > config file > DefaultConfig.
type Config struct {
	LLM          LLMConfig          `yaml:"llm" mapstructure:"llm"`
	Embedding    EmbeddingConfig    `yaml:"embedding" mapstructure:"embedding"`
	Vector       VectorConfig       `yaml:"vector" mapstructure:"vector"`
	Data         DataConfig         `yaml:"data" mapstructure:"data"`
	Retrieval    RetrievalConfig    `yaml:"retrieval" mapstructure:"retrieval"`
	Cache        CacheConfig        `yaml:"cache" mapstructure:"cache"`
	Concurrency  ConcurrencyConfig  `yaml:"concurrency" mapstructure:"concurrency"`
	RateLimiting RateLimitingConfig `yaml:"rate_limiting" mapstructure:"rate_limiting"`
	Output       OutputConfig       `yaml:"output" mapstructure:"output"`
}

// LLMConfig configures the generation service
type LLMConfig struct {
	Provider    string  `yaml:"provider" mapstructure:"provider"` // openai, anthropic, ollama, "" (disabled)
	Model       string  `yaml:"model" mapstructure:"model"`
	APIKey      string  `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL     string  `yaml:"base_url,omitempty" mapstructure:"base_url"`
	Timeout     int     `yaml:"timeout" mapstructure:"timeout"` // seconds
	MaxTokens   int     `yaml:"max_tokens" mapstructure:"max_tokens"`
	Temperature float32 `yaml:"temperature" mapstructure:"temperature"`
	HTTPProxy   string  `yaml:"http_proxy,omitempty" mapstructure:"http_proxy"`
	HTTPSProxy  string  `yaml:"https_proxy,omitempty" mapstructure:"https_proxy"`
	NoProxy     string  `yaml:"no_proxy,omitempty" mapstructure:"no_proxy"`
}

// EmbeddingConfig configures query embedding for the vector store
type EmbeddingConfig struct {
	Model   string `yaml:"model" mapstructure:"model"`
	APIKey  string `yaml:"api_key,omitempty" mapstructure:"api_key"`
	BaseURL string `yaml:"base_url,omitempty" mapstructure:"base_url"`
}

// VectorConfig selects and configures the passage store
type VectorConfig struct {
	Provider     string        `yaml:"provider" mapstructure:"provider"` // chroma, memory, none
	BaseURL      string        `yaml:"base_url" mapstructure:"base_url"`
	Collection   string        `yaml:"collection" mapstructure:"collection"`
	PassagesPath string        `yaml:"passages_path,omitempty" mapstructure:"passages_path"`
	Timeout      time.Duration `yaml:"timeout" mapstructure:"timeout"`
}

// DataConfig points at the static data files
type DataConfig struct {
	TemplatesPath   string `yaml:"templates_path" mapstructure:"templates_path"`
	TerminologyPath string `yaml:"terminology_path,omitempty" mapstructure:"terminology_path"` // empty = built-in table
}

// RetrievalConfig tunes the orchestrator
type RetrievalConfig struct {
	MaxResults           int     `yaml:"max_results" mapstructure:"max_results"`
	FuzzyThreshold       float64 `yaml:"fuzzy_threshold" mapstructure:"fuzzy_threshold"`               // multi-term orchestration
	DirectFuzzyThreshold float64 `yaml:"direct_fuzzy_threshold" mapstructure:"direct_fuzzy_threshold"` // single-term search
	CandidateMultiplier  int     `yaml:"candidate_multiplier" mapstructure:"candidate_multiplier"`
	PassagePreviewChars  int     `yaml:"passage_preview_chars" mapstructure:"passage_preview_chars"`
}

// CacheConfig configures the query-embedding cache
type CacheConfig struct {
	Enabled   bool          `yaml:"enabled" mapstructure:"enabled"`
	MemoryTTL time.Duration `yaml:"memory_ttl" mapstructure:"memory_ttl"`
	DiskDir   string        `yaml:"disk_dir,omitempty" mapstructure:"disk_dir"` // empty = memory only
	DiskTTL   time.Duration `yaml:"disk_ttl" mapstructure:"disk_ttl"`
}

// ConcurrencyConfig sizes the batch worker pool
type ConcurrencyConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// RateLimitingConfig bounds calls to the external services
type RateLimitingConfig struct {
	RequestsPerSecond float64 `yaml:"requests_per_second" mapstructure:"requests_per_second"`
	BurstSize         int     `yaml:"burst_size" mapstructure:"burst_size"`

	// Embedding calls get their own bucket; zero keeps the shared rate
	EmbeddingRequestsPerSecond float64 `yaml:"embedding_requests_per_second,omitempty" mapstructure:"embedding_requests_per_second"`
	EmbeddingBurstSize         int     `yaml:"embedding_burst_size,omitempty" mapstructure:"embedding_burst_size"`
}

// OutputConfig controls rendering
type OutputConfig struct {
	Verbose bool   `yaml:"verbose" mapstructure:"verbose"`
	Format  string `yaml:"format" mapstructure:"format"` // text or json
}

// DefaultConfig returns the built-in defaults
func DefaultConfig() *Config {
	return &Config{
		LLM: LLMConfig{
			Provider:    "openai",
			Model:       "gpt-3.5-turbo",
			Timeout:     30,
			MaxTokens:   1000,
			Temperature: 0.1,
		},
		Embedding: EmbeddingConfig{
			Model: "text-embedding-ada-002",
		},
		Vector: VectorConfig{
			Provider:   "chroma",
			BaseURL:    "http://localhost:8000",
			Collection: "pdf_documents",
			Timeout:    15 * time.Second,
		},
		Data: DataConfig{
			TemplatesPath: "./data/template_fields.csv",
		},
		Retrieval: RetrievalConfig{
			MaxResults:           5,
			FuzzyThreshold:       0.3,
			DirectFuzzyThreshold: 0.6,
			CandidateMultiplier:  2,
			PassagePreviewChars:  200,
		},
		Cache: CacheConfig{
			Enabled:   true,
			MemoryTTL: 30 * time.Minute,
			DiskTTL:   7 * 24 * time.Hour,
		},
		Concurrency: ConcurrencyConfig{
			Workers: 4,
		},
		RateLimiting: RateLimitingConfig{
			RequestsPerSecond: 3,
			BurstSize:         5,
		},
		Output: OutputConfig{
			Format: "text",
		},
	}
}
