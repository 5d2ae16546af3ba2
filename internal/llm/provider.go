// Package llm is the answer-generation collaborator: a prompt-in, text-out
// client for OpenAI, Anthropic and Ollama.
package llm

import (
	"context"
	"time"

	"github.com/ppiankov/ragroute/internal/util"
)

// Generator completes a (system, user) prompt pair
type Generator interface {
	// Name returns the provider name
	Name() string

	// Complete generates text for the prompt pair
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)

	// Ping checks that the provider is configured and reachable
	Ping(ctx context.Context) error
}

// CompletionRequest is one generation call
type CompletionRequest struct {
	SystemPrompt string
	UserPrompt   string

	// Model overrides the configured model when set
	Model string

	// MaxTokens overrides the configured limit when set
	MaxTokens int
}

// CompletionResponse is the generated text plus accounting
type CompletionResponse struct {
	Text       string
	Model      string
	TokensUsed int
}

// Config holds provider configuration
type Config struct {
	// Provider name: "openai", "anthropic", "ollama", "" (disabled)
	Provider string

	Model   string
	APIKey  string
	BaseURL string

	// Timeout for API requests, seconds
	Timeout int

	MaxTokens   int
	Temperature float32

	Proxy util.ProxyConfig
}

// DefaultConfig returns the defaults used when a field is left empty
func DefaultConfig() Config {
	return Config{
		Provider:    "openai",
		Model:       "gpt-3.5-turbo",
		Timeout:     30,
		MaxTokens:   1000,
		Temperature: 0.1,
	}
}

func (c Config) timeout(fallback time.Duration) time.Duration {
	if c.Timeout <= 0 {
		return fallback
	}
	return time.Duration(c.Timeout) * time.Second
}

func (c Config) maxTokens(override int) int {
	if override > 0 {
		return override
	}
	if c.MaxTokens > 0 {
		return c.MaxTokens
	}
	return 1000
}
