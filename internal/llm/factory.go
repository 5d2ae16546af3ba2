package llm

import (
	"fmt"
	"strings"

	"github.com/ppiankov/ragroute/internal/model"
	"github.com/ppiankov/ragroute/internal/util"
)

// NewProvider creates a generator for config.Provider. An empty provider
// returns (nil, nil): generation disabled.
func NewProvider(config Config) (Generator, error) {
	var (
		g   Generator
		err error
	)

	switch strings.ToLower(config.Provider) {
	case "openai":
		g, err = NewOpenAIProvider(config)
	case "anthropic", "claude":
		g, err = NewAnthropicProvider(config)
	case "ollama":
		g, err = NewOllamaProvider(config)
	case "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown LLM provider: %s (supported: openai, anthropic, ollama)", config.Provider)
	}

	// avoid returning a typed nil inside a non-nil interface
	if err != nil {
		return nil, err
	}
	return g, nil
}

// ConfigFromModel converts model.LLMConfig to llm.Config
func ConfigFromModel(c model.LLMConfig) Config {
	return Config{
		Provider:    c.Provider,
		Model:       c.Model,
		APIKey:      c.APIKey,
		BaseURL:     c.BaseURL,
		Timeout:     c.Timeout,
		MaxTokens:   c.MaxTokens,
		Temperature: c.Temperature,
		Proxy: util.ProxyConfig{
			HTTPProxy:  c.HTTPProxy,
			HTTPSProxy: c.HTTPSProxy,
			NoProxy:    c.NoProxy,
		},
	}
}
