package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/ragroute/internal/engine"
	"github.com/ppiankov/ragroute/internal/model"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// envKeys are bound explicitly so RAGROUTE_* variables reach Unmarshal
// even when the key is absent from the config file
var envKeys = []string{
	"llm.provider", "llm.model", "llm.api_key", "llm.base_url", "llm.timeout",
	"llm.max_tokens", "llm.temperature", "llm.http_proxy", "llm.https_proxy", "llm.no_proxy",
	"embedding.model", "embedding.api_key", "embedding.base_url",
	"vector.provider", "vector.base_url", "vector.collection", "vector.passages_path", "vector.timeout",
	"data.templates_path", "data.terminology_path",
	"retrieval.max_results", "retrieval.fuzzy_threshold", "retrieval.direct_fuzzy_threshold",
	"retrieval.candidate_multiplier", "retrieval.passage_preview_chars",
	"cache.enabled", "cache.memory_ttl", "cache.disk_dir", "cache.disk_ttl",
	"concurrency.workers",
	"rate_limiting.requests_per_second", "rate_limiting.burst_size",
	"rate_limiting.embedding_requests_per_second", "rate_limiting.embedding_burst_size",
	"output.format",
}

// loadConfig merges defaults, the config file, RAGROUTE_* variables and
// bound flags, then fills API keys from the providers' usual variables
func loadConfig() (*model.Config, error) {
	cfg := model.DefaultConfig()
	if err := viper.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}

	if cfg.LLM.APIKey == "" {
		switch strings.ToLower(cfg.LLM.Provider) {
		case "openai":
			cfg.LLM.APIKey = os.Getenv("OPENAI_API_KEY")
		case "anthropic", "claude":
			cfg.LLM.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
	}
	if strings.EqualFold(cfg.LLM.Provider, "ollama") && cfg.LLM.BaseURL == "" {
		cfg.LLM.BaseURL = os.Getenv("OLLAMA_BASE_URL")
	}
	if cfg.Embedding.APIKey == "" {
		cfg.Embedding.APIKey = os.Getenv("OPENAI_API_KEY")
	}

	cfg.Output.Verbose = verbose
	return cfg, nil
}

// buildEngine loads configuration and static data. Configuration errors are
// reported as such so the caller can stop before doing any work.
func buildEngine(ctx context.Context) (*engine.Engine, *model.Config, *zap.Logger, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, nil, err
	}

	logger := newLogger(cfg.Output.Verbose)

	e, err := engine.FromConfig(ctx, cfg, logger)
	if err != nil {
		var cfgErr *model.ConfigurationError
		if errors.As(err, &cfgErr) {
			return nil, nil, nil, fmt.Errorf("%w\nRun 'ragroute check' to diagnose your setup", err)
		}
		return nil, nil, nil, fmt.Errorf("initialize engine: %w", err)
	}

	return e, cfg, logger, nil
}

// redacted returns a copy of cfg safe to print
func redacted(cfg *model.Config) *model.Config {
	out := *cfg
	out.LLM.APIKey = mask(out.LLM.APIKey)
	out.Embedding.APIKey = mask(out.Embedding.APIKey)
	return &out
}

func mask(key string) string {
	if key == "" {
		return ""
	}
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "****" + key[len(key)-4:]
}
