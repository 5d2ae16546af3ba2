package engine

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/ragroute/internal/model"
	"github.com/ppiankov/ragroute/internal/store"
)

// CheckConfig reports configuration problems that can be found without
// network access. An empty result means the configuration looks usable.
func CheckConfig(cfg *model.Config) []string {
	var issues []string

	switch strings.ToLower(cfg.LLM.Provider) {
	case "openai":
		if cfg.LLM.APIKey == "" {
			issues = append(issues, "OPENAI_API_KEY not set (llm.api_key)")
		}
	case "anthropic", "claude":
		if cfg.LLM.APIKey == "" {
			issues = append(issues, "ANTHROPIC_API_KEY not set (llm.api_key)")
		}
	case "ollama":
		if cfg.LLM.Model == "" {
			issues = append(issues, "llm.model is required for ollama")
		}
	case "":
		issues = append(issues, "no generation provider configured (llm.provider)")
	default:
		issues = append(issues, fmt.Sprintf("unknown generation provider: %s", cfg.LLM.Provider))
	}

	if !fileExists(cfg.Data.TemplatesPath) {
		issues = append(issues, fmt.Sprintf("template data not found: %s", cfg.Data.TemplatesPath))
	}
	if cfg.Data.TerminologyPath != "" && !fileExists(cfg.Data.TerminologyPath) {
		issues = append(issues, fmt.Sprintf("terminology file not found: %s", cfg.Data.TerminologyPath))
	}

	switch strings.ToLower(cfg.Vector.Provider) {
	case "chroma":
		if EmbeddingAPIKey(cfg) == "" {
			issues = append(issues, "no embedding API key (embedding.api_key); passage search will return nothing")
		}
	case "memory":
		if cfg.Vector.PassagesPath == "" {
			issues = append(issues, "vector.passages_path is required for the memory store")
		} else if !fileExists(cfg.Vector.PassagesPath) {
			issues = append(issues, fmt.Sprintf("passages file not found: %s", cfg.Vector.PassagesPath))
		}
		if EmbeddingAPIKey(cfg) == "" {
			issues = append(issues, "no embedding API key (embedding.api_key); passage search will return nothing")
		}
	case "", "none":
	default:
		issues = append(issues, fmt.Sprintf("unknown vector provider: %s", cfg.Vector.Provider))
	}

	return issues
}

// CheckServices pings the vector store and the generation provider
func (e *Engine) CheckServices(ctx context.Context) []string {
	var issues []string

	if e.vector == nil {
		issues = append(issues, "vector store disabled")
	} else if p, ok := e.vector.(store.Pinger); ok {
		if err := p.Ping(ctx); err != nil {
			issues = append(issues, fmt.Sprintf("vector store unreachable: %v", err))
		}
	}

	if e.generator == nil {
		issues = append(issues, "generation provider unavailable")
	} else if err := e.generator.Ping(ctx); err != nil {
		issues = append(issues, fmt.Sprintf("generation provider %s unavailable: %v", e.generator.Name(), err))
	}

	return issues
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	_, err := os.Stat(path)
	return err == nil
}
