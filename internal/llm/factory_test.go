package llm

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ppiankov/ragroute/internal/model"
	"github.com/ppiankov/ragroute/internal/worker"
)

func TestNewProvider(t *testing.T) {
	tests := []struct {
		provider string
		want     string
		wantErr  bool
		wantNil  bool
	}{
		{provider: "openai", want: "openai"},
		{provider: "Anthropic", want: "anthropic"},
		{provider: "claude", want: "anthropic"},
		{provider: "ollama", want: "ollama"},
		{provider: "", wantNil: true},
		{provider: "bard", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.provider, func(t *testing.T) {
			g, err := NewProvider(Config{Provider: tt.provider, APIKey: "k", Model: "m"})
			if tt.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if tt.wantNil {
				if g != nil {
					t.Fatalf("expected nil generator, got %T", g)
				}
				return
			}
			if g.Name() != tt.want {
				t.Errorf("expected %s, got %s", tt.want, g.Name())
			}
		})
	}
}

func TestNewProvider_ErrorIsUntypedNil(t *testing.T) {
	g, err := NewProvider(Config{Provider: "openai"})
	if err == nil {
		t.Fatal("expected missing key error")
	}
	if g != nil {
		t.Errorf("expected nil interface, got %T", g)
	}
}

func TestConfigFromModel(t *testing.T) {
	c := ConfigFromModel(model.LLMConfig{
		Provider:    "anthropic",
		Model:       "claude",
		APIKey:      "k",
		Timeout:     12,
		MaxTokens:   50,
		Temperature: 0.2,
		HTTPSProxy:  "http://proxy:3128",
		NoProxy:     "localhost",
	})

	if c.Provider != "anthropic" || c.Model != "claude" || c.APIKey != "k" {
		t.Errorf("unexpected identity fields: %+v", c)
	}
	if c.Timeout != 12 || c.MaxTokens != 50 || c.Temperature != 0.2 {
		t.Errorf("unexpected limits: %+v", c)
	}
	if c.Proxy.HTTPSProxy != "http://proxy:3128" || c.Proxy.NoProxy != "localhost" {
		t.Errorf("unexpected proxy: %+v", c.Proxy)
	}
}

type stubGenerator struct {
	calls int
	err   error
}

func (s *stubGenerator) Name() string { return "stub" }

func (s *stubGenerator) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return &CompletionResponse{Text: req.UserPrompt}, nil
}

func (s *stubGenerator) Ping(ctx context.Context) error { return nil }

func TestRateLimited(t *testing.T) {
	stub := &stubGenerator{}
	g := NewRateLimited(stub, worker.NewLimiter(0.001, 1))

	if g.Name() != "stub" {
		t.Errorf("expected wrapped name, got %s", g.Name())
	}

	resp, err := g.Complete(context.Background(), CompletionRequest{UserPrompt: "hi"})
	if err != nil || resp.Text != "hi" {
		t.Fatalf("unexpected result: %v %v", resp, err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := g.Complete(ctx, CompletionRequest{UserPrompt: "again"}); err == nil {
		t.Error("expected rate limit error")
	}
	if stub.calls != 1 {
		t.Errorf("expected 1 call to the wrapped generator, got %d", stub.calls)
	}
}

func TestRateLimited_Passthrough(t *testing.T) {
	stub := &stubGenerator{err: errors.New("down")}
	if g := NewRateLimited(stub, nil); g != Generator(stub) {
		t.Error("nil limiter should return the generator unchanged")
	}
	if g := NewRateLimited(nil, worker.NewLimiter(1, 1)); g != nil {
		t.Error("nil generator should stay nil")
	}
}
