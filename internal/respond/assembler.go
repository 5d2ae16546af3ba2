// Package respond turns ranked evidence into a ResponsePayload, either by
// prompting the generation service or with a templated clarification reply.
package respond

import (
	"context"
	"errors"

	"github.com/ppiankov/ragroute/internal/llm"
	"github.com/ppiankov/ragroute/internal/model"
	"github.com/ppiankov/ragroute/internal/terminology"
	"go.uber.org/zap"
)

// DefaultPreviewChars is the passage text length kept in transported sources
const DefaultPreviewChars = 200

var errNoGenerator = errors.New("no generation provider configured")

// Assembler builds the final payload for one query
type Assembler struct {
	generator    llm.Generator
	table        *terminology.Table
	previewChars int
	logger       *zap.Logger
}

// NewAssembler creates an assembler. A nil generator makes every
// non-clarification query return an error payload.
func NewAssembler(generator llm.Generator, table *terminology.Table, previewChars int, logger *zap.Logger) *Assembler {
	if table == nil {
		table = terminology.DefaultTable()
	}
	if previewChars <= 0 {
		previewChars = DefaultPreviewChars
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Assembler{
		generator:    generator,
		table:        table,
		previewChars: previewChars,
		logger:       logger.With(zap.String("component", "respond")),
	}
}

// Assemble produces the payload. Generation failures become an error-kind
// payload; they are never returned.
func (a *Assembler) Assemble(
	ctx context.Context,
	query string,
	analysis model.IntentAnalysis,
	decision model.StrategyDecision,
	structured []model.StructuredRecord,
	passages []model.PassageRecord,
) *model.ResponsePayload {
	payload := &model.ResponsePayload{
		Confidence: decision.StrategyConfidence,
		Classification: model.Classification{
			PrimaryIntent: analysis.PrimaryIntent,
			Confidence:    analysis.Confidence,
			Strategy:      decision.StrategyName,
			Reasoning:     decision.Reasoning,
		},
		Sources: a.sources(structured, passages),
	}

	if decision.PrimaryTool() == model.ToolClarification {
		payload.Answer = Clarification(query, analysis, a.table)
		payload.ToolUsed = model.ToolClarification
		return payload
	}

	req := llm.CompletionRequest{
		SystemPrompt: SystemPrompt(decision.StrategyName),
		UserPrompt:   UserPrompt(query, BuildContext(structured, passages)),
	}

	resp, err := a.complete(ctx, req)
	if err != nil {
		a.logger.Error("generation failed", zap.Error(err))
		payload.Answer = "I apologize, but I encountered an error generating a response: " + err.Error()
		payload.ToolUsed = model.ToolError
		payload.Confidence = 0
		return payload
	}

	payload.Answer = resp.Text
	payload.ToolUsed = decision.PrimaryTool()
	payload.SourcesUsed = model.SourcesUsed{
		StructuredCount: len(structured),
		PassageCount:    len(passages),
	}
	return payload
}

func (a *Assembler) complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if a.generator == nil {
		return nil, &model.GenerationError{Provider: "none", Cause: errNoGenerator}
	}

	resp, err := a.generator.Complete(ctx, req)
	if err != nil {
		return nil, &model.GenerationError{Provider: a.generator.Name(), Cause: err}
	}
	return resp, nil
}

func (a *Assembler) sources(structured []model.StructuredRecord, passages []model.PassageRecord) model.Sources {
	s := model.Sources{
		StructuredResults: make([]model.StructuredRecord, len(structured)),
		PassageResults:    make([]model.PassageSummary, 0, len(passages)),
	}
	copy(s.StructuredResults, structured)

	for _, p := range passages {
		s.PassageResults = append(s.PassageResults, model.PassageSummary{
			Text:           Truncate(p.Text, a.previewChars),
			Page:           p.Page,
			Source:         p.SourceID,
			RelevanceScore: p.RelevanceScore,
		})
	}
	return s
}

// Truncate shortens text to n runes, marking the cut with "..."
func Truncate(text string, n int) string {
	runes := []rune(text)
	if len(runes) <= n {
		return text
	}
	return string(runes[:n]) + "..."
}
