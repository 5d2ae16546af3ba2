// Package engine wires expansion, classification, strategy resolution,
// retrieval and response assembly into one query pipeline.
package engine

import (
	"context"
	"strings"
	"time"

	"github.com/ppiankov/ragroute/internal/classify"
	"github.com/ppiankov/ragroute/internal/llm"
	"github.com/ppiankov/ragroute/internal/model"
	"github.com/ppiankov/ragroute/internal/respond"
	"github.com/ppiankov/ragroute/internal/retrieve"
	"github.com/ppiankov/ragroute/internal/store"
	"github.com/ppiankov/ragroute/internal/strategy"
	"github.com/ppiankov/ragroute/internal/terminology"
	"go.uber.org/zap"
)

// Deps are the engine's collaborators. Nil tables fall back to the built-in
// defaults; nil sources and generator degrade as described on each component.
// Zero Retrieval fields take the retrieve.DefaultConfig values.
type Deps struct {
	Table      *terminology.Table
	Categories []model.IntentCategory
	Strategies []strategy.Strategy

	Structured store.StructuredSearcher
	Vector     store.VectorStore
	Generator  llm.Generator

	Retrieval    retrieve.Config
	PreviewChars int

	Logger *zap.Logger
}

// Engine processes queries. Safe for concurrent use: all shared state is
// read-only after New.
type Engine struct {
	classifier   *classify.Classifier
	resolver     *strategy.Resolver
	orchestrator *retrieve.Orchestrator
	assembler    *respond.Assembler

	vector    store.VectorStore
	generator llm.Generator

	logger *zap.Logger
	now    func() time.Time
}

// Analysis is the I/O-free part of processing a query
type Analysis struct {
	Query    string                 `json:"query"`
	Intent   model.IntentAnalysis   `json:"intent"`
	Decision model.StrategyDecision `json:"decision"`
}

// New builds an engine from its collaborators
func New(deps Deps) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	table := deps.Table
	if table == nil {
		table = terminology.DefaultTable()
	}
	expander := terminology.NewExpander(table)

	return &Engine{
		classifier:   classify.New(deps.Categories, expander),
		resolver:     strategy.NewResolver(deps.Strategies, logger),
		orchestrator: retrieve.New(deps.Structured, deps.Vector, expander, deps.Retrieval, logger),
		assembler:    respond.NewAssembler(deps.Generator, table, deps.PreviewChars, logger),
		vector:       deps.Vector,
		generator:    deps.Generator,
		logger:       logger.With(zap.String("component", "engine")),
		now:          time.Now,
	}
}

// Analyze classifies the query and resolves its strategy without touching
// any source or the generation service
func (e *Engine) Analyze(query string) Analysis {
	intent := e.classifier.Classify(query)
	return Analysis{
		Query:    query,
		Intent:   intent,
		Decision: e.resolver.Resolve(query, intent),
	}
}

// Process runs the full pipeline. The only error is model.ErrEmptyQuery;
// source and generation failures are absorbed into the payload.
func (e *Engine) Process(ctx context.Context, query string) (*model.ResponsePayload, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, model.ErrEmptyQuery
	}

	a := e.Analyze(query)

	e.logger.Debug("query routed",
		zap.String("intent", string(a.Intent.PrimaryIntent)),
		zap.String("confidence", string(a.Intent.Confidence)),
		zap.String("strategy", string(a.Decision.StrategyName)),
		zap.Float64("strategy_confidence", a.Decision.StrategyConfidence))

	var evidence retrieve.Result
	if a.Decision.PrimaryTool() != model.ToolClarification {
		evidence = e.orchestrator.Retrieve(ctx, query, a.Intent, a.Decision)
	}

	payload := e.assembler.Assemble(ctx, query, a.Intent, a.Decision, evidence.Structured, evidence.Passages)
	payload.Timestamp = e.now().UTC()

	return payload, nil
}
