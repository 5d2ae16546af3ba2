// Package retrieve fans a routed query out to the structured and passage
// sources and merges, re-scores and ranks what comes back.
package retrieve

import (
	"context"
	"math"
	"sort"
	"strings"
	"unicode"

	"github.com/ppiankov/ragroute/internal/classify"
	"github.com/ppiankov/ragroute/internal/model"
	"github.com/ppiankov/ragroute/internal/store"
	"github.com/ppiankov/ragroute/internal/terminology"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	termBonus       = 0.1
	proceduralBonus = 0.2
)

// AuxiliaryTerms are added to the structured search terms of document-generation queries
var AuxiliaryTerms = []string{"award", "evaluation", "counseling", "memorandum", "citation", "form"}

// ProceduralKeywords earn the information-retrieval bonus when found in a passage
var ProceduralKeywords = []string{"process", "procedure", "step", "role", "responsibility", "responsibilities"}

// stopwords never become structured search terms; most are substrings of
// nearly every composite key
var stopwords = map[string]bool{
	"a": true, "an": true, "the": true, "of": true, "for": true, "to": true,
	"in": true, "on": true, "at": true, "by": true, "with": true, "and": true,
	"or": true, "is": true, "are": true, "was": true, "be": true, "i": true,
	"me": true, "my": true, "we": true, "our": true, "you": true, "it": true,
	"this": true, "that": true, "who": true, "what": true, "how": true,
	"can": true, "please": true, "during": true, "from": true, "as": true,
}

// Config tunes retrieval
type Config struct {
	MaxResults          int
	FuzzyThreshold      float64
	CandidateMultiplier int
	Collection          string
}

// DefaultConfig returns the standard retrieval limits
func DefaultConfig() Config {
	return Config{
		MaxResults:          5,
		FuzzyThreshold:      0.3,
		CandidateMultiplier: 2,
		Collection:          store.DefaultCollection,
	}
}

// ConfigFromModel converts model.RetrievalConfig, keeping defaults for unset fields
func ConfigFromModel(r model.RetrievalConfig, collection string) Config {
	c := DefaultConfig()
	if r.MaxResults > 0 {
		c.MaxResults = r.MaxResults
	}
	if r.FuzzyThreshold > 0 {
		c.FuzzyThreshold = r.FuzzyThreshold
	}
	if r.CandidateMultiplier > 0 {
		c.CandidateMultiplier = r.CandidateMultiplier
	}
	if collection != "" {
		c.Collection = collection
	}
	return c
}

// Result holds the ranked evidence for one query
type Result struct {
	Structured []model.StructuredRecord
	Passages   []model.PassageRecord
}

// Orchestrator queries only the sources a strategy decision selects.
// Either source may be nil; a selected nil source yields no evidence.
type Orchestrator struct {
	structured store.StructuredSearcher
	vector     store.VectorStore
	expander   *terminology.Expander
	config     Config
	logger     *zap.Logger
}

// New creates an orchestrator. Zero fields of config take their DefaultConfig value.
func New(structured store.StructuredSearcher, vector store.VectorStore, expander *terminology.Expander, config Config, logger *zap.Logger) *Orchestrator {
	if expander == nil {
		expander = terminology.NewExpander(nil)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if config.MaxResults <= 0 {
		config.MaxResults = DefaultConfig().MaxResults
	}
	if config.FuzzyThreshold <= 0 {
		config.FuzzyThreshold = DefaultConfig().FuzzyThreshold
	}
	if config.CandidateMultiplier <= 0 {
		config.CandidateMultiplier = DefaultConfig().CandidateMultiplier
	}
	if config.Collection == "" {
		config.Collection = store.DefaultCollection
	}

	return &Orchestrator{
		structured: structured,
		vector:     vector,
		expander:   expander,
		config:     config,
		logger:     logger.With(zap.String("component", "retrieve")),
	}
}

// Retrieve runs the selected retrieval paths concurrently. Adapter failures
// are logged and produce an empty list for that source.
func (o *Orchestrator) Retrieve(ctx context.Context, query string, analysis model.IntentAnalysis, decision model.StrategyDecision) Result {
	var (
		result Result
		g      errgroup.Group
	)

	if decision.Tools.Uses(model.ToolStructured) {
		g.Go(func() error {
			result.Structured = o.searchStructured(ctx, query, analysis)
			return nil
		})
	}

	if decision.Tools.Uses(model.ToolPassage) {
		g.Go(func() error {
			result.Passages = o.searchPassages(ctx, query, analysis)
			return nil
		})
	}

	_ = g.Wait()

	o.logger.Debug("retrieval complete",
		zap.String("strategy", string(decision.StrategyName)),
		zap.Int("structured", len(result.Structured)),
		zap.Int("passages", len(result.Passages)))

	return result
}

func (o *Orchestrator) searchStructured(ctx context.Context, query string, analysis model.IntentAnalysis) []model.StructuredRecord {
	if o.structured == nil {
		o.adapterFailed("structured", "search", errNotConfigured)
		return []model.StructuredRecord{}
	}

	terms := SearchTerms(query, analysis)

	var hits []model.StructuredRecord
	for _, term := range terms {
		recs, err := o.structured.SearchExact(ctx, term)
		if err != nil {
			o.adapterFailed("structured", "search_exact", err)
			return []model.StructuredRecord{}
		}
		hits = append(hits, recs...)
	}
	for _, term := range terms {
		recs, err := o.structured.SearchFuzzy(ctx, term, o.config.FuzzyThreshold)
		if err != nil {
			o.adapterFailed("structured", "search_fuzzy", err)
			return []model.StructuredRecord{}
		}
		hits = append(hits, recs...)
	}

	out := Dedupe(hits)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RelevanceScore > out[j].RelevanceScore
	})
	if len(out) > o.config.MaxResults {
		out = out[:o.config.MaxResults]
	}
	return out
}

// SearchTerms derives the structured search terms: query tokens, then
// terminology terms, then the auxiliary document words for generation
// requests. Order is stable and duplicates are dropped.
func SearchTerms(query string, analysis model.IntentAnalysis) []string {
	seen := make(map[string]bool)
	var terms []string
	add := func(t string) {
		t = strings.ToLower(strings.TrimSpace(t))
		if t == "" || seen[t] {
			return
		}
		seen[t] = true
		terms = append(terms, t)
	}

	for _, tok := range strings.Fields(strings.ToLower(query)) {
		tok = strings.TrimFunc(tok, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsDigit(r)
		})
		if len(tok) < 2 || stopwords[tok] {
			continue
		}
		add(tok)
	}
	for _, t := range analysis.TermsFound {
		add(t)
	}
	if analysis.PrimaryIntent == model.IntentDocumentGeneration {
		for _, t := range AuxiliaryTerms {
			add(t)
		}
	}

	return terms
}

// Dedupe keeps the first record seen for each (template_id, field_id)
func Dedupe(recs []model.StructuredRecord) []model.StructuredRecord {
	seen := make(map[string]bool, len(recs))
	out := make([]model.StructuredRecord, 0, len(recs))
	for _, r := range recs {
		if seen[r.Key()] {
			continue
		}
		seen[r.Key()] = true
		out = append(out, r)
	}
	return out
}

func (o *Orchestrator) searchPassages(ctx context.Context, query string, analysis model.IntentAnalysis) []model.PassageRecord {
	if o.vector == nil {
		o.adapterFailed("vector", "query_similar", errNotConfigured)
		return []model.PassageRecord{}
	}

	k := o.config.MaxResults * o.config.CandidateMultiplier

	text := analysis.ExpandedQuery
	if text == "" {
		text = query
	}

	hits, err := o.vector.QuerySimilar(ctx, o.config.Collection, text, k)
	if err != nil {
		o.adapterFailed("vector", "query_similar", err)
		return []model.PassageRecord{}
	}

	if len(hits) == 0 && text != query {
		o.logger.Debug("expanded query found nothing, retrying raw query")
		hits, err = o.vector.QuerySimilar(ctx, o.config.Collection, query, k)
		if err != nil {
			o.adapterFailed("vector", "query_similar", err)
			return []model.PassageRecord{}
		}
	}

	out := make([]model.PassageRecord, 0, len(hits))
	for _, h := range hits {
		out = append(out, o.scorePassage(h, analysis.PrimaryIntent))
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].RelevanceScore > out[j].RelevanceScore
	})
	if len(out) > o.config.MaxResults {
		out = out[:o.config.MaxResults]
	}
	return out
}

func (o *Orchestrator) scorePassage(h store.PassageHit, intent model.IntentName) model.PassageRecord {
	terms := o.expander.TermsFound(h.Text)

	score := 1 - h.Distance
	score += termBonus * float64(len(terms))
	if intent == model.IntentInformationRetrieval && classify.ContainsAny(strings.ToLower(h.Text), ProceduralKeywords) {
		score += proceduralBonus
	}

	return model.PassageRecord{
		Text:           h.Text,
		SourceID:       h.Source,
		Page:           h.Page,
		RelevanceScore: clamp(score),
		TermsMatched:   terms,
	}
}

// adapterFailed logs a failed adapter call. Errors the adapter already classified
// are logged as they are; anything else is wrapped in an AdapterError.
func (o *Orchestrator) adapterFailed(adapter, op string, err error) {
	if !model.IsRecoverable(err) {
		err = &model.AdapterError{Adapter: adapter, Op: op, Cause: err}
	}
	o.logger.Warn("adapter failed, continuing without its results",
		zap.String("adapter", adapter),
		zap.String("op", op),
		zap.Error(err))
}

func clamp(v float64) float64 {
	v = math.Max(0, math.Min(1, v))
	return math.Round(v*10000) / 10000
}
