package retrieve

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/ppiankov/ragroute/internal/classify"
	"github.com/ppiankov/ragroute/internal/model"
	"github.com/ppiankov/ragroute/internal/store"
	"github.com/ppiankov/ragroute/internal/strategy"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"
)

const sampleCSV = `template_name,field_label,instructions
DA638,Achievement Bullets,"Write 2-3 bullets; start each with a strong action verb and quantify results."
DA638,Award Type,"Select AAM, ARCOM or MSM based on the level of achievement."
NCOER,Performance,Describe performance against the NCO leadership requirements model.
OPORD,Situation,"Describe enemy forces, friendly forces and attachments."
Counseling,Purpose,State the reason for the counseling session.
`

func templateStore(t *testing.T) *store.TemplateStore {
	t.Helper()
	rows, err := store.ReadTemplatesCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)
	return store.NewTemplateStore(rows)
}

type countingSearcher struct {
	mu         sync.Mutex
	exact      []string
	fuzzy      []string
	thresholds []float64
	exactF func(term string) ([]model.StructuredRecord, error)
	fuzzyF func(term string) ([]model.StructuredRecord, error)
}

func (s *countingSearcher) SearchExact(_ context.Context, term string) ([]model.StructuredRecord, error) {
	s.mu.Lock()
	s.exact = append(s.exact, term)
	s.mu.Unlock()
	if s.exactF == nil {
		return nil, nil
	}
	return s.exactF(term)
}

func (s *countingSearcher) SearchFuzzy(_ context.Context, term string, threshold float64) ([]model.StructuredRecord, error) {
	s.mu.Lock()
	s.fuzzy = append(s.fuzzy, term)
	s.thresholds = append(s.thresholds, threshold)
	s.mu.Unlock()
	if s.fuzzyF == nil {
		return nil, nil
	}
	return s.fuzzyF(term)
}

type vectorCall struct {
	collection string
	text       string
	k          int
}

type fakeVector struct {
	mu    sync.Mutex
	calls []vectorCall
	fn    func(text string) ([]store.PassageHit, error)
}

func (v *fakeVector) QuerySimilar(_ context.Context, collection, text string, k int) ([]store.PassageHit, error) {
	v.mu.Lock()
	v.calls = append(v.calls, vectorCall{collection: collection, text: text, k: k})
	v.mu.Unlock()
	if v.fn == nil {
		return nil, nil
	}
	return v.fn(text)
}

func route(query string) (model.IntentAnalysis, model.StrategyDecision) {
	analysis := classify.New(nil, nil).Classify(query)
	decision := strategy.NewResolver(nil, nil).Resolve(query, analysis)
	return analysis, decision
}

func decisionFor(tools model.ToolMapping) model.StrategyDecision {
	return model.StrategyDecision{StrategyName: "test", Tools: tools}
}

func assertUniqueKeys(t require.TestingT, recs []model.StructuredRecord) {
	seen := make(map[string]bool)
	for _, r := range recs {
		assert.False(t, seen[r.Key()], "duplicate key %s", r.Key())
		seen[r.Key()] = true
	}
}

func TestRetrieve_ClarificationMakesNoAdapterCalls(t *testing.T) {
	searcher := &countingSearcher{}
	vector := &fakeVector{}
	o := New(searcher, vector, nil, DefaultConfig(), nil)

	analysis, decision := route("help")
	require.Equal(t, model.ToolClarification, decision.PrimaryTool())

	result := o.Retrieve(context.Background(), "help", analysis, decision)

	assert.Empty(t, result.Structured)
	assert.Empty(t, result.Passages)
	assert.Empty(t, searcher.exact)
	assert.Empty(t, searcher.fuzzy)
	assert.Empty(t, vector.calls)
}

func TestRetrieve_AwardBulletUsesTemplates(t *testing.T) {
	vector := &fakeVector{}
	o := New(templateStore(t), vector, nil, DefaultConfig(), nil)

	query := "Write an award bullet for a Soldier who scored 580 on the ACFT"
	analysis, decision := route(query)
	require.Equal(t, model.StrategyStructuredOnly, decision.StrategyName)

	result := o.Retrieve(context.Background(), query, analysis, decision)

	require.NotEmpty(t, result.Structured)
	assert.LessOrEqual(t, len(result.Structured), 5)
	assertUniqueKeys(t, result.Structured)
	assert.Equal(t, model.MatchExact, result.Structured[0].MatchKind)
	assert.Equal(t, 1.0, result.Structured[0].RelevanceScore)
	for i := 1; i < len(result.Structured); i++ {
		assert.GreaterOrEqual(t, result.Structured[i-1].RelevanceScore, result.Structured[i].RelevanceScore)
	}

	assert.Nil(t, result.Passages)
	assert.Empty(t, vector.calls)
}

func TestRetrieve_ExactHitWinsOverFuzzyDuplicate(t *testing.T) {
	rec := model.StructuredRecord{TemplateID: "DA638", FieldID: "Award Type"}
	other := model.StructuredRecord{TemplateID: "NCOER", FieldID: "Performance"}

	searcher := &countingSearcher{
		exactF: func(term string) ([]model.StructuredRecord, error) {
			if term != "zulu" {
				return nil, nil
			}
			r := rec
			r.MatchKind, r.RelevanceScore, r.SearchTerm = model.MatchExact, 1.0, term
			return []model.StructuredRecord{r}, nil
		},
		fuzzyF: func(term string) ([]model.StructuredRecord, error) {
			a, b := rec, other
			a.MatchKind, a.RelevanceScore, a.SearchTerm = model.MatchFuzzy, 0.9, term
			b.MatchKind, b.RelevanceScore, b.SearchTerm = model.MatchFuzzy, 0.4, term
			return []model.StructuredRecord{a, b}, nil
		},
	}
	o := New(searcher, nil, nil, DefaultConfig(), nil)

	// the fuzzy duplicate comes from an earlier term than the exact hit
	result := o.Retrieve(context.Background(), "yankee zulu", model.IntentAnalysis{},
		decisionFor(model.ToolMapping{Primary: model.ToolStructured}))

	require.Len(t, result.Structured, 2)
	assert.Equal(t, rec.Key(), result.Structured[0].Key())
	assert.Equal(t, model.MatchExact, result.Structured[0].MatchKind)
	assert.Equal(t, "zulu", result.Structured[0].SearchTerm)
	assert.Equal(t, other.Key(), result.Structured[1].Key())

	assert.Equal(t, []string{"yankee", "zulu"}, searcher.exact)
	assert.Equal(t, []string{"yankee", "zulu"}, searcher.fuzzy)
}

func TestRetrieve_StructuredCapped(t *testing.T) {
	searcher := &countingSearcher{
		exactF: func(term string) ([]model.StructuredRecord, error) {
			var out []model.StructuredRecord
			for i := 0; i < 8; i++ {
				out = append(out, model.StructuredRecord{
					TemplateID:     term,
					FieldID:        fmt.Sprintf("f%d", i),
					MatchKind:      model.MatchExact,
					RelevanceScore: 1,
				})
			}
			return out, nil
		},
	}
	cfg := DefaultConfig()
	cfg.MaxResults = 3
	o := New(searcher, nil, nil, cfg, nil)

	result := o.Retrieve(context.Background(), "alpha bravo", model.IntentAnalysis{},
		decisionFor(model.ToolMapping{Primary: model.ToolStructured}))

	require.Len(t, result.Structured, 3)
	assert.Equal(t, "alpha", result.Structured[0].TemplateID)
}

func TestSearchTerms(t *testing.T) {
	analysis := model.IntentAnalysis{
		PrimaryIntent: model.IntentDocumentGeneration,
		TermsFound:    []string{"da638", "acft"},
	}

	terms := SearchTerms("Write a DA638, please! (ACFT)", analysis)

	assert.Equal(t, []string{"write", "da638", "acft", "award", "evaluation", "counseling", "memorandum", "citation", "form"}, terms)
}

func TestSearchTerms_NoAuxiliaryOutsideGeneration(t *testing.T) {
	analysis := model.IntentAnalysis{
		PrimaryIntent: model.IntentInformationRetrieval,
		TermsFound:    []string{"s6", "mdmp"},
	}

	terms := SearchTerms("What is the role of the S6 during MDMP?", analysis)

	assert.Equal(t, []string{"role", "s6", "mdmp"}, terms)
}

func TestRetrieve_PassageFallbackToRawQuery(t *testing.T) {
	query := "What is the role of the S6 during MDMP?"
	analysis, decision := route(query)
	require.Equal(t, model.ToolPassage, decision.PrimaryTool())

	vector := &fakeVector{
		fn: func(text string) ([]store.PassageHit, error) {
			if text != query {
				return nil, nil
			}
			return []store.PassageHit{{Text: "S6 manages signal support.", Source: "fm6-0.pdf", Page: 12, Distance: 0.4}}, nil
		},
	}
	searcher := &countingSearcher{}
	o := New(searcher, vector, nil, DefaultConfig(), nil)

	result := o.Retrieve(context.Background(), query, analysis, decision)

	require.Len(t, vector.calls, 2)
	assert.Equal(t, analysis.ExpandedQuery, vector.calls[0].text)
	assert.Equal(t, query, vector.calls[1].text)
	for _, c := range vector.calls {
		assert.Equal(t, 10, c.k)
		assert.Equal(t, store.DefaultCollection, c.collection)
	}

	require.Len(t, result.Passages, 1)
	assert.Equal(t, "fm6-0.pdf", result.Passages[0].SourceID)
	assert.Equal(t, 12, result.Passages[0].Page)
	assert.Empty(t, searcher.exact)
}

func TestRetrieve_PassageRescoring(t *testing.T) {
	vector := &fakeVector{
		fn: func(string) ([]store.PassageHit, error) {
			return []store.PassageHit{
				{Text: "Logistics overview", Distance: 0.5},
				{Text: "The S6 role during MDMP", Distance: 0.3},
				{Text: "Unrelated text", Distance: 0.2},
				{Text: "Signal plan for the FTX", Distance: 0.6},
			}, nil
		},
	}
	o := New(nil, vector, nil, DefaultConfig(), nil)

	analysis := model.IntentAnalysis{PrimaryIntent: model.IntentInformationRetrieval, ExpandedQuery: "s6"}
	result := o.Retrieve(context.Background(), "s6", analysis, decisionFor(model.ToolMapping{Primary: model.ToolPassage}))

	require.Len(t, result.Passages, 4)

	assert.Equal(t, "The S6 role during MDMP", result.Passages[0].Text)
	assert.Equal(t, 1.0, result.Passages[0].RelevanceScore)
	assert.Equal(t, []string{"mdmp", "s6"}, result.Passages[0].TermsMatched)

	assert.Equal(t, "Unrelated text", result.Passages[1].Text)
	assert.InDelta(t, 0.8, result.Passages[1].RelevanceScore, 1e-9)

	assert.Equal(t, "Logistics overview", result.Passages[2].Text)
	assert.InDelta(t, 0.5, result.Passages[2].RelevanceScore, 1e-9)

	assert.Equal(t, "Signal plan for the FTX", result.Passages[3].Text)
	assert.InDelta(t, 0.5, result.Passages[3].RelevanceScore, 1e-9)
}

func TestRetrieve_ProceduralBonusOnlyForInformationIntent(t *testing.T) {
	vector := &fakeVector{
		fn: func(string) ([]store.PassageHit, error) {
			return []store.PassageHit{{Text: "Step one of the procedure", Distance: 0.5}}, nil
		},
	}
	o := New(nil, vector, nil, DefaultConfig(), nil)
	tools := decisionFor(model.ToolMapping{Primary: model.ToolPassage})

	info := o.Retrieve(context.Background(), "q", model.IntentAnalysis{PrimaryIntent: model.IntentInformationRetrieval}, tools)
	hybrid := o.Retrieve(context.Background(), "q", model.IntentAnalysis{PrimaryIntent: model.IntentHybridRequest}, tools)

	require.Len(t, info.Passages, 1)
	require.Len(t, hybrid.Passages, 1)
	assert.InDelta(t, 0.7, info.Passages[0].RelevanceScore, 1e-9)
	assert.InDelta(t, 0.5, hybrid.Passages[0].RelevanceScore, 1e-9)
}

func TestRetrieve_PassagesCapped(t *testing.T) {
	vector := &fakeVector{
		fn: func(string) ([]store.PassageHit, error) {
			var hits []store.PassageHit
			for i := 0; i < 10; i++ {
				hits = append(hits, store.PassageHit{Text: fmt.Sprintf("p%d", i), Distance: float64(i) / 10})
			}
			return hits, nil
		},
	}
	o := New(nil, vector, nil, DefaultConfig(), nil)

	result := o.Retrieve(context.Background(), "q", model.IntentAnalysis{},
		decisionFor(model.ToolMapping{Primary: model.ToolPassage}))

	require.Len(t, result.Passages, 5)
	assert.Equal(t, "p0", result.Passages[0].Text)
	assert.Equal(t, "p4", result.Passages[4].Text)
}

func TestRetrieve_AdapterErrorsAreRecovered(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	searcher := &countingSearcher{
		exactF: func(string) ([]model.StructuredRecord, error) { return nil, errors.New("csv unavailable") },
	}
	vector := &fakeVector{
		fn: func(string) ([]store.PassageHit, error) { return nil, errors.New("connection refused") },
	}
	o := New(searcher, vector, nil, DefaultConfig(), zap.New(core))

	result := o.Retrieve(context.Background(), "write situation paragraph", model.IntentAnalysis{ExpandedQuery: "write situation paragraph"},
		decisionFor(model.ToolMapping{Primary: model.ToolStructured, Secondary: model.ToolPassage}))

	assert.NotNil(t, result.Structured)
	assert.Empty(t, result.Structured)
	assert.NotNil(t, result.Passages)
	assert.Empty(t, result.Passages)

	assert.Equal(t, 2, logs.Len())
	for _, entry := range logs.All() {
		err, ok := entry.ContextMap()["error"].(string)
		require.True(t, ok)
		assert.Contains(t, err, "adapter")
	}
	assert.Len(t, vector.calls, 1, "an error is not retried with the raw query")
}

func TestRetrieve_ClassifiedAdapterErrorIsNotRewrapped(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	vector := &fakeVector{
		fn: func(string) ([]store.PassageHit, error) {
			return nil, &model.AdapterError{Adapter: "vector", Op: "query", Cause: errors.New("status 503")}
		},
	}
	o := New(nil, vector, nil, DefaultConfig(), zap.New(core))

	o.Retrieve(context.Background(), "q", model.IntentAnalysis{},
		decisionFor(model.ToolMapping{Primary: model.ToolPassage}))

	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "vector adapter query: status 503", logs.All()[0].ContextMap()["error"])
}

func TestNew_PartialConfigKeepsDefaultFuzzyThreshold(t *testing.T) {
	searcher := &countingSearcher{}
	o := New(searcher, nil, nil, Config{MaxResults: 5}, nil)

	o.Retrieve(context.Background(), "write a DA638", model.IntentAnalysis{},
		decisionFor(model.ToolMapping{Primary: model.ToolStructured}))

	require.NotEmpty(t, searcher.thresholds)
	for _, th := range searcher.thresholds {
		assert.Equal(t, 0.3, th)
	}

	// against real templates, unrelated fields no longer pass as fuzzy hits
	o = New(templateStore(t), nil, nil, Config{MaxResults: 5}, nil)
	result := o.Retrieve(context.Background(), "write a DA638", model.IntentAnalysis{},
		decisionFor(model.ToolMapping{Primary: model.ToolStructured}))

	require.NotEmpty(t, result.Structured)
	for _, r := range result.Structured {
		assert.GreaterOrEqual(t, r.RelevanceScore, 0.3, "%s matched %q", r.Key(), r.SearchTerm)
	}
}

func TestRetrieve_UnconfiguredSourceIsEmpty(t *testing.T) {
	o := New(nil, nil, nil, DefaultConfig(), nil)

	result := o.Retrieve(context.Background(), "q", model.IntentAnalysis{},
		decisionFor(model.ToolMapping{Primary: model.ToolPassage, Secondary: model.ToolStructured}))

	assert.Empty(t, result.Structured)
	assert.Empty(t, result.Passages)
}

func TestConfigFromModel(t *testing.T) {
	c := ConfigFromModel(model.RetrievalConfig{MaxResults: 7}, "")
	assert.Equal(t, 7, c.MaxResults)
	assert.Equal(t, 0.3, c.FuzzyThreshold)
	assert.Equal(t, 2, c.CandidateMultiplier)
	assert.Equal(t, store.DefaultCollection, c.Collection)

	c = ConfigFromModel(model.RetrievalConfig{FuzzyThreshold: 0.5, CandidateMultiplier: 3}, "docs")
	assert.Equal(t, 5, c.MaxResults)
	assert.Equal(t, 0.5, c.FuzzyThreshold)
	assert.Equal(t, 3, c.CandidateMultiplier)
	assert.Equal(t, "docs", c.Collection)
}

var queryWords = []string{
	"write", "award", "bullet", "ncoer", "performance", "opord", "situation",
	"da638", "counseling", "purpose", "acft", "what", "is", "the", "a", "s6", "mdmp",
}

func TestDedupeIdempotence_Property(t *testing.T) {
	ts := templateStore(t)
	classifier := classify.New(nil, nil)
	o := New(ts, nil, nil, DefaultConfig(), nil)
	tools := decisionFor(model.ToolMapping{Primary: model.ToolStructured})

	rapid.Check(t, func(t *rapid.T) {
		words := rapid.SliceOfN(rapid.SampledFrom(queryWords), 1, 8).Draw(t, "words")
		query := strings.Join(words, " ")
		analysis := classifier.Classify(query)

		first := o.Retrieve(context.Background(), query, analysis, tools).Structured
		second := o.Retrieve(context.Background(), query, analysis, tools).Structured

		assertUniqueKeys(t, first)
		assert.Equal(t, first, second)

		merged := Dedupe(append(append([]model.StructuredRecord{}, first...), second...))
		assertUniqueKeys(t, merged)
		assert.Equal(t, len(first), len(merged))
		assert.Equal(t, merged, Dedupe(merged))
	})
}

func TestRelevanceBounded_Property(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 12).Draw(t, "n")
		hits := make([]store.PassageHit, n)
		for i := range hits {
			hits[i] = store.PassageHit{
				Text:     strings.Join(rapid.SliceOfN(rapid.SampledFrom(queryWords), 0, 10).Draw(t, "text"), " "),
				Distance: rapid.Float64Range(-1, 3).Draw(t, "distance"),
			}
		}
		intent := rapid.SampledFrom([]model.IntentName{
			model.IntentDocumentGeneration, model.IntentInformationRetrieval,
			model.IntentHybridRequest, model.IntentClarificationNeeded,
		}).Draw(t, "intent")

		vector := &fakeVector{fn: func(string) ([]store.PassageHit, error) { return hits, nil }}
		o := New(nil, vector, nil, DefaultConfig(), nil)

		result := o.Retrieve(context.Background(), "q", model.IntentAnalysis{PrimaryIntent: intent},
			decisionFor(model.ToolMapping{Primary: model.ToolPassage}))

		assert.LessOrEqual(t, len(result.Passages), 5)
		for i, p := range result.Passages {
			assert.GreaterOrEqual(t, p.RelevanceScore, 0.0)
			assert.LessOrEqual(t, p.RelevanceScore, 1.0)
			if i > 0 {
				assert.GreaterOrEqual(t, result.Passages[i-1].RelevanceScore, p.RelevanceScore)
			}
		}
	})
}
