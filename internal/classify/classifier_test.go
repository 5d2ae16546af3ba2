package classify

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/ppiankov/ragroute/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestClassify_Scenarios(t *testing.T) {
	c := New(nil, nil)

	tests := []struct {
		name       string
		query      string
		primary    model.IntentName
		confidence model.Confidence
		scores     model.ScoreVector
		terms      []string
	}{
		{
			name:       "award bullet",
			query:      "Write an award bullet for a Soldier who scored 580 on the ACFT",
			primary:    model.IntentDocumentGeneration,
			confidence: model.ConfidenceHigh,
			scores: model.ScoreVector{
				model.IntentDocumentGeneration:   0.7,
				model.IntentInformationRetrieval: 0.4,
				model.IntentHybridRequest:        0.1,
				model.IntentClarificationNeeded:  0.1,
			},
			terms: []string{"acft"},
		},
		{
			name:       "staff role question",
			query:      "What is the role of the S6 during MDMP?",
			primary:    model.IntentInformationRetrieval,
			confidence: model.ConfidenceHigh,
			scores: model.ScoreVector{
				model.IntentDocumentGeneration:   0.2,
				model.IntentInformationRetrieval: 0.8,
				model.IntentHybridRequest:        0.38,
				model.IntentClarificationNeeded:  0.2,
			},
			terms: []string{"mdmp", "s6"},
		},
		{
			name:       "situation paragraph",
			query:      "Write a situation paragraph for my infantry battalion's upcoming mission at NTC",
			primary:    model.IntentHybridRequest,
			confidence: model.ConfidenceMedium,
			scores: model.ScoreVector{
				model.IntentDocumentGeneration:   0.55,
				model.IntentInformationRetrieval: 0.1,
				model.IntentHybridRequest:        0.73,
				model.IntentClarificationNeeded:  0.1,
			},
			terms: []string{"ntc"},
		},
		{
			name:       "bare help",
			query:      "help",
			primary:    model.IntentClarificationNeeded,
			confidence: model.ConfidenceLow,
			scores: model.ScoreVector{
				model.IntentDocumentGeneration:   0,
				model.IntentInformationRetrieval: 0,
				model.IntentHybridRequest:        0,
				model.IntentClarificationNeeded:  0.3,
			},
			terms: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Classify(tt.query)

			assert.Equal(t, tt.primary, got.PrimaryIntent)
			assert.Equal(t, tt.confidence, got.Confidence)
			assert.Equal(t, tt.terms, got.TermsFound)
			require.Len(t, got.Scores, len(tt.scores))
			for name, want := range tt.scores {
				assert.InDelta(t, want, got.Scores[name], 1e-9, "score for %s", name)
			}
		})
	}
}

func TestClassify_ExpandedQuery(t *testing.T) {
	c := New(nil, nil)
	got := c.Classify("Score on the ACFT")
	assert.Equal(t, "score on the acft (Army Combat Fitness Test)", got.ExpandedQuery)
}

func TestClassify_EmptyQuery(t *testing.T) {
	c := New(nil, nil)
	got := c.Classify("")

	assert.Equal(t, model.IntentDocumentGeneration, got.PrimaryIntent, "all-zero ties resolve to the first category")
	assert.Equal(t, model.ConfidenceLow, got.Confidence)
	assert.Empty(t, got.TermsFound)
}

func TestClassify_TermBonusIsCapped(t *testing.T) {
	c := New(nil, nil)
	got := c.Classify("acft mdmp jrtc warno frago")

	for name, s := range got.Scores {
		if name == model.IntentHybridRequest {
			continue
		}
		assert.InDelta(t, 0.3, s, 1e-9, "bonus for %s", name)
	}
}

func TestClassify_TiesFollowDeclarationOrder(t *testing.T) {
	categories := []model.IntentCategory{
		{Name: "first", IndicatorGroups: []model.IndicatorGroup{
			{Kind: GroupPrimary, Phrases: []string{"alpha"}, PerMatchWeight: 0.5, PerGroupCap: 0.5},
		}, CategoryWeight: 1},
		{Name: "second", IndicatorGroups: []model.IndicatorGroup{
			{Kind: GroupPrimary, Phrases: []string{"bravo"}, PerMatchWeight: 0.5, PerGroupCap: 0.5},
		}, CategoryWeight: 1},
	}
	c := New(categories, nil)

	assert.Equal(t, model.IntentName("first"), c.Classify("alpha bravo").PrimaryIntent)
	assert.Equal(t, model.IntentName("second"), c.Classify("bravo").PrimaryIntent)
}

func TestConfidence(t *testing.T) {
	tests := []struct {
		name   string
		scores model.ScoreVector
		want   model.Confidence
	}{
		{"wide margin", model.ScoreVector{"a": 0.5, "b": 0.3}, model.ConfidenceHigh},
		{"narrow margin above medium", model.ScoreVector{"a": 0.5, "b": 0.4}, model.ConfidenceMedium},
		{"narrow margin below medium", model.ScoreVector{"a": 0.35, "b": 0.3}, model.ConfidenceLow},
		{"solo strong", model.ScoreVector{"a": 0.6, "b": 0}, model.ConfidenceHigh},
		{"solo medium", model.ScoreVector{"a": 0.45, "b": 0}, model.ConfidenceMedium},
		{"solo weak", model.ScoreVector{"a": 0.3, "b": 0}, model.ConfidenceLow},
		{"all zero", model.ScoreVector{"a": 0, "b": 0}, model.ConfidenceLow},
		{"empty", model.ScoreVector{}, model.ConfidenceLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, confidence(tt.scores))
		})
	}
}

func TestClassify_ScoresBounded(t *testing.T) {
	c := New(nil, nil)
	vocab := append(append(append([]string{}, GenerationVerbs...), DocumentTypes...), StaffContext...)
	vocab = append(vocab, InfoPhrases...)
	vocab = append(vocab, AmbiguityPhrases...)
	vocab = append(vocab, ContextPhrases...)
	vocab = append(vocab, "acft", "mdmp", "ntc", "coa analysis")

	rapid.Check(t, func(rt *rapid.T) {
		words := rapid.SliceOfN(rapid.SampledFrom(vocab), 0, 30).Draw(rt, "words")
		noise := rapid.String().Draw(rt, "noise")
		query := strings.Join(words, " ") + noise

		got := c.Classify(query)
		for name, s := range got.Scores {
			if s < 0 || s > 1 {
				rt.Fatalf("score %s = %v out of range for %q", name, s, query)
			}
		}
	})
}

func TestClassify_Deterministic(t *testing.T) {
	c := New(nil, nil)

	rapid.Check(t, func(rt *rapid.T) {
		query := rapid.String().Draw(rt, "query")

		a, err := json.Marshal(c.Classify(query))
		if err != nil {
			rt.Fatal(err)
		}
		b, err := json.Marshal(c.Classify(query))
		if err != nil {
			rt.Fatal(err)
		}
		if string(a) != string(b) {
			rt.Fatalf("non-deterministic analysis for %q", query)
		}
	})
}

func TestClassify_InformationOnlyQueries(t *testing.T) {
	c := New(nil, nil)
	filler := []string{"the", "a", "of", "is", "in", "army", "soldier", "unit", "doctrine", "regulation"}

	rapid.Check(t, func(rt *rapid.T) {
		lead := rapid.SampledFrom(InfoPhrases).Draw(rt, "lead")
		rest := rapid.SliceOfN(rapid.SampledFrom(append(append([]string{}, filler...), InfoTopics...)), 0, 8).Draw(rt, "rest")
		query := strings.Join(append([]string{lead}, rest...), " ")
		if rapid.Bool().Draw(rt, "question") {
			query += "?"
		}

		if got := c.Classify(query).PrimaryIntent; got != model.IntentInformationRetrieval {
			rt.Fatalf("classify(%q) = %s, want %s", query, got, model.IntentInformationRetrieval)
		}
	})
}
