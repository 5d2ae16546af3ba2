package classify

import (
	"strings"

	"github.com/ppiankov/ragroute/internal/model"
)

// Shared vocabularies. The strategy conditions match against the same lists
// so a phrase that moves a category score also satisfies the matching text
// condition.
var (
	// GenerationVerbs signal that the user wants something written
	GenerationVerbs = []string{
		"write", "create", "generate", "draft", "compose", "prepare", "fill out", "produce",
	}

	// DocumentTypes are document and form nouns
	DocumentTypes = []string{
		"bullet", "award", "evaluation", "citation", "recommendation", "memo", "memorandum",
		"counseling", "ncoer", "oer", "opord", "paragraph", "statement", "letter", "template",
		"da form", "da638", "da 638", "report",
	}

	// FormReferences name specific forms or template-backed documents.
	// Every entry is also a DocumentTypes entry.
	FormReferences = []string{
		"da638", "da 638", "da form", "ncoer", "oer", "award", "bullet", "citation",
		"template", "evaluation",
	}

	// InfoPhrases open an information-seeking question
	InfoPhrases = []string{
		"what", "how", "why", "explain", "describe", "define", "tell me", "who", "when",
		"where", "meaning of",
	}

	// InfoTopics are procedural nouns that accompany knowledge questions
	InfoTopics = []string{
		"role", "process", "procedure", "step", "responsibilit", "during", "purpose",
		"difference", "overview",
	}

	// ContextPhrases tie a request to the user's own situation or a source
	ContextPhrases = []string{
		"based on", "according to", "in accordance with", "incorporat", "using the",
		"in support of", "for my", "for our", "upcoming",
	}

	// StaffContext are operational and staff-planning keywords
	StaffContext = []string{
		"mdmp", "mission", "operation", "training", "ntc", "deployment", "exercise",
		"planning", "staff", "battalion", "brigade", "company",
		"s1", "s2", "s3", "s4", "s5", "s6",
	}

	// AmbiguityPhrases mark vague requests
	AmbiguityPhrases = []string{
		"help", "help with", "need to", "working on", "assist", "support", "not sure",
		"something", "stuff", "anything",
	}
)

// Group kinds
const (
	GroupPrimary      = "primary"
	GroupSecondary    = "secondary"
	GroupContextual   = "contextual"
	GroupStaffContext = "staff_context"
)

// DefaultCategories returns the built-in intent categories in tie-break order
func DefaultCategories() []model.IntentCategory {
	return []model.IntentCategory{
		{
			Name: model.IntentDocumentGeneration,
			IndicatorGroups: []model.IndicatorGroup{
				{Kind: GroupPrimary, Phrases: GenerationVerbs, PerMatchWeight: 0.3, PerGroupCap: 0.6},
				{Kind: GroupSecondary, Phrases: DocumentTypes, PerMatchWeight: 0.15, PerGroupCap: 0.3},
			},
			CategoryWeight: 1.0,
		},
		{
			Name: model.IntentInformationRetrieval,
			IndicatorGroups: []model.IndicatorGroup{
				{Kind: GroupPrimary, Phrases: InfoPhrases, PerMatchWeight: 0.3, PerGroupCap: 0.6},
				{Kind: GroupSecondary, Phrases: InfoTopics, PerMatchWeight: 0.15, PerGroupCap: 0.3},
			},
			CategoryWeight: 1.0,
		},
		{
			Name: model.IntentHybridRequest,
			IndicatorGroups: []model.IndicatorGroup{
				{Kind: GroupContextual, Phrases: ContextPhrases, PerMatchWeight: 0.25, PerGroupCap: 0.5},
				{Kind: GroupStaffContext, Phrases: StaffContext, PerMatchWeight: 0.1, PerGroupCap: 0.2},
			},
			CategoryWeight: 0.9,
		},
		{
			Name: model.IntentClarificationNeeded,
			IndicatorGroups: []model.IndicatorGroup{
				{Kind: GroupPrimary, Phrases: AmbiguityPhrases, PerMatchWeight: 0.3, PerGroupCap: 0.6},
			},
			CategoryWeight: 1.0,
		},
	}
}

// ContainsAny reports whether the lower-cased text contains any phrase
func ContainsAny(lower string, phrases []string) bool {
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			return true
		}
	}
	return false
}

// CountMatches counts phrases present as substrings of the lower-cased text
func CountMatches(lower string, phrases []string) int {
	n := 0
	for _, p := range phrases {
		if strings.Contains(lower, p) {
			n++
		}
	}
	return n
}
