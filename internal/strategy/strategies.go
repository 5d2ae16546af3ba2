package strategy

import (
	"strings"

	"github.com/ppiankov/ragroute/internal/classify"
	"github.com/ppiankov/ragroute/internal/model"
)

const (
	highThreshold          = 0.4
	lowThreshold           = 0.4
	clarificationThreshold = 0.3
	vagueWordLimit         = 3
)

// Strategy is a named rule set mapped to a retrieval tool pair
type Strategy struct {
	Name            model.StrategyName
	Conditions      []Condition // Evaluated in order
	ConfidenceBoost float64
	Tools           model.ToolMapping
}

// infoStarters open a question when they lead the query
var infoStarters = []string{"what", "how", "why", "when", "where", "who", "explain", "describe", "define", "tell me"}

// DefaultStrategies returns the built-in strategy table in tie-break order
func DefaultStrategies() []Strategy {
	docHigh := ScoreAtLeast("document_generation_high", model.IntentDocumentGeneration, highThreshold)
	docLow := ScoreBelow("document_generation_low", model.IntentDocumentGeneration, lowThreshold)
	infoHigh := ScoreAtLeast("information_retrieval_high", model.IntentInformationRetrieval, highThreshold)
	infoLow := ScoreBelow("information_retrieval_low", model.IntentInformationRetrieval, lowThreshold)
	hybridHigh := ScoreAtLeast("hybrid_request_high", model.IntentHybridRequest, highThreshold)
	hybridLow := ScoreBelow("hybrid_request_low", model.IntentHybridRequest, lowThreshold)
	clarHigh := ScoreAtLeast("clarification_needed_high", model.IntentClarificationNeeded, clarificationThreshold)

	return []Strategy{
		{
			Name: model.StrategyStructuredOnly,
			Conditions: []Condition{
				docHigh,
				hybridLow,
				TextContainsAny("has_form_reference", classify.FormReferences),
				TextContainsNone("no_staff_context", classify.StaffContext),
			},
			ConfidenceBoost: 0.1,
			Tools:           model.ToolMapping{Primary: model.ToolStructured},
		},
		{
			Name: model.StrategyVectorOnly,
			Conditions: []Condition{
				infoHigh,
				docLow,
				TextCondition{Name: "is_information_request", Fn: isInformationRequest},
				hybridLow,
			},
			ConfidenceBoost: 0.1,
			Tools:           model.ToolMapping{Primary: model.ToolPassage},
		},
		{
			Name: model.StrategyHybrid,
			Conditions: []Condition{
				TextContainsAny("has_generation_verb", classify.GenerationVerbs),
				TextContainsAny("has_document_type", classify.DocumentTypes),
				TextContainsAny("has_staff_context", classify.StaffContext),
				hybridHigh,
			},
			ConfidenceBoost: 0.15,
			Tools:           model.ToolMapping{Primary: model.ToolStructured, Secondary: model.ToolPassage},
		},
		{
			Name: model.StrategyClarificationRequired,
			Conditions: []Condition{
				clarHigh,
				docLow,
				infoLow,
				TextCondition{Name: "is_vague", Fn: isVague},
			},
			ConfidenceBoost: 0.1,
			Tools:           model.ToolMapping{Primary: model.ToolClarification},
		},
	}
}

func isInformationRequest(query string) (bool, error) {
	q := strings.ToLower(strings.TrimSpace(query))
	if strings.HasSuffix(q, "?") {
		return true, nil
	}
	for _, s := range infoStarters {
		if strings.HasPrefix(q, s) {
			return true, nil
		}
	}
	return false, nil
}

func isVague(query string) (bool, error) {
	return len(strings.Fields(query)) < vagueWordLimit, nil
}
