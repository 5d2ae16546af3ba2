package model

// IntentName identifies an intent category
type IntentName string

const (
	IntentDocumentGeneration   IntentName = "document_generation"   // Create/write a document or form field
	IntentInformationRetrieval IntentName = "information_retrieval" // Look up doctrine, roles, procedures
	IntentHybridRequest        IntentName = "hybrid_request"        // Generate a document grounded in operational context
	IntentClarificationNeeded  IntentName = "clarification_needed"  // Request is too vague to route
)

// IndicatorGroup is a named set of trigger phrases with its own weight and cap
type IndicatorGroup struct {
	Kind           string   `json:"kind" yaml:"kind"`                     // primary, secondary, or a specialized name
	Phrases        []string `json:"phrases" yaml:"phrases"`               // Lower-case substrings
	PerMatchWeight float64  `json:"per_match_weight" yaml:"per_match_weight"`
	PerGroupCap    float64  `json:"per_group_cap" yaml:"per_group_cap"`
}

// IntentCategory is one classifiable intent with its indicator groups
type IntentCategory struct {
	Name            IntentName       `json:"name" yaml:"name"`
	IndicatorGroups []IndicatorGroup `json:"indicator_groups" yaml:"indicator_groups"`
	CategoryWeight  float64          `json:"category_weight" yaml:"category_weight"`
}

// ScoreVector maps each category to a score in [0,1]
type ScoreVector map[IntentName]float64

// Confidence is the classifier's confidence bucket
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// IntentAnalysis is the classifier output for one query. Read-only once built.
type IntentAnalysis struct {
	PrimaryIntent IntentName  `json:"primary_intent"`
	Scores        ScoreVector `json:"scores"`
	Confidence    Confidence  `json:"confidence"`
	ExpandedQuery string      `json:"expanded_query"`
	TermsFound    []string    `json:"terms_found"`
}
