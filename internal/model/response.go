package model

import "time"

// ResponsePayload is what Process returns to its caller
type ResponsePayload struct {
	Answer         string         `json:"answer"`
	SourcesUsed    SourcesUsed    `json:"sources_used"`
	ToolUsed       Tool           `json:"tool_used"`
	Confidence     float64        `json:"confidence"` // Strategy confidence
	Classification Classification `json:"classification"`
	Sources        Sources        `json:"sources"`
	Timestamp      time.Time      `json:"timestamp"`
}

// SourcesUsed counts the evidence handed to generation
type SourcesUsed struct {
	StructuredCount int `json:"structured_count"`
	PassageCount    int `json:"passage_count"`
}

// Classification summarizes intent and strategy for display
type Classification struct {
	PrimaryIntent IntentName   `json:"primary_intent"`
	Confidence    Confidence   `json:"confidence"`
	Strategy      StrategyName `json:"strategy"`
	Reasoning     string       `json:"reasoning"`
}

// Sources carries the evidence for transport (passage text may be shortened)
type Sources struct {
	StructuredResults []StructuredRecord `json:"structured_results"`
	PassageResults    []PassageSummary   `json:"passage_results"`
}

// PassageSummary is a display form of PassageRecord
type PassageSummary struct {
	Text           string  `json:"text"`
	Page           int     `json:"page"`
	Source         string  `json:"source"`
	RelevanceScore float64 `json:"relevance_score"`
}
