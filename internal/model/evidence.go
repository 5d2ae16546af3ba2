package model

// MatchKind records how a structured record was found
type MatchKind string

const (
	MatchExact MatchKind = "exact" // Term is a substring of the composite key
	MatchFuzzy MatchKind = "fuzzy" // Similarity ratio above threshold
)

// StructuredRecord is one template field instruction from the structured source
type StructuredRecord struct {
	TemplateID     string    `json:"template_id"`
	FieldID        string    `json:"field_id"`
	Instructions   string    `json:"instructions"`
	MatchKind      MatchKind `json:"match_kind"`
	RelevanceScore float64   `json:"relevance_score"`
	SearchTerm     string    `json:"search_term,omitempty"` // Candidate term that produced the hit
}

// Key returns the composite identity used for search and deduplication
func (r StructuredRecord) Key() string {
	return CompositeKey(r.TemplateID, r.FieldID)
}

// CompositeKey joins template and field identity the way the store indexes them
func CompositeKey(templateID, fieldID string) string {
	return templateID + "|" + fieldID
}

// PassageRecord is one passage returned by the vector store
type PassageRecord struct {
	Text           string   `json:"text"`
	SourceID       string   `json:"source_id"`
	Page           int      `json:"page"`
	RelevanceScore float64  `json:"relevance_score"`
	TermsMatched   []string `json:"terms_matched,omitempty"`
}
