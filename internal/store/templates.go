// Package store holds the retrieval adapters: the CSV-backed template store
// and the vector passage stores with their query embedders.
package store

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/ppiankov/ragroute/internal/model"
)

const (
	DefaultMaxResults           = 5
	DefaultDirectFuzzyThreshold = 0.6
)

// StructuredSearcher is the structured-source contract used by the orchestrator
type StructuredSearcher interface {
	SearchExact(ctx context.Context, term string) ([]model.StructuredRecord, error)
	SearchFuzzy(ctx context.Context, term string, threshold float64) ([]model.StructuredRecord, error)
}

// Accepted header names per column, matched case-insensitively
var (
	templateHeaders     = []string{"template_name", "template_id", "template"}
	fieldHeaders        = []string{"field_label", "field_id", "field"}
	instructionsHeaders = []string{"instructions", "instruction"}
)

// TemplateStore is an in-memory index of template field instructions keyed
// by "template|field". Read-only after construction.
type TemplateStore struct {
	records []model.StructuredRecord
	keys    []string // lower-cased composite keys, parallel to records
	index   map[string]int

	maxResults      int
	directThreshold float64
}

// TemplateRow is one template field definition
type TemplateRow struct {
	TemplateID   string
	FieldID      string
	Instructions string
}

// NewTemplateStore indexes rows; a later row with the same key replaces an earlier one
func NewTemplateStore(rows []TemplateRow) *TemplateStore {
	s := &TemplateStore{
		index:           make(map[string]int, len(rows)),
		maxResults:      DefaultMaxResults,
		directThreshold: DefaultDirectFuzzyThreshold,
	}

	for _, row := range rows {
		rec := model.StructuredRecord{
			TemplateID:   strings.TrimSpace(row.TemplateID),
			FieldID:      strings.TrimSpace(row.FieldID),
			Instructions: strings.TrimSpace(row.Instructions),
		}
		key := rec.Key()
		if i, ok := s.index[key]; ok {
			s.records[i] = rec
			continue
		}
		s.index[key] = len(s.records)
		s.records = append(s.records, rec)
		s.keys = append(s.keys, strings.ToLower(key))
	}

	return s
}

// WithLimits sets the direct-search result cap and fuzzy threshold
func (s *TemplateStore) WithLimits(maxResults int, directThreshold float64) *TemplateStore {
	if maxResults > 0 {
		s.maxResults = maxResults
	}
	if directThreshold > 0 {
		s.directThreshold = directThreshold
	}
	return s
}

// LoadTemplatesCSV reads a template dataset with template, field and
// instructions columns
func LoadTemplatesCSV(path string) (*TemplateStore, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, &model.ConfigurationError{Source: path, Cause: err}
	}
	defer func() { _ = f.Close() }()

	rows, err := ReadTemplatesCSV(f)
	if err != nil {
		return nil, &model.ConfigurationError{Source: path, Cause: err}
	}
	return NewTemplateStore(rows), nil
}

// ReadTemplatesCSV parses template rows from CSV with a header line
func ReadTemplatesCSV(r io.Reader) ([]TemplateRow, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("empty template file")
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	tcol := findColumn(header, templateHeaders)
	fcol := findColumn(header, fieldHeaders)
	icol := findColumn(header, instructionsHeaders)
	if tcol < 0 || fcol < 0 || icol < 0 {
		return nil, fmt.Errorf("header %v must include template, field and instructions columns", header)
	}

	var rows []TemplateRow
	line := 1
	for {
		rec, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		line++
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}

		row := TemplateRow{
			TemplateID:   column(rec, tcol),
			FieldID:      column(rec, fcol),
			Instructions: column(rec, icol),
		}
		if strings.TrimSpace(row.TemplateID) == "" && strings.TrimSpace(row.FieldID) == "" {
			continue
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func findColumn(header []string, names []string) int {
	for i, h := range header {
		h = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")))
		for _, n := range names {
			if h == n {
				return i
			}
		}
	}
	return -1
}

func column(rec []string, i int) string {
	if i < len(rec) {
		return rec[i]
	}
	return ""
}

// Len returns the number of distinct template fields
func (s *TemplateStore) Len() int {
	return len(s.records)
}

// Templates returns the distinct template ids in load order
func (s *TemplateStore) Templates() []string {
	seen := make(map[string]bool)
	var out []string
	for _, r := range s.records {
		if !seen[r.TemplateID] {
			seen[r.TemplateID] = true
			out = append(out, r.TemplateID)
		}
	}
	return out
}

// SearchExact returns records whose composite key contains term (case-insensitive)
func (s *TemplateStore) SearchExact(_ context.Context, term string) ([]model.StructuredRecord, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, nil
	}

	var out []model.StructuredRecord
	for i, key := range s.keys {
		if strings.Contains(key, term) {
			rec := s.records[i]
			rec.MatchKind = model.MatchExact
			rec.RelevanceScore = 1.0
			rec.SearchTerm = term
			out = append(out, rec)
		}
	}
	return out, nil
}

// SearchFuzzy returns records whose key similarity to term is at least threshold
func (s *TemplateStore) SearchFuzzy(_ context.Context, term string, threshold float64) ([]model.StructuredRecord, error) {
	term = strings.ToLower(strings.TrimSpace(term))
	if term == "" {
		return nil, nil
	}

	var out []model.StructuredRecord
	for i, key := range s.keys {
		ratio := SimilarityRatio(term, key)
		if ratio >= threshold {
			rec := s.records[i]
			rec.MatchKind = model.MatchFuzzy
			rec.RelevanceScore = ratio
			rec.SearchTerm = term
			out = append(out, rec)
		}
	}

	sortByRelevance(out)
	return out, nil
}

// Search is the direct single-term lookup: exact hits, or fuzzy hits at the
// direct threshold when nothing matches exactly.
func (s *TemplateStore) Search(ctx context.Context, term string) ([]model.StructuredRecord, error) {
	out, err := s.SearchExact(ctx, term)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		out, err = s.SearchFuzzy(ctx, term, s.directThreshold)
		if err != nil {
			return nil, err
		}
	}

	if len(out) > s.maxResults {
		out = out[:s.maxResults]
	}
	return out, nil
}

func sortByRelevance(recs []model.StructuredRecord) {
	sort.SliceStable(recs, func(i, j int) bool {
		return recs[i].RelevanceScore > recs[j].RelevanceScore
	})
}
