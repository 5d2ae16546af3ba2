// Package terminology holds the domain abbreviation table and the query
// expander that annotates queries with definitions.
package terminology

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/ppiankov/ragroute/internal/model"
	"gopkg.in/yaml.v3"
)

// Entry maps a domain term to its expanded definition
type Entry struct {
	Term       string `yaml:"term" json:"term"`
	Definition string `yaml:"definition" json:"definition"`
}

// Table is an immutable, ordered terminology table. Safe for concurrent reads.
type Table struct {
	entries []Entry
	index   map[string]int
}

// terms must start and end on a word character so \b boundaries apply
var termShape = regexp.MustCompile(`^[a-z0-9](?:.*[a-z0-9])?$`)

// NewTable validates entries and builds a table. Terms are lower-cased;
// duplicates are a configuration error.
func NewTable(entries []Entry) (*Table, error) {
	t := &Table{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}

	for i, e := range entries {
		term := strings.ToLower(strings.TrimSpace(e.Term))
		def := strings.TrimSpace(e.Definition)

		if term == "" || def == "" {
			return nil, &model.ConfigurationError{
				Source: "terminology",
				Cause:  fmt.Errorf("entry %d: term and definition are required", i),
			}
		}
		if !termShape.MatchString(term) {
			return nil, &model.ConfigurationError{
				Source: "terminology",
				Cause:  fmt.Errorf("entry %d: term %q must start and end with a letter or digit", i, term),
			}
		}
		if _, dup := t.index[term]; dup {
			return nil, &model.ConfigurationError{
				Source: "terminology",
				Cause:  fmt.Errorf("duplicate term %q", term),
			}
		}

		t.index[term] = len(t.entries)
		t.entries = append(t.entries, Entry{Term: term, Definition: def})
	}

	return t, nil
}

type tableFile struct {
	Terms []Entry `yaml:"terms"`
}

// LoadTable reads a YAML terminology file of the form:
//
//	terms:
//	  - term: acft
//	    definition: Army Combat Fitness Test
func LoadTable(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &model.ConfigurationError{Source: path, Cause: err}
	}

	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, &model.ConfigurationError{Source: path, Cause: fmt.Errorf("parse yaml: %w", err)}
	}
	if len(f.Terms) == 0 {
		return nil, &model.ConfigurationError{Source: path, Cause: fmt.Errorf("no terms defined")}
	}

	return NewTable(f.Terms)
}

// Entries returns a copy of the entries in definition order
func (t *Table) Entries() []Entry {
	out := make([]Entry, len(t.entries))
	copy(out, t.entries)
	return out
}

// Len returns the number of entries
func (t *Table) Len() int {
	return len(t.entries)
}

// Lookup returns the definition for a term (case-insensitive)
func (t *Table) Lookup(term string) (string, bool) {
	i, ok := t.index[strings.ToLower(strings.TrimSpace(term))]
	if !ok {
		return "", false
	}
	return t.entries[i].Definition, true
}

// position returns the definition-order index of a term
func (t *Table) position(term string) int {
	if i, ok := t.index[term]; ok {
		return i
	}
	return -1
}
