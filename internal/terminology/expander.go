package terminology

import (
	"regexp"
	"sort"
	"strings"
)

// Match is one terminology hit in a lower-cased text
type Match struct {
	Term  string
	Start int
	End   int
}

// Expander annotates queries with terminology definitions.
// Overlapping terms resolve longest-match-first: a span consumed by a longer
// term is never re-matched by a shorter one.
type Expander struct {
	table   *Table
	pattern *regexp.Regexp
}

// NewExpander builds an expander over the given table
func NewExpander(table *Table) *Expander {
	if table == nil {
		table = DefaultTable()
	}

	terms := make([]string, 0, table.Len())
	for _, e := range table.entries {
		terms = append(terms, e.Term)
	}
	// RE2 alternation is leftmost-first, so longer terms must come first
	sort.SliceStable(terms, func(i, j int) bool {
		return len(terms[i]) > len(terms[j])
	})

	var pattern *regexp.Regexp
	if len(terms) > 0 {
		quoted := make([]string, len(terms))
		for i, term := range terms {
			quoted[i] = regexp.QuoteMeta(term)
		}
		pattern = regexp.MustCompile(`\b(?:` + strings.Join(quoted, "|") + `)\b`)
	}

	return &Expander{table: table, pattern: pattern}
}

// Table returns the underlying terminology table
func (e *Expander) Table() *Table {
	return e.table
}

// Matches returns non-overlapping whole-word term matches in the lower-cased text
func (e *Expander) Matches(text string) []Match {
	if e.pattern == nil {
		return nil
	}

	lower := strings.ToLower(text)
	locs := e.pattern.FindAllStringIndex(lower, -1)
	matches := make([]Match, 0, len(locs))
	for _, loc := range locs {
		matches = append(matches, Match{
			Term:  lower[loc[0]:loc[1]],
			Start: loc[0],
			End:   loc[1],
		})
	}
	return matches
}

// Expand lower-cases the query and inserts "<term> (<definition>)" for every
// term match. A term already followed by its own definition is left alone, and
// terms inside parentheses are not expanded, so expanding twice is a no-op.
func (e *Expander) Expand(query string) string {
	lower := strings.ToLower(query)
	matches := e.Matches(lower)
	if len(matches) == 0 {
		return lower
	}

	var b strings.Builder
	prev := 0
	depth, scanned := 0, 0
	for _, m := range matches {
		depth = parenDepth(lower[scanned:m.Start], depth)
		scanned = m.Start
		if depth > 0 {
			continue
		}

		def, _ := e.table.Lookup(m.Term)
		b.WriteString(lower[prev:m.End])
		prev = m.End

		if strings.HasPrefix(lower[m.End:], " ("+strings.ToLower(def)+")") {
			continue
		}
		b.WriteString(" (")
		b.WriteString(def)
		b.WriteString(")")
	}
	b.WriteString(lower[prev:])

	return b.String()
}

func parenDepth(s string, depth int) int {
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			if depth > 0 {
				depth--
			}
		}
	}
	return depth
}

// TermsFound returns the distinct matched terms in table-definition order
func (e *Expander) TermsFound(text string) []string {
	matches := e.Matches(text)
	if len(matches) == 0 {
		return []string{}
	}

	seen := make(map[string]bool, len(matches))
	for _, m := range matches {
		seen[m.Term] = true
	}

	found := make([]string, 0, len(seen))
	for term := range seen {
		found = append(found, term)
	}
	sort.Slice(found, func(i, j int) bool {
		return e.table.position(found[i]) < e.table.position(found[j])
	})
	return found
}
