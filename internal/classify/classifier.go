// Package classify scores queries against intent categories using weighted
// indicator-phrase matching.
package classify

import (
	"math"
	"sort"
	"strings"

	"github.com/ppiankov/ragroute/internal/model"
	"github.com/ppiankov/ragroute/internal/terminology"
)

const (
	termBonusPerTerm = 0.1
	termBonusCap     = 0.3

	highMarginThreshold = 0.2 // s0 - s1 needed for high confidence
	soloHighThreshold   = 0.6 // s0 needed for high confidence with a single nonzero score
	mediumThreshold     = 0.4
)

// Classifier assigns an IntentAnalysis to a query. It holds only immutable
// configuration and is safe for concurrent use.
type Classifier struct {
	categories []model.IntentCategory
	expander   *terminology.Expander
}

// New creates a classifier. Nil arguments fall back to the built-in
// categories and terminology.
func New(categories []model.IntentCategory, expander *terminology.Expander) *Classifier {
	if len(categories) == 0 {
		categories = DefaultCategories()
	}
	if expander == nil {
		expander = terminology.NewExpander(nil)
	}
	return &Classifier{categories: categories, expander: expander}
}

// Categories returns the configured categories in tie-break order
func (c *Classifier) Categories() []model.IntentCategory {
	return c.categories
}

// Expander returns the query expander used for terminology detection
func (c *Classifier) Expander() *terminology.Expander {
	return c.expander
}

// Classify scores the query and picks the primary intent
func (c *Classifier) Classify(query string) model.IntentAnalysis {
	lower := strings.ToLower(query)
	terms := c.expander.TermsFound(lower)
	bonus := math.Min(float64(len(terms))*termBonusPerTerm, termBonusCap)

	scores := make(model.ScoreVector, len(c.categories))
	for _, cat := range c.categories {
		scores[cat.Name] = round(clamp(scoreCategory(lower, cat) + bonus))
	}

	primary := c.primaryIntent(scores)

	return model.IntentAnalysis{
		PrimaryIntent: primary,
		Scores:        scores,
		Confidence:    confidence(scores),
		ExpandedQuery: c.expander.Expand(query),
		TermsFound:    terms,
	}
}

// scoreCategory sums capped group sub-scores, weighted by the category weight
func scoreCategory(lower string, cat model.IntentCategory) float64 {
	total := 0.0
	for _, g := range cat.IndicatorGroups {
		count := CountMatches(lower, g.Phrases)
		sub := math.Min(float64(count)*g.PerMatchWeight, g.PerGroupCap)
		total += sub * cat.CategoryWeight
	}
	return total
}

// primaryIntent returns the highest-scoring category; ties keep declaration order
func (c *Classifier) primaryIntent(scores model.ScoreVector) model.IntentName {
	var best model.IntentName
	bestScore := -1.0
	for _, cat := range c.categories {
		if s := scores[cat.Name]; s > bestScore {
			best, bestScore = cat.Name, s
		}
	}
	return best
}

func confidence(scores model.ScoreVector) model.Confidence {
	values := make([]float64, 0, len(scores))
	nonzero := 0
	for _, s := range scores {
		values = append(values, s)
		if s > 0 {
			nonzero++
		}
	}
	if len(values) == 0 {
		return model.ConfidenceLow
	}
	sort.Sort(sort.Reverse(sort.Float64Slice(values)))

	s0 := values[0]
	s1 := 0.0
	if len(values) > 1 {
		s1 = values[1]
	}

	if nonzero <= 1 {
		if s0 >= soloHighThreshold {
			return model.ConfidenceHigh
		}
	} else if round(s0-s1) >= highMarginThreshold {
		return model.ConfidenceHigh
	}

	if s0 >= mediumThreshold {
		return model.ConfidenceMedium
	}
	return model.ConfidenceLow
}

func clamp(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// round keeps four decimals so repeated float sums compare stably
func round(v float64) float64 {
	return math.Round(v*10000) / 10000
}
