package strategy

import (
	"fmt"
	"strings"

	"github.com/ppiankov/ragroute/internal/classify"
	"github.com/ppiankov/ragroute/internal/model"
)

// Condition is a named predicate in a strategy's rule set. It is either a
// ScoreCondition or a TextCondition; dispatch happens on the concrete type.
type Condition interface {
	ConditionName() string
	condition()
}

// ScoreCondition is evaluated against the classifier's score vector
type ScoreCondition struct {
	Name string
	Fn   func(scores model.ScoreVector) (bool, error)
}

// TextCondition is evaluated against the raw query
type TextCondition struct {
	Name string
	Fn   func(query string) (bool, error)
}

func (c ScoreCondition) ConditionName() string { return c.Name }
func (c TextCondition) ConditionName() string { return c.Name }

func (ScoreCondition) condition() {}
func (TextCondition) condition() {}

// Evaluate runs one condition. Errors and panics come back as an error
// and a false result.
func Evaluate(c Condition, scores model.ScoreVector, query string) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	switch c := c.(type) {
	case ScoreCondition:
		if c.Fn == nil {
			return false, fmt.Errorf("no predicate")
		}
		return c.Fn(scores)
	case TextCondition:
		if c.Fn == nil {
			return false, fmt.Errorf("no predicate")
		}
		return c.Fn(query)
	default:
		return false, fmt.Errorf("unsupported condition type %T", c)
	}
}

// ScoreAtLeast is satisfied when the named score is >= threshold
func ScoreAtLeast(name string, intent model.IntentName, threshold float64) ScoreCondition {
	return ScoreCondition{
		Name: name,
		Fn: func(scores model.ScoreVector) (bool, error) {
			s, ok := scores[intent]
			if !ok {
				return false, fmt.Errorf("score %q missing", intent)
			}
			return s >= threshold, nil
		},
	}
}

// ScoreBelow is satisfied when the named score is < threshold
func ScoreBelow(name string, intent model.IntentName, threshold float64) ScoreCondition {
	return ScoreCondition{
		Name: name,
		Fn: func(scores model.ScoreVector) (bool, error) {
			s, ok := scores[intent]
			if !ok {
				return false, fmt.Errorf("score %q missing", intent)
			}
			return s < threshold, nil
		},
	}
}

// TextContainsAny is satisfied when the lower-cased query contains any phrase
func TextContainsAny(name string, phrases []string) TextCondition {
	return TextCondition{
		Name: name,
		Fn: func(query string) (bool, error) {
			return classify.ContainsAny(strings.ToLower(query), phrases), nil
		},
	}
}

// TextContainsNone is satisfied when the lower-cased query contains no phrase
func TextContainsNone(name string, phrases []string) TextCondition {
	return TextCondition{
		Name: name,
		Fn: func(query string) (bool, error) {
			return !classify.ContainsAny(strings.ToLower(query), phrases), nil
		},
	}
}
