// Package strategy selects a retrieval strategy by evaluating independent
// rule sets against an intent analysis.
package strategy

import (
	"fmt"
	"math"
	"strings"

	"github.com/ppiankov/ragroute/internal/model"
	"go.uber.org/zap"
)

// conditionWeight is added to a strategy's raw score per satisfied condition
const conditionWeight = 0.25

// Resolver evaluates the strategy table. Stateless per call; safe for
// concurrent use.
type Resolver struct {
	strategies []Strategy
	logger     *zap.Logger
}

// NewResolver creates a resolver over the given strategies (built-in table if empty)
func NewResolver(strategies []Strategy, logger *zap.Logger) *Resolver {
	if len(strategies) == 0 {
		strategies = DefaultStrategies()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Resolver{
		strategies: strategies,
		logger:     logger.With(zap.String("component", "strategy_resolver")),
	}
}

// Strategies returns the configured table in tie-break order
func (r *Resolver) Strategies() []Strategy {
	return r.strategies
}

// Resolve scores every strategy and returns the winner with its tool mapping.
// A condition that fails to evaluate counts as not satisfied.
func (r *Resolver) Resolve(query string, analysis model.IntentAnalysis) model.StrategyDecision {
	scores := make(map[model.StrategyName]float64, len(r.strategies))
	satisfied := make(map[model.StrategyName][]string, len(r.strategies))

	bestIdx := -1
	bestScore := -1.0

	for i, s := range r.strategies {
		matched := make([]string, 0, len(s.Conditions))
		for _, c := range s.Conditions {
			ok, err := Evaluate(c, analysis.Scores, query)
			if err != nil {
				condErr := &model.ConditionEvaluationError{
					Strategy:  s.Name,
					Condition: c.ConditionName(),
					Cause:     err,
				}
				r.logger.Debug("condition evaluation failed", zap.Error(condErr))
				continue
			}
			if ok {
				matched = append(matched, c.ConditionName())
			}
		}

		raw := float64(len(matched)) * conditionWeight
		if raw > 0 {
			raw += s.ConfidenceBoost
		}
		score := round(math.Max(0, math.Min(1, raw)))

		scores[s.Name] = score
		satisfied[s.Name] = matched

		if score > bestScore {
			bestIdx, bestScore = i, score
		}
	}

	if bestIdx < 0 {
		return model.StrategyDecision{
			StrategyScores:      scores,
			SatisfiedConditions: satisfied,
			Reasoning:           "no strategies configured",
		}
	}

	winner := r.strategies[bestIdx]
	decision := model.StrategyDecision{
		StrategyName:        winner.Name,
		StrategyConfidence:  bestScore,
		Tools:               winner.Tools,
		StrategyScores:      scores,
		SatisfiedConditions: satisfied,
		Reasoning:           reasoning(winner.Name, satisfied[winner.Name], bestScore),
	}

	r.logger.Debug("strategy resolved",
		zap.String("strategy", string(decision.StrategyName)),
		zap.Float64("confidence", decision.StrategyConfidence),
		zap.String("primary_tool", string(decision.PrimaryTool())),
		zap.String("secondary_tool", string(decision.SecondaryTool())),
	)

	return decision
}

func reasoning(name model.StrategyName, matched []string, score float64) string {
	if len(matched) == 0 {
		return fmt.Sprintf("%s: no conditions satisfied (score %.2f)", name, score)
	}
	return fmt.Sprintf("%s: %s (score %.2f)", name, strings.Join(matched, ", "), score)
}

func round(v float64) float64 {
	return math.Round(v*10000) / 10000
}
