package model

import (
	"errors"
	"fmt"
)

// ErrEmptyQuery is returned when a blank query reaches the engine
var ErrEmptyQuery = errors.New("query cannot be empty")

// ConfigurationError means a static table or data file failed to load.
// Fatal at startup.
type ConfigurationError struct {
	Source string // File or table name
	Cause  error
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("configuration error (%s): %v", e.Source, e.Cause)
}

func (e *ConfigurationError) Unwrap() error { return e.Cause }

// AdapterError means a retrieval adapter call failed. The orchestrator
// recovers it by using an empty result set for that source.
type AdapterError struct {
	Adapter string // "structured" or "vector"
	Op      string
	Cause   error
}

func (e *AdapterError) Error() string {
	return fmt.Sprintf("%s adapter %s: %v", e.Adapter, e.Op, e.Cause)
}

func (e *AdapterError) Unwrap() error { return e.Cause }

// ConditionEvaluationError means a strategy predicate failed. The resolver
// treats the condition as not satisfied.
type ConditionEvaluationError struct {
	Strategy  StrategyName
	Condition string
	Cause     error
}

func (e *ConditionEvaluationError) Error() string {
	return fmt.Sprintf("condition %s/%s: %v", e.Strategy, e.Condition, e.Cause)
}

func (e *ConditionEvaluationError) Unwrap() error { return e.Cause }

// GenerationError means the completion call failed. Surfaced as an
// error-kind ResponsePayload, never returned to the caller.
type GenerationError struct {
	Provider string
	Cause    error
}

func (e *GenerationError) Error() string {
	return fmt.Sprintf("generation (%s): %v", e.Provider, e.Cause)
}

func (e *GenerationError) Unwrap() error { return e.Cause }

// IsRecoverable reports whether the core handles err locally instead of failing the query
func IsRecoverable(err error) bool {
	var adapterErr *AdapterError
	var condErr *ConditionEvaluationError
	var genErr *GenerationError
	return errors.As(err, &adapterErr) || errors.As(err, &condErr) || errors.As(err, &genErr)
}
