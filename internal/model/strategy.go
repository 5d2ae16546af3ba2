package model

// StrategyName identifies a retrieval strategy
type StrategyName string

const (
	StrategyStructuredOnly        StrategyName = "structured_only"
	StrategyVectorOnly            StrategyName = "vector_only"
	StrategyHybrid                StrategyName = "hybrid"
	StrategyClarificationRequired StrategyName = "clarification_required"
)

// Tool identifies a retrieval source (or the clarification short-circuit)
type Tool string

const (
	ToolNone          Tool = ""
	ToolStructured    Tool = "csv"           // Template/field instruction store
	ToolPassage       Tool = "pdf"           // Vector-indexed document corpus
	ToolClarification Tool = "clarification" // No retrieval, templated reply
	ToolError         Tool = "error"         // Generation failed
)

// ToolMapping is the pair of tools a strategy selects
type ToolMapping struct {
	Primary   Tool `json:"primary_tool"`
	Secondary Tool `json:"secondary_tool,omitempty"`
}

// Uses reports whether the mapping selects the given tool in either slot
func (m ToolMapping) Uses(tool Tool) bool {
	return tool != ToolNone && (m.Primary == tool || m.Secondary == tool)
}

// StrategyDecision is the resolver output for one query
type StrategyDecision struct {
	StrategyName        StrategyName              `json:"strategy_name"`
	StrategyConfidence  float64                   `json:"strategy_confidence"`
	Tools               ToolMapping               `json:"tools"`
	StrategyScores      map[StrategyName]float64  `json:"per_strategy_scores"`
	SatisfiedConditions map[StrategyName][]string `json:"satisfied_conditions"`
	Reasoning           string                    `json:"reasoning"`
}

// PrimaryTool returns the decision's primary tool
func (d StrategyDecision) PrimaryTool() Tool {
	return d.Tools.Primary
}

// SecondaryTool returns the decision's secondary tool (ToolNone when absent)
func (d StrategyDecision) SecondaryTool() Tool {
	return d.Tools.Secondary
}
