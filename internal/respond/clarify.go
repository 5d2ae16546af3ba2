package respond

import (
	"fmt"
	"strings"

	"github.com/ppiankov/ragroute/internal/model"
	"github.com/ppiankov/ragroute/internal/terminology"
)

// hintThreshold is the score above which a category counts as a partial signal
const hintThreshold = 0.1

// ExampleQueries are offered in clarification replies and by the examples command
var ExampleQueries = []Example{
	{
		Name:         "Award generation",
		Query:        "Write an award bullet for a Soldier who scored 580 on the ACFT",
		ExpectedTool: model.ToolStructured,
	},
	{
		Name:         "Information retrieval",
		Query:        "What is the role of the S6 during MDMP?",
		ExpectedTool: model.ToolPassage,
	},
	{
		Name:         "Hybrid query",
		Query:        "Write a situation paragraph for my infantry battalion's upcoming mission at NTC",
		ExpectedTool: model.ToolStructured,
	},
}

// Example is a canned query with the tool it is expected to route to
type Example struct {
	Name         string     `json:"name"`
	Query        string     `json:"query"`
	ExpectedTool model.Tool `json:"expected_tool"`
}

// Clarification builds the templated reply for queries too vague to route.
// It never calls out and depends only on its inputs.
func Clarification(query string, analysis model.IntentAnalysis, table *terminology.Table) string {
	var b strings.Builder

	fmt.Fprintf(&b, "I'd be happy to help with %q. To provide the most accurate assistance, could you clarify:\n\n", query)

	doc := analysis.Scores[model.IntentDocumentGeneration] > hintThreshold
	info := analysis.Scores[model.IntentInformationRetrieval] > hintThreshold

	switch {
	case doc && info:
		b.WriteString("- Do you want to CREATE a document, or LEARN about a procedure first? Your request mentions both.\n")
		b.WriteString("- Which form or document (for example a DA638 award or an NCOER) is involved?\n")
	case doc:
		b.WriteString("- It sounds like you want to CREATE a document. Which form or document (for example a DA638 award or an NCOER) do you need?\n")
		b.WriteString("- Which field or section should I help with?\n")
	case info:
		b.WriteString("- It sounds like you are looking for INFORMATION. Which procedure, process, or role are you asking about?\n")
		b.WriteString("- Is there a specific unit, staff section, or phase involved?\n")
	default:
		b.WriteString("- Are you looking to CREATE/WRITE a document (like an award citation, evaluation, or form)?\n")
		b.WriteString("- Are you seeking INFORMATION about military procedures, processes, or roles?\n")
		b.WriteString("- Is this related to a specific form (like DA638) or military process (like MDMP)?\n")
	}

	if len(analysis.TermsFound) > 0 {
		b.WriteString("\nI recognized these terms:\n")
		for _, term := range analysis.TermsFound {
			if def, ok := lookup(table, term); ok {
				fmt.Fprintf(&b, "- %s: %s\n", strings.ToUpper(term), def)
			} else {
				fmt.Fprintf(&b, "- %s\n", strings.ToUpper(term))
			}
		}
	}

	b.WriteString("\nFor example, you could ask:\n")
	for _, ex := range ExampleQueries {
		fmt.Fprintf(&b, "- %q\n", ex.Query)
	}

	b.WriteString("\nPlease provide a bit more detail so I can give you the best possible response.")
	return b.String()
}

func lookup(table *terminology.Table, term string) (string, bool) {
	if table == nil {
		return "", false
	}
	return table.Lookup(term)
}
