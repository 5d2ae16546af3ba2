package respond

import (
	"fmt"
	"strings"

	"github.com/ppiankov/ragroute/internal/model"
)

const (
	structuredHeader = "=== DOCUMENT FORMAT/TEMPLATE INFORMATION ==="
	passageHeader    = "=== MILITARY PROCEDURE/KNOWLEDGE INFORMATION ==="
)

const templatePrompt = `You are a military document assistant specializing in creating military forms and documents.

Use the provided template information to generate the requested content. Follow the specific formatting instructions provided for each field exactly. Be concise, professional, and use appropriate military language and standards.`

const knowledgePrompt = `You are a military knowledge assistant. Use the provided military document information to answer questions about military procedures, processes, and information.

Be accurate, detailed, and cite the source when possible. Use proper military terminology and provide comprehensive explanations.`

const hybridPrompt = `You are a military document assistant. You specialize in creating military documents using proper formats while incorporating relevant military knowledge.

The template data provides specific formatting instructions for military documents. The reference material provides additional military context and procedures.

When generating documents:
1. Follow the formatting instructions from the template data exactly
2. Incorporate relevant military knowledge and context from the procedures
3. Use appropriate military language, terminology, and standards
4. Be concise, professional, and accurate`

const defaultPrompt = `You are a military assistant. Answer the request using the provided information where it is relevant. Use proper military terminology and be concise, professional, and accurate.`

// SystemPrompt selects the prompt variant for a strategy
func SystemPrompt(name model.StrategyName) string {
	switch name {
	case model.StrategyStructuredOnly:
		return templatePrompt
	case model.StrategyVectorOnly:
		return knowledgePrompt
	case model.StrategyHybrid:
		return hybridPrompt
	default:
		return defaultPrompt
	}
}

// BuildContext renders both evidence lists as one readable block.
// Returns "" when there is no evidence.
func BuildContext(structured []model.StructuredRecord, passages []model.PassageRecord) string {
	var parts []string

	if len(structured) > 0 {
		parts = append(parts, structuredHeader)
		for _, r := range structured {
			parts = append(parts, fmt.Sprintf("Template: %s\nField: %s\nFormat Instructions: %s\n",
				orUnknown(r.TemplateID), orUnknown(r.FieldID), orDefault(r.Instructions, "No instructions")))
		}
	}

	if len(passages) > 0 {
		parts = append(parts, passageHeader)
		for _, p := range passages {
			page := "Unknown"
			if p.Page > 0 {
				page = fmt.Sprintf("%d", p.Page)
			}
			parts = append(parts, fmt.Sprintf("Source: %s (Page %s)\nContent: %s\n",
				orUnknown(p.SourceID), page, p.Text))
		}
	}

	return strings.Join(parts, "\n")
}

// UserPrompt wraps the query with its evidence context
func UserPrompt(query, context string) string {
	if strings.TrimSpace(context) == "" {
		return fmt.Sprintf("I couldn't find specific relevant information for: %s\n\n"+
			"Please provide a general response based on standard military knowledge, "+
			"but note that more specific information might be available with a more targeted query.", query)
	}
	return fmt.Sprintf("Context:\n%s\n\nUser Request: %s", context, query)
}

func orUnknown(s string) string {
	return orDefault(s, "Unknown")
}

func orDefault(s, fallback string) string {
	if strings.TrimSpace(s) == "" {
		return fallback
	}
	return s
}
