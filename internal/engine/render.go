package engine

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/ppiankov/ragroute/internal/model"
)

const rule = "═══════════════════════════════════════════════════════════"

var intentOrder = []model.IntentName{
	model.IntentDocumentGeneration,
	model.IntentInformationRetrieval,
	model.IntentHybridRequest,
	model.IntentClarificationNeeded,
}

// RenderJSON writes v as indented JSON. Map keys come out sorted, so equal
// values render byte-identically.
func RenderJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encode JSON: %w", err)
	}
	return nil
}

// RenderText writes a human-readable payload
func RenderText(w io.Writer, p *model.ResponsePayload, verbose bool) error {
	var b strings.Builder

	fmt.Fprintln(&b, rule)
	fmt.Fprintf(&b, "  Answer (tool: %s, confidence: %.2f)\n", p.ToolUsed, p.Confidence)
	fmt.Fprintln(&b, rule)
	fmt.Fprintln(&b)
	fmt.Fprintln(&b, p.Answer)
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "Intent:    %s (%s confidence)\n", p.Classification.PrimaryIntent, p.Classification.Confidence)
	fmt.Fprintf(&b, "Strategy:  %s\n", p.Classification.Strategy)
	fmt.Fprintf(&b, "Reasoning: %s\n", p.Classification.Reasoning)
	fmt.Fprintf(&b, "Sources:   %d template field(s), %d passage(s)\n",
		p.SourcesUsed.StructuredCount, p.SourcesUsed.PassageCount)

	if verbose {
		if len(p.Sources.StructuredResults) > 0 {
			fmt.Fprintln(&b)
			fmt.Fprintln(&b, "Template fields:")
			for _, r := range p.Sources.StructuredResults {
				fmt.Fprintf(&b, "  - %s | %s (%s, %.2f)\n", r.TemplateID, r.FieldID, r.MatchKind, r.RelevanceScore)
			}
		}
		if len(p.Sources.PassageResults) > 0 {
			fmt.Fprintln(&b)
			fmt.Fprintln(&b, "Passages:")
			for _, s := range p.Sources.PassageResults {
				fmt.Fprintf(&b, "  - %s p.%d (%.2f): %s\n", s.Source, s.Page, s.RelevanceScore, s.Text)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// RenderAnalysisText writes the classification and strategy breakdown
func RenderAnalysisText(w io.Writer, a Analysis) error {
	var b strings.Builder

	fmt.Fprintf(&b, "Query:          %s\n", a.Query)
	fmt.Fprintf(&b, "Expanded:       %s\n", a.Intent.ExpandedQuery)
	if len(a.Intent.TermsFound) > 0 {
		fmt.Fprintf(&b, "Terms found:    %s\n", strings.Join(a.Intent.TermsFound, ", "))
	}
	fmt.Fprintln(&b)

	fmt.Fprintf(&b, "Primary intent: %s (%s confidence)\n", a.Intent.PrimaryIntent, a.Intent.Confidence)
	for _, name := range intentNames(a.Intent.Scores) {
		fmt.Fprintf(&b, "  %-24s %.2f\n", name, a.Intent.Scores[name])
	}
	fmt.Fprintln(&b)

	d := a.Decision
	fmt.Fprintf(&b, "Strategy:       %s (%.2f)\n", d.StrategyName, d.StrategyConfidence)
	fmt.Fprintf(&b, "Tools:          %s", orNone(d.Tools.Primary))
	if d.Tools.Secondary != model.ToolNone {
		fmt.Fprintf(&b, " + %s", d.Tools.Secondary)
	}
	fmt.Fprintln(&b)
	for _, name := range strategyNames(d.StrategyScores) {
		fmt.Fprintf(&b, "  %-24s %.2f", name, d.StrategyScores[name])
		if conds := d.SatisfiedConditions[name]; len(conds) > 0 {
			fmt.Fprintf(&b, "  [%s]", strings.Join(conds, ", "))
		}
		fmt.Fprintln(&b)
	}
	fmt.Fprintf(&b, "Reasoning:      %s\n", d.Reasoning)

	_, err := io.WriteString(w, b.String())
	return err
}

func intentNames(scores model.ScoreVector) []model.IntentName {
	names := make([]model.IntentName, 0, len(scores))
	known := make(map[model.IntentName]bool, len(intentOrder))
	for _, n := range intentOrder {
		known[n] = true
		if _, ok := scores[n]; ok {
			names = append(names, n)
		}
	}

	var extra []model.IntentName
	for n := range scores {
		if !known[n] {
			extra = append(extra, n)
		}
	}
	sort.Slice(extra, func(i, j int) bool { return extra[i] < extra[j] })
	return append(names, extra...)
}

// strategyNames orders by score, highest first, then by name
func strategyNames(scores map[model.StrategyName]float64) []model.StrategyName {
	names := make([]model.StrategyName, 0, len(scores))
	for n := range scores {
		names = append(names, n)
	}
	sort.Slice(names, func(i, j int) bool {
		if scores[names[i]] != scores[names[j]] {
			return scores[names[i]] > scores[names[j]]
		}
		return names[i] < names[j]
	})
	return names
}

func orNone(t model.Tool) string {
	if t == model.ToolNone {
		return "none"
	}
	return string(t)
}

// RenderTemplateHits writes the result of a direct template search
func RenderTemplateHits(w io.Writer, term string, hits []model.StructuredRecord) error {
	var b strings.Builder

	if len(hits) == 0 {
		fmt.Fprintf(&b, "No template fields match %q\n", term)
	} else {
		fmt.Fprintf(&b, "Search: %q (%d match(es))\n\n", term, len(hits))
		for _, r := range hits {
			fmt.Fprintf(&b, "  %s | %s (%s, %.2f)\n", r.TemplateID, r.FieldID, r.MatchKind, r.RelevanceScore)
			if r.Instructions != "" {
				fmt.Fprintf(&b, "      %s\n", r.Instructions)
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}
