package cli

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/ppiankov/ragroute/internal/engine"
	"github.com/ppiankov/ragroute/internal/model"
	"github.com/spf13/cobra"
)

var (
	queryTimeout time.Duration
	outFile      string
)

// queryCmd represents the query command
var queryCmd = &cobra.Command{
	Use:   "query <text>",
	Short: "Route a request, retrieve evidence and generate an answer",
	Long: `Query runs the full pipeline for one request:
- Expand military terminology (ACFT, MDMP, S6, ...)
- Classify intent (document generation, information retrieval, hybrid, unclear)
- Pick a retrieval strategy and consult only the sources it selects
- Rank template fields and passages, then generate a grounded answer

Vague requests get a clarification reply and make no external calls.

Example:
  ragroute query "Write an award bullet for a Soldier who scored 580 on the ACFT"
  ragroute query "What is the role of the S6 during MDMP?" --format json
  ragroute query "Draft a FRAGO" --llm-provider anthropic --out answer.json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runQuery,
}

func init() {
	rootCmd.AddCommand(queryCmd)

	queryCmd.Flags().DurationVar(&queryTimeout, "timeout", 2*time.Minute, "overall query timeout")
	queryCmd.Flags().StringVar(&outFile, "out", "", "also write the JSON payload to this file")
}

func runQuery(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")

	ctx, cancel := context.WithTimeout(context.Background(), queryTimeout)
	defer cancel()

	e, cfg, logger, err := buildEngine(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	if verbose {
		fmt.Fprintf(os.Stderr, "Query:    %s\n", query)
		fmt.Fprintf(os.Stderr, "LLM:      %s/%s\n", cfg.LLM.Provider, cfg.LLM.Model)
		fmt.Fprintf(os.Stderr, "Vector:   %s (%s)\n", cfg.Vector.Provider, cfg.Vector.Collection)
		fmt.Fprintln(os.Stderr)
	}

	payload, err := e.Process(ctx, query)
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if outFile != "" {
		if err := writeJSONFile(outFile, payload); err != nil {
			return err
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outFile)
		}
	}

	return renderPayload(cfg.Output.Format, payload)
}

func renderPayload(format string, payload *model.ResponsePayload) error {
	switch strings.ToLower(format) {
	case "json":
		return engine.RenderJSON(os.Stdout, payload)
	case "", "text":
		return engine.RenderText(os.Stdout, payload, verbose)
	default:
		return fmt.Errorf("unknown output format: %s (supported: text, json)", format)
	}
}

func writeJSONFile(path string, v any) (err error) {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil && err == nil {
			err = fmt.Errorf("close %s: %w", path, closeErr)
		}
	}()

	return engine.RenderJSON(f, v)
}
