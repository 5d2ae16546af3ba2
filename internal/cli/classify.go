package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/ragroute/internal/engine"
	"github.com/ppiankov/ragroute/internal/terminology"
	"github.com/spf13/cobra"
)

// classifyCmd represents the classify command
var classifyCmd = &cobra.Command{
	Use:   "classify <text>",
	Short: "Show intent scores and the chosen strategy without retrieving anything",
	Long: `Classify runs terminology expansion, intent classification and strategy
resolution only. No data source or generation service is contacted, so it
works offline and is useful for tuning queries.

Example:
  ragroute classify "What is the role of the S6 during MDMP?"
  ragroute classify "help" --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClassify,
}

func init() {
	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var table *terminology.Table
	if cfg.Data.TerminologyPath != "" {
		table, err = terminology.LoadTable(cfg.Data.TerminologyPath)
		if err != nil {
			return err
		}
	}

	e := engine.New(engine.Deps{Table: table, Logger: newLogger(cfg.Output.Verbose)})
	analysis := e.Analyze(strings.Join(args, " "))

	switch strings.ToLower(cfg.Output.Format) {
	case "json":
		return engine.RenderJSON(os.Stdout, analysis)
	case "", "text":
		return engine.RenderAnalysisText(os.Stdout, analysis)
	default:
		return fmt.Errorf("unknown output format: %s (supported: text, json)", cfg.Output.Format)
	}
}
