package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ppiankov/ragroute/internal/engine"
	"github.com/spf13/cobra"
)

// templatesCmd represents the templates command
var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "Inspect the template dataset",
	Long: `Inspect the template dataset used for structured retrieval.

The search subcommand looks up a single term directly: exact matches on
"template|field" first, then fuzzy matches at retrieval.direct_fuzzy_threshold
when nothing matches exactly.`,
}

var templatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the templates in the dataset",
	Args:  cobra.NoArgs,
	RunE:  runTemplatesList,
}

var templatesSearchCmd = &cobra.Command{
	Use:   "search <term>",
	Short: "Search template fields for a single term",
	Long: `Search template fields for a single term without classification.

Example:
  ragroute templates search "award"
  ragroute templates search "situation" --format json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTemplatesSearch,
}

func init() {
	rootCmd.AddCommand(templatesCmd)
	templatesCmd.AddCommand(templatesListCmd)
	templatesCmd.AddCommand(templatesSearchCmd)
}

func runTemplatesList(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	templates, err := engine.LoadTemplates(cfg)
	if err != nil {
		return err
	}

	if strings.EqualFold(cfg.Output.Format, "json") {
		return engine.RenderJSON(os.Stdout, templates.Templates())
	}

	fmt.Printf("%d template(s), %d field(s) in %s\n\n", len(templates.Templates()), templates.Len(), cfg.Data.TemplatesPath)
	for _, id := range templates.Templates() {
		fmt.Printf("  %s\n", id)
	}
	return nil
}

func runTemplatesSearch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	templates, err := engine.LoadTemplates(cfg)
	if err != nil {
		return err
	}

	term := strings.Join(args, " ")
	hits, err := templates.Search(context.Background(), term)
	if err != nil {
		return err
	}

	switch strings.ToLower(cfg.Output.Format) {
	case "json":
		return engine.RenderJSON(os.Stdout, hits)
	case "", "text":
		return engine.RenderTemplateHits(os.Stdout, term, hits)
	default:
		return fmt.Errorf("unknown output format: %s (supported: text, json)", cfg.Output.Format)
	}
}
