package cli

import (
	"fmt"

	"github.com/ppiankov/ragroute/internal/engine"
	"github.com/ppiankov/ragroute/internal/respond"
	"github.com/spf13/cobra"
)

// examplesCmd represents the examples command
var examplesCmd = &cobra.Command{
	Use:   "examples",
	Short: "List example queries and where they route",
	Long:  `Print the built-in example queries with the tool each is expected to use and the tool it actually routes to.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		e := engine.New(engine.Deps{})

		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println("  Example Queries")
		fmt.Println("═══════════════════════════════════════════════════════════")
		fmt.Println()

		for _, ex := range respond.ExampleQueries {
			a := e.Analyze(ex.Query)
			mark := "✓"
			if a.Decision.PrimaryTool() != ex.ExpectedTool {
				mark = "✗"
			}

			fmt.Printf("%s %s\n", mark, ex.Name)
			fmt.Printf("  Query:     %s\n", ex.Query)
			fmt.Printf("  Expected:  %s\n", ex.ExpectedTool)
			fmt.Printf("  Routed:    %s via %s (%.2f)\n", a.Decision.PrimaryTool(), a.Decision.StrategyName, a.Decision.StrategyConfidence)
			fmt.Println()
		}

		fmt.Println("Try one with:")
		fmt.Printf("  ragroute query %q\n", respond.ExampleQueries[0].Query)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(examplesCmd)
}
