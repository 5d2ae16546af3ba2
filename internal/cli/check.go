package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/ppiankov/ragroute/internal/engine"
	"github.com/spf13/cobra"
)

var checkTimeout time.Duration

// checkCmd represents the check command
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Check configuration, data files and external services",
	Long: `Check verifies that everything a query needs is in place:
- API keys for the generation and embedding services
- Template and terminology data files
- Vector store reachability
- Generation provider availability`,
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().DurationVar(&checkTimeout, "timeout", 30*time.Second, "timeout for service checks")
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	fmt.Println("Configuration:")
	issues := engine.CheckConfig(cfg)
	printIssues(issues)

	ctx, cancel := context.WithTimeout(context.Background(), checkTimeout)
	defer cancel()

	fmt.Println()
	fmt.Println("Services:")
	e, err := engine.FromConfig(ctx, cfg, newLogger(cfg.Output.Verbose))
	if err != nil {
		fmt.Printf("  ✗ %v\n", err)
		issues = append(issues, err.Error())
	} else {
		serviceIssues := e.CheckServices(ctx)
		printIssues(serviceIssues)
		issues = append(issues, serviceIssues...)
	}

	fmt.Println()
	if len(issues) > 0 {
		return fmt.Errorf("%d issue(s) found", len(issues))
	}
	fmt.Println("✓ All checks passed")
	return nil
}

func printIssues(issues []string) {
	if len(issues) == 0 {
		fmt.Println("  ✓ OK")
		return
	}
	for _, issue := range issues {
		fmt.Printf("  ✗ %s\n", issue)
	}
}
