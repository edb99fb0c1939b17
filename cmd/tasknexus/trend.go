package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/tasknexus/tasknexus/internal/output"
	"github.com/tasknexus/tasknexus/internal/report"
)

var trendCmd = &cobra.Command{
	Use:   "trend <export>",
	Short: "Fit burned-point trends per category-focus group",
	Long: `Fits a linear regression of burned points over creation time for every
category-focus group with enough tasks. Groups are ordered largest first
and shown a page at a time.

Examples:
  tasknexus trend tasks.json
  tasknexus trend tasks.json --page 2 --per-page 4
  tasknexus trend tasks.json --min-size 5`,
	Args: cobra.ExactArgs(1),
	RunE: runTrend,
}

func init() {
	trendCmd.Flags().Int("page", 1, "Page of groups to show (1-based)")
	trendCmd.Flags().Int("per-page", 0, "Groups per page (default from config)")
	trendCmd.Flags().Int("min-size", 0, "Minimum tasks in a group for a trend fit, at least 3 (default from config)")

	rootCmd.AddCommand(trendCmd)
}

func runTrend(cmd *cobra.Command, args []string) error {
	page, _ := cmd.Flags().GetInt("page")
	perPage, _ := cmd.Flags().GetInt("per-page")
	if page < 1 {
		return fmt.Errorf("--page must be a positive integer (got %d)", page)
	}
	if perPage < 0 {
		return fmt.Errorf("--per-page must not be negative (got %d)", perPage)
	}

	opts, err := analysisOptions(cmd)
	if err != nil {
		return err
	}

	svc, bar := newService("Normalizing tasks...", opts...)
	n, err := svc.NormalizeFile(cmd.Context(), args[0])
	if err != nil {
		bar.FinishError(err)
		return fmt.Errorf("analysis failed: %w", err)
	}
	bar.FinishSuccess()

	p, err := svc.TrendPage(cmd.Context(), n, page, perPage)
	if err != nil {
		return fmt.Errorf("trend analysis failed: %w", err)
	}

	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	defer formatter.Close()

	if p.TotalGroups == 0 && formatter.Format() == output.FormatText {
		color.Yellow("No group has enough tasks for a trend fit")
		return nil
	}
	return formatter.Output(report.Trends(p, formatter.Colored()))
}
