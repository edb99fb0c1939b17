package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tasknexus/tasknexus/internal/report"
)

var analyzeCmd = &cobra.Command{
	Use:     "analyze <export>",
	Aliases: []string{"a"},
	Short:   "Run the full analysis: counts, heatmap, bars and trends",
	Long: `Normalizes a task export and prints every report: category and focus-area
counts, the workload heatmap, done/expected point bars and trend fits for
each category-focus group.

Examples:
  tasknexus analyze tasks.json
  tasknexus analyze tasks.yaml -f json -o report.json
  tasknexus analyze tasks.jsonl --mode most_common`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().String("mode", "", "Heatmap mode: average or most_common (default from config)")
	analyzeCmd.Flags().Int("min-size", 0, "Minimum tasks in a group for a trend fit, at least 3 (default from config)")

	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	opts, err := analysisOptions(cmd)
	if err != nil {
		return err
	}

	svc, bar := newService("Normalizing tasks...", opts...)
	result, err := svc.RunFile(cmd.Context(), args[0])
	if err != nil {
		bar.FinishError(err)
		return fmt.Errorf("analysis failed: %w", err)
	}
	bar.FinishSuccess()

	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(report.Full(result, formatter.Colored()))
}
