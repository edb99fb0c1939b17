package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tasknexus/tasknexus/internal/report"
	"github.com/tasknexus/tasknexus/internal/service/analysis"
	"github.com/tasknexus/tasknexus/pkg/analyzer/workload"
)

var workloadCmd = &cobra.Command{
	Use:   "workload <distribution.json>",
	Short: "Summarize a captured task distribution per assignee",
	Long: `Reads a distribution response (a JSON object mapping assignee ids to their
tasks, each with best_class_estimated) and totals the estimated days per
assignee.

Examples:
  tasknexus workload distribution.json
  tasknexus workload distribution.json --assignee ana --assignee bo`,
	Args: cobra.ExactArgs(1),
	RunE: runWorkload,
}

func init() {
	workloadCmd.Flags().StringSlice("assignee", nil, "Only summarize these assignees")

	rootCmd.AddCommand(workloadCmd)
}

func runWorkload(cmd *cobra.Command, args []string) error {
	assignees, _ := cmd.Flags().GetStringSlice("assignee")

	d, err := workload.NewStaticDistributorFromFile(args[0])
	if err != nil {
		return err
	}

	svc := analysis.New(analysis.WithConfig(cfg))
	summary, err := svc.Workload(cmd.Context(), d, workload.Request{Assignees: assignees})
	if err != nil {
		return fmt.Errorf("workload summary failed: %w", err)
	}

	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(report.Workload(summary, formatter.Colored()))
}
