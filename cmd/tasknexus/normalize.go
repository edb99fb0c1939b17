package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tasknexus/tasknexus/internal/report"
)

var normalizeCmd = &cobra.Command{
	Use:   "normalize <export>",
	Short: "Print the normalized per-task metrics",
	Long: `Filters out tasks whose points were recorded as zero and flattens the rest
into one metric record per task.

Examples:
  tasknexus normalize tasks.json
  tasknexus normalize tasks.json -f json -o normalized.json`,
	Args: cobra.ExactArgs(1),
	RunE: runNormalize,
}

func init() {
	rootCmd.AddCommand(normalizeCmd)
}

func runNormalize(cmd *cobra.Command, args []string) error {
	svc, bar := newService("Normalizing tasks...")
	n, err := svc.NormalizeFile(cmd.Context(), args[0])
	if err != nil {
		bar.FinishError(err)
		return fmt.Errorf("normalization failed: %w", err)
	}
	bar.FinishSuccess()

	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(report.Tasks(n, formatter.Colored()))
}
