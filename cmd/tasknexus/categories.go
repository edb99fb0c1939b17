package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tasknexus/tasknexus/internal/report"
	"github.com/tasknexus/tasknexus/internal/service/analysis"
	"github.com/tasknexus/tasknexus/pkg/analyzer/category"
	"github.com/tasknexus/tasknexus/pkg/analyzer/trend"
)

var categoriesCmd = &cobra.Command{
	Use:     "categories <export>",
	Aliases: []string{"cat", "heatmap"},
	Short:   "Show category counts, the workload heatmap and point bars",
	Long: `Groups tasks by category and focus area. A task with several of either is
counted in every pair.

Heatmap cells hold workload classes (1 small, 2 medium, 3 large) either
averaged or as the most common class of the pair.

Examples:
  tasknexus categories tasks.json
  tasknexus categories tasks.json --mode most_common`,
	Args: cobra.ExactArgs(1),
	RunE: runCategories,
}

func init() {
	categoriesCmd.Flags().String("mode", "", "Heatmap mode: average or most_common (default from config)")

	rootCmd.AddCommand(categoriesCmd)
}

// analysisOptions reads the --mode and --min-size flags where the command
// defines them.
func analysisOptions(cmd *cobra.Command) ([]analysis.Option, error) {
	var opts []analysis.Option
	if f := cmd.Flags().Lookup("mode"); f != nil && f.Value.String() != "" {
		mode, err := category.ParseHeatmapMode(f.Value.String())
		if err != nil {
			return nil, err
		}
		opts = append(opts, analysis.WithHeatmapMode(mode))
	}
	if n, err := cmd.Flags().GetInt("min-size"); err == nil {
		if err := trend.CheckMinGroupSize(n); err != nil {
			return nil, fmt.Errorf("--min-size: %w", err)
		}
		if n > 0 {
			opts = append(opts, analysis.WithMinGroupSize(n))
		}
	}
	return opts, nil
}

func runCategories(cmd *cobra.Command, args []string) error {
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

	formatter, err := newFormatter(cmd)
	if err != nil {
		return err
	}
	defer formatter.Close()

	return formatter.Output(report.Categories(svc.Categories(n), formatter.Colored()))
}
