package main

import (
	"context"
	"errors"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tasknexus/tasknexus/internal/output"
	"github.com/tasknexus/tasknexus/internal/report"
	"github.com/tasknexus/tasknexus/internal/service/analysis"
	"github.com/tasknexus/tasknexus/internal/watch"
)

var watchCmd = &cobra.Command{
	Use:   "watch <export>",
	Short: "Re-run the full analysis whenever the export changes",
	Long: `Watches a task export and prints a fresh analysis after every change.
Bursts of writes are debounced into one run.

Examples:
  tasknexus watch tasks.json
  tasknexus watch tasks.json --debounce 2s`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().Duration("debounce", watch.DefaultDebounce, "Quiet period before a run starts")
	watchCmd.Flags().String("mode", "", "Heatmap mode: average or most_common (default from config)")
	watchCmd.Flags().Int("min-size", 0, "Minimum tasks in a group for a trend fit, at least 3 (default from config)")

	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, args []string) error {
	debounce, _ := cmd.Flags().GetDuration("debounce")
	opts, err := analysisOptions(cmd)
	if err != nil {
		return err
	}

	w, err := watch.NewWatcher(args[0], debounce)
	if err != nil {
		return err
	}
	defer w.Stop()

	outputPath := getOutputFile(cmd)
	colored := outputPath == "" && cfg.Output.Color && isatty.IsTerminal(os.Stdout.Fd())
	run := watchRun(getFormat(cmd), outputPath, colored, opts)

	run(cmd.Context(), w.Path())
	w.SetCallback(run)

	err = w.Start(cmd.Context())
	if errors.Is(err, context.Canceled) {
		color.Cyan("Stopped watching")
		return nil
	}
	return err
}

// watchRun returns the callback for one watch cycle. The output is reopened
// on every run, so a file target holds only the latest report.
func watchRun(format output.Format, outputPath string, colored bool, opts []analysis.Option) func(context.Context, string) {
	return func(ctx context.Context, path string) {
		started := time.Now()
		svc, bar := newService("Normalizing tasks...", opts...)
		result, err := svc.RunFile(ctx, path)
		if err != nil {
			bar.FinishError(err)
			return
		}
		bar.FinishSuccess()

		formatter, err := output.NewFormatter(format, outputPath, colored)
		if err != nil {
			log.Error().Err(err).Str("output", outputPath).Msg("failed to open output")
			return
		}
		defer formatter.Close()

		if err := formatter.Output(report.Full(result, formatter.Colored())); err != nil {
			log.Error().Err(err).Msg("failed to write report")
			return
		}
		log.Debug().Dur("elapsed", time.Since(started)).Msg("analysis complete")
	}
}
