package main

import (
	"os"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tasknexus/tasknexus/internal/cache"
	"github.com/tasknexus/tasknexus/internal/output"
	"github.com/tasknexus/tasknexus/internal/progress"
	"github.com/tasknexus/tasknexus/internal/service/analysis"
)

// getFormat returns the --format flag, falling back to the configured format.
func getFormat(cmd *cobra.Command) output.Format {
	format, _ := cmd.Flags().GetString("format")
	if format == "" && cfg != nil {
		format = cfg.Output.Format
	}
	return output.ParseFormat(format)
}

// getOutputFile returns the output file path from the command.
func getOutputFile(cmd *cobra.Command) string {
	outputFile, _ := cmd.Flags().GetString("output")
	return outputFile
}

// newFormatter opens the formatter for the command's format and output
// flags. Color follows the config and whether stdout is a terminal.
func newFormatter(cmd *cobra.Command) (*output.Formatter, error) {
	colored := cfg.Output.Color && isatty.IsTerminal(os.Stdout.Fd())
	return output.NewFormatter(getFormat(cmd), getOutputFile(cmd), colored)
}

// openCache opens the normalized-task cache unless disabled. A cache that
// cannot be opened is logged and skipped.
func openCache() *cache.Cache {
	if noCache || !cfg.Cache.Enabled {
		return nil
	}
	c, err := cache.New(cfg.Cache.Dir, cfg.Cache.TTL, true)
	if err != nil {
		log.Warn().Err(err).Str("dir", cfg.Cache.Dir).Msg("cache disabled")
		return nil
	}
	return c
}

// newService builds the analysis service with a progress bar for
// normalization. The returned bar must be finished by the caller.
func newService(label string, opts ...analysis.Option) (*analysis.Service, *progress.Bar) {
	bar := progress.NewBar(label, 0)
	base := []analysis.Option{
		analysis.WithConfig(cfg),
		analysis.WithTracker(bar.Tracker()),
	}
	if c := openCache(); c != nil {
		base = append(base, analysis.WithCache(c))
	}
	return analysis.New(append(base, opts...)...), bar
}
