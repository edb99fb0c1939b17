package main

import (
	"fmt"
	"os"
	"runtime"
	"runtime/pprof"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/tasknexus/tasknexus/internal/logging"
	"github.com/tasknexus/tasknexus/pkg/config"
)

var (
	cfgFile      string
	verbose      bool
	noCache      bool
	pprofPrefix  string
	pprofCPUFile *os.File

	// cfg is the effective configuration, loaded before every command.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "tasknexus",
	Short: "Task analytics for issue-tracker exports",
	Long: `tasknexus normalizes issue-tracker task exports and reports where effort
goes: category and focus-area counts, workload heatmaps, point trends over
time and per-assignee workload summaries.

Reads JSON, JSON Lines and YAML exports.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if pprofPrefix != "" {
			f, err := os.Create(pprofPrefix + ".cpu.pprof")
			if err != nil {
				return fmt.Errorf("failed to create CPU profile: %w", err)
			}
			if err := pprof.StartCPUProfile(f); err != nil {
				f.Close()
				return fmt.Errorf("failed to start CPU profile: %w", err)
			}
			pprofCPUFile = f
		}
		return setup(cmd)
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		if pprofPrefix != "" {
			pprof.StopCPUProfile()
			if pprofCPUFile != nil {
				pprofCPUFile.Close()
				color.Green("CPU profile written to %s.cpu.pprof", pprofPrefix)
			}

			memFile, err := os.Create(pprofPrefix + ".mem.pprof")
			if err != nil {
				return fmt.Errorf("failed to create memory profile: %w", err)
			}
			defer memFile.Close()

			runtime.GC()
			if err := pprof.WriteHeapProfile(memFile); err != nil {
				return fmt.Errorf("failed to write memory profile: %w", err)
			}
			color.Green("Memory profile written to %s.mem.pprof", pprofPrefix)
		}
		return nil
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVarP(&cfgFile, "config", "c", "", "Path to config file (TOML, YAML, or JSON)")
	flags.BoolVar(&verbose, "verbose", false, "Enable debug logging")
	flags.StringP("format", "f", "", "Output format: text, json, markdown, toon (default from config)")
	flags.StringP("output", "o", "", "Write output to file")
	flags.BoolVar(&noCache, "no-cache", false, "Disable the normalized-task cache")
	flags.StringVar(&pprofPrefix, "pprof", "", "Enable pprof profiling (creates <prefix>.cpu.pprof and <prefix>.mem.pprof)")
}

// setup loads the configuration and initializes logging. Config and init
// commands handle configuration themselves.
func setup(cmd *cobra.Command) error {
	if cmd == initCmd || cmd.Parent() == configCmd {
		return nil
	}

	var opts []config.LoadOption
	if cfgFile != "" {
		opts = append(opts, config.WithPath(cfgFile))
	}
	result, err := config.LoadConfig(opts...)
	if err != nil {
		return err
	}
	cfg = result.Config

	_, err = logging.Init(logging.Options{
		Verbose: verbose || cfg.Log.Verbose,
		Dir:     cfg.Log.Dir,
		NoColor: !isatty.IsTerminal(os.Stderr.Fd()),
	})
	return err
}
