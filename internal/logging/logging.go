// Package logging configures the global zerolog logger.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogFileName is the name of the rotating log file inside the log directory.
const LogFileName = "tasknexus.log"

// Options configures Init.
type Options struct {
	// Verbose lowers the level to debug.
	Verbose bool
	// Dir enables a rotating file sink in this directory when set.
	Dir string
	// Console is the human-readable sink; defaults to os.Stderr.
	Console io.Writer
	// NoColor forces plain console output.
	NoColor bool
}

// Init initializes the global logger with a console sink on stderr and an
// optional rotating file sink. It returns the configured logger.
func Init(opts Options) (zerolog.Logger, error) {
	level := zerolog.InfoLevel
	if opts.Verbose {
		level = zerolog.DebugLevel
	}
	zerolog.SetGlobalLevel(level)

	out := opts.Console
	noColor := opts.NoColor
	if out == nil {
		out = os.Stderr
		if !isatty.IsTerminal(os.Stderr.Fd()) && !isatty.IsCygwinTerminal(os.Stderr.Fd()) {
			noColor = true
		}
	}
	console := zerolog.ConsoleWriter{
		Out:        out,
		TimeFormat: time.RFC3339,
		NoColor:    noColor,
	}

	writers := []io.Writer{console}
	if opts.Dir != "" {
		if err := os.MkdirAll(opts.Dir, 0o755); err != nil {
			return log.Logger, fmt.Errorf("creating log directory %q: %w", opts.Dir, err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(opts.Dir, LogFileName),
			MaxSize:    16, // megabytes
			MaxBackups: 8,
			MaxAge:     90, // days
			Compress:   true,
		})
	}

	log.Logger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		With().
		Timestamp().
		Logger()
	return log.Logger, nil
}
