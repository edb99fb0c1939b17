// Package progress draws terminal progress bars for long pipeline stages.
package progress

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/schollz/progressbar/v3"

	"github.com/tasknexus/tasknexus/pkg/analyzer"
)

// Bar wraps a progress bar for one pipeline stage.
type Bar struct {
	bar   *progressbar.ProgressBar
	out   io.Writer
	label string
	once  sync.Once
}

// NewSpinner creates a spinner for stages with an unknown item count.
func NewSpinner(label string) *Bar {
	return newSpinner(os.Stderr, label)
}

func newSpinner(w io.Writer, label string) *Bar {
	bar := progressbar.NewOptions(-1,
		progressbar.OptionSetWriter(w),
		progressbar.OptionSetWidth(20),
		progressbar.OptionSetDescription(label),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionClearOnFinish(),
	)
	return &Bar{bar: bar, out: w, label: label}
}

// NewBar creates a counting bar. A total of zero or less yields a spinner.
func NewBar(label string, total int) *Bar {
	return newBar(os.Stderr, label, total)
}

func newBar(w io.Writer, label string, total int) *Bar {
	if total <= 0 {
		return newSpinner(w, label)
	}
	bar := progressbar.NewOptions(total,
		progressbar.OptionSetWriter(w),
		progressbar.OptionShowCount(),
		progressbar.OptionSetWidth(30),
		progressbar.OptionSetDescription(label),
		progressbar.OptionUseANSICodes(true),
		progressbar.OptionSetElapsedTime(false),
		progressbar.OptionSetPredictTime(false),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "=",
			SaucerHead:    ">",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
	)
	return &Bar{bar: bar, out: w, label: label}
}

// Tick advances the bar by one. Safe for concurrent use.
func (b *Bar) Tick() {
	_ = b.bar.Add(1)
}

// Tracker returns an analyzer tracker whose ticks advance this bar. The
// bar's maximum follows the tracker's total as stages register work.
func (b *Bar) Tracker() *analyzer.Tracker {
	var mu sync.Mutex
	limit := -1
	return analyzer.NewTracker(func(current, total int, _ string) {
		mu.Lock()
		if total > 0 && total != limit {
			limit = total
			b.bar.ChangeMax(total)
		}
		mu.Unlock()
		_ = b.bar.Set(current)
	})
}

// FinishSuccess clears the bar without printing anything.
func (b *Bar) FinishSuccess() {
	b.finish()
}

// FinishSkipped clears the bar and prints why the stage was skipped.
func (b *Bar) FinishSkipped(reason string) {
	b.finish()
	fmt.Fprintf(b.out, "  %s skipped (%s)\n", b.label, reason)
}

// FinishError clears the bar and prints the stage error.
func (b *Bar) FinishError(err error) {
	b.finish()
	fmt.Fprintf(b.out, "  %s error: %v\n", b.label, err)
}

func (b *Bar) finish() {
	b.once.Do(func() {
		_ = b.bar.Finish()
		_ = b.bar.Clear()
	})
}
