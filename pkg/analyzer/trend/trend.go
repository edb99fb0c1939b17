package trend

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/tasknexus/tasknexus/pkg/analyzer"
	"github.com/tasknexus/tasknexus/pkg/analyzer/category"
	"github.com/tasknexus/tasknexus/pkg/models"
)

// DefaultMinGroupSize is the smallest group that gets a trend. Configured
// minimums may be larger, never smaller.
const DefaultMinGroupSize = 3

// ErrMinGroupSize is returned for minimum group sizes below DefaultMinGroupSize.
var ErrMinGroupSize = errors.New("invalid minimum trend group size")

// CheckMinGroupSize accepts 0, meaning the configured default, and any
// size of at least DefaultMinGroupSize.
func CheckMinGroupSize(n int) error {
	if n == 0 || n >= DefaultMinGroupSize {
		return nil
	}
	return fmt.Errorf("%w: %d (must be at least %d)", ErrMinGroupSize, n, DefaultMinGroupSize)
}

// DefaultOutlierZ is the |z-score| above which a point is marked as an outlier.
const DefaultOutlierZ = 2.0

// Analyzer fits trends for every qualifying bucket.
type Analyzer struct {
	minGroupSize int
	outlierZ     float64
	workers      int
}

// Option is a functional option for configuring Analyzer.
type Option func(*Analyzer)

// WithMinGroupSize sets the minimum bucket size for a trend. Values below
// DefaultMinGroupSize are raised to it.
func WithMinGroupSize(n int) Option {
	return func(a *Analyzer) {
		a.minGroupSize = max(n, DefaultMinGroupSize)
	}
}

// WithOutlierZ sets the outlier z-score threshold. Zero disables outliers.
func WithOutlierZ(z float64) Option {
	return func(a *Analyzer) {
		if z >= 0 {
			a.outlierZ = z
		}
	}
}

// WithWorkers sets the number of buckets fitted concurrently.
func WithWorkers(n int) Option {
	return func(a *Analyzer) {
		if n > 0 {
			a.workers = n
		}
	}
}

// New creates a trend analyzer.
func New(opts ...Option) *Analyzer {
	a := &Analyzer{
		minGroupSize: DefaultMinGroupSize,
		outlierZ:     DefaultOutlierZ,
		workers:      analyzer.DefaultWorkers(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Analyze fits every bucket holding at least the minimum number of tasks.
// Groups are ordered by size, largest first, then by key.
func (a *Analyzer) Analyze(ctx context.Context, buckets *category.Buckets) (*Analysis, error) {
	all := buckets.All()
	qualifying := make([]*category.Bucket, 0, len(all))
	for _, b := range all {
		if b.Len() >= a.minGroupSize {
			qualifying = append(qualifying, b)
		}
	}
	slices.SortStableFunc(qualifying, func(x, y *category.Bucket) int {
		if x.Len() != y.Len() {
			return y.Len() - x.Len()
		}
		return x.Key.Compare(y.Key)
	})

	groups, err := analyzer.MapOrdered(ctx, qualifying, a.workers, func(_ context.Context, _ int, b *category.Bucket) (GroupTrend, error) {
		return a.analyzeBucket(b), nil
	})
	if err != nil {
		return nil, err
	}
	if groups == nil {
		groups = []GroupTrend{}
	}

	return &Analysis{
		Groups:         groups,
		MinGroupSize:   a.minGroupSize,
		ExcludedGroups: len(all) - len(qualifying),
	}, nil
}

func (a *Analyzer) analyzeBucket(b *category.Bucket) GroupTrend {
	series := BuildSeries(b.Tasks)
	reg := FitSeries(&series)
	if reg.Defined {
		series.Fitted = make([]float64, series.Len())
		for i, d := range series.Dates {
			series.Fitted[i] = reg.Predict(d)
		}
	}
	st := Summarize(series.Burned)
	return GroupTrend{
		Key:         b.Key,
		Title:       b.Key.Category + ", " + b.Key.FocusArea,
		Series:      series,
		Statistics:  st,
		Regression:  reg,
		Annotations: Annotate(&series, st, a.outlierZ),
	}
}

// BuildSeries orders tasks by creation time and extracts their points.
// Tasks created at the same instant keep their original order.
func BuildSeries(tasks []*models.NormalizedTask) Series {
	sorted := slices.Clone(tasks)
	slices.SortStableFunc(sorted, func(x, y *models.NormalizedTask) int {
		return x.CreatedAt.Compare(y.CreatedAt)
	})

	s := Series{
		TaskIDs:  make([]string, len(sorted)),
		Dates:    make([]time.Time, len(sorted)),
		Burned:   make([]float64, len(sorted)),
		Expected: make([]float64, len(sorted)),
	}
	for i, t := range sorted {
		s.TaskIDs[i] = t.ID
		s.Dates[i] = t.CreatedAt
		s.Burned[i] = t.BurnedPoints
		s.Expected[i] = t.ExpectedPoints
	}
	return s
}
