// Package category groups normalized tasks by (category, focus area) and
// derives the count, heatmap and bar summaries over those groups.
package category

import (
	"errors"
	"fmt"

	"github.com/RoaringBitmap/roaring/v2"
	"gonum.org/v1/gonum/stat"

	"github.com/tasknexus/tasknexus/pkg/models"
)

// GroupKey identifies one (category, focus area) bucket.
type GroupKey struct {
	Category  string `json:"category"`
	FocusArea string `json:"focus_area"`
}

// String returns the "category-focus" label used on bar charts.
func (k GroupKey) String() string {
	return k.Category + "-" + k.FocusArea
}

// Compare orders keys by category, then focus area.
func (k GroupKey) Compare(o GroupKey) int {
	switch {
	case k.Category < o.Category:
		return -1
	case k.Category > o.Category:
		return 1
	case k.FocusArea < o.FocusArea:
		return -1
	case k.FocusArea > o.FocusArea:
		return 1
	}
	return 0
}

// Pair is one element of the category x focus-area expansion: a task index
// and one key the task belongs to.
type Pair struct {
	Key   GroupKey
	Index int
}

// Bucket is a non-owning view over the tasks sharing one GroupKey.
// Tasks, CategoryPoints, DonePoints and ExpectedPoints are parallel and
// follow task index order.
type Bucket struct {
	Key GroupKey
	// Members holds the indices of the tasks in the grouped slice.
	Members        *roaring.Bitmap
	Tasks          []*models.NormalizedTask
	CategoryPoints []models.WorkloadClass
	DonePoints     []float64
	ExpectedPoints []float64
}

func newBucket(key GroupKey) *Bucket {
	return &Bucket{Key: key, Members: roaring.New()}
}

// add appends a task; returns false if the index is already a member.
func (b *Bucket) add(index int, task *models.NormalizedTask) bool {
	if !b.Members.CheckedAdd(uint32(index)) {
		return false
	}
	b.Tasks = append(b.Tasks, task)
	b.CategoryPoints = append(b.CategoryPoints, models.Classify(task.BurnedPoints))
	b.DonePoints = append(b.DonePoints, task.BurnedPoints)
	b.ExpectedPoints = append(b.ExpectedPoints, task.ExpectedPoints)
	return true
}

// Len returns the number of tasks in the bucket.
func (b *Bucket) Len() int {
	return len(b.Tasks)
}

// Contains reports whether the task at index belongs to the bucket.
func (b *Bucket) Contains(index int) bool {
	return index >= 0 && b.Members.Contains(uint32(index))
}

// MeanBurned returns the average burned points, 0 for an empty bucket.
func (b *Bucket) MeanBurned() float64 {
	return mean(b.DonePoints)
}

// MeanExpected returns the average expected points, 0 for an empty bucket.
func (b *Bucket) MeanExpected() float64 {
	return mean(b.ExpectedPoints)
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stat.Mean(xs, nil)
}

// Buckets is the result of one grouping run. Keys are kept in first-seen order.
type Buckets struct {
	byKey map[GroupKey]*Bucket
	order []GroupKey
	total int
}

// Get returns the bucket for key.
func (bs *Buckets) Get(key GroupKey) (*Bucket, bool) {
	b, ok := bs.byKey[key]
	return b, ok
}

// Len returns the number of non-empty buckets.
func (bs *Buckets) Len() int {
	return len(bs.order)
}

// Keys returns the bucket keys in first-seen order.
func (bs *Buckets) Keys() []GroupKey {
	out := make([]GroupKey, len(bs.order))
	copy(out, bs.order)
	return out
}

// All returns the buckets in first-seen order.
func (bs *Buckets) All() []*Bucket {
	out := make([]*Bucket, 0, len(bs.order))
	for _, k := range bs.order {
		out = append(out, bs.byKey[k])
	}
	return out
}

// TaskCount returns the size of the task slice that was grouped.
func (bs *Buckets) TaskCount() int {
	return bs.total
}

// Layout fixes the axis order of heatmaps and bar charts.
type Layout struct {
	Categories []string `json:"categories"`
	FocusAreas []string `json:"focus_areas"`
}

// DefaultLayout returns the standard category and focus-area axes.
func DefaultLayout() Layout {
	return Layout{
		Categories: []string{
			"Bug Fixes",
			"Testing & Code Review",
			"Optimization",
			"Feature",
			"Code Refactoring",
			"Dependencies",
			"Documentation & General",
		},
		FocusAreas: []string{
			"Frontend",
			"Backend",
			"DevOps & Cloud",
			"Database",
			"Security",
			"AI",
			"Embedded",
		},
	}
}

// HeatmapMode selects how a heatmap cell summarizes its workload classes.
type HeatmapMode string

const (
	// ModeAverage averages the workload classes, rounded to two decimals.
	ModeAverage HeatmapMode = "average"
	// ModeMostCommon picks the most frequent positive workload class.
	ModeMostCommon HeatmapMode = "most_common"
)

// String implements fmt.Stringer.
func (m HeatmapMode) String() string { return string(m) }

// ErrInvalidHeatmapMode is returned for an unknown heatmap mode name.
var ErrInvalidHeatmapMode = errors.New("invalid heatmap mode")

// ParseHeatmapMode parses a mode name. The empty string selects ModeAverage.
func ParseHeatmapMode(s string) (HeatmapMode, error) {
	switch s {
	case "", string(ModeAverage), "avg":
		return ModeAverage, nil
	case string(ModeMostCommon), "mode", "mostCommonClass":
		return ModeMostCommon, nil
	}
	return "", fmt.Errorf("%w: %q (expected %s or %s)", ErrInvalidHeatmapMode, s, ModeAverage, ModeMostCommon)
}
