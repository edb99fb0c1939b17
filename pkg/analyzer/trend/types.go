// Package trend fits burned-points trends over time for each
// (category, focus area) group with enough tasks.
package trend

import (
	"time"

	"github.com/tasknexus/tasknexus/pkg/analyzer/category"
)

// Series is the time-ordered data of one group. All slices are parallel.
type Series struct {
	TaskIDs  []string    `json:"task_ids"`
	Dates    []time.Time `json:"dates"`
	Burned   []float64   `json:"burned"`
	Expected []float64   `json:"expected"`
	// Fitted holds the trendline value at each date; empty when the
	// regression is undefined.
	Fitted []float64 `json:"fitted,omitempty"`
}

// Len returns the number of points.
func (s *Series) Len() int {
	return len(s.Burned)
}

// Statistics summarizes the burned points of a group.
// StdDev is the population standard deviation.
type Statistics struct {
	Count    int     `json:"count"`
	Mean     float64 `json:"mean"`
	StdDev   float64 `json:"std_dev"`
	Min      float64 `json:"min"`
	Max      float64 `json:"max"`
	BandLow  float64 `json:"band_low"`  // Mean - StdDev
	BandHigh float64 `json:"band_high"` // Mean + StdDev
}

// Regression is a least-squares line of burned points over createdAt,
// with x measured in Unix milliseconds.
type Regression struct {
	// Defined is false when all timestamps are equal; the numeric fields
	// are then zero.
	Defined     bool    `json:"defined"`
	Slope       float64 `json:"slope"`         // points per millisecond
	SlopePerDay float64 `json:"slope_per_day"` // points per day
	Intercept   float64 `json:"intercept"`
	RSquared    float64 `json:"r_squared"`
}

// Predict returns the fitted value at t, or 0 if the fit is undefined.
func (r Regression) Predict(t time.Time) float64 {
	if !r.Defined {
		return 0
	}
	return r.Slope*float64(t.UnixMilli()) + r.Intercept
}

// AnnotationKind names what an annotation marks.
type AnnotationKind string

const (
	AnnotationMax     AnnotationKind = "max"
	AnnotationMin     AnnotationKind = "min"
	AnnotationOutlier AnnotationKind = "outlier"
)

// String implements fmt.Stringer.
func (k AnnotationKind) String() string { return string(k) }

// Annotation marks one notable point of a series.
type Annotation struct {
	Kind   AnnotationKind `json:"kind"`
	Index  int            `json:"index"`
	Date   time.Time      `json:"date"`
	Value  float64        `json:"value"`
	ZScore float64        `json:"z_score,omitempty"`
	Text   string         `json:"text"`
}

// GroupTrend is the trend payload of one group.
type GroupTrend struct {
	Key         category.GroupKey `json:"key"`
	Title       string            `json:"title"`
	Series      Series            `json:"series"`
	Statistics  Statistics        `json:"statistics"`
	Regression  Regression        `json:"regression"`
	Annotations []Annotation      `json:"annotations"`
}

// Analysis holds the trends of every qualifying group, largest group first.
type Analysis struct {
	Groups         []GroupTrend `json:"groups"`
	MinGroupSize   int          `json:"min_group_size"`
	ExcludedGroups int          `json:"excluded_groups"`
}

// DefaultPerPage is the number of groups shown per page.
const DefaultPerPage = 4

// Page is one page of group trends.
type Page struct {
	Groups      []GroupTrend `json:"groups"`
	Page        int          `json:"page"`
	PerPage     int          `json:"per_page"`
	TotalPages  int          `json:"total_pages"`
	TotalGroups int          `json:"total_groups"`
}

// Paginate returns the 1-based page of groups. Pages outside the range are
// clamped; perPage <= 0 uses DefaultPerPage.
func (a *Analysis) Paginate(page, perPage int) Page {
	if perPage <= 0 {
		perPage = DefaultPerPage
	}
	total := len(a.Groups)
	pages := (total + perPage - 1) / perPage
	if page < 1 {
		page = 1
	}
	if pages > 0 && page > pages {
		page = pages
	}

	p := Page{
		Page:        page,
		PerPage:     perPage,
		TotalPages:  pages,
		TotalGroups: total,
		Groups:      []GroupTrend{},
	}
	start := (page - 1) * perPage
	if start < total {
		end := min(start+perPage, total)
		p.Groups = a.Groups[start:end]
	}
	return p
}
