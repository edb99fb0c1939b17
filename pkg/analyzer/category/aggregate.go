package category

import (
	"math"

	"github.com/tasknexus/tasknexus/pkg/models"
)

// HeatmapData is a categories x focus areas matrix of workload summaries.
// Values[i][j] belongs to Categories[i] and Labels[j]; empty cells are 0.
type HeatmapData struct {
	Categories []string    `json:"categories"`
	Labels     []string    `json:"labels"`
	Values     [][]float64 `json:"values"`
	Mode       HeatmapMode `json:"mode"`
}

// Cell returns the value for a category and focus area, and false if either
// is not on the axes.
func (h *HeatmapData) Cell(category, focusArea string) (float64, bool) {
	for i, c := range h.Categories {
		if c != category {
			continue
		}
		for j, f := range h.Labels {
			if f == focusArea {
				return h.Values[i][j], true
			}
		}
	}
	return 0, false
}

// Heatmap builds the heatmap over the layout axes.
func Heatmap(buckets *Buckets, layout Layout, mode HeatmapMode) HeatmapData {
	h := HeatmapData{
		Categories: append([]string(nil), layout.Categories...),
		Labels:     append([]string(nil), layout.FocusAreas...),
		Values:     make([][]float64, len(layout.Categories)),
		Mode:       mode,
	}
	for i, c := range layout.Categories {
		row := make([]float64, len(layout.FocusAreas))
		for j, f := range layout.FocusAreas {
			if b, ok := buckets.Get(GroupKey{Category: c, FocusArea: f}); ok {
				row[j] = CellValue(b.CategoryPoints, mode)
			}
		}
		h.Values[i] = row
	}
	return h
}

// CellValue summarizes the workload classes of one bucket.
func CellValue(classes []models.WorkloadClass, mode HeatmapMode) float64 {
	if len(classes) == 0 {
		return 0
	}
	switch mode {
	case ModeMostCommon:
		return float64(MostCommon(classes))
	default:
		sum := 0
		for _, c := range classes {
			sum += int(c)
		}
		return round2(float64(sum) / float64(len(classes)))
	}
}

// MostCommon returns the most frequent positive class, or 0 when there is
// none. Ties resolve to the smaller class.
func MostCommon(classes []models.WorkloadClass) models.WorkloadClass {
	var counts [models.WorkloadLarge + 1]int
	for _, c := range classes {
		if c.Valid() {
			counts[c]++
		}
	}
	best := models.WorkloadUnclassified
	for c := models.WorkloadSmall; c <= models.WorkloadLarge; c++ {
		if counts[c] > counts[best] {
			best = c
		}
	}
	return best
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}

// BarData holds average burned and expected points per non-empty bucket.
type BarData struct {
	Labels         []string   `json:"labels"`
	Keys           []GroupKey `json:"keys"`
	DonePoints     []float64  `json:"donePoints"`
	ExpectedPoints []float64  `json:"expectedPoints"`
}

// Bars enumerates the layout's categories x focus areas in order and emits
// one entry per bucket that has tasks.
func Bars(buckets *Buckets, layout Layout) BarData {
	var bars BarData
	for _, c := range layout.Categories {
		for _, f := range layout.FocusAreas {
			key := GroupKey{Category: c, FocusArea: f}
			b, ok := buckets.Get(key)
			if !ok || b.Len() == 0 {
				continue
			}
			bars.Labels = append(bars.Labels, key.String())
			bars.Keys = append(bars.Keys, key)
			bars.DonePoints = append(bars.DonePoints, b.MeanBurned())
			bars.ExpectedPoints = append(bars.ExpectedPoints, b.MeanExpected())
		}
	}
	return bars
}
