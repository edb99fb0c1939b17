package trend

import (
	"fmt"
	"math"
	"time"

	"gonum.org/v1/gonum/stat"
)

const msPerDay = float64(24 * time.Hour / time.Millisecond)

// Fit computes the least-squares regression of ys on xs.
//
// The fit is undefined when there are fewer than two points or all xs are
// equal. A constant ys with varying xs fits exactly, so RSquared is 1.
func Fit(xs, ys []float64) Regression {
	if len(xs) < 2 || len(xs) != len(ys) {
		return Regression{}
	}
	if constant(xs) {
		return Regression{}
	}

	intercept, slope := stat.LinearRegression(xs, ys, nil, false)
	var r2 float64
	if constant(ys) {
		r2 = 1
	} else {
		r2 = stat.RSquared(xs, ys, nil, intercept, slope)
	}
	if !finite(intercept) || !finite(slope) || !finite(r2) {
		return Regression{}
	}
	return Regression{
		Defined:     true,
		Slope:       slope,
		SlopePerDay: slope * msPerDay,
		Intercept:   intercept,
		RSquared:    r2,
	}
}

// FitSeries fits burned points against the series dates.
func FitSeries(s *Series) Regression {
	xs := make([]float64, len(s.Dates))
	for i, d := range s.Dates {
		xs[i] = float64(d.UnixMilli())
	}
	return Fit(xs, s.Burned)
}

// Summarize computes the population statistics of values.
func Summarize(values []float64) Statistics {
	if len(values) == 0 {
		return Statistics{}
	}
	mean, std := stat.PopMeanStdDev(values, nil)
	lo, hi := values[0], values[0]
	for _, v := range values[1:] {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	return Statistics{
		Count:    len(values),
		Mean:     mean,
		StdDev:   std,
		Min:      lo,
		Max:      hi,
		BandLow:  mean - std,
		BandHigh: mean + std,
	}
}

// Annotate marks the first maximum, the first minimum and every point whose
// absolute z-score exceeds threshold. A threshold <= 0 disables outliers.
func Annotate(s *Series, st Statistics, threshold float64) []Annotation {
	if s.Len() == 0 {
		return nil
	}
	maxIdx, minIdx := 0, 0
	for i, v := range s.Burned {
		if v > s.Burned[maxIdx] {
			maxIdx = i
		}
		if v < s.Burned[minIdx] {
			minIdx = i
		}
	}

	out := []Annotation{
		{
			Kind:  AnnotationMax,
			Index: maxIdx,
			Date:  s.Dates[maxIdx],
			Value: s.Burned[maxIdx],
			Text:  fmt.Sprintf("Max: %g", s.Burned[maxIdx]),
		},
		{
			Kind:  AnnotationMin,
			Index: minIdx,
			Date:  s.Dates[minIdx],
			Value: s.Burned[minIdx],
			Text:  fmt.Sprintf("Min: %g", s.Burned[minIdx]),
		},
	}

	if threshold <= 0 || st.StdDev == 0 {
		return out
	}
	for i, v := range s.Burned {
		z := stat.StdScore(v, st.Mean, st.StdDev)
		if math.Abs(z) > threshold {
			out = append(out, Annotation{
				Kind:   AnnotationOutlier,
				Index:  i,
				Date:   s.Dates[i],
				Value:  v,
				ZScore: z,
				Text:   fmt.Sprintf("Outlier: %g (z=%.2f)", v, z),
			})
		}
	}
	return out
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}

func constant(xs []float64) bool {
	for _, x := range xs[1:] {
		if x != xs[0] {
			return false
		}
	}
	return true
}
