package models

// WorkloadClass buckets a burned-points value into small, medium or large effort.
type WorkloadClass int

const (
	// WorkloadUnclassified marks a value that was never classified.
	WorkloadUnclassified WorkloadClass = 0
	// WorkloadSmall covers values up to half a day.
	WorkloadSmall WorkloadClass = 1
	// WorkloadMedium covers values above half a day up to two days.
	WorkloadMedium WorkloadClass = 2
	// WorkloadLarge covers everything above two days.
	WorkloadLarge WorkloadClass = 3
)

// Class thresholds, in points.
const (
	SmallThreshold  = 0.5
	MediumThreshold = 2.0
)

// Classify maps a burned-points value to its workload class.
// Negative and zero values are small.
func Classify(x float64) WorkloadClass {
	switch {
	case x <= SmallThreshold:
		return WorkloadSmall
	case x <= MediumThreshold:
		return WorkloadMedium
	default:
		return WorkloadLarge
	}
}

// Valid reports whether c is one of the three defined classes.
func (c WorkloadClass) Valid() bool {
	return c >= WorkloadSmall && c <= WorkloadLarge
}

// String returns a short label for the class.
func (c WorkloadClass) String() string {
	switch c {
	case WorkloadSmall:
		return "small"
	case WorkloadMedium:
		return "medium"
	case WorkloadLarge:
		return "large"
	default:
		return "unclassified"
	}
}
