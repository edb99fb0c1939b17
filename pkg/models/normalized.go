package models

import (
	"strings"
	"time"
)

// NormalizedTask is the flat per-task metric record every downstream
// analysis consumes. It is immutable once produced.
type NormalizedTask struct {
	ID                                  string    `json:"id"`
	Title                               string    `json:"title"`
	Body                                string    `json:"body"`
	Assignees                           []string  `json:"assignees"`
	Categories                          []string  `json:"categories"`
	FocusAreas                          []string  `json:"focus_areas"`
	Priority                            int       `json:"priority"`
	HasDueDate                          int       `json:"dueDate"`
	ExpectedPoints                      float64   `json:"expectedPoints"`
	BurnedPoints                        float64   `json:"burnedPoints"`
	NumberOfLabels                      int       `json:"numberOfLabels"`
	Labels                              []string  `json:"labels"`
	PointsEstimatedNumberOfEdits        int       `json:"pointsEstimatedNumberOfEdits"`
	PointsEstimatedEditsTotalDifference float64   `json:"pointsEstimatedEditsTotalDifference"`
	PointsBurnedNumberOfEdits           int       `json:"pointsBurnedNumberOfEdits"`
	NumberOfComments                    int       `json:"numberOfComments"`
	NumberOfCommits                     int       `json:"numberOfCommits"`
	TotalAdditions                      int       `json:"totalAdditions"`
	TotalDeletions                      int       `json:"totalDeletions"`
	NumberOfFilesChanged                int       `json:"numberOfFilesChanged"`
	CommitMessages                      string    `json:"commitMessages"`
	StatusDeviateFromFlow               int       `json:"statusDeviateFromFlow"`
	CreatedAt                           time.Time `json:"createdAt"`
}

// CategoryKey returns the task's categories joined with commas, the form
// used when category lists are shown as a single cell.
func (t *NormalizedTask) CategoryKey() string {
	return strings.Join(t.Categories, ",")
}

// FocusAreaKey returns the task's focus areas joined with commas.
func (t *NormalizedTask) FocusAreaKey() string {
	return strings.Join(t.FocusAreas, ",")
}
