// Package normalize turns raw tracker records into flat NormalizedTask metrics.
package normalize

import (
	"context"
	"math"
	"strings"

	"github.com/tasknexus/tasknexus/pkg/analyzer"
	"github.com/tasknexus/tasknexus/pkg/mapping"
	"github.com/tasknexus/tasknexus/pkg/models"
)

// CommitMessageSeparator joins the messages of all commits linked to a task.
const CommitMessageSeparator = " | "

// Normalizer converts RawTask records into NormalizedTask records.
// It is safe for concurrent use.
type Normalizer struct {
	tables  mapping.Tables
	flow    Flow
	workers int
	tracker *analyzer.Tracker
}

// Option is a functional option for configuring Normalizer.
type Option func(*Normalizer)

// WithFlow overrides the status flow used to count deviations.
func WithFlow(flow Flow) Option {
	return func(n *Normalizer) {
		if len(flow.Stages) > 0 {
			n.flow = flow
		}
	}
}

// WithWorkers sets the number of goroutines used by NormalizeAll.
func WithWorkers(workers int) Option {
	return func(n *Normalizer) {
		if workers > 0 {
			n.workers = workers
		}
	}
}

// WithTracker reports one tick per normalized task.
func WithTracker(tracker *analyzer.Tracker) Option {
	return func(n *Normalizer) {
		n.tracker = tracker
	}
}

// New creates a normalizer over the given mapping tables.
func New(tables mapping.Tables, opts ...Option) *Normalizer {
	n := &Normalizer{
		tables:  tables,
		flow:    DefaultFlow(),
		workers: analyzer.DefaultWorkers(),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// RoundHalf rounds x to the nearest multiple of 0.5, with ties rounding up
// (toward positive infinity): 1.25 -> 1.5, -1.25 -> -1.0.
func RoundHalf(x float64) float64 {
	if math.IsNaN(x) || math.IsInf(x, 0) {
		return 0
	}
	return math.Floor(x*2+0.5) / 2
}

// Normalize converts one raw task. Missing nested structures degrade to
// zero values; it never fails.
func (n *Normalizer) Normalize(raw *models.RawTask) models.NormalizedTask {
	task := models.NormalizedTask{
		ID:                           raw.ID,
		Title:                        raw.Title,
		Body:                         raw.Body,
		Assignees:                    cleanList(raw.Assignees),
		Categories:                   cleanList(raw.Categories),
		FocusAreas:                   cleanList(raw.FocusAreas),
		Priority:                     n.tables.Priority(raw.Priority),
		NumberOfLabels:               len(raw.Labels),
		Labels:                       n.tables.MapLabels(raw.Labels),
		PointsEstimatedNumberOfEdits: len(raw.PointsEstimatedEdits),
		PointsBurnedNumberOfEdits:    len(raw.PointsBurnedEdits),
		NumberOfComments:             len(raw.Comments),
		NumberOfCommits:              len(raw.Commits),
		StatusDeviateFromFlow:        n.flow.CountDeviations(raw.StatusEdits),
		CreatedAt:                    raw.CreatedAt,
	}

	if raw.DueDate {
		task.HasDueDate = 1
	}
	if raw.Points != nil {
		task.ExpectedPoints = RoundHalf(raw.Points.Total)
		task.BurnedPoints = RoundHalf(raw.Points.Done)
	}
	if edits := raw.PointsEstimatedEdits; len(edits) > 0 {
		task.PointsEstimatedEditsTotalDifference = edits[len(edits)-1].ToPoints - edits[0].FromPoints
	}

	rollup := RollupCommits(raw.Commits)
	task.TotalAdditions = rollup.Additions
	task.TotalDeletions = rollup.Deletions
	task.NumberOfFilesChanged = rollup.FilesChanged
	task.CommitMessages = rollup.Messages

	return task
}

// NormalizeAll filters out tasks without point signal and normalizes the
// rest in parallel. Output order matches the filtered input order.
func (n *Normalizer) NormalizeAll(ctx context.Context, raw []models.RawTask) ([]models.NormalizedTask, error) {
	kept := Filter(raw)
	if n.tracker != nil {
		n.tracker.Add(len(kept))
	}
	out, err := analyzer.MapOrdered(ctx, kept, n.workers, func(_ context.Context, i int, t models.RawTask) (models.NormalizedTask, error) {
		norm := n.Normalize(&t)
		if n.tracker != nil {
			n.tracker.Tick(norm.ID)
		}
		return norm, nil
	})
	if err != nil {
		return nil, err
	}
	if out == nil {
		out = []models.NormalizedTask{}
	}
	return out, nil
}

// CommitRollup sums the file changes of a task's commits.
type CommitRollup struct {
	Additions    int
	Deletions    int
	FilesChanged int
	Messages     string
}

// RollupCommits totals additions, deletions and touched files over every
// commit, and joins the commit messages with CommitMessageSeparator.
// A file entry counts toward FilesChanged even when it has no line changes.
func RollupCommits(commits []models.Commit) CommitRollup {
	var r CommitRollup
	messages := make([]string, 0, len(commits))
	for _, c := range commits {
		for _, f := range c.Files {
			r.Additions += f.Additions
			r.Deletions += f.Deletions
			r.FilesChanged++
		}
		messages = append(messages, c.Message)
	}
	r.Messages = strings.Join(messages, CommitMessageSeparator)
	return r
}

// cleanList trims entries, drops empty ones and removes duplicates,
// keeping first-seen order.
func cleanList(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		s = strings.TrimSpace(s)
		if s == "" {
			continue
		}
		if _, dup := seen[s]; dup {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
