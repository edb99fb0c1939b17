// Package workload summarizes per-assignee task distributions into
// estimated day ranges.
package workload

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"

	"github.com/tasknexus/tasknexus/pkg/models"
)

// ErrUnknownClass is returned by DayRange for a class outside 1..3.
var ErrUnknownClass = errors.New("unknown workload class")

// ErrNoAssignees is returned when a distribution request names nobody.
var ErrNoAssignees = errors.New("no assignees")

// Range is an estimated effort in days.
type Range struct {
	Min float64 `json:"min"`
	Max float64 `json:"max"`
	Avg float64 `json:"avg"`
}

func (r Range) add(o Range) Range {
	return Range{Min: r.Min + o.Min, Max: r.Max + o.Max, Avg: r.Avg + o.Avg}
}

var dayRanges = map[models.WorkloadClass]Range{
	models.WorkloadSmall:  {Min: 0, Max: 0.5, Avg: 0.25},
	models.WorkloadMedium: {Min: 0.5, Max: 2, Avg: 1.25},
	models.WorkloadLarge:  {Min: 2, Max: 3, Avg: 2.5},
}

// DayRange returns the estimated days for a workload class.
func DayRange(class models.WorkloadClass) (Range, error) {
	r, ok := dayRanges[class]
	if !ok {
		return Range{}, fmt.Errorf("%w: %d", ErrUnknownClass, int(class))
	}
	return r, nil
}

// AssignedTask is a task as returned by a distributor, carrying the class
// it was estimated to fall in. The class is taken as given.
type AssignedTask struct {
	ID                 string               `json:"id"`
	Title              string               `json:"title"`
	BestClassEstimated models.WorkloadClass `json:"best_class_estimated"`
}

// UnmarshalJSON also accepts "_id" as the identifier.
func (t *AssignedTask) UnmarshalJSON(data []byte) error {
	type alias AssignedTask
	var aux struct {
		MongoID string `json:"_id"`
		alias
	}
	if err := json.Unmarshal(data, &aux); err != nil {
		return err
	}
	*t = AssignedTask(aux.alias)
	if t.ID == "" {
		t.ID = aux.MongoID
	}
	return nil
}

// Assignments maps an assignee identifier to the tasks handed to them.
type Assignments map[string][]AssignedTask

// Request is what a Distributor is asked to split.
type Request struct {
	Tasks     []models.NormalizedTask
	Assignees []string
}

// Distributor assigns tasks to assignees and estimates their classes.
type Distributor interface {
	Distribute(ctx context.Context, req Request) (Assignments, error)
}

// StaticDistributor replays a previously captured distribution instead of
// calling a live service.
type StaticDistributor struct {
	Assignments Assignments
}

// LoadAssignments decodes a JSON object of assignee -> tasks.
func LoadAssignments(r io.Reader) (Assignments, error) {
	var a Assignments
	if err := json.NewDecoder(r).Decode(&a); err != nil {
		return nil, fmt.Errorf("decoding assignments: %w", err)
	}
	if a == nil {
		a = Assignments{}
	}
	return a, nil
}

// NewStaticDistributorFromFile loads a captured distribution from path.
func NewStaticDistributorFromFile(path string) (*StaticDistributor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	a, err := LoadAssignments(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &StaticDistributor{Assignments: a}, nil
}

// Distribute returns the captured assignments of the requested assignees.
// An empty assignee list returns every captured assignee.
func (d *StaticDistributor) Distribute(ctx context.Context, req Request) (Assignments, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(req.Assignees) == 0 {
		return d.Assignments, nil
	}
	out := make(Assignments, len(req.Assignees))
	for _, who := range req.Assignees {
		if tasks, ok := d.Assignments[who]; ok {
			out[who] = tasks
		}
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%w: none of %v in captured distribution", ErrNoAssignees, req.Assignees)
	}
	return out, nil
}

// AssigneeSummary is the workload of one assignee.
type AssigneeSummary struct {
	// Ordinal is the 1-based display position.
	Ordinal  int    `json:"ordinal"`
	Assignee string `json:"assignee"`
	// Tasks are sorted by class, smallest first.
	Tasks []AssignedTask `json:"tasks"`
	Days  Range          `json:"days"`
	// ClassCounts is keyed by class name (small, medium, large).
	ClassCounts  map[string]int `json:"class_counts"`
	Unclassified int            `json:"unclassified"`
}

// Summary is the workload of every assignee.
type Summary struct {
	Assignees []AssigneeSummary `json:"assignees"`
	Total     Range             `json:"total"`
	TaskCount int               `json:"task_count"`
}

// Summarize totals the day ranges of each assignee's tasks. Assignees are
// ordered by identifier. Tasks with a class outside 1..3 add no days and
// are counted as unclassified.
func Summarize(assignments Assignments) Summary {
	ids := make([]string, 0, len(assignments))
	for id := range assignments {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	s := Summary{Assignees: make([]AssigneeSummary, 0, len(ids))}
	for i, id := range ids {
		tasks := slices.Clone(assignments[id])
		slices.SortStableFunc(tasks, func(a, b AssignedTask) int {
			return int(a.BestClassEstimated) - int(b.BestClassEstimated)
		})

		as := AssigneeSummary{
			Ordinal:     i + 1,
			Assignee:    id,
			Tasks:       tasks,
			ClassCounts: make(map[string]int),
		}
		for _, t := range tasks {
			r, err := DayRange(t.BestClassEstimated)
			if err != nil {
				as.Unclassified++
				continue
			}
			as.Days = as.Days.add(r)
			as.ClassCounts[t.BestClassEstimated.String()]++
		}
		s.Total = s.Total.add(as.Days)
		s.TaskCount += len(tasks)
		s.Assignees = append(s.Assignees, as)
	}
	return s
}
