package workload

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknexus/tasknexus/pkg/models"
)

func TestDayRange(t *testing.T) {
	tests := []struct {
		class   models.WorkloadClass
		want    Range
		wantErr bool
	}{
		{models.WorkloadSmall, Range{0, 0.5, 0.25}, false},
		{models.WorkloadMedium, Range{0.5, 2, 1.25}, false},
		{models.WorkloadLarge, Range{2, 3, 2.5}, false},
		{models.WorkloadUnclassified, Range{}, true},
		{models.WorkloadClass(4), Range{}, true},
	}
	for _, tt := range tests {
		got, err := DayRange(tt.class)
		if tt.wantErr {
			assert.ErrorIs(t, err, ErrUnknownClass)
			continue
		}
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

const captured = `{
  "bo": [
    {"_id": "t3", "title": "Migrate DB", "best_class_estimated": 3},
    {"_id": "t4", "title": "Fix typo", "best_class_estimated": 1}
  ],
  "ana": [
    {"id": "t1", "title": "Login page", "best_class_estimated": 2},
    {"id": "t2", "title": "Unknown", "best_class_estimated": 7},
    {"id": "t5", "title": "Docs", "best_class_estimated": 2}
  ]
}`

func TestSummarize(t *testing.T) {
	a, err := LoadAssignments(strings.NewReader(captured))
	require.NoError(t, err)

	s := Summarize(a)

	require.Len(t, s.Assignees, 2)
	ana, bo := s.Assignees[0], s.Assignees[1]

	assert.Equal(t, 1, ana.Ordinal)
	assert.Equal(t, "ana", ana.Assignee)
	assert.Equal(t, Range{Min: 1, Max: 4, Avg: 2.5}, ana.Days)
	assert.Equal(t, 1, ana.Unclassified)
	assert.Equal(t, 2, ana.ClassCounts["medium"])
	assert.Equal(t, []string{"t1", "t5", "t2"}, ids(ana.Tasks))

	assert.Equal(t, 2, bo.Ordinal)
	assert.Equal(t, []string{"t4", "t3"}, ids(bo.Tasks), "sorted by class")
	assert.Equal(t, Range{Min: 2, Max: 3.5, Avg: 2.75}, bo.Days)

	assert.Equal(t, Range{Min: 3, Max: 7.5, Avg: 5.25}, s.Total)
	assert.Equal(t, 5, s.TaskCount)

	// input untouched
	assert.Equal(t, "t3", a["bo"][0].ID)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil)
	assert.Empty(t, s.Assignees)
	assert.Zero(t, s.TaskCount)
}

func TestStaticDistributor(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dist.json")
	require.NoError(t, os.WriteFile(path, []byte(captured), 0o600))

	d, err := NewStaticDistributorFromFile(path)
	require.NoError(t, err)

	all, err := d.Distribute(context.Background(), Request{})
	require.NoError(t, err)
	assert.Len(t, all, 2)

	some, err := d.Distribute(context.Background(), Request{Assignees: []string{"bo", "zed"}})
	require.NoError(t, err)
	assert.Len(t, some, 1)
	assert.Contains(t, some, "bo")

	_, err = d.Distribute(context.Background(), Request{Assignees: []string{"zed"}})
	assert.ErrorIs(t, err, ErrNoAssignees)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = d.Distribute(ctx, Request{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadAssignments_Invalid(t *testing.T) {
	_, err := LoadAssignments(strings.NewReader(`[1,2]`))
	assert.Error(t, err)

	_, err = NewStaticDistributorFromFile(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func ids(tasks []AssignedTask) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}
