package analysis

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tasknexus/tasknexus/internal/cache"
	"github.com/tasknexus/tasknexus/pkg/analyzer"
	"github.com/tasknexus/tasknexus/pkg/analyzer/category"
	"github.com/tasknexus/tasknexus/pkg/analyzer/workload"
	"github.com/tasknexus/tasknexus/pkg/config"
	"github.com/tasknexus/tasknexus/pkg/models"
)

var fixedNow = time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

func fixture() []models.RawTask {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC) }
	backendBug := func(id string, done float64, d int) models.RawTask {
		return models.RawTask{
			ID:         id,
			Points:     &models.Points{Total: done + 1, Done: done},
			Labels:     []string{"bug"},
			Categories: models.StringList{"Bug Fixes"},
			FocusAreas: models.StringList{"Backend"},
			CreatedAt:  day(d),
		}
	}
	return []models.RawTask{
		backendBug("b1", 1, 1),
		backendBug("b2", 2, 2),
		backendBug("b3", 3, 3),
		backendBug("b4", 4, 4),
		{ID: "zero", Points: &models.Points{}, Categories: models.StringList{"Feature"}, FocusAreas: models.StringList{"Frontend"}},
		{ID: "nopoints", Categories: models.StringList{"Feature"}, FocusAreas: models.StringList{"Frontend"}, CreatedAt: day(5)},
	}
}

func newService(opts ...Option) *Service {
	return New(append([]Option{WithConfig(config.DefaultConfig()), WithClock(func() time.Time { return fixedNow })}, opts...)...)
}

func TestRun(t *testing.T) {
	report, err := newService().Run(context.Background(), fixture())
	require.NoError(t, err)

	meta := report.Metadata
	assert.Equal(t, 6, meta.RawCount)
	assert.Equal(t, 5, meta.FilteredCount)
	assert.Equal(t, 1, meta.DroppedCount)
	assert.Equal(t, fixedNow, meta.GeneratedAt)
	assert.Equal(t, category.ModeAverage, meta.HeatmapMode)

	require.Len(t, report.Tasks, 5)
	assert.Equal(t, "b1", report.Tasks[0].ID)
	assert.Equal(t, "nopoints", report.Tasks[4].ID)

	assert.Equal(t, []string{"Bug Fixes", "Feature"}, report.Counts.Categories.Labels)
	assert.Equal(t, []int{4, 1}, report.Counts.Categories.Counts)

	// Burned 1,2,3,4 classify as medium, medium, large, large.
	cell, ok := report.Heatmap.Cell("Bug Fixes", "Backend")
	require.True(t, ok)
	assert.Equal(t, 2.5, cell)

	require.Len(t, report.Trends.Groups, 1)
	g := report.Trends.Groups[0]
	assert.Equal(t, "Bug Fixes, Backend", g.Title)
	assert.True(t, g.Regression.Defined)
	assert.InDelta(t, 1.0, g.Regression.SlopePerDay, 1e-9)
	assert.InDelta(t, 1.0, g.Regression.RSquared, 1e-9)
	assert.Equal(t, 1, report.Trends.ExcludedGroups)
}

func TestRun_Empty(t *testing.T) {
	report, err := newService().Run(context.Background(), nil)
	require.NoError(t, err)
	assert.Empty(t, report.Tasks)
	assert.NotNil(t, report.Tasks)
	assert.Empty(t, report.Trends.Groups)
	assert.Empty(t, report.Bars.Labels)
}

func TestRun_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := newService().Run(ctx, fixture())
	assert.ErrorIs(t, err, context.Canceled)
}

func TestOptions(t *testing.T) {
	s := newService(WithHeatmapMode(category.ModeMostCommon), WithMinGroupSize(5))
	report, err := s.Run(context.Background(), fixture())
	require.NoError(t, err)
	assert.Equal(t, category.ModeMostCommon, report.Metadata.HeatmapMode)
	assert.Equal(t, category.ModeMostCommon, report.Heatmap.Mode)
	assert.Empty(t, report.Trends.Groups, "no group reaches five tasks")

	cell, _ := report.Heatmap.Cell("Bug Fixes", "Backend")
	assert.Equal(t, 2.0, cell, "ties resolve to the smaller class")
}

func TestNormalize_Tracker(t *testing.T) {
	tracker := analyzer.NewTracker(nil)

	n, err := newService(WithTracker(tracker)).Normalize(context.Background(), fixture())
	require.NoError(t, err)
	assert.Len(t, n.Tasks, 5)
	assert.Equal(t, 5, tracker.Total())
	assert.Equal(t, 5, tracker.Current())
}

func writeExport(t *testing.T, tasks []models.RawTask) string {
	t.Helper()
	data, err := json.Marshal(tasks)
	require.NoError(t, err)
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestRunFile_Cache(t *testing.T) {
	path := writeExport(t, fixture())
	c, err := cache.New(t.TempDir(), 24, true)
	require.NoError(t, err)

	s := newService(WithCache(c))

	first, err := s.RunFile(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, first.Metadata.CacheHit)
	assert.Equal(t, path, first.Metadata.Source)
	assert.NotEmpty(t, first.Metadata.Fingerprint)

	second, err := s.RunFile(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, second.Metadata.CacheHit)
	assert.Equal(t, first.Metadata.FilteredCount, second.Metadata.FilteredCount)
	assert.Equal(t, first.Metadata.DroppedCount, second.Metadata.DroppedCount)
	require.Len(t, second.Tasks, len(first.Tasks))
	for i := range first.Tasks {
		assert.Equal(t, first.Tasks[i].ID, second.Tasks[i].ID)
		assert.Equal(t, first.Tasks[i].BurnedPoints, second.Tasks[i].BurnedPoints)
	}
	assert.Equal(t, first.Heatmap, second.Heatmap)

	cfg := config.DefaultConfig()
	cfg.Mapping.Labels["bug"] = "fix"
	changed, err := New(WithConfig(cfg), WithCache(c)).RunFile(context.Background(), path)
	require.NoError(t, err)
	assert.False(t, changed.Metadata.CacheHit, "mapping change invalidates the cache")
}

func TestNormalizeFile_SkippedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tasks.json")
	require.NoError(t, os.WriteFile(path, []byte(`[{"id":"a","points":{"total":1,"done":1}},{"id":7},{"id":"b","points":{"total":-1,"done":1}}]`), 0o644))

	n, err := newService().NormalizeFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, n.Metadata.Skipped)
	assert.Equal(t, 1, n.Metadata.Warnings)
	assert.Equal(t, 2, n.Metadata.RawCount)
	assert.Len(t, n.Tasks, 2)
}

func TestNormalizeFile_Missing(t *testing.T) {
	_, err := newService().NormalizeFile(context.Background(), filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestTrendPage(t *testing.T) {
	frontend := func(id string, d int) models.RawTask {
		return models.RawTask{
			ID:         id,
			Points:     &models.Points{Total: 1, Done: 1},
			Categories: models.StringList{"Feature"},
			FocusAreas: models.StringList{"Frontend"},
			CreatedAt:  time.Date(2024, 1, d, 0, 0, 0, 0, time.UTC),
		}
	}
	raw := append(fixture(), frontend("f1", 6), frontend("f2", 7))

	s := newService()
	n, err := s.Normalize(context.Background(), raw)
	require.NoError(t, err)

	page, err := s.TrendPage(context.Background(), n, 1, 1)
	require.NoError(t, err)
	assert.Equal(t, 2, page.TotalGroups)
	assert.Equal(t, 2, page.TotalPages)
	require.Len(t, page.Groups, 1)
	assert.Equal(t, "Bug Fixes, Backend", page.Groups[0].Title)

	page, err = s.TrendPage(context.Background(), n, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, 4, page.PerPage)
	assert.Len(t, page.Groups, 2)
}

func TestTrends_MinGroupSizeFloor(t *testing.T) {
	s := newService(WithMinGroupSize(1))
	n, err := s.Normalize(context.Background(), fixture())
	require.NoError(t, err)

	a, err := s.Trends(context.Background(), n)
	require.NoError(t, err)
	assert.Equal(t, 3, a.MinGroupSize)
	require.Len(t, a.Groups, 1, "the single-task Feature/Frontend group stays out of trends")
	assert.Equal(t, "Bug Fixes, Backend", a.Groups[0].Title)
	assert.Equal(t, 1, a.ExcludedGroups)
}

func TestCategories(t *testing.T) {
	s := newService()
	n, err := s.Normalize(context.Background(), fixture())
	require.NoError(t, err)

	cr := s.Categories(n)
	assert.Equal(t, 5, cr.Counts.Categories.Total())
	assert.Equal(t, []string{"Bug Fixes-Backend", "Feature-Frontend"}, cr.Bars.Labels)
}

func TestWorkload(t *testing.T) {
	d := &workload.StaticDistributor{Assignments: workload.Assignments{
		"bo":  {{ID: "t2", BestClassEstimated: models.WorkloadLarge}},
		"ana": {{ID: "t1", BestClassEstimated: models.WorkloadSmall}},
	}}

	summary, err := newService().Workload(context.Background(), d, workload.Request{})
	require.NoError(t, err)
	require.Len(t, summary.Assignees, 2)
	assert.Equal(t, "ana", summary.Assignees[0].Assignee)
	assert.Equal(t, 2, summary.TaskCount)

	_, err = newService().Workload(context.Background(), d, workload.Request{Assignees: []string{"cy"}})
	assert.ErrorIs(t, err, workload.ErrNoAssignees)
}
