package normalize

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tasknexus/tasknexus/pkg/models"
)

func TestFilter(t *testing.T) {
	tasks := []models.RawTask{
		{ID: "zero", Points: &models.Points{Total: 0, Done: 0}},
		{ID: "estimated", Points: &models.Points{Total: 2}},
		{ID: "burned", Points: &models.Points{Done: 1}},
		{ID: "no-points"},
		{ID: "zero-again", Points: &models.Points{}},
		{ID: "both", Points: &models.Points{Total: 1, Done: 1}},
	}

	got := Filter(tasks)

	ids := make([]string, 0, len(got))
	for _, task := range got {
		ids = append(ids, task.ID)
	}
	assert.Equal(t, []string{"estimated", "burned", "no-points", "both"}, ids)
	assert.Len(t, tasks, 6, "input must not be modified")
}

func TestFilter_Empty(t *testing.T) {
	assert.Empty(t, Filter(nil))
}
