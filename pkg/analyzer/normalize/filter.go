package normalize

import "github.com/tasknexus/tasknexus/pkg/models"

// HasSignal reports whether a task carries any point information.
// Tasks whose points are present but both zero carry none.
// Tasks without a points record are kept and normalize to zero points.
func HasSignal(task *models.RawTask) bool {
	if task.Points == nil {
		return true
	}
	return task.Points.Total != 0 || task.Points.Done != 0
}

// Filter returns the tasks that carry point signal, preserving input order.
// The input slice is not modified.
func Filter(tasks []models.RawTask) []models.RawTask {
	out := make([]models.RawTask, 0, len(tasks))
	for i := range tasks {
		if HasSignal(&tasks[i]) {
			out = append(out, tasks[i])
		}
	}
	return out
}
