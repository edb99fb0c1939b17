package category

import "github.com/tasknexus/tasknexus/pkg/models"

// Expand produces one Pair per (category, focus area) combination of every
// task. Tasks with no categories or no focus areas produce no pairs.
func Expand(tasks []models.NormalizedTask) []Pair {
	var pairs []Pair
	for i := range tasks {
		t := &tasks[i]
		for _, c := range t.Categories {
			for _, f := range t.FocusAreas {
				pairs = append(pairs, Pair{Key: GroupKey{Category: c, FocusArea: f}, Index: i})
			}
		}
	}
	return pairs
}

// Group reduces pairs into buckets. Bucket entries reference tasks by index;
// pairs pointing outside tasks are ignored and a repeated (key, index) pair
// is counted once.
func Group(tasks []models.NormalizedTask, pairs []Pair) *Buckets {
	bs := &Buckets{
		byKey: make(map[GroupKey]*Bucket),
		total: len(tasks),
	}
	for _, p := range pairs {
		if p.Index < 0 || p.Index >= len(tasks) {
			continue
		}
		b, ok := bs.byKey[p.Key]
		if !ok {
			b = newBucket(p.Key)
			bs.byKey[p.Key] = b
			bs.order = append(bs.order, p.Key)
		}
		b.add(p.Index, &tasks[p.Index])
	}
	return bs
}

// GroupTasks expands and groups in one step.
func GroupTasks(tasks []models.NormalizedTask) *Buckets {
	return Group(tasks, Expand(tasks))
}
