package category

import (
	"slices"

	"github.com/tasknexus/tasknexus/pkg/models"
)

// Frequency is a label histogram sorted by count, highest first.
// Equal counts keep first-seen order.
type Frequency struct {
	Labels []string `json:"labels"`
	Counts []int    `json:"counts"`
}

// Total returns the sum of all counts.
func (f Frequency) Total() int {
	n := 0
	for _, c := range f.Counts {
		n += c
	}
	return n
}

// Counts holds the category and focus-area histograms of a task set.
type Counts struct {
	Categories Frequency `json:"categories"`
	FocusAreas Frequency `json:"focus_areas"`
}

// Summarize counts how many tasks carry each category and each focus area.
// Tasks count toward a category even when they have no focus area.
func Summarize(tasks []models.NormalizedTask) Counts {
	cats := newCounter()
	focus := newCounter()
	for i := range tasks {
		for _, c := range tasks[i].Categories {
			cats.add(c)
		}
		for _, f := range tasks[i].FocusAreas {
			focus.add(f)
		}
	}
	return Counts{Categories: cats.frequency(), FocusAreas: focus.frequency()}
}

type counter struct {
	index  map[string]int
	labels []string
	counts []int
}

func newCounter() *counter {
	return &counter{index: make(map[string]int)}
}

func (c *counter) add(label string) {
	if i, ok := c.index[label]; ok {
		c.counts[i]++
		return
	}
	c.index[label] = len(c.labels)
	c.labels = append(c.labels, label)
	c.counts = append(c.counts, 1)
}

func (c *counter) frequency() Frequency {
	type entry struct {
		label string
		count int
	}
	entries := make([]entry, len(c.labels))
	for i := range c.labels {
		entries[i] = entry{c.labels[i], c.counts[i]}
	}
	slices.SortStableFunc(entries, func(a, b entry) int {
		return b.count - a.count
	})

	f := Frequency{
		Labels: make([]string, len(entries)),
		Counts: make([]int, len(entries)),
	}
	for i, e := range entries {
		f.Labels[i] = e.label
		f.Counts[i] = e.count
	}
	return f
}
