package normalize

import (
	"slices"

	"github.com/tasknexus/tasknexus/pkg/models"
)

// Flow describes the canonical status progression and the statuses whose
// transitions are ignored when counting deviations.
type Flow struct {
	Stages  []string
	Skipped []string
}

// DefaultFlow returns the Sprint Planning -> In Progress -> Delivered -> Accepted
// progression, ignoring Backlog and Archived transitions.
func DefaultFlow() Flow {
	return Flow{
		Stages:  []string{"Sprint Planning", "In Progress", "Delivered", "Accepted"},
		Skipped: []string{"Backlog", "Archived"},
	}
}

// FlowState is the accumulator of the deviation fold.
type FlowState struct {
	// LastIndex is the furthest stage index reached so far.
	LastIndex int
	// Deviations counts backward transitions.
	Deviations int
}

// Index returns the stage position of status, or -1 when it is not a stage.
func (f Flow) Index(status string) int {
	return slices.Index(f.Stages, status)
}

func (f Flow) skipped(status string) bool {
	return slices.Contains(f.Skipped, status)
}

// Step folds one status edit into the state.
//
// An edit counts as a deviation when it starts at or before the furthest
// stage reached and moves to an earlier stage. Statuses outside the flow
// have index -1.
func (f Flow) Step(state FlowState, edit models.StatusEdit) FlowState {
	if f.skipped(edit.From) || f.skipped(edit.To) || edit.From == edit.To {
		return state
	}
	from := f.Index(edit.From)
	to := f.Index(edit.To)
	if from <= state.LastIndex && to < from {
		state.Deviations++
	}
	state.LastIndex = max(state.LastIndex, to)
	return state
}

// CountDeviations folds the whole edit history and returns the deviation count.
func (f Flow) CountDeviations(edits []models.StatusEdit) int {
	state := FlowState{}
	for _, e := range edits {
		state = f.Step(state, e)
	}
	return state.Deviations
}

// CountDeviations counts deviations against DefaultFlow.
func CountDeviations(edits []models.StatusEdit) int {
	return DefaultFlow().CountDeviations(edits)
}
