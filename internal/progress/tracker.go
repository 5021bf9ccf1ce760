// Package progress tracks a learner's completion state for one roadmap.
//
// Two independent dimensions exist side by side: the set of completed
// flowchart node ids and the set of completed linear step indices. They
// are never synchronized; the flowchart view and the learning-steps
// checklist are two views over the same roadmap, not over each other.
package progress

import (
	"math"
	"sort"
	"sync"

	"github.com/terra-clan/roadmap-engine/internal/models"
)

// Tracker maintains the completion sets and recomputes aggregates fresh
// on every read. Set sizes are tens of entries, not thousands.
type Tracker struct {
	mu        sync.RWMutex
	known     map[string]struct{}
	stepTotal int
	nodes     map[string]struct{}
	steps     map[int]struct{}
}

// NewTracker creates a tracker over a roadmap given its flowchart node
// ids and the length of its steps checklist
func NewTracker(nodeIDs []string, stepTotal int) *Tracker {
	known := make(map[string]struct{}, len(nodeIDs))
	for _, id := range nodeIDs {
		known[id] = struct{}{}
	}
	return &Tracker{
		known:     known,
		stepTotal: stepTotal,
		nodes:     make(map[string]struct{}),
		steps:     make(map[int]struct{}),
	}
}

// ToggleNode flips membership of id in the completed-node set.
// Toggling twice is a no-op. Ids absent from the graph are inert and
// never feed the progress aggregate.
func (t *Tracker) ToggleNode(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.nodes[id]; ok {
		delete(t.nodes, id)
		return
	}
	t.nodes[id] = struct{}{}
}

// ToggleStep flips membership of index in the completed-step set.
// Bounds are not checked; out-of-range indices are inert and
// never feed the step progress aggregate.
func (t *Tracker) ToggleStep(index int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, ok := t.steps[index]; ok {
		delete(t.steps, index)
		return
	}
	t.steps[index] = struct{}{}
}

// IsNodeDone reports whether the learner marked the node complete
func (t *Tracker) IsNodeDone(id string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.nodes[id]
	return ok
}

// IsStepDone reports whether the learner checked the step off
func (t *Tracker) IsStepDone(index int) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.steps[index]
	return ok
}

// Progress returns the graph-based completion percentage, 0..100,
// rounded half up. An empty denominator is 0%, never a division error.
// Only ids the graph actually contains count toward the aggregate.
func (t *Tracker) Progress() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	inGraph := 0
	for id := range t.nodes {
		if _, ok := t.known[id]; ok {
			inGraph++
		}
	}
	return percent(inGraph, len(t.known))
}

// StepProgress returns the checklist completion percentage.
// Only indices within the rendered list count toward the aggregate.
func (t *Tracker) StepProgress() int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	inRange := 0
	for i := range t.steps {
		if i >= 0 && i < t.stepTotal {
			inRange++
		}
	}
	return percent(inRange, t.stepTotal)
}

// CompletedNodes returns the completed node ids, sorted for stable output
func (t *Tracker) CompletedNodes() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	ids := make([]string, 0, len(t.nodes))
	for id := range t.nodes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// CompletedSteps returns the completed step indices, sorted
func (t *Tracker) CompletedSteps() []int {
	t.mu.RLock()
	defer t.mu.RUnlock()

	indices := make([]int, 0, len(t.steps))
	for i := range t.steps {
		indices = append(indices, i)
	}
	sort.Ints(indices)
	return indices
}

// Snapshot captures the current completion state for persistence
func (t *Tracker) Snapshot() models.ProgressSnapshot {
	return models.ProgressSnapshot{
		CompletedNodeIDs:     t.CompletedNodes(),
		CompletedStepIndices: t.CompletedSteps(),
	}
}

// Restore replaces the completion state from a saved snapshot
func (t *Tracker) Restore(snap models.ProgressSnapshot) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.nodes = make(map[string]struct{}, len(snap.CompletedNodeIDs))
	for _, id := range snap.CompletedNodeIDs {
		t.nodes[id] = struct{}{}
	}
	t.steps = make(map[int]struct{}, len(snap.CompletedStepIndices))
	for _, i := range snap.CompletedStepIndices {
		t.steps[i] = struct{}{}
	}
}

func percent(done, total int) int {
	if total <= 0 {
		return 0
	}
	return int(math.Round(100 * float64(done) / float64(total)))
}
