package harvest

import "github.com/sportsbettor/ingest/internal/checkpoint"

// CycleTracker owns the watermark baseline and running max for the active
// cycle. The baseline is frozen at cycle start and used by every tick in the
// cycle, so a later batch cannot have its results suppressed by a watermark
// advanced from an earlier batch's findings within the same cycle.
type CycleTracker struct {
	persisted  checkpoint.Watermark
	baseline   checkpoint.Watermark
	runningMax checkpoint.Watermark
	hasCycle   bool
}

// NewCycleTracker seeds the tracker with the externally persisted
// checkpoint. The baseline starts at that value too, so ticks issued before
// the first cycle boundary (a rotation resumed mid-cycle after a restart)
// already query with the persisted floor.
func NewCycleTracker(persisted checkpoint.Watermark) *CycleTracker {
	return &CycleTracker{
		persisted:  persisted,
		baseline:   persisted,
		runningMax: persisted,
	}
}

// OnCycleStart freezes the baseline for the coming cycle: the previous
// cycle's running max when one exists, otherwise the persisted checkpoint.
// After a mid-cycle restart there is no previous cycle in memory, so the
// baseline falls back to the last persisted value; that can re-deliver posts
// from the abandoned cycle but never skips one.
func (t *CycleTracker) OnCycleStart() {
	if t.hasCycle {
		t.baseline = t.runningMax
	} else {
		t.baseline = t.persisted
	}
	t.runningMax = t.baseline
	t.hasCycle = true
}

// Baseline returns the frozen query floor for the active cycle.
func (t *CycleTracker) Baseline() checkpoint.Watermark {
	return t.baseline
}

// Observe folds one post identifier into the running max. Non-numeric
// identifiers are ignored rather than corrupting the comparison.
func (t *CycleTracker) Observe(id string) {
	t.runningMax = checkpoint.Max(t.runningMax, checkpoint.Watermark(id))
}

// OnCycleEnd returns the watermark to persist, if the cycle advanced past
// the persisted checkpoint. The tracker keeps treating the old value as
// persisted until MarkPersisted confirms the write.
func (t *CycleTracker) OnCycleEnd() (checkpoint.Watermark, bool) {
	if t.runningMax.After(t.persisted) {
		return t.runningMax, true
	}
	return "", false
}

// MarkPersisted records that the given watermark was durably written.
func (t *CycleTracker) MarkPersisted(w checkpoint.Watermark) {
	t.persisted = w
}
