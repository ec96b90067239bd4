package harvest

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sportsbettor/ingest/internal/checkpoint"
)

func TestCycleBaselineFrozenWithinCycle(t *testing.T) {
	t.Parallel()

	tr := NewCycleTracker("100")
	tr.OnCycleStart()
	require.Equal(t, checkpoint.Watermark("100"), tr.Baseline())

	// Posts observed mid-cycle must not move the query floor for later
	// batches in the same cycle.
	tr.Observe("500")
	require.Equal(t, checkpoint.Watermark("100"), tr.Baseline())
}

func TestCycleBaselineSeededBeforeFirstCycleStart(t *testing.T) {
	t.Parallel()

	// A rotation resumed mid-cycle ticks before OnCycleStart ever runs.
	// Those ticks must query with the persisted floor, not an empty one.
	tr := NewCycleTracker("100")
	require.Equal(t, checkpoint.Watermark("100"), tr.Baseline())

	tr.Observe("130")
	w, ok := tr.OnCycleEnd()
	require.True(t, ok)
	require.Equal(t, checkpoint.Watermark("130"), w)
}

func TestCycleAdvancesOnlyAtCycleEnd(t *testing.T) {
	t.Parallel()

	tr := NewCycleTracker("100")
	tr.OnCycleStart()
	tr.Observe("50")
	tr.Observe("120")

	w, ok := tr.OnCycleEnd()
	require.True(t, ok)
	require.Equal(t, checkpoint.Watermark("120"), w)
}

func TestCycleNumericNotLexicographic(t *testing.T) {
	t.Parallel()

	tr := NewCycleTracker("900")
	tr.OnCycleStart()
	tr.Observe("1000")

	w, ok := tr.OnCycleEnd()
	require.True(t, ok)
	require.Equal(t, checkpoint.Watermark("1000"), w)
}

func TestCycleEmptyDoesNotAdvance(t *testing.T) {
	t.Parallel()

	tr := NewCycleTracker("100")
	tr.OnCycleStart()

	_, ok := tr.OnCycleEnd()
	require.False(t, ok)
}

func TestCycleNonNumericIDsIgnored(t *testing.T) {
	t.Parallel()

	tr := NewCycleTracker("100")
	tr.OnCycleStart()
	tr.Observe("not-a-number")

	_, ok := tr.OnCycleEnd()
	require.False(t, ok)
}

func TestNextCycleBaselineIsPreviousRunningMax(t *testing.T) {
	t.Parallel()

	tr := NewCycleTracker("100")
	tr.OnCycleStart()
	tr.Observe("150")
	w, ok := tr.OnCycleEnd()
	require.True(t, ok)
	tr.MarkPersisted(w)

	tr.OnCycleStart()
	require.Equal(t, checkpoint.Watermark("150"), tr.Baseline())
}

func TestFailedPersistFallsBackToOldCheckpoint(t *testing.T) {
	t.Parallel()

	tr := NewCycleTracker("100")
	tr.OnCycleStart()
	tr.Observe("150")

	w, ok := tr.OnCycleEnd()
	require.True(t, ok)
	require.Equal(t, checkpoint.Watermark("150"), w)
	// Save failed: MarkPersisted never called.

	tr.OnCycleStart()
	tr.Observe("160")
	w, ok = tr.OnCycleEnd()
	require.True(t, ok)
	require.Equal(t, checkpoint.Watermark("160"), w)
}
