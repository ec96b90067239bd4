package harvest

import (
	"testing"

	"github.com/stretchr/testify/require"
)

const (
	testClause = "from:%s"
	testSuffix = " -is:retweet -is:reply"
)

func TestPlanBatchesSingleBatch(t *testing.T) {
	t.Parallel()

	batches, err := PlanBatches([]string{"AdamSchefter", "RapSheet"}, testClause, testSuffix, 512)
	require.NoError(t, err)
	require.Len(t, batches, 1)
	require.Equal(t, "from:AdamSchefter OR from:RapSheet -is:retweet -is:reply", batches[0].Query)
	require.Equal(t, []string{"AdamSchefter", "RapSheet"}, batches[0].Accounts)
}

func TestPlanBatchesSplitsAtBound(t *testing.T) {
	t.Parallel()

	accounts := []string{"alpha", "bravo", "charlie", "delta", "echo"}
	maxLen := len("from:alpha OR from:bravo" + testSuffix)

	batches, err := PlanBatches(accounts, testClause, testSuffix, maxLen)
	require.NoError(t, err)
	require.Greater(t, len(batches), 1)

	// Every account appears exactly once, in input order.
	var flattened []string
	for _, b := range batches {
		require.LessOrEqual(t, len(b.Query), maxLen)
		flattened = append(flattened, b.Accounts...)
	}
	require.Equal(t, accounts, flattened)
}

func TestPlanBatchesOversizedClause(t *testing.T) {
	t.Parallel()

	_, err := PlanBatches([]string{"ok", "this_handle_is_far_too_long"}, testClause, testSuffix, 30)
	require.ErrorIs(t, err, ErrClauseTooLong)
	require.ErrorContains(t, err, "this_handle_is_far_too_long")
}

func TestPlanBatchesValidation(t *testing.T) {
	t.Parallel()

	_, err := PlanBatches(nil, testClause, testSuffix, 512)
	require.Error(t, err)

	_, err = PlanBatches([]string{"a"}, testClause, testSuffix, 0)
	require.Error(t, err)
}
