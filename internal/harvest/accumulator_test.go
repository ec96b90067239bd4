package harvest

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/sportsbettor/ingest/internal/storage/memory"
)

func TestAccumulatorResetDiscards(t *testing.T) {
	t.Parallel()

	a := NewAccumulator()
	a.Append(PostRecord{ID: "1"})
	a.Append(PostRecord{ID: "2"})
	require.Equal(t, 2, a.Len())

	a.Reset()
	require.Zero(t, a.Len())
	require.Empty(t, a.Records())
}

func TestCommitEmptyIsNoOp(t *testing.T) {
	t.Parallel()

	blobs := memory.NewBlobStore()
	c := NewCommitter(blobs, "news/raw")

	uri, err := c.Commit(context.Background(), nil, time.Now())
	require.NoError(t, err)
	require.Empty(t, uri)
	require.Empty(t, blobs.Keys())
}

func TestCommitWritesJSONL(t *testing.T) {
	t.Parallel()

	blobs := memory.NewBlobStore()
	c := NewCommitter(blobs, "news/raw")

	author := "RapSheet"
	records := []PostRecord{
		{ID: "10", Text: "first", AuthorUsername: &author, CreatedAt: "2025-11-02T18:00:00Z", CreatedAtLocal: "2025-11-02T13:00:00-05:00"},
		{ID: "11", Text: "second", CreatedAt: "2025-11-02T18:05:00Z", CreatedAtLocal: "2025-11-02T13:05:00-05:00"},
	}
	at := time.Date(2025, 11, 2, 18, 10, 30, 0, time.UTC)

	uri, err := c.Commit(context.Background(), records, at)
	require.NoError(t, err)
	require.Contains(t, uri, "news/raw/2025-11-02/posts_20251102T181030Z.jsonl")

	data, err := blobs.GetObject(context.Background(), "news/raw/2025-11-02/posts_20251102T181030Z.jsonl")
	require.NoError(t, err)

	var lines []PostRecord
	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		var rec PostRecord
		require.NoError(t, json.Unmarshal(scanner.Bytes(), &rec))
		lines = append(lines, rec)
	}
	require.Len(t, lines, 2)
	require.Equal(t, "10", lines[0].ID)
	require.Equal(t, "RapSheet", *lines[0].AuthorUsername)
	// Null author serializes explicitly, it is not omitted.
	require.Contains(t, string(data), `"author_username":null`)
}

func TestCommitKeyDeterministicForCommitTime(t *testing.T) {
	t.Parallel()

	blobs := memory.NewBlobStore()
	c := NewCommitter(blobs, "news/raw")
	at := time.Date(2025, 11, 2, 18, 10, 30, 0, time.UTC)

	uri1, err := c.Commit(context.Background(), []PostRecord{{ID: "1"}}, at)
	require.NoError(t, err)
	uri2, err := c.Commit(context.Background(), []PostRecord{{ID: "1"}}, at)
	require.NoError(t, err)
	require.Equal(t, uri1, uri2)
	require.Len(t, blobs.Keys(), 1)
}
