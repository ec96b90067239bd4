package harvest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/sportsbettor/ingest/internal/storage"
)

// Accumulator buffers normalized records for the active cycle. It is the
// only owner of the buffer: ticks append, the cycle-end commit drains, and
// the next cycle start resets it unconditionally.
type Accumulator struct {
	records []PostRecord
}

// NewAccumulator creates an empty accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{}
}

// Reset discards any buffered records. Called at every cycle start, whether
// or not the previous commit succeeded.
func (a *Accumulator) Reset() {
	a.records = nil
}

// Append adds one record to the buffer, preserving arrival order.
func (a *Accumulator) Append(record PostRecord) {
	a.records = append(a.records, record)
}

// Len returns the number of buffered records.
func (a *Accumulator) Len() int {
	return len(a.records)
}

// Records returns the buffered records in order.
func (a *Accumulator) Records() []PostRecord {
	return a.records
}

// Committer writes one consolidated newline-delimited artifact per cycle.
type Committer struct {
	blobs  storage.BlobStore
	prefix string
}

// NewCommitter creates a committer writing under the given key prefix.
func NewCommitter(blobs storage.BlobStore, prefix string) *Committer {
	return &Committer{blobs: blobs, prefix: prefix}
}

// Commit serializes the records as JSONL and writes them exactly once to a
// key derived from the commit time. An empty record list is a no-op: no
// artifact, no error. The key is deterministic for a given commit time, so
// a retried commit overwrites rather than duplicates.
func (c *Committer) Commit(ctx context.Context, records []PostRecord, at time.Time) (string, error) {
	if len(records) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	for _, record := range records {
		line, err := json.Marshal(record)
		if err != nil {
			return "", fmt.Errorf("encode post record %s: %w", record.ID, err)
		}
		buf.Write(line)
		buf.WriteByte('\n')
	}

	key := path.Join(
		c.prefix,
		at.UTC().Format("2006-01-02"),
		fmt.Sprintf("posts_%s.jsonl", at.UTC().Format("20060102T150405Z")),
	)
	uri, err := c.blobs.PutObject(ctx, key, "application/x-ndjson", &buf)
	if err != nil {
		return "", fmt.Errorf("write cycle artifact: %w", err)
	}
	return uri, nil
}
