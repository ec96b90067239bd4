package checkpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"

	"github.com/sportsbettor/ingest/internal/storage"
)

// FileName is the checkpoint blob name under the ref prefix. The shape of
// the blob ({"since_id": "..."}) is shared with earlier tooling that reads it.
const FileName = "x_recent_since_id.json"

type checkpointBlob struct {
	SinceID string `json:"since_id"`
}

// Store persists the committed watermark as a single JSON blob.
type Store struct {
	blobs storage.BlobStore
	key   string
}

// NewStore creates a checkpoint store rooted at the given prefix.
func NewStore(blobs storage.BlobStore, refPrefix string) *Store {
	return &Store{
		blobs: blobs,
		key:   path.Join(refPrefix, FileName),
	}
}

// Load reads the persisted watermark. A missing blob is a normal first run
// and returns the zero watermark. A corrupt blob returns an error; callers
// treat it the same as missing after logging (at-least-once over lost-post).
func (s *Store) Load(ctx context.Context) (Watermark, error) {
	data, err := s.blobs.GetObject(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", nil
		}
		return "", fmt.Errorf("read checkpoint blob: %w", err)
	}
	var blob checkpointBlob
	if err := json.Unmarshal(data, &blob); err != nil {
		return "", fmt.Errorf("decode checkpoint blob: %w", err)
	}
	return Watermark(blob.SinceID), nil
}

// Save writes the watermark, overwriting any previous value.
func (s *Store) Save(ctx context.Context, w Watermark) error {
	data, err := json.Marshal(checkpointBlob{SinceID: string(w)})
	if err != nil {
		return fmt.Errorf("encode checkpoint blob: %w", err)
	}
	if _, err := s.blobs.PutObject(ctx, s.key, "application/json", bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write checkpoint blob: %w", err)
	}
	return nil
}
