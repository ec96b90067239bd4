package checkpoint

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"time"

	"github.com/sportsbettor/ingest/internal/storage"
)

// RotationFileName is the rotation pointer blob name under the ref prefix.
const RotationFileName = "x_rotation.json"

// Rotation records where the batch rotor should resume after a restart.
type Rotation struct {
	NextIndex  int       `json:"next_index"`
	BatchCount int       `json:"batch_count"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// RotationStore persists the rotation pointer as a single JSON blob.
type RotationStore struct {
	blobs storage.BlobStore
	key   string
}

// NewRotationStore creates a rotation store rooted at the given prefix.
func NewRotationStore(blobs storage.BlobStore, refPrefix string) *RotationStore {
	return &RotationStore{
		blobs: blobs,
		key:   path.Join(refPrefix, RotationFileName),
	}
}

// Load reads the persisted rotation pointer. A missing blob returns the zero
// Rotation, which resumes at batch 0.
func (s *RotationStore) Load(ctx context.Context) (Rotation, error) {
	data, err := s.blobs.GetObject(ctx, s.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Rotation{}, nil
		}
		return Rotation{}, fmt.Errorf("read rotation blob: %w", err)
	}
	var rot Rotation
	if err := json.Unmarshal(data, &rot); err != nil {
		return Rotation{}, fmt.Errorf("decode rotation blob: %w", err)
	}
	return rot, nil
}

// Save writes the rotation pointer, overwriting any previous value.
func (s *RotationStore) Save(ctx context.Context, rot Rotation) error {
	data, err := json.Marshal(rot)
	if err != nil {
		return fmt.Errorf("encode rotation blob: %w", err)
	}
	if _, err := s.blobs.PutObject(ctx, s.key, "application/json", bytes.NewReader(data)); err != nil {
		return fmt.Errorf("write rotation blob: %w", err)
	}
	return nil
}
