// Package factory constructs the configured blob storage backend.
package factory

import (
	"context"
	"fmt"

	gstorage "cloud.google.com/go/storage"

	"github.com/sportsbettor/ingest/internal/storage"
	"github.com/sportsbettor/ingest/internal/storage/gcs"
	"github.com/sportsbettor/ingest/internal/storage/local"
	"github.com/sportsbettor/ingest/internal/storage/memory"
)

// Build returns the blob backend named by provider: "gcs", "local", or
// "memory".
func Build(ctx context.Context, provider, gcsBucket, localDir string) (storage.BlobStore, error) {
	switch provider {
	case "gcs":
		client, err := gstorage.NewClient(ctx)
		if err != nil {
			return nil, fmt.Errorf("create gcs client: %w", err)
		}
		store, err := gcs.New(ctx, client, gcs.Config{Bucket: gcsBucket})
		if err != nil {
			return nil, fmt.Errorf("init gcs blob store: %w", err)
		}
		return store, nil
	case "local":
		store, err := local.New(local.Config{BaseDir: localDir})
		if err != nil {
			return nil, fmt.Errorf("init local blob store: %w", err)
		}
		return store, nil
	case "memory":
		return memory.NewBlobStore(), nil
	default:
		return nil, fmt.Errorf("unknown storage provider %q", provider)
	}
}
