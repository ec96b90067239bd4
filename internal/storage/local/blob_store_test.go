package local

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sportsbettor/ingest/internal/storage"
)

func TestPutAndGetObject(t *testing.T) {
	t.Parallel()

	store, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	uri, err := store.PutObject(context.Background(), "news/raw/2025-01-05/posts.jsonl", "application/x-ndjson", bytes.NewReader([]byte("line\n")))
	require.NoError(t, err)
	require.Contains(t, uri, "file://")

	data, err := store.GetObject(context.Background(), "news/raw/2025-01-05/posts.jsonl")
	require.NoError(t, err)
	require.Equal(t, []byte("line\n"), data)
}

func TestPutObjectOverwrites(t *testing.T) {
	t.Parallel()

	store, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	_, err = store.PutObject(context.Background(), "ref/checkpoint.json", "", bytes.NewReader([]byte("first")))
	require.NoError(t, err)
	_, err = store.PutObject(context.Background(), "ref/checkpoint.json", "", bytes.NewReader([]byte("second")))
	require.NoError(t, err)

	data, err := store.GetObject(context.Background(), "ref/checkpoint.json")
	require.NoError(t, err)
	require.Equal(t, []byte("second"), data)
}

func TestGetObjectNotFound(t *testing.T) {
	t.Parallel()

	store, err := New(Config{BaseDir: t.TempDir()})
	require.NoError(t, err)

	_, err = store.GetObject(context.Background(), "ref/missing.json")
	require.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestPutObjectRejectsTraversal(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	store, err := New(Config{BaseDir: filepath.Join(dir, "blobs")})
	require.NoError(t, err)

	_, err = store.PutObject(context.Background(), "../escape.txt", "", bytes.NewReader([]byte("x")))
	require.Error(t, err)
}

func TestNewRequiresBaseDir(t *testing.T) {
	t.Parallel()

	_, err := New(Config{})
	require.Error(t, err)
}
