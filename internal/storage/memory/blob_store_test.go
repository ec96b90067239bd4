package memory

import (
	"bytes"
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sportsbettor/ingest/internal/storage"
)

func TestPutAndGetObject(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	uri, err := store.PutObject(context.Background(), "a/b.json", "application/json", bytes.NewReader([]byte(`{}`)))
	require.NoError(t, err)
	require.Equal(t, "memory://a/b.json", uri)

	data, err := store.GetObject(context.Background(), "a/b.json")
	require.NoError(t, err)
	require.Equal(t, []byte(`{}`), data)
}

func TestGetObjectNotFound(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	_, err := store.GetObject(context.Background(), "missing")
	require.True(t, errors.Is(err, storage.ErrNotFound))
}

func TestGetObjectReturnsCopy(t *testing.T) {
	t.Parallel()

	store := NewBlobStore()
	_, err := store.PutObject(context.Background(), "k", "", bytes.NewReader([]byte("abc")))
	require.NoError(t, err)

	data, err := store.GetObject(context.Background(), "k")
	require.NoError(t, err)
	data[0] = 'z'

	again, err := store.GetObject(context.Background(), "k")
	require.NoError(t, err)
	require.Equal(t, []byte("abc"), again)
}
