package media

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/sportsbettor/ingest/internal/storage/memory"
	"github.com/sportsbettor/ingest/internal/xsearch"
)

func TestSideloadUploadsUnderDeterministicKeys(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/jpeg")
		_, _ = w.Write([]byte("jpeg-bytes-" + r.URL.Path))
	}))
	defer srv.Close()

	blobs := memory.NewBlobStore()
	s := New(blobs, Config{Prefix: "news/media"}, zap.NewNop())

	assets := s.Sideload(context.Background(), "123", "2025-11-02", []xsearch.RawMedia{
		{Type: "photo", URL: srv.URL + "/a.jpg"},
		{Type: "photo", URL: srv.URL + "/other/a.jpg"},
	})
	require.Len(t, assets, 2)

	require.Equal(t, "news/media/2025-11-02/123/a.jpg", assets[0].Key)
	// Same filename from a different path gets a numeric suffix.
	require.Equal(t, "news/media/2025-11-02/123/a_1.jpg", assets[1].Key)

	data, err := blobs.GetObject(context.Background(), assets[1].Key)
	require.NoError(t, err)
	require.Equal(t, "jpeg-bytes-/other/a.jpg", string(data))
}

func TestSideloadFailureIsolation(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if strings.Contains(r.URL.Path, "broken") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte("ok"))
	}))
	defer srv.Close()

	s := New(memory.NewBlobStore(), Config{Prefix: "news/media"}, zap.NewNop())

	assets := s.Sideload(context.Background(), "123", "2025-11-02", []xsearch.RawMedia{
		{Type: "photo", URL: srv.URL + "/broken.jpg"},
		{Type: "photo", URL: srv.URL + "/fine.jpg"},
	})
	// The failed download is skipped; its sibling still lands.
	require.Len(t, assets, 1)
	require.Equal(t, "news/media/2025-11-02/123/fine.jpg", assets[0].Key)
}

func TestSideloadSkipsUnresolvableAttachments(t *testing.T) {
	t.Parallel()

	s := New(memory.NewBlobStore(), Config{Prefix: "news/media"}, zap.NewNop())
	assets := s.Sideload(context.Background(), "123", "2025-11-02", []xsearch.RawMedia{
		{Type: "video"},
	})
	require.Empty(t, assets)
}

func TestSideloadEnforcesSizeLimit(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(make([]byte, 2048))
	}))
	defer srv.Close()

	blobs := memory.NewBlobStore()
	s := New(blobs, Config{Prefix: "news/media", MaxBytes: 1024, Timeout: 5 * time.Second}, zap.NewNop())

	assets := s.Sideload(context.Background(), "123", "2025-11-02", []xsearch.RawMedia{
		{Type: "photo", URL: srv.URL + "/big.jpg"},
	})
	require.Empty(t, assets)
	require.Empty(t, blobs.Keys())
}
