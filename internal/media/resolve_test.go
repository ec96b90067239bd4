package media

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/sportsbettor/ingest/internal/xsearch"
)

func TestResolveURLPhoto(t *testing.T) {
	t.Parallel()

	url, ok := ResolveURL(xsearch.RawMedia{Type: "photo", URL: "https://cdn.example.com/a.jpg"})
	require.True(t, ok)
	require.Equal(t, "https://cdn.example.com/a.jpg", url)
}

func TestResolveURLVideoPicksHighestBitrate(t *testing.T) {
	t.Parallel()

	url, ok := ResolveURL(xsearch.RawMedia{
		Type: "video",
		Variants: []xsearch.MediaVariant{
			{BitRate: 500, ContentType: "video/mp4", URL: "https://cdn.example.com/v_500.mp4"},
			{BitRate: 1200, ContentType: "video/mp4", URL: "https://cdn.example.com/v_1200.mp4"},
			{BitRate: 9000, ContentType: "application/x-mpegURL", URL: "https://cdn.example.com/playlist.m3u8"},
		},
	})
	require.True(t, ok)
	require.Equal(t, "https://cdn.example.com/v_1200.mp4", url)
}

func TestResolveURLVideoFallsBackToPreview(t *testing.T) {
	t.Parallel()

	url, ok := ResolveURL(xsearch.RawMedia{
		Type:            "video",
		PreviewImageURL: "https://cdn.example.com/preview.jpg",
		Variants: []xsearch.MediaVariant{
			{BitRate: 9000, ContentType: "application/x-mpegURL", URL: "https://cdn.example.com/playlist.m3u8"},
		},
	})
	require.True(t, ok)
	require.Equal(t, "https://cdn.example.com/preview.jpg", url)
}

func TestResolveURLNothingDownloadable(t *testing.T) {
	t.Parallel()

	_, ok := ResolveURL(xsearch.RawMedia{Type: "video"})
	require.False(t, ok)

	_, ok = ResolveURL(xsearch.RawMedia{Type: "photo"})
	require.False(t, ok)
}

func TestResolveURLUnknownKind(t *testing.T) {
	t.Parallel()

	url, ok := ResolveURL(xsearch.RawMedia{Type: "hologram", URL: "https://cdn.example.com/h.bin"})
	require.True(t, ok)
	require.Equal(t, "https://cdn.example.com/h.bin", url)

	url, ok = ResolveURL(xsearch.RawMedia{Type: "hologram", PreviewImageURL: "https://cdn.example.com/h.jpg"})
	require.True(t, ok)
	require.Equal(t, "https://cdn.example.com/h.jpg", url)
}

func TestFilename(t *testing.T) {
	t.Parallel()

	require.Equal(t, "a.jpg", Filename("https://cdn.example.com/media/a.jpg"))
	require.Equal(t, "v_1200.mp4", Filename("https://cdn.example.com/v_1200.mp4?tag=12"))
	require.Equal(t, "asset", Filename("https://cdn.example.com/"))
}

func TestDedupeFilename(t *testing.T) {
	t.Parallel()

	taken := make(map[string]bool)
	require.Equal(t, "a.jpg", DedupeFilename("a.jpg", taken))
	require.Equal(t, "a_1.jpg", DedupeFilename("a.jpg", taken))
	require.Equal(t, "a_2.jpg", DedupeFilename("a.jpg", taken))
	require.Equal(t, "b.jpg", DedupeFilename("b.jpg", taken))
}
