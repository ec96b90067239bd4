// Package media side-loads post attachments: resolve the best source URL,
// download it through bounded transient storage, and re-upload it under a
// deterministic key.
package media

import (
	"net/url"
	"path"
	"strconv"
	"strings"

	"github.com/sportsbettor/ingest/internal/xsearch"
)

// mp4ContentType is the only variant container accepted for videos. HLS
// playlists and other streaming manifests are not downloadable artifacts.
const mp4ContentType = "video/mp4"

// ResolveURL picks the source URL for one attachment.
//
// Photos use their direct URL. Videos and animated GIFs use the encoded
// variant with the highest declared bit rate in an acceptable container,
// falling back to the preview image when no variant qualifies. Unknown kinds
// use the direct URL when present, else the preview image. ok is false when
// nothing is downloadable; that attachment is skipped, not an error.
func ResolveURL(m xsearch.RawMedia) (string, bool) {
	switch m.Type {
	case "photo":
		if m.URL != "" {
			return m.URL, true
		}
	case "video", "animated_gif":
		if best := bestVariant(m.Variants); best != "" {
			return best, true
		}
		if m.PreviewImageURL != "" {
			return m.PreviewImageURL, true
		}
		return "", false
	default:
		if m.URL != "" {
			return m.URL, true
		}
	}
	if m.PreviewImageURL != "" {
		return m.PreviewImageURL, true
	}
	return "", false
}

func bestVariant(variants []xsearch.MediaVariant) string {
	var bestURL string
	bestRate := int64(-1)
	for _, v := range variants {
		if v.ContentType != mp4ContentType || v.URL == "" {
			continue
		}
		if v.BitRate > bestRate {
			bestRate = v.BitRate
			bestURL = v.URL
		}
	}
	return bestURL
}

// Filename derives a blob-safe filename from the last path segment of the
// resolved URL, falling back to a generic name when the path has none.
func Filename(rawURL string) string {
	const fallback = "asset"
	u, err := url.Parse(rawURL)
	if err != nil {
		return fallback
	}
	base := path.Base(u.Path)
	if base == "" || base == "." || base == "/" {
		return fallback
	}
	return base
}

// DedupeFilename ensures name is unique within taken by appending a numeric
// suffix before the extension on collision, and records the result in taken.
func DedupeFilename(name string, taken map[string]bool) string {
	if !taken[name] {
		taken[name] = true
		return name
	}
	ext := path.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	for i := 1; ; i++ {
		candidate := stem + "_" + strconv.Itoa(i) + ext
		if !taken[candidate] {
			taken[candidate] = true
			return candidate
		}
	}
}
