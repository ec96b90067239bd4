package media

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"time"

	"go.uber.org/zap"

	"github.com/sportsbettor/ingest/internal/storage"
	"github.com/sportsbettor/ingest/internal/xsearch"
)

// DefaultMaxBytes bounds a single asset download.
const DefaultMaxBytes = 64 << 20

// Asset is one side-loaded attachment after upload.
type Asset struct {
	SourceURL string
	Filename  string
	Key       string
	URI       string
}

// Config captures side-loader construction parameters.
type Config struct {
	// Prefix is the destination key prefix, e.g. "news/media".
	Prefix string
	// MaxBytes bounds a single download; DefaultMaxBytes when zero.
	MaxBytes int64
	// Timeout bounds a single download request.
	Timeout time.Duration
}

// Sideloader downloads post attachments into transient local storage and
// re-uploads them to the blob store. Assets are processed one at a time;
// each failure is logged and skipped without touching siblings.
type Sideloader struct {
	httpClient *http.Client
	blobs      storage.BlobStore
	prefix     string
	maxBytes   int64
	logger     *zap.Logger
}

// New constructs a Sideloader.
func New(blobs storage.BlobStore, cfg Config, logger *zap.Logger) *Sideloader {
	maxBytes := cfg.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	return &Sideloader{
		httpClient: &http.Client{Timeout: timeout},
		blobs:      blobs,
		prefix:     cfg.Prefix,
		maxBytes:   maxBytes,
		logger:     logger,
	}
}

// Sideload resolves, downloads, and uploads every downloadable attachment of
// one post. day is the date bucket for the destination key. The returned
// assets cover only the attachments that made it to storage; a failed or
// skipped asset never removes the post from the cycle buffer.
func (s *Sideloader) Sideload(ctx context.Context, postID, day string, attachments []xsearch.RawMedia) []Asset {
	var assets []Asset
	taken := make(map[string]bool, len(attachments))

	for _, m := range attachments {
		sourceURL, ok := ResolveURL(m)
		if !ok {
			continue
		}
		filename := DedupeFilename(Filename(sourceURL), taken)
		key := path.Join(s.prefix, day, postID, filename)

		uri, err := s.transfer(ctx, sourceURL, key)
		if err != nil {
			s.logger.Warn("media side-load failed",
				zap.String("post_id", postID),
				zap.String("source_url", sourceURL),
				zap.Error(err),
			)
			continue
		}
		assets = append(assets, Asset{
			SourceURL: sourceURL,
			Filename:  filename,
			Key:       key,
			URI:       uri,
		})
	}
	return assets
}

// transfer streams the source into a temp file, then uploads from disk, so
// the destination write never holds a live network stream open.
func (s *Sideloader) transfer(ctx context.Context, sourceURL, key string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, sourceURL, nil)
	if err != nil {
		return "", fmt.Errorf("build download request: %w", err)
	}
	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download: status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "sideload-*")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	defer func() {
		tmp.Close()           //nolint:errcheck // best-effort cleanup
		os.Remove(tmp.Name()) //nolint:errcheck // best-effort cleanup
	}()

	n, err := io.Copy(tmp, io.LimitReader(resp.Body, s.maxBytes+1))
	if err != nil {
		return "", fmt.Errorf("stream to temp file: %w", err)
	}
	if n > s.maxBytes {
		return "", fmt.Errorf("asset exceeds %d byte limit", s.maxBytes)
	}
	if _, err := tmp.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind temp file: %w", err)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	uri, err := s.blobs.PutObject(ctx, key, contentType, tmp)
	if err != nil {
		return "", fmt.Errorf("upload: %w", err)
	}
	return uri, nil
}
