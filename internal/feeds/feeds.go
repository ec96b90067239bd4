// Package feeds implements the one-shot RSS pull job. It fetches the
// configured feeds, normalizes entries into a common shape with UTC
// timestamps, and writes one JSONL artifact per run.
package feeds

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/sportsbettor/ingest/internal/storage"
)

// Source names one feed to pull.
type Source struct {
	Name string
	URL  string
}

// Item is one normalized feed entry. The canonical timestamp NewsUTC
// prefers published, then updated, then the pull time; TimestampSource
// records which one won.
type Item struct {
	Source          string     `json:"source"`
	GUID            string     `json:"guid"`
	URL             string     `json:"url"`
	Headline        string     `json:"headline"`
	Summary         string     `json:"summary"`
	PublishedUTC    *time.Time `json:"t_published_utc"`
	UpdatedUTC      *time.Time `json:"t_updated_utc"`
	FirstSeenUTC    time.Time  `json:"t_first_seen_utc"`
	NewsUTC         time.Time  `json:"t_news_utc"`
	TimestampSource string     `json:"t_source"`
	ContentHash     string     `json:"content_hash"`
}

// Puller fetches feeds and persists one artifact per run.
type Puller struct {
	parser  *gofeed.Parser
	blobs   storage.BlobStore
	prefix  string
	sources []Source
	logger  *zap.Logger
}

// NewPuller constructs a Puller writing under prefix (date subdirectory
// added per run).
func NewPuller(blobs storage.BlobStore, prefix string, sources []Source, timeout time.Duration, logger *zap.Logger) *Puller {
	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	return &Puller{
		parser:  parser,
		blobs:   blobs,
		prefix:  prefix,
		sources: sources,
		logger:  logger,
	}
}

// Pull fetches every configured source, collects normalized items in
// chronological order, and writes them as JSONL. A feed that fails to fetch
// is logged and skipped; the run only fails when nothing could be written.
// It returns the artifact URI and the number of items, or "" when every
// feed came back empty.
func (p *Puller) Pull(ctx context.Context, now time.Time) (string, int, error) {
	firstSeen := now.UTC()
	var items []Item
	for _, src := range p.sources {
		feed, err := p.parser.ParseURLWithContext(src.URL, ctx)
		if err != nil {
			p.logger.Error("feed fetch failed",
				zap.String("source", src.Name),
				zap.String("url", src.URL),
				zap.Error(err),
			)
			continue
		}
		p.logger.Info("feed fetched",
			zap.String("source", src.Name),
			zap.Int("entries", len(feed.Items)),
		)
		for _, entry := range feed.Items {
			items = append(items, normalizeEntry(src.Name, entry, firstSeen))
		}
	}
	if len(items) == 0 {
		return "", 0, nil
	}

	// Oldest first across all sources, so downstream consumers replay
	// the news in the order it broke.
	sort.SliceStable(items, func(i, j int) bool {
		return items[i].NewsUTC.Before(items[j].NewsUTC)
	})

	var buf strings.Builder
	enc := json.NewEncoder(&buf)
	for _, item := range items {
		if err := enc.Encode(item); err != nil {
			return "", 0, fmt.Errorf("encode feed item: %w", err)
		}
	}

	key := path.Join(p.prefix, firstSeen.Format("2006-01-02"),
		fmt.Sprintf("rss_pull_%s.jsonl", firstSeen.Format("20060102_150405")))
	uri, err := p.blobs.PutObject(ctx, key, "application/x-ndjson", strings.NewReader(buf.String()))
	if err != nil {
		return "", 0, fmt.Errorf("write feed artifact: %w", err)
	}
	return uri, len(items), nil
}

func normalizeEntry(source string, entry *gofeed.Item, firstSeen time.Time) Item {
	summary := entry.Description
	if summary == "" {
		summary = entry.Content
	}

	item := Item{
		Source:       source,
		GUID:         entry.GUID,
		URL:          entry.Link,
		Headline:     entry.Title,
		Summary:      summary,
		FirstSeenUTC: firstSeen,
	}
	if item.GUID == "" {
		item.GUID = entry.Link
	}
	if entry.PublishedParsed != nil {
		t := entry.PublishedParsed.UTC()
		item.PublishedUTC = &t
	}
	if entry.UpdatedParsed != nil {
		t := entry.UpdatedParsed.UTC()
		item.UpdatedUTC = &t
	}

	switch {
	case item.PublishedUTC != nil:
		item.NewsUTC = *item.PublishedUTC
		item.TimestampSource = "published"
	case item.UpdatedUTC != nil:
		item.NewsUTC = *item.UpdatedUTC
		item.TimestampSource = "updated"
	default:
		item.NewsUTC = firstSeen
		item.TimestampSource = "first_seen"
	}

	sum := sha256.Sum256([]byte(source + "|" + item.Headline + "|" + item.Summary))
	item.ContentHash = hex.EncodeToString(sum[:])
	return item
}
