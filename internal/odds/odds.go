// Package odds implements the one-shot odds snapshot jobs. It fetches raw
// bookmaker odds for one sport, either a single market across upcoming
// games or per-event player prop markets, and persists the payloads;
// interpreting markets is left to downstream consumers.
package odds

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/sportsbettor/ingest/internal/storage"
)

const maxSnapshotBytes = 32 << 20

// Params selects which odds to snapshot.
type Params struct {
	Sport      string
	Regions    string
	Bookmaker  string
	Market     string
	OddsFormat string
	DaysFrom   int
}

// PropsParams selects which per-event player prop markets to snapshot.
// MaxEvents caps how many upcoming events are fetched; zero means all.
type PropsParams struct {
	Sport      string
	Regions    string
	Markets    []string
	OddsFormat string
	MaxEvents  int
}

// Event is the upstream event metadata carried into the props snapshot.
type Event struct {
	ID           string `json:"id"`
	CommenceTime string `json:"commence_time"`
	HomeTeam     string `json:"home_team"`
	AwayTeam     string `json:"away_team"`
}

// Credits carries the provider's quota headers, logged on every pull so
// operators can watch consumption.
type Credits struct {
	Remaining string
	Used      string
	Limit     string
}

// Snapshot describes one persisted pull.
type Snapshot struct {
	URI     string
	Events  int
	Credits Credits
}

// Client fetches odds and persists snapshots.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	blobs      storage.BlobStore
	prefix     string
	logger     *zap.Logger
}

// NewClient constructs a Client. The API key is passed as a query
// parameter, which is how the provider authenticates.
func NewClient(baseURL, apiKey string, blobs storage.BlobStore, prefix string, timeout time.Duration, logger *zap.Logger) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("odds base URL is required")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("odds API key is required")
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		apiKey:     apiKey,
		blobs:      blobs,
		prefix:     prefix,
		logger:     logger,
	}, nil
}

// fetch issues one GET against the provider and returns the body and
// headers. Non-200 responses become errors carrying a truncated body.
func (c *Client) fetch(ctx context.Context, endpoint string, query url.Values) ([]byte, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build odds request: %w", err)
	}
	query.Set("apiKey", c.apiKey)
	req.URL.RawQuery = query.Encode()

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch odds: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxSnapshotBytes))
	if err != nil {
		return nil, nil, fmt.Errorf("read odds response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, nil, fmt.Errorf("odds request returned status %d: %s", resp.StatusCode, truncate(body, 2048))
	}
	return body, resp.Header, nil
}

func creditsFrom(h http.Header) Credits {
	return Credits{
		Remaining: h.Get("X-Requests-Remaining"),
		Used:      h.Get("X-Requests-Used"),
		Limit:     h.Get("X-Requests-Limit"),
	}
}

// Pull fetches the odds for the given params and writes the raw response
// body as one JSON blob keyed by the pull timestamp.
func (c *Client) Pull(ctx context.Context, p Params, now time.Time) (Snapshot, error) {
	q := url.Values{}
	q.Set("regions", p.Regions)
	q.Set("bookmakers", p.Bookmaker)
	q.Set("markets", p.Market)
	q.Set("oddsFormat", p.OddsFormat)
	q.Set("dateFormat", "iso")
	if p.DaysFrom > 0 {
		q.Set("daysFrom", strconv.Itoa(p.DaysFrom))
	}

	body, headers, err := c.fetch(ctx, fmt.Sprintf("%s/sports/%s/odds", c.baseURL, url.PathEscape(p.Sport)), q)
	if err != nil {
		return Snapshot{}, err
	}

	// The payload is a JSON array of events; count them without keeping a
	// decoded copy around.
	var events []json.RawMessage
	if err := json.Unmarshal(body, &events); err != nil {
		return Snapshot{}, fmt.Errorf("decode odds response: %w", err)
	}

	credits := creditsFrom(headers)

	key := path.Join(c.prefix, fmt.Sprintf("odds_pull_%s.json", now.UTC().Format("20060102T150405Z")))
	uri, err := c.blobs.PutObject(ctx, key, "application/json", bytes.NewReader(body))
	if err != nil {
		return Snapshot{}, fmt.Errorf("write odds snapshot: %w", err)
	}

	c.logger.Info("odds snapshot persisted",
		zap.String("artifact", uri),
		zap.Int("events", len(events)),
		zap.String("sport", p.Sport),
		zap.String("bookmaker", p.Bookmaker),
		zap.String("market", p.Market),
		zap.String("credits_remaining", credits.Remaining),
		zap.String("credits_used", credits.Used),
	)

	return Snapshot{URI: uri, Events: len(events), Credits: credits}, nil
}

type eventProps struct {
	Event      Event           `json:"event"`
	Bookmakers json.RawMessage `json:"bookmakers"`
}

type propsPayload struct {
	FetchedAt   string       `json:"fetched_at"`
	Sport       string       `json:"sport"`
	Regions     []string     `json:"regions"`
	Markets     []string     `json:"markets"`
	EventsCount int          `json:"events_count"`
	Results     []eventProps `json:"results"`
}

// PullEventProps lists upcoming events (a free call, per the provider's
// quota rules) and fetches the given prop markets per event, persisting one
// consolidated snapshot. A failed event fetch is logged and skipped; the
// snapshot carries whatever succeeded.
func (c *Client) PullEventProps(ctx context.Context, p PropsParams, now time.Time) (Snapshot, error) {
	q := url.Values{}
	q.Set("dateFormat", "iso")
	body, _, err := c.fetch(ctx, fmt.Sprintf("%s/sports/%s/events", c.baseURL, url.PathEscape(p.Sport)), q)
	if err != nil {
		return Snapshot{}, fmt.Errorf("list events: %w", err)
	}
	var events []Event
	if err := json.Unmarshal(body, &events); err != nil {
		return Snapshot{}, fmt.Errorf("decode events response: %w", err)
	}
	if p.MaxEvents > 0 && len(events) > p.MaxEvents {
		events = events[:p.MaxEvents]
	}
	c.logger.Info("fetching event prop markets",
		zap.Int("events", len(events)),
		zap.Int("markets", len(p.Markets)),
	)

	var (
		results []eventProps
		credits Credits
	)
	for _, ev := range events {
		if ev.ID == "" {
			continue
		}
		eq := url.Values{}
		eq.Set("regions", p.Regions)
		eq.Set("markets", strings.Join(p.Markets, ","))
		eq.Set("oddsFormat", p.OddsFormat)
		eq.Set("dateFormat", "iso")
		endpoint := fmt.Sprintf("%s/sports/%s/events/%s/odds",
			c.baseURL, url.PathEscape(p.Sport), url.PathEscape(ev.ID))
		evBody, headers, err := c.fetch(ctx, endpoint, eq)
		if err != nil {
			c.logger.Error("event odds fetch failed",
				zap.String("event", ev.ID),
				zap.Error(err),
			)
			continue
		}
		var odds struct {
			Bookmakers json.RawMessage `json:"bookmakers"`
		}
		if err := json.Unmarshal(evBody, &odds); err != nil {
			c.logger.Error("event odds decode failed",
				zap.String("event", ev.ID),
				zap.Error(err),
			)
			continue
		}
		// Quota headers are cumulative; keep the latest.
		credits = creditsFrom(headers)
		results = append(results, eventProps{Event: ev, Bookmakers: odds.Bookmakers})
	}

	payload, err := json.Marshal(propsPayload{
		FetchedAt:   now.UTC().Format(time.RFC3339),
		Sport:       p.Sport,
		Regions:     []string{p.Regions},
		Markets:     p.Markets,
		EventsCount: len(results),
		Results:     results,
	})
	if err != nil {
		return Snapshot{}, fmt.Errorf("encode props snapshot: %w", err)
	}

	key := path.Join(c.prefix, fmt.Sprintf("player_props_events_%s.json", now.UTC().Format("20060102T150405Z")))
	uri, err := c.blobs.PutObject(ctx, key, "application/json", bytes.NewReader(payload))
	if err != nil {
		return Snapshot{}, fmt.Errorf("write props snapshot: %w", err)
	}

	c.logger.Info("player props snapshot persisted",
		zap.String("artifact", uri),
		zap.Int("events", len(results)),
		zap.String("sport", p.Sport),
		zap.String("credits_remaining", credits.Remaining),
		zap.String("credits_used", credits.Used),
	)

	return Snapshot{URI: uri, Events: len(results), Credits: credits}, nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n])
}
