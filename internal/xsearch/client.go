package xsearch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// Field selectors requested on every search call. The harvester needs the
// author expansion to resolve usernames and the media expansion to side-load
// attachments; everything else is left out to keep payloads small.
const (
	tweetFields = "created_at,author_id,attachments"
	expansions  = "author_id,attachments.media_keys"
	userFields  = "username"
	mediaFields = "url,preview_image_url,variants,type"
)

// Config captures client construction parameters.
type Config struct {
	BaseURL string
	Bearer  string
	Timeout time.Duration
}

// Client issues recent-search requests with bearer authentication.
type Client struct {
	httpClient *http.Client
	baseURL    string
	bearer     string
}

// NewClient creates a search client.
func NewClient(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("base URL is required")
	}
	if cfg.Bearer == "" {
		return nil, fmt.Errorf("bearer token is required")
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    cfg.BaseURL,
		bearer:     cfg.Bearer,
	}, nil
}

// SearchRequest is one recent-search call.
type SearchRequest struct {
	Query      string
	SinceID    string
	MaxResults int
}

// RecentSearch performs one search call and decodes the response. Any
// network, HTTP, or decode failure is returned as a single error; the caller
// treats the tick as having produced zero posts.
func (c *Client) RecentSearch(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	if req.Query == "" {
		return nil, fmt.Errorf("query is required")
	}

	params := url.Values{}
	params.Set("query", req.Query)
	params.Set("max_results", strconv.Itoa(req.MaxResults))
	params.Set("tweet.fields", tweetFields)
	params.Set("expansions", expansions)
	params.Set("user.fields", userFields)
	params.Set("media.fields", mediaFields)
	if req.SinceID != "" {
		params.Set("since_id", req.SinceID)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("build search request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.bearer)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("search request: %w", err)
	}
	defer resp.Body.Close() //nolint:errcheck // response body close

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return nil, fmt.Errorf("search request: status %d: %s", resp.StatusCode, string(body))
	}

	var decoded SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	return &decoded, nil
}
