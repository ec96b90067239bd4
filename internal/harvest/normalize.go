package harvest

import (
	"fmt"
	"time"

	"github.com/sportsbettor/ingest/internal/xsearch"
)

// ReferenceZone is the fixed reporting timezone for the secondary timestamp.
const ReferenceZone = "America/New_York"

// NormalizedPost pairs a post record with the raw media objects its
// attachments reference, for the side-loader to resolve.
type NormalizedPost struct {
	Record      PostRecord
	Attachments []xsearch.RawMedia
}

// Normalizer turns one search response into canonical post records.
type Normalizer struct {
	refZone *time.Location
}

// NewNormalizer loads the reference timezone once.
func NewNormalizer() (*Normalizer, error) {
	loc, err := time.LoadLocation(ReferenceZone)
	if err != nil {
		return nil, fmt.Errorf("load reference zone: %w", err)
	}
	return &Normalizer{refZone: loc}, nil
}

// Normalize converts each raw post in the response. A malformed post (no
// identifier, or an unparsable timestamp) is skipped and counted; it never
// aborts its siblings. The returned post order follows the response order.
func (n *Normalizer) Normalize(resp *xsearch.SearchResponse) (posts []NormalizedPost, skipped int) {
	usernames := make(map[string]string, len(resp.Includes.Users))
	for _, u := range resp.Includes.Users {
		if u.ID != "" && u.Username != "" {
			usernames[u.ID] = u.Username
		}
	}
	mediaByKey := make(map[string]xsearch.RawMedia, len(resp.Includes.Media))
	for _, m := range resp.Includes.Media {
		if m.MediaKey != "" {
			mediaByKey[m.MediaKey] = m
		}
	}

	for _, raw := range resp.Data {
		post, err := n.normalizeOne(raw, usernames, mediaByKey)
		if err != nil {
			skipped++
			continue
		}
		posts = append(posts, post)
	}
	return posts, skipped
}

func (n *Normalizer) normalizeOne(
	raw xsearch.RawPost,
	usernames map[string]string,
	mediaByKey map[string]xsearch.RawMedia,
) (NormalizedPost, error) {
	if raw.ID == "" {
		return NormalizedPost{}, fmt.Errorf("post has no identifier")
	}
	createdAt, err := time.Parse(time.RFC3339, raw.CreatedAt)
	if err != nil {
		return NormalizedPost{}, fmt.Errorf("parse created_at %q: %w", raw.CreatedAt, err)
	}

	// An author missing from the includes lookup is null, not an error.
	var author *string
	if name, ok := usernames[raw.AuthorID]; ok {
		author = &name
	}

	record := PostRecord{
		ID:             raw.ID,
		Text:           raw.Text,
		AuthorUsername: author,
		CreatedAt:      raw.CreatedAt,
		CreatedAtLocal: createdAt.In(n.refZone).Format(time.RFC3339),
	}

	var attachments []xsearch.RawMedia
	if raw.Attachments != nil {
		for _, key := range raw.Attachments.MediaKeys {
			if m, ok := mediaByKey[key]; ok {
				attachments = append(attachments, m)
			}
		}
	}

	return NormalizedPost{Record: record, Attachments: attachments}, nil
}
