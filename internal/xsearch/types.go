// Package xsearch is a minimal client for the recent-search endpoint of the
// X API v2, covering only the fields the harvester consumes.
package xsearch

// RawPost is one post object from the response data list.
type RawPost struct {
	ID          string       `json:"id"`
	Text        string       `json:"text"`
	AuthorID    string       `json:"author_id"`
	CreatedAt   string       `json:"created_at"`
	Attachments *Attachments `json:"attachments,omitempty"`
}

// Attachments references media objects in the includes section by key.
type Attachments struct {
	MediaKeys []string `json:"media_keys"`
}

// RawUser is one user object from includes.users.
type RawUser struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// RawMedia is one media object from includes.media.
type RawMedia struct {
	MediaKey        string         `json:"media_key"`
	Type            string         `json:"type"`
	URL             string         `json:"url,omitempty"`
	PreviewImageURL string         `json:"preview_image_url,omitempty"`
	Variants        []MediaVariant `json:"variants,omitempty"`
}

// MediaVariant is one encoded rendition of a video or animated attachment.
type MediaVariant struct {
	BitRate     int64  `json:"bit_rate,omitempty"`
	ContentType string `json:"content_type"`
	URL         string `json:"url"`
}

// Includes carries the expanded objects referenced by the data list.
type Includes struct {
	Users []RawUser  `json:"users,omitempty"`
	Media []RawMedia `json:"media,omitempty"`
}

// Meta is the response pagination/count envelope.
type Meta struct {
	NewestID    string `json:"newest_id,omitempty"`
	OldestID    string `json:"oldest_id,omitempty"`
	ResultCount int    `json:"result_count"`
}

// SearchResponse is the decoded recent-search payload.
type SearchResponse struct {
	Data     []RawPost `json:"data"`
	Includes Includes  `json:"includes"`
	Meta     Meta      `json:"meta"`
}
