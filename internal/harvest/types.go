// Package harvest implements the rotating recent-search harvester: query
// batch planning, the one-batch-per-tick rotor, cycle-scoped checkpointing,
// response normalization, and the per-cycle artifact committer.
package harvest

// MediaRef pairs an attachment's source URL with the key it was stored under.
type MediaRef struct {
	SourceURL string `json:"source_url"`
	StoredAt  string `json:"stored_at"`
}

// PostRecord is one normalized post. Immutable once produced.
type PostRecord struct {
	ID             string     `json:"id"`
	Text           string     `json:"text"`
	AuthorUsername *string    `json:"author_username"`
	CreatedAt      string     `json:"created_at"`
	CreatedAtLocal string     `json:"created_at_local"`
	Media          []MediaRef `json:"media,omitempty"`
}
