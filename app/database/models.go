package database

import (
	"time"
)

// Hit is a recorded phrase match. ID is the hit fingerprint.
type Hit struct {
	ID          string    `json:"id"`
	PublishedAt time.Time `json:"published_at"`
	Subject     string    `json:"person"`
	URL         string    `json:"url"`
	Title       string    `json:"title"`
	SourceFeed  string    `json:"feed"`
	Snippet     string    `json:"snippet"`
}
