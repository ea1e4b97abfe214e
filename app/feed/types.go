package feed

import (
	"time"
)

// Item is a candidate article taken from a feed. Items are consumed within a
// run and never persisted.
type Item struct {
	Title       string
	Link        string
	PublishedAt time.Time
	SourceFeed  string
}

// Match describes the first phrase occurrence in a page.
type Match struct {
	Start   int // byte offset into the searched text
	End     int
	Snippet string
}
