package feed

import (
	"bytes"
	"cmp"
	"log/slog"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"
)

// timestampLayouts are tried in order; the first layout that parses wins.
var timestampLayouts = []string{
	time.RFC1123Z,
	time.RFC1123,
	"Mon, 2 Jan 2006 15:04:05 -0700",
	"Mon, 2 Jan 2006 15:04:05 MST",
	"2006-01-02T15:04:05Z",
	time.RFC3339,
}

type Parser struct {
	gofeedParser *gofeed.Parser
	now          func() time.Time
}

func NewParser() *Parser {
	return &Parser{
		gofeedParser: gofeed.NewParser(),
		now:          time.Now,
	}
}

// Run decodes an RSS or Atom document into items in document order. Anything
// that is not a well-formed RSS or Atom document yields no items.
func (p *Parser) Run(data []byte, source string) []Item {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	feedType := gofeed.DetectFeedType(bytes.NewReader(data))
	if feedType != gofeed.FeedTypeRSS && feedType != gofeed.FeedTypeAtom {
		slog.Debug("Unsupported feed document", "feed", source, "type", feedType)
		return nil
	}

	parsed, err := p.gofeedParser.Parse(bytes.NewReader(data))
	if err != nil {
		slog.Warn("Failed to parse feed", "feed", source, "error", err)
		return nil
	}

	items := make([]Item, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		if entry == nil {
			continue
		}
		items = append(items, Item{
			Title:       strings.TrimSpace(entry.Title),
			Link:        strings.TrimSpace(entry.Link),
			PublishedAt: p.parseTimestamp(p.rawTimestamp(entry, feedType)),
			SourceFeed:  source,
		})
	}

	return items
}

// rawTimestamp picks pubDate for RSS and updated, then published, for Atom.
func (p *Parser) rawTimestamp(entry *gofeed.Item, feedType gofeed.FeedType) string {
	if feedType == gofeed.FeedTypeAtom {
		return strings.TrimSpace(cmp.Or(entry.Updated, entry.Published))
	}
	return strings.TrimSpace(entry.Published)
}

func (p *Parser) parseTimestamp(value string) time.Time {
	if value != "" {
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, value); err == nil {
				return t.UTC()
			}
		}
	}
	return p.now().UTC().Truncate(time.Second)
}
