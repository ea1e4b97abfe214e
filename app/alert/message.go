package alert

import (
	"fmt"
	"time"

	"github.com/lysyi3m/politics-watch/app/database"
	"github.com/lysyi3m/politics-watch/app/feed"
)

// FormatHit renders the subject line and plain-text body for one hit.
func FormatHit(hit database.Hit) (string, string) {
	subject := fmt.Sprintf("[Politics Watch] %s - phrase detected (%s)", hit.Subject, feed.Host(hit.URL))

	body := fmt.Sprintf("Person: %s\n"+
		"Title:  %s\n"+
		"Link:   %s\n"+
		"Feed:   %s\n"+
		"Time:   %s\n\n"+
		"Context snippet:\n…%s…\n",
		hit.Subject,
		hit.Title,
		hit.URL,
		hit.SourceFeed,
		hit.PublishedAt.UTC().Format("2006-01-02 15:04 UTC"),
		hit.Snippet)

	return subject, body
}

// TestMessage returns the fixed alert used to check delivery settings.
func TestMessage(now time.Time) (string, string) {
	subject := "[Politics Watch] Test alert"
	body := fmt.Sprintf("This is a test alert from Politics Watch.\n"+
		"Sent: %s\n\n"+
		"If you received this, email delivery is configured correctly.\n",
		now.UTC().Format("2006-01-02 15:04 UTC"))
	return subject, body
}
