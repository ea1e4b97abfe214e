package feed

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"time"

	"github.com/lysyi3m/politics-watch/app/database"
)

// Generator renders recorded hits as an RSS 2.0 channel.
type Generator struct {
	selfLink string
	version  string
}

func NewGenerator(selfLink, version string) *Generator {
	return &Generator{selfLink: selfLink, version: version}
}

func (g *Generator) Run(hits []database.Hit) (string, error) {
	var buf bytes.Buffer

	buf.WriteString(`<?xml version="1.0" encoding="UTF-8"?>`)
	buf.WriteString("\n")
	buf.WriteString(`<rss version="2.0" xmlns:atom="http://www.w3.org/2005/Atom">`)
	buf.WriteString("\n  <channel>\n")

	g.writeElement(&buf, "title", "Politics Watch hits", 4)
	g.writeElement(&buf, "link", g.selfLink, 4)
	g.writeElement(&buf, "description", "Articles quoting a watched name with the tracked phrase", 4)

	if g.selfLink != "" {
		buf.WriteString(fmt.Sprintf("    <atom:link href=\"%s\" rel=\"self\" type=\"application/rss+xml\" />\n",
			html.EscapeString(g.selfLink)))
	}

	lastBuildDate := time.Now().UTC()
	if len(hits) > 0 {
		lastBuildDate = hits[0].PublishedAt
	}
	g.writeElement(&buf, "lastBuildDate", lastBuildDate.Format(time.RFC1123Z), 4)
	g.writeElement(&buf, "generator", fmt.Sprintf("Politics-Watch/%s", g.version), 4)

	for _, hit := range hits {
		g.writeItem(&buf, hit)
	}

	buf.WriteString("  </channel>\n</rss>")

	return buf.String(), nil
}

func (g *Generator) writeItem(buf *bytes.Buffer, hit database.Hit) {
	buf.WriteString("    <item>\n")

	buf.WriteString("      <guid isPermaLink=\"false\">")
	xml.EscapeText(buf, []byte(hit.ID))
	buf.WriteString("</guid>\n")

	g.writeElement(buf, "title", fmt.Sprintf("%s: %s", hit.Subject, hit.Title), 6)
	g.writeElement(buf, "link", hit.URL, 6)
	g.writeElement(buf, "description", fmt.Sprintf("…%s…", hit.Snippet), 6)
	g.writeElement(buf, "pubDate", hit.PublishedAt.Format(time.RFC1123Z), 6)
	g.writeElement(buf, "category", hit.Subject, 6)

	if source := Host(hit.SourceFeed); source != "" {
		buf.WriteString(fmt.Sprintf("      <source url=\"%s\">", html.EscapeString(hit.SourceFeed)))
		xml.EscapeText(buf, []byte(source))
		buf.WriteString("</source>\n")
	}

	buf.WriteString("    </item>\n")
}

func (g *Generator) writeElement(buf *bytes.Buffer, tag, content string, indent int) {
	if content == "" {
		return
	}

	for i := 0; i < indent; i++ {
		buf.WriteByte(' ')
	}

	buf.WriteString("<")
	buf.WriteString(tag)
	buf.WriteString(">")
	xml.EscapeText(buf, []byte(content))
	buf.WriteString("</")
	buf.WriteString(tag)
	buf.WriteString(">\n")
}
