package feed

import (
	"html"
	"regexp"
	"strings"

	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html/charset"
)

// whitespaceRun also covers no-break and other Unicode spaces left by entities like &nbsp;.
var whitespaceRun = regexp.MustCompile(`[\s\p{Z}\x{FEFF}]+`)

// TextExtractor flattens an HTML page into a single line of plain text. It has
// no notion of article body versus page chrome.
type TextExtractor struct {
	stripTagsPolicy *bluemonday.Policy
}

func NewTextExtractor() *TextExtractor {
	// Only comments and the content of script and style elements are dropped.
	policy := bluemonday.StripTagsPolicy()
	policy.AddSpaceWhenStrippingTag(true)
	policy.AllowElementsContent("title", "noscript", "noembed", "noframes", "iframe", "object")

	return &TextExtractor{stripTagsPolicy: policy}
}

func (e *TextExtractor) Run(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	text := e.decode(data)
	text = e.stripTagsPolicy.Sanitize(text)
	text = html.UnescapeString(text)
	text = whitespaceRun.ReplaceAllString(text, " ")

	return strings.TrimSpace(text)
}

// decode converts the page to UTF-8 using its BOM or meta charset, dropping
// bytes that still fail to decode.
func (e *TextExtractor) decode(data []byte) string {
	encoding, _, _ := charset.DetermineEncoding(data, "text/html")
	decoded, err := encoding.NewDecoder().Bytes(data)
	if err != nil {
		decoded = data
	}
	return strings.ToValidUTF8(string(decoded), "")
}
