package feed

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

const DefaultSnippetRadius = 120

// phrasePattern accepts I'm / I’m / Im / I am, flexible spacing, and one optional
// , ; : - or em dash between "racist" and "but".
var phrasePattern = regexp.MustCompile(`(?i)\b(?:i['’]?m|i[\s\p{Z}]+am)[\s\p{Z}]+not[\s\p{Z}]+racist[\s\p{Z}]*[,;:\-\x{2014}]?[\s\p{Z}]*but\b`)

type Matcher struct {
	radius int
}

func NewMatcher(radius int) *Matcher {
	if radius < 0 {
		radius = DefaultSnippetRadius
	}
	return &Matcher{radius: radius}
}

// Run returns the first occurrence of the phrase in text.
func (m *Matcher) Run(text string) (Match, bool) {
	loc := phrasePattern.FindStringIndex(text)
	if loc == nil {
		return Match{}, false
	}

	return Match{
		Start:   loc[0],
		End:     loc[1],
		Snippet: m.snippet(text, loc[0], loc[1]),
	}, true
}

// snippet clips radius characters (not bytes) on each side of [start, end).
func (m *Matcher) snippet(text string, start, end int) string {
	from := start
	for i := 0; i < m.radius && from > 0; i++ {
		_, size := utf8.DecodeLastRuneInString(text[:from])
		from -= size
	}

	to := end
	for i := 0; i < m.radius && to < len(text); i++ {
		_, size := utf8.DecodeRuneInString(text[to:])
		to += size
	}

	return strings.TrimSpace(text[from:to])
}
