package feed

import (
	"strings"

	"golang.org/x/text/cases"
)

// MentionFinder reports which subjects appear in a headline. Matching is
// case-insensitive substring containment, so a short name inside a longer one
// also counts. Not safe for concurrent use.
type MentionFinder struct {
	subjects []string
	folded   []string
	caser    cases.Caser
}

func NewMentionFinder(subjects []string) *MentionFinder {
	caser := cases.Fold()
	folded := make([]string, len(subjects))
	for i, subject := range subjects {
		folded[i] = caser.String(subject)
	}

	return &MentionFinder{
		subjects: subjects,
		folded:   folded,
		caser:    caser,
	}
}

// Run returns mentioned subjects in subject-list order.
func (f *MentionFinder) Run(title string) []string {
	value := f.caser.String(title)

	var mentions []string
	for i, pattern := range f.folded {
		if pattern != "" && strings.Contains(value, pattern) {
			mentions = append(mentions, f.subjects[i])
		}
	}
	return mentions
}
