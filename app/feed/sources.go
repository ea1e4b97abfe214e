package feed

import (
	"fmt"
	"net/url"
)

// DefaultSubjects is used when no subjects file is present.
var DefaultSubjects = []string{
	"Mitch McConnell", "Kevin McCarthy", "Mike Johnson",
	"Mitt Romney", "Lindsey Graham", "Ted Cruz", "Marco Rubio",
	"Elise Stefanik", "Marjorie Taylor Greene", "Jim Jordan",
	"Ron DeSantis", "Nikki Haley", "Greg Abbott", "Sarah Huckabee Sanders",
	"John Cornyn", "Josh Hawley", "Tom Cotton", "Rand Paul",
}

// BaseFeeds are general politics feeds scanned in the backstop pass.
var BaseFeeds = []string{
	"https://feeds.reuters.com/reuters/politicsNews",
	"https://feeds.a.dj.com/rss/RSSUSPOLITICS.xml",
	"https://rss.politico.com/politics-news.xml",
	"https://thehill.com/feed/",
	"https://feeds.foxnews.com/foxnews/politics",
	"https://www.npr.org/rss/rss.php?id=1014",
	"https://rss.cnn.com/rss/cnn_allpolitics.rss",
}

// SearchQuery narrows a search feed to articles naming subject alongside the phrase.
func SearchQuery(subject string) string {
	return fmt.Sprintf(`"%s" AND ("I'm not racist but" OR "I am not racist but")`, subject)
}

// SearchFeedURL fills template's single %s with the escaped query for subject.
func SearchFeedURL(template, subject string) string {
	return fmt.Sprintf(template, url.QueryEscape(SearchQuery(subject)))
}

// Host returns the host part of rawURL, or "" when it does not parse.
func Host(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
