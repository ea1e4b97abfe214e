package tasks

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/lysyi3m/politics-watch/app/alert"
	"github.com/lysyi3m/politics-watch/app/database"
	"github.com/lysyi3m/politics-watch/app/feed"
	"github.com/lysyi3m/politics-watch/app/metrics"
)

type WatchSettings struct {
	Subjects []string
	// Feeds are the backstop feeds, already merged with operator extras.
	Feeds         []string
	SearchURL     string
	MaxFetches    int
	SnippetRadius int
	// OutDir receives the per-run JSON dump. Empty disables it.
	OutDir string
}

// Result summarises one watch run.
type Result struct {
	RunID   string
	NewHits []database.Hit
	Fetches int
	// BudgetExhausted is set when at least one candidate was left unfetched.
	BudgetExhausted bool
	AlertsSent      int
	AlertsFailed    int
	DumpPath        string
	Duration        time.Duration
}

// WatchTask runs the targeted and backstop passes once, then alerts on new hits.
type WatchTask struct {
	Task
	settings  WatchSettings
	fetcher   Fetcher
	parser    *feed.Parser
	extractor *feed.TextExtractor
	matcher   *feed.Matcher
	mentions  *feed.MentionFinder
	seenRepo  database.SeenRepository
	hitRepo   database.HitRepository
	sink      alert.Sink
	now       func() time.Time
	logger    *slog.Logger
}

func NewWatchTask(settings WatchSettings, fetcher Fetcher, seenRepo database.SeenRepository,
	hitRepo database.HitRepository, sink alert.Sink) *WatchTask {
	task := NewTask(TaskTypeWatch)

	return &WatchTask{
		Task:      task,
		settings:  settings,
		fetcher:   fetcher,
		parser:    feed.NewParser(),
		extractor: feed.NewTextExtractor(),
		matcher:   feed.NewMatcher(settings.SnippetRadius),
		mentions:  feed.NewMentionFinder(settings.Subjects),
		seenRepo:  seenRepo,
		hitRepo:   hitRepo,
		sink:      sink,
		now:       time.Now,
		logger:    slog.With("run_id", task.ID),
	}
}

// Execute performs the run. Only store failures are returned as errors.
func (t *WatchTask) Execute(ctx context.Context) (*Result, error) {
	t.Start()
	result := &Result{RunID: t.ID}

	err := t.collect(ctx, result)
	result.Duration = t.GetDuration()
	metrics.RecordRun(err, result.Duration)
	if err != nil {
		return nil, err
	}

	t.emit(ctx, result)

	if len(result.NewHits) > 0 && t.settings.OutDir != "" {
		path, err := t.writeDump(result.NewHits)
		if err != nil {
			t.logger.Warn("Failed to write hits dump", "error", err)
		} else {
			result.DumpPath = path
		}
	}

	result.Duration = t.GetDuration()
	t.logger.Info("Task completed",
		"type", string(t.Type),
		"duration", result.Duration,
		"fetches", result.Fetches,
		"budget_exhausted", result.BudgetExhausted,
		"new", len(result.NewHits))

	return result, nil
}

func (t *WatchTask) collect(ctx context.Context, result *Result) error {
	if err := t.targetedPass(ctx, result); err != nil {
		return err
	}

	if result.Fetches >= t.settings.MaxFetches {
		t.logger.Info("Article fetch budget used up, skipping backstop pass", "max_fetches", t.settings.MaxFetches)
		return nil
	}

	return t.backstopPass(ctx, result)
}

func (t *WatchTask) targetedPass(ctx context.Context, result *Result) error {
	for _, subject := range t.settings.Subjects {
		feedURL := feed.SearchFeedURL(t.settings.SearchURL, subject)
		items := t.parser.Run(t.fetcher.Fetch(ctx, feedURL), feedURL)

		t.logger.Debug("Search feed parsed", "subject", subject, "items", len(items))

		for _, item := range items {
			if !t.budgetLeft(result) {
				return nil
			}

			seen, err := t.seenRepo.CheckAndMark(ctx, feed.SeenKey(subject, item))
			if err != nil {
				return fmt.Errorf("failed to check seen state: %w", err)
			}
			if seen {
				continue
			}

			match, ok := t.fetchAndMatch(ctx, item.Link, result, metrics.PassTargeted)
			if !ok {
				continue
			}

			if err := t.recordHit(ctx, subject, item, match, result, metrics.PassTargeted); err != nil {
				return err
			}
		}
	}

	return nil
}

func (t *WatchTask) backstopPass(ctx context.Context, result *Result) error {
	for _, feedURL := range t.settings.Feeds {
		items := t.parser.Run(t.fetcher.Fetch(ctx, feedURL), feedURL)

		t.logger.Debug("Backstop feed parsed", "feed", feedURL, "items", len(items))

		for _, item := range items {
			mentions := t.mentions.Run(item.Title)
			if len(mentions) == 0 {
				continue
			}

			if !t.budgetLeft(result) {
				return nil
			}

			seen, err := t.seenRepo.CheckAndMark(ctx, feed.BackstopSeenKey(item))
			if err != nil {
				return fmt.Errorf("failed to check seen state: %w", err)
			}
			if seen {
				continue
			}

			match, ok := t.fetchAndMatch(ctx, item.Link, result, metrics.PassBackstop)
			if !ok {
				continue
			}

			for _, subject := range mentions {
				if err := t.recordHit(ctx, subject, item, match, result, metrics.PassBackstop); err != nil {
					return err
				}
			}
		}
	}

	return nil
}

// budgetLeft is asked once per pending candidate. It latches BudgetExhausted
// the first time a candidate is refused a fetch.
func (t *WatchTask) budgetLeft(result *Result) bool {
	if result.Fetches < t.settings.MaxFetches {
		return true
	}
	if !result.BudgetExhausted {
		result.BudgetExhausted = true
		metrics.RecordBudgetExhausted()
	}
	return false
}

func (t *WatchTask) fetchAndMatch(ctx context.Context, articleURL string, result *Result, pass string) (feed.Match, bool) {
	result.Fetches++
	metrics.RecordArticleFetch(pass)

	text := t.extractor.Run(t.fetcher.Fetch(ctx, articleURL))
	return t.matcher.Run(text)
}

func (t *WatchTask) recordHit(ctx context.Context, subject string, item feed.Item, match feed.Match, result *Result, pass string) error {
	hit := database.Hit{
		ID:          feed.HitID(subject, item.Link),
		PublishedAt: item.PublishedAt,
		Subject:     subject,
		URL:         item.Link,
		Title:       item.Title,
		SourceFeed:  item.SourceFeed,
		Snippet:     match.Snippet,
	}

	inserted, err := t.hitRepo.InsertHitIfAbsent(ctx, hit)
	if err != nil {
		return fmt.Errorf("failed to record hit: %w", err)
	}
	if !inserted {
		t.logger.Debug("Hit already recorded", "id", hit.ID, "subject", subject)
		return nil
	}

	metrics.RecordHit(pass)
	t.logger.Info("Phrase detected", "pass", pass, "subject", subject, "url", hit.URL)
	result.NewHits = append(result.NewHits, hit)
	return nil
}

func (t *WatchTask) emit(ctx context.Context, result *Result) {
	for _, hit := range result.NewHits {
		subject, body := alert.FormatHit(hit)

		sent, err := t.sink.Send(ctx, subject, body)
		metrics.RecordAlert(sent, err)

		switch {
		case err != nil:
			result.AlertsFailed++
			t.logger.Warn("Email failed", "id", hit.ID, "error", err)
		case sent:
			result.AlertsSent++
		}
	}
}

// dumpRecord keeps the JSON dump in the layout of the hits table.
type dumpRecord struct {
	ID      string `json:"id"`
	TS      int64  `json:"ts"`
	Person  string `json:"person"`
	URL     string `json:"url"`
	Title   string `json:"title"`
	Feed    string `json:"feed"`
	Snippet string `json:"snippet"`
}

func (t *WatchTask) writeDump(hits []database.Hit) (string, error) {
	if err := os.MkdirAll(t.settings.OutDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create output directory: %w", err)
	}

	records := make([]dumpRecord, len(hits))
	for i, hit := range hits {
		records[i] = dumpRecord{
			ID:      hit.ID,
			TS:      hit.PublishedAt.Unix(),
			Person:  hit.Subject,
			URL:     hit.URL,
			Title:   hit.Title,
			Feed:    hit.SourceFeed,
			Snippet: hit.Snippet,
		}
	}

	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)
	encoder.SetEscapeHTML(false)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(records); err != nil {
		return "", fmt.Errorf("failed to encode hits: %w", err)
	}

	name := fmt.Sprintf("hits_%s.json", t.now().UTC().Format("20060102_150405"))
	path := filepath.Join(t.settings.OutDir, name)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", path, err)
	}

	return path, nil
}
