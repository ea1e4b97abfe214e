package cfg

import (
	"cmp"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

const DefaultSearchURL = "https://news.google.com/rss/search?q=%s&hl=en-US&gl=US&ceid=US:en"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

type rawCfg struct {
	// Storage
	DBPath string `long:"db-path" env:"DB_PATH" default:"pol_watch.db" description:"SQLite database holding seen fingerprints and hits"`
	OutDir string `long:"out-dir" env:"OUT_DIR" default:"out" description:"Directory for per-run JSON hit dumps (empty disables)"`

	// Watch lists
	SubjectsFile string `long:"subjects-file" env:"SUBJECTS_FILE" default:"republicans.txt" description:"Newline-delimited (or YAML) list of names to watch"`
	FeedsFile    string `long:"feeds-file" env:"EXTRA_FEEDS_FILE" default:"extra_feeds.txt" description:"Newline-delimited (or YAML) list of extra backstop feeds"`

	// Pipeline
	Timeout       int     `long:"timeout" env:"REQUEST_TIMEOUT" default:"20" description:"HTTP request timeout in seconds"`
	MaxFetches    int     `long:"max-fetches" env:"MAX_FETCHES" default:"120" description:"Maximum article page fetches per run"`
	SnippetRadius int     `long:"snippet-radius" env:"SNIPPET_RADIUS" default:"120" description:"Characters of context on each side of a match"`
	UserAgent     string  `long:"user-agent" env:"USER_AGENT" default:"PoliticsWatcher/1.0 (+news scanner)" description:"User agent string for HTTP requests"`
	SearchURL     string  `long:"search-url" env:"SEARCH_URL" description:"Search feed URL template, %s is replaced by the escaped query"`
	FetchRPS      float64 `long:"fetch-rps" env:"FETCH_RPS" default:"0" description:"Maximum HTTP requests per second (0 disables the limit)"`

	// Alerts
	SMTPHost     string `long:"smtp-host" env:"SMTP_HOST" description:"SMTP relay host"`
	SMTPPort     int    `long:"smtp-port" env:"SMTP_PORT" default:"587" description:"SMTP relay port"`
	SMTPUser     string `long:"smtp-user" env:"SMTP_USER" description:"SMTP username"`
	SMTPPassword string `long:"smtp-pass" env:"SMTP_PASS" description:"SMTP password"`
	EmailFrom    string `long:"email-from" env:"EMAIL_FROM" description:"Sender address (defaults to the SMTP username)"`
	EmailTo      string `long:"email-to" env:"EMAIL_TO" description:"Recipient address"`
	SMTPTimeout  int    `long:"smtp-timeout" env:"SMTP_TIMEOUT" default:"25" description:"SMTP timeout in seconds"`
	TestAlert    bool   `long:"test-alert" env:"TEST_ALERT" description:"Send a single test alert and exit"`

	// Serve mode
	Serve        bool   `long:"serve" env:"SERVE" description:"Run continuously on a schedule and expose the HTTP API"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port (serve mode)"`
	Schedule     string `long:"schedule" env:"SCHEDULE" default:"@every 30m" description:"Cron schedule for watch runs (serve mode)"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	Debug bool `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

func Load() (*Cfg, error) {
	return LoadArgs(os.Args[1:])
}

func LoadArgs(args []string) (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.ParseArgs(args); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		DBPath:        raw.DBPath,
		OutDir:        raw.OutDir,
		SubjectsFile:  raw.SubjectsFile,
		FeedsFile:     raw.FeedsFile,
		Timeout:       time.Duration(raw.Timeout) * time.Second,
		MaxFetches:    raw.MaxFetches,
		SnippetRadius: raw.SnippetRadius,
		UserAgent:     raw.UserAgent,
		SearchURL:     cmp.Or(raw.SearchURL, DefaultSearchURL),
		FetchRPS:      raw.FetchRPS,
		SMTP: SMTP{
			Host:     raw.SMTPHost,
			Port:     raw.SMTPPort,
			User:     raw.SMTPUser,
			Password: raw.SMTPPassword,
			From:     cmp.Or(raw.EmailFrom, raw.SMTPUser),
			To:       raw.EmailTo,
			Timeout:  time.Duration(raw.SMTPTimeout) * time.Second,
		},
		TestAlert:    raw.TestAlert,
		Serve:        raw.Serve,
		Port:         raw.Port,
		Schedule:     raw.Schedule,
		APIAccessKey: raw.APIAccessKey,
		Debug:        raw.Debug,
		Version:      GetVersion(),
	}

	if err := validate(raw); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

func validate(raw rawCfg) error {
	positiveFields := map[string]int{
		"timeout":      raw.Timeout,
		"smtp timeout": raw.SMTPTimeout,
	}
	for fieldName, fieldValue := range positiveFields {
		if fieldValue <= 0 {
			return fmt.Errorf("%s must be positive", fieldName)
		}
	}

	nonNegativeFields := map[string]int{
		"max fetches":    raw.MaxFetches,
		"snippet radius": raw.SnippetRadius,
	}
	for fieldName, fieldValue := range nonNegativeFields {
		if fieldValue < 0 {
			return fmt.Errorf("%s must be non-negative", fieldName)
		}
	}

	if raw.FetchRPS < 0 {
		return fmt.Errorf("fetch rps must be non-negative")
	}

	if raw.SearchURL != "" && strings.Count(raw.SearchURL, "%s") != 1 {
		return fmt.Errorf("search url must contain exactly one %%s placeholder")
	}

	return nil
}
