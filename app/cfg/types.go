package cfg

import "time"

type Cfg struct {
	// Storage
	DBPath string
	OutDir string

	// Watch lists
	SubjectsFile string
	FeedsFile    string

	// Pipeline
	Timeout       time.Duration
	MaxFetches    int
	SnippetRadius int
	UserAgent     string
	SearchURL     string
	FetchRPS      float64

	// Alerts
	SMTP      SMTP
	TestAlert bool

	// Serve mode
	Serve        bool
	Port         string
	Schedule     string
	APIAccessKey string

	Debug   bool
	Version string
}

type SMTP struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
	To       string
	Timeout  time.Duration
}
