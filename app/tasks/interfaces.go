package tasks

import (
	"context"
)

// Fetcher returns the body at a URL, or nil when it cannot be retrieved.
type Fetcher interface {
	Fetch(ctx context.Context, url string) []byte
}

// TaskSchedulerInterface defines the interface for background watch runs in
// serve mode.
// Example usage:
//
//	scheduler, err := NewScheduler("@every 30m", newWatchTask)
//	scheduler.Start()
//	defer scheduler.Stop()
//	scheduler.Trigger()
type TaskSchedulerInterface interface {
	Start()
	Stop()
	// Trigger starts a run in the background and reports false if one is already running.
	Trigger() bool
	Status() RunStatus
}
