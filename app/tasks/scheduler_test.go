package tasks

import (
	"context"
	"testing"
	"time"
)

type blockingFetcher struct {
	started chan struct{}
	release chan struct{}
}

func (f *blockingFetcher) Fetch(ctx context.Context, url string) []byte {
	select {
	case f.started <- struct{}{}:
	default:
	}
	<-f.release
	return nil
}

func TestNewScheduler_InvalidSchedule(t *testing.T) {
	_, err := NewScheduler("every now and then", func() *WatchTask { return nil })
	if err == nil {
		t.Error("Expected error for invalid schedule")
	}
}

func TestScheduler_SkipsOverlappingRuns(t *testing.T) {
	f := newWatchFixture(t)
	fetcher := &blockingFetcher{started: make(chan struct{}, 1), release: make(chan struct{})}
	settings := f.settings([]string{"Ted Cruz"}, 120)

	scheduler, err := NewScheduler("@every 1h", func() *WatchTask {
		return NewWatchTask(settings, fetcher, f.seenRepo, f.hitRepo, f.sink)
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}

	if !scheduler.Trigger() {
		t.Fatal("Expected first run to start")
	}

	select {
	case <-fetcher.started:
	case <-time.After(5 * time.Second):
		t.Fatal("Expected run to start fetching")
	}

	if scheduler.Trigger() {
		t.Error("Expected second trigger to be skipped while a run is in progress")
	}
	if status := scheduler.Status(); !status.Running || status.LastRunID == "" {
		t.Errorf("Expected running status with run id, got %+v", status)
	}

	close(fetcher.release)
	scheduler.Stop()

	status := scheduler.Status()
	if status.Running {
		t.Error("Expected run to be finished after Stop")
	}
	if status.Runs != 1 {
		t.Errorf("Expected 1 completed run, got %d", status.Runs)
	}
	if status.LastError != "" {
		t.Errorf("Expected no error, got %q", status.LastError)
	}
	if status.LastFinished.IsZero() {
		t.Error("Expected finish time to be recorded")
	}
}

func TestScheduler_TriggerAfterRunCompletes(t *testing.T) {
	f := newWatchFixture(t)
	settings := f.settings([]string{"Ted Cruz"}, 120)

	scheduler, err := NewScheduler("@every 1h", func() *WatchTask {
		return NewWatchTask(settings, f.fetcher, f.seenRepo, f.hitRepo, f.sink)
	})
	if err != nil {
		t.Fatalf("Expected no error, got: %v", err)
	}
	defer scheduler.Stop()

	for i := 0; i < 2; i++ {
		deadline := time.Now().Add(5 * time.Second)
		for !scheduler.Trigger() {
			if time.Now().After(deadline) {
				t.Fatalf("Expected trigger %d to start", i+1)
			}
			time.Sleep(10 * time.Millisecond)
		}
		for scheduler.Status().Runs != i+1 {
			if time.Now().After(deadline) {
				t.Fatalf("Expected run %d to finish", i+1)
			}
			time.Sleep(10 * time.Millisecond)
		}
	}
}
