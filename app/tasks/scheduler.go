package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

var _ TaskSchedulerInterface = (*Scheduler)(nil)

// RunStatus describes the latest run seen by the scheduler.
type RunStatus struct {
	Running      bool      `json:"running"`
	LastRunID    string    `json:"last_run_id,omitempty"`
	LastStarted  time.Time `json:"last_started,omitempty"`
	LastFinished time.Time `json:"last_finished,omitempty"`
	LastNewHits  int       `json:"last_new_hits"`
	LastFetches  int       `json:"last_fetches"`
	LastError    string    `json:"last_error,omitempty"`
	Runs         int       `json:"runs"`
}

// Scheduler runs watch tasks on a cron schedule, at most one at a time.
type Scheduler struct {
	cron    *cron.Cron
	newTask func() *WatchTask

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	running  sync.Mutex
	statusMu sync.RWMutex
	status   RunStatus
}

// NewScheduler validates schedule, which accepts standard cron expressions and
// descriptors such as "@every 30m".
func NewScheduler(schedule string, newTask func() *WatchTask) (*Scheduler, error) {
	ctx, cancel := context.WithCancel(context.Background())

	s := &Scheduler{
		cron:    cron.New(),
		newTask: newTask,
		ctx:     ctx,
		cancel:  cancel,
	}

	if _, err := s.cron.AddFunc(schedule, s.scheduledRun); err != nil {
		cancel()
		return nil, fmt.Errorf("failed to parse schedule %q: %w", schedule, err)
	}

	return s, nil
}

// Start kicks off one run immediately and then follows the schedule.
func (s *Scheduler) Start() {
	s.Trigger()
	s.cron.Start()
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) Trigger() bool {
	if !s.running.TryLock() {
		return false
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer s.running.Unlock()
		s.execute()
	}()

	return true
}

func (s *Scheduler) Status() RunStatus {
	s.statusMu.RLock()
	defer s.statusMu.RUnlock()
	return s.status
}

func (s *Scheduler) scheduledRun() {
	if !s.Trigger() {
		slog.Warn("Previous watch run still in progress, skipping scheduled run")
	}
}

func (s *Scheduler) execute() {
	task := s.newTask()

	s.statusMu.Lock()
	s.status.Running = true
	s.status.LastRunID = task.GetID()
	s.status.LastStarted = time.Now().UTC()
	s.statusMu.Unlock()

	result, err := task.Execute(s.ctx)

	s.statusMu.Lock()
	defer s.statusMu.Unlock()

	s.status.Running = false
	s.status.LastFinished = time.Now().UTC()
	s.status.Runs++
	s.status.LastError = ""
	s.status.LastNewHits = 0
	s.status.LastFetches = 0

	if err != nil {
		s.status.LastError = err.Error()
		slog.Error("Watch run failed", "run_id", task.GetID(), "error", err)
		return
	}

	s.status.LastNewHits = len(result.NewHits)
	s.status.LastFetches = result.Fetches
}
