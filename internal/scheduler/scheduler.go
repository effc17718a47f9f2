// Package scheduler enqueues background tasks on cron schedules.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"
)

var cronParser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)

// ValidateSchedule checks a standard five-field cron expression.
func ValidateSchedule(schedule string) error {
	_, err := cronParser.Parse(schedule)
	return err
}

// Enqueuer adds a task to the background queue.
type Enqueuer interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
}

// Job is a task enqueued every time its schedule fires.
type Job struct {
	Name     string
	Schedule string
	Task     func() backlite.Task
}

// Scheduler runs a set of jobs on a single cron loop.
type Scheduler struct {
	queue Enqueuer

	cron      *cron.Cron
	mu        sync.RWMutex
	jobs      map[string]Job
	entries   map[string]cron.EntryID
	isRunning bool
	ctx       context.Context
}

// New creates a new scheduler instance.
func New(queue Enqueuer) *Scheduler {
	return &Scheduler{
		queue:   queue,
		cron:    cron.New(cron.WithParser(cronParser)),
		jobs:    make(map[string]Job),
		entries: make(map[string]cron.EntryID),
	}
}

// Add registers a job. Names must be unique.
func (s *Scheduler) Add(job Job) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.jobs[job.Name]; exists {
		return fmt.Errorf("job %q already registered", job.Name)
	}
	if err := ValidateSchedule(job.Schedule); err != nil {
		return fmt.Errorf("invalid cron schedule '%s' for %s: %w", job.Schedule, job.Name, err)
	}

	entryID, err := s.cron.AddFunc(job.Schedule, func() { s.enqueue(job) })
	if err != nil {
		return fmt.Errorf("failed to schedule %s: %w", job.Name, err)
	}

	s.jobs[job.Name] = job
	s.entries[job.Name] = entryID
	return nil
}

// Start starts the cron loop. The scheduler stops when ctx is canceled.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return
	}

	s.ctx = ctx
	s.cron.Start()
	s.isRunning = true

	for name, id := range s.entries {
		log.Printf("Scheduler: %s scheduled with '%s'. Next run: %v",
			name, s.jobs[name].Schedule, s.cron.Entry(id).Next)
	}

	go func() {
		<-ctx.Done()
		s.Stop()
	}()
}

// Stop waits for running jobs and stops the scheduler.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.isRunning {
		s.mu.Unlock()
		return
	}
	s.isRunning = false
	s.mu.Unlock()

	// running jobs take the read lock in enqueue
	<-s.cron.Stop().Done()

	log.Printf("Scheduler: stopped")
}

// RunNow enqueues a registered job immediately, outside its schedule.
func (s *Scheduler) RunNow(ctx context.Context, name string) (string, error) {
	s.mu.RLock()
	job, ok := s.jobs[name]
	s.mu.RUnlock()
	if !ok {
		return "", fmt.Errorf("unknown job %q", name)
	}
	return s.queue.Enqueue(ctx, job.Task())
}

// IsRunning returns whether the scheduler is active.
func (s *Scheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when a job fires next, or nil when stopped or unknown.
func (s *Scheduler) NextRun(name string) *time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	id, ok := s.entries[name]
	if !s.isRunning || !ok {
		return nil
	}
	next := s.cron.Entry(id).Next
	return &next
}

func (s *Scheduler) enqueue(job Job) {
	s.mu.RLock()
	ctx := s.ctx
	s.mu.RUnlock()
	if ctx == nil {
		ctx = context.Background()
	}

	id, err := s.queue.Enqueue(ctx, job.Task())
	if err != nil {
		log.Printf("Scheduler: failed to enqueue %s: %v", job.Name, err)
		return
	}
	log.Printf("Scheduler: queued %s as task %s", job.Name, id)
}
