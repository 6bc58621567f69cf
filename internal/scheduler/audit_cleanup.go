// Package scheduler triggers periodic background jobs on a cron schedule.
package scheduler

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/mikestefanello/backlite"
	"github.com/robfig/cron/v3"

	"github.com/mrlokans/tasktracker/internal/tasks"
)

var parser = cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)

// Enqueuer accepts tasks for background execution.
type Enqueuer interface {
	Enqueue(ctx context.Context, task backlite.Task) (string, error)
}

// ValidateSchedule reports whether schedule is a five-field cron expression or a descriptor.
func ValidateSchedule(schedule string) error {
	if _, err := parser.Parse(schedule); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", schedule, err)
	}
	return nil
}

// AuditCleanupScheduler enqueues an audit retention task on a cron schedule.
// The work itself runs on the task queue, so a slow cleanup never blocks the scheduler.
type AuditCleanupScheduler struct {
	queue         Enqueuer
	schedule      string
	retentionDays int

	cron       *cron.Cron
	entryID    cron.EntryID
	mu         sync.RWMutex
	isRunning  bool
	ctx        context.Context
	cancelFunc context.CancelFunc
}

// NewAuditCleanupScheduler creates a new scheduler instance
func NewAuditCleanupScheduler(queue Enqueuer, schedule string, retentionDays int) *AuditCleanupScheduler {
	return &AuditCleanupScheduler{
		queue:         queue,
		schedule:      schedule,
		retentionDays: retentionDays,
		cron:          cron.New(cron.WithParser(parser)),
	}
}

// Start registers the job and starts the cron loop. Cancelling ctx stops it.
func (s *AuditCleanupScheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.isRunning {
		return nil
	}

	if err := ValidateSchedule(s.schedule); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(ctx)
	entryID, err := s.cron.AddFunc(s.schedule, func() {
		s.enqueue(runCtx, "schedule")
	})
	if err != nil {
		cancel()
		return fmt.Errorf("failed to schedule audit cleanup: %w", err)
	}
	s.entryID = entryID
	s.ctx, s.cancelFunc = runCtx, cancel

	s.cron.Start()
	s.isRunning = true

	log.Printf("Audit cleanup scheduler: started with schedule '%s', retention %d days. Next run: %v",
		s.schedule, s.retentionDays, s.cron.Entry(entryID).Next)

	go func() {
		<-runCtx.Done()
		s.mu.RLock()
		current := s.ctx == runCtx
		s.mu.RUnlock()
		if current {
			s.Stop()
		}
	}()

	return nil
}

// Stop waits for a running job to finish and stops the scheduler.
func (s *AuditCleanupScheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.isRunning {
		return
	}

	stopped := s.cron.Stop()
	<-stopped.Done()
	s.cron.Remove(s.entryID)

	s.isRunning = false
	s.cancelFunc()
	s.cancelFunc = nil
	s.ctx = nil

	log.Printf("Audit cleanup scheduler: stopped")
}

// RunNow enqueues a cleanup immediately.
func (s *AuditCleanupScheduler) RunNow(ctx context.Context) (string, error) {
	return s.queue.Enqueue(ctx, s.task("manual"))
}

// IsRunning returns whether the scheduler is active
func (s *AuditCleanupScheduler) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.isRunning
}

// NextRun returns when the job fires next, or the zero time if stopped.
func (s *AuditCleanupScheduler) NextRun() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.isRunning {
		return time.Time{}
	}
	return s.cron.Entry(s.entryID).Next
}

func (s *AuditCleanupScheduler) enqueue(ctx context.Context, trigger string) {
	id, err := s.queue.Enqueue(ctx, s.task(trigger))
	if err != nil {
		log.Printf("Audit cleanup scheduler: failed to enqueue cleanup: %v", err)
		return
	}
	log.Printf("Audit cleanup scheduler: enqueued cleanup task %s", id)
}

func (s *AuditCleanupScheduler) task(trigger string) tasks.CleanupAuditEventsTask {
	return tasks.CleanupAuditEventsTask{
		RetentionDays: s.retentionDays,
		Trigger:       trigger,
	}
}
