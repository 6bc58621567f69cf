package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// DefaultAuditRetentionDays applies when a task carries no positive retention.
const DefaultAuditRetentionDays = 30

var ErrNoAuditStore = errors.New("audit event store not configured")

// AuditEventCleaner deletes audit events older than a retention window.
type AuditEventCleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// CleanupObserver is told how many events each run removed.
type CleanupObserver interface {
	ObserveAuditCleanup(deleted int64)
}

// CleanupAuditEventsTask removes audit events past the retention window.
type CleanupAuditEventsTask struct {
	RetentionDays int    `json:"retention_days"`
	Trigger       string `json:"trigger,omitempty"` // "schedule" or "manual"
}

// Retention returns the window as a duration.
func (t CleanupAuditEventsTask) Retention() time.Duration {
	days := t.RetentionDays
	if days <= 0 {
		days = DefaultAuditRetentionDays
	}
	return time.Duration(days) * 24 * time.Hour
}

// Config returns the queue configuration for audit cleanup tasks.
func (t CleanupAuditEventsTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_audit_events",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   7 * 24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupAuditEventsProcessor creates a processor function for CleanupAuditEventsTask.
// observer may be nil.
func CleanupAuditEventsProcessor(cleaner AuditEventCleaner, observer CleanupObserver) backlite.QueueProcessor[CleanupAuditEventsTask] {
	return func(ctx context.Context, task CleanupAuditEventsTask) error {
		if cleaner == nil {
			return ErrNoAuditStore
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		deleted, err := cleaner.DeleteOldEvents(task.Retention())
		if err != nil {
			return fmt.Errorf("cleanup audit events: %w", err)
		}
		if observer != nil {
			observer.ObserveAuditCleanup(deleted)
		}

		log.Printf("[TASK] Removed %d audit events older than %s (trigger: %s)", deleted, task.Retention(), task.Trigger)
		return nil
	}
}

// NewCleanupAuditEventsQueue creates a backlite queue for audit cleanup tasks.
func NewCleanupAuditEventsQueue(cleaner AuditEventCleaner, observer CleanupObserver) backlite.Queue {
	return backlite.NewQueue(CleanupAuditEventsProcessor(cleaner, observer))
}
