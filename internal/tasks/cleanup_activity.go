package tasks

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/mikestefanello/backlite"
)

// DefaultActivityRetentionDays applies when a task carries no retention.
const DefaultActivityRetentionDays = 90

// ActivityCleaner deletes old account activity events.
type ActivityCleaner interface {
	DeleteOldEvents(retention time.Duration) (int64, error)
}

// CleanupActivityTask removes activity events older than RetentionDays.
type CleanupActivityTask struct {
	RetentionDays int `json:"retention_days"`
}

// Config returns the queue configuration for activity cleanup tasks.
func (t CleanupActivityTask) Config() backlite.QueueConfig {
	return backlite.QueueConfig{
		Name:        "cleanup_activity",
		MaxAttempts: 3,
		Backoff:     5 * time.Minute,
		Timeout:     2 * time.Minute,
		Retention: &backlite.Retention{
			Duration:   24 * time.Hour,
			OnlyFailed: false,
			Data:       &backlite.RetainData{OnlyFailed: true},
		},
	}
}

// CleanupActivityProcessor creates a processor function for CleanupActivityTask.
func CleanupActivityProcessor(cleaner ActivityCleaner) backlite.QueueProcessor[CleanupActivityTask] {
	return func(ctx context.Context, task CleanupActivityTask) error {
		if cleaner == nil {
			return errors.New("activity cleaner not configured")
		}

		days := task.RetentionDays
		if days <= 0 {
			days = DefaultActivityRetentionDays
		}

		deleted, err := cleaner.DeleteOldEvents(time.Duration(days) * 24 * time.Hour)
		if err != nil {
			return fmt.Errorf("cleanup activity: %w", err)
		}

		log.Printf("[TASK] Cleaned up %d activity events older than %d days", deleted, days)
		return nil
	}
}

// NewCleanupActivityQueue creates a backlite queue for activity cleanup tasks.
func NewCleanupActivityQueue(cleaner ActivityCleaner) backlite.Queue {
	return backlite.NewQueue(CleanupActivityProcessor(cleaner))
}
