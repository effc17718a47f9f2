package scheduler

import (
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/booklend/internal/tasks"
)

const (
	JobCoverRefresh    = "cover_refresh"
	JobActivityCleanup = "activity_cleanup"
)

// CoverRefreshJob prefetches every catalog cover.
func CoverRefreshJob(schedule string) Job {
	return Job{
		Name:     JobCoverRefresh,
		Schedule: schedule,
		Task:     func() backlite.Task { return tasks.PrefetchCoversTask{} },
	}
}

// ActivityCleanupJob drops activity events older than retentionDays.
func ActivityCleanupJob(schedule string, retentionDays int) Job {
	return Job{
		Name:     JobActivityCleanup,
		Schedule: schedule,
		Task: func() backlite.Task {
			return tasks.CleanupActivityTask{RetentionDays: retentionDays}
		},
	}
}
