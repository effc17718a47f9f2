package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/mikestefanello/backlite"

	"github.com/mrlokans/booklend/internal/tasks"
)

// TasksController exposes the background queue over JSON.
type TasksController struct {
	queue TaskQueue
}

// NewTasksController creates a new TasksController.
func NewTasksController(queue TaskQueue) *TasksController {
	return &TasksController{queue: queue}
}

// PrefetchCoversRequest optionally limits a prefetch to some books.
type PrefetchCoversRequest struct {
	BookIDs []int `json:"book_ids"`
}

// RunPrefetchCovers enqueues a cover prefetch.
// POST /api/tasks/prefetch_covers/run
func (tc *TasksController) RunPrefetchCovers(c *gin.Context) {
	var req PrefetchCoversRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondBadRequest(c, "invalid request body")
			return
		}
	}

	id, err := tc.queue.Enqueue(c.Request.Context(), tasks.PrefetchCoversTask{BookIDs: req.BookIDs})
	if err != nil {
		respondInternalError(c, err, "enqueue prefetch_covers")
		return
	}

	c.JSON(http.StatusAccepted, gin.H{
		"task_id": id,
		"type":    "prefetch_covers",
		"message": "task enqueued",
	})
}

// GetTaskStatus returns the status of a task.
// GET /api/tasks/:id
func (tc *TasksController) GetTaskStatus(c *gin.Context) {
	taskID := c.Param("id")

	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	status, err := tc.queue.Status(ctx, taskID)
	if err != nil {
		respondInternalError(c, err, "task status")
		return
	}
	if status == backlite.TaskStatusNotFound {
		respondNotFound(c, "task")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"id":     taskID,
		"status": taskStatusToString(status),
	})
}

func taskStatusToString(status backlite.TaskStatus) string {
	switch status {
	case backlite.TaskStatusPending:
		return "pending"
	case backlite.TaskStatusRunning:
		return "running"
	case backlite.TaskStatusSuccess:
		return "success"
	case backlite.TaskStatusFailure:
		return "failure"
	case backlite.TaskStatusNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}
