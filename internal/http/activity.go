package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/booklend/internal/auth"
	"github.com/mrlokans/booklend/internal/entities"
)

const maxActivityPageSize = 200

// ActivityController lists the current user's account activity.
type ActivityController struct {
	activity ActivityLog
}

func NewActivityController(activity ActivityLog) *ActivityController {
	return &ActivityController{activity: activity}
}

// ActivityResponse is one page of activity events.
type ActivityResponse struct {
	Events []entities.AuditEvent `json:"events"`
	Total  int64                 `json:"total"`
	Limit  int                   `json:"limit"`
	Offset int                   `json:"offset"`
}

// List returns the user's events, most recent first.
// GET /api/activity?limit=50&offset=0
func (ac *ActivityController) List(c *gin.Context) {
	limit, err := strconv.Atoi(c.DefaultQuery("limit", "50"))
	if err != nil || limit <= 0 {
		respondBadRequest(c, "invalid limit")
		return
	}
	if limit > maxActivityPageSize {
		limit = maxActivityPageSize
	}
	offset, err := strconv.Atoi(c.DefaultQuery("offset", "0"))
	if err != nil || offset < 0 {
		respondBadRequest(c, "invalid offset")
		return
	}

	events, total, err := ac.activity.GetEvents(auth.GetUserID(c), limit, offset)
	if err != nil {
		respondInternalError(c, err, "list activity")
		return
	}
	if events == nil {
		events = []entities.AuditEvent{}
	}

	c.JSON(http.StatusOK, ActivityResponse{
		Events: events,
		Total:  total,
		Limit:  limit,
		Offset: offset,
	})
}
