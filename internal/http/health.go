package http

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

type HealthResponse struct {
	Status  string            `json:"status"`
	Time    string            `json:"time"`
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks"`
}

// Pinger is satisfied by *database.Database.
type Pinger interface {
	Ping() error
}

type HealthController struct {
	db         Pinger
	version    string
	apiBaseURL string
}

func NewHealthController(db Pinger, version, apiBaseURL string) *HealthController {
	return &HealthController{
		db:         db,
		version:    version,
		apiBaseURL: apiBaseURL,
	}
}

// Status reports local database health. The catalog API is listed but not
// contacted; it is an external collaborator and its outages only empty the
// screens.
func (h *HealthController) Status(c *gin.Context) {
	checks := map[string]string{
		"catalog_api": h.apiBaseURL,
	}
	status := "healthy"

	switch {
	case h.db == nil:
		checks["database"] = "not configured"
		status = "unhealthy"
	default:
		if err := h.db.Ping(); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	}

	statusCode := http.StatusOK
	if status != "healthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	})
}
