package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/vertinimas/portal/internal/interfaces/http/dto"
)

// Pinger reports whether a backing service is reachable
type Pinger interface {
	Ping() error
}

// HealthResponse is the body of GET /health
type HealthResponse struct {
	Status   string `json:"status" example:"healthy"`
	Database string `json:"database" example:"connected"`
	Uptime   string `json:"uptime" example:"1h30m45s"`
}

// HealthHandler reports liveness and database reachability
type HealthHandler struct {
	db        Pinger
	startTime time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db, startTime: time.Now()}
}

// Health godoc
// @Summary      Health check
// @Tags         system
// @Produce      json
// @Success      200 {object} APIResponse[HealthResponse]
// @Failure      503 {object} APIResponse[HealthResponse]
// @Router       /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	resp := HealthResponse{
		Status:   "healthy",
		Database: "connected",
		Uptime:   time.Since(h.startTime).Round(time.Second).String(),
	}
	status := http.StatusOK

	if h.db == nil || h.db.Ping() != nil {
		resp.Status = "unhealthy"
		resp.Database = "disconnected"
		status = http.StatusServiceUnavailable
	}

	c.JSON(status, dto.Response{Success: status == http.StatusOK, Data: resp})
}
