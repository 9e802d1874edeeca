package handler

import (
	"net/http"

	"github.com/mcoot/seabattle/internal/api/response"
)

// StatsFunc reports live server counters
type StatsFunc func() response.Health

// HealthHandler serves the health check
type HealthHandler struct {
	stats StatsFunc
}

// NewHealthHandler creates a new health handler. A nil stats reports
// only the status.
func NewHealthHandler(stats StatsFunc) *HealthHandler {
	return &HealthHandler{stats: stats}
}

// Get handles GET /api/v1/health
func (h *HealthHandler) Get(w http.ResponseWriter, r *http.Request) {
	body := response.Health{}
	if h.stats != nil {
		body = h.stats()
	}
	body.Status = "ok"
	response.JSON(w, http.StatusOK, body)
}
