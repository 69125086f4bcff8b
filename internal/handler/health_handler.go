package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether a backing store is reachable.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// HealthHandler reports liveness.
type HealthHandler struct {
	db  Pinger
	now func() time.Time
}

// NewHealthHandler creates a health handler. A nil db skips the database check.
func NewHealthHandler(db Pinger) *HealthHandler {
	return &HealthHandler{db: db, now: time.Now}
}

// HealthResponse is the health probe body.
type HealthResponse struct {
	Error     *string `json:"error" swaggertype:"string" extensions:"x-nullable"`
	Status    string  `json:"status"`
	Timestamp string  `json:"timestamp"`
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c echo.Context) error {
	resp := HealthResponse{Status: "ok", Timestamp: h.now().UTC().Format(time.RFC3339)}
	if h.db != nil {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
		defer cancel()
		if err := h.db.PingContext(ctx); err != nil {
			msg := "Database unavailable"
			resp.Error = &msg
			resp.Status = "degraded"
			return c.JSON(http.StatusServiceUnavailable, resp)
		}
	}
	return c.JSON(http.StatusOK, resp)
}
