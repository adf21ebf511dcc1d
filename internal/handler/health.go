package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves the liveness endpoint.
type HealthHandler struct {
	store Pinger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(store Pinger) *HealthHandler {
	return &HealthHandler{store: store}
}

// Check answers 200 when the store responds to a ping and 503 otherwise.
func (h *HealthHandler) Check(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()

	if err := h.store.Ping(ctx); err != nil {
		slog.Warn("health check failed", "error", err, "request_id", requestID(c))
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}
