package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

type Handler struct{ store string }

// NewHandler reports store (the active storage backend) on /health.
func NewHandler(store string) *Handler { return &Handler{store: store} }

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]any{
		"status": "ok",
		"store":  h.store,
		"time":   time.Now().UTC().Format(time.RFC3339Nano),
	})
}
