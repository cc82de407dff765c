package handlers

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/zosswater/whatsapp-bot/internal/sessions"
	"github.com/zosswater/whatsapp-bot/internal/storage"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	Version  string
	store    storage.Store
	sessions sessions.Store
	started  time.Time
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, store storage.Store, sessionStore sessions.Store) *HealthHandler {
	return &HealthHandler{
		Version:  version,
		store:    store,
		sessions: sessionStore,
		started:  time.Now(),
	}
}

// Check returns the health status of the service
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx := c.UserContext()
	status := "OK"
	code := fiber.StatusOK

	storageStatus := "up"
	if err := h.store.Ping(ctx); err != nil {
		storageStatus = err.Error()
		status = "DEGRADED"
		code = fiber.StatusServiceUnavailable
	}

	active, err := h.sessions.Count(ctx)
	if err != nil {
		active = -1
		status = "DEGRADED"
		code = fiber.StatusServiceUnavailable
	}

	return c.Status(code).JSON(fiber.Map{
		"status":         status,
		"service":        "Zoss Water WhatsApp Bot",
		"version":        h.Version,
		"timestamp":      time.Now().UTC().Format(time.RFC3339),
		"uptime":         time.Since(h.started).Round(time.Second).String(),
		"storage":        storageStatus,
		"activeSessions": active,
	})
}
