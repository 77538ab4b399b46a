package handlers

import (
	"github.com/gofiber/fiber/v2"

	"storefront-sync/internal/config"
)

// HealthHandler handles health check endpoints
type HealthHandler struct {
	cfg *config.Config
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(cfg *config.Config) *HealthHandler {
	return &HealthHandler{cfg: cfg}
}

// Root handles root endpoint
// @Summary Root endpoint
// @Description Returns dashboard status
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response
// @Router / [get]
func (h *HealthHandler) Root(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":  "running",
		"message": "🚀 Storefront dashboard is running",
		"mode":    h.cfg.AppMode,
		"api":     h.cfg.API.BaseURL,
	})
}

// HealthCheck reports the dashboard and session storage health
// @Summary Health check
// @Description Check dashboard and session storage health
// @Tags Health
// @Produce json
// @Success 200 {object} response.Response
// @Router /healthz [get]
func (h *HealthHandler) HealthCheck(c *fiber.Ctx) error {
	storeStatus := "healthy"
	if err := config.HealthCheck(); err != nil {
		storeStatus = "unhealthy"
	}

	return c.JSON(fiber.Map{
		"status": "ok",
		"checks": fiber.Map{
			"dashboard":    "healthy",
			"sessionStore": storeStatus,
			"backend":      h.cfg.Session.Store,
		},
	})
}
