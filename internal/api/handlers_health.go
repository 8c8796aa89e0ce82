// handlers_health.go - Health check handlers
package api

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// HealthHandlerImpl implements the HealthHandler interface
type HealthHandlerImpl struct {
	version string
	plans   PlanManager
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, plans PlanManager) HealthHandler {
	return &HealthHandlerImpl{
		version: version,
		plans:   plans,
	}
}

// HandleHealth returns server health status
func (h *HealthHandlerImpl) HandleHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]interface{}{
		"status":    "ok",
		"version":   h.version,
		"openPlans": h.plans.Count(),
	})
}
