// Package handlers implements the host-facing HTTP handlers.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hearthware/ovenlink/internal/application/service"
)

// HealthHandler serves the liveness and readiness probes.
type HealthHandler struct {
	registry *service.Registry
}

// NewHealthHandler creates the probe handler.
func NewHealthHandler(registry *service.Registry) *HealthHandler {
	return &HealthHandler{registry: registry}
}

// LivenessCheck reports that the process is running.
func (h *HealthHandler) LivenessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "alive"})
}

// ReadinessCheck reports that the bridge can accept pairing requests. The
// daemon has no hard backing services; it is ready as soon as it serves.
func (h *HealthHandler) ReadinessCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":          "ready",
		"active_sessions": len(h.registry.List()),
	})
}
