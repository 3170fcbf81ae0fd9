package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// HealthChecker is anything that can report its own reachability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// ConnectionChecker reports a live connection, such as the MQTT client.
type ConnectionChecker interface {
	IsConnected() bool
}

type HealthHandler struct {
	db      HealthChecker
	cache   HealthChecker
	service ParkingService
	mqtt    ConnectionChecker
}

// NewHealthHandler takes optional dependencies; nil ones are skipped.
func NewHealthHandler(db HealthChecker, cache HealthChecker, service ParkingService, mqtt ConnectionChecker) *HealthHandler {
	return &HealthHandler{db: db, cache: cache, service: service, mqtt: mqtt}
}

type HealthResponse struct {
	Status    string            `json:"status" example:"healthy"`
	Timestamp string            `json:"timestamp" example:"2026-02-05T10:00:00Z"`
	Checks    map[string]string `json:"checks,omitempty"`
}

func check(ctx context.Context, c HealthChecker) string {
	if err := c.HealthCheck(ctx); err != nil {
		return "unhealthy: " + err.Error()
	}
	return "healthy"
}

// Health godoc
// @Summary Service health
// @Description The database is critical; the sensor backend, cache and MQTT only degrade the service
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health [get]
func (h *HealthHandler) Health(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]string)
	status := "healthy"

	if h.db != nil {
		checks["database"] = check(ctx, h.db)
		if checks["database"] != "healthy" {
			status = "unhealthy"
		}
	}

	degrade := func(name string, result string) {
		checks[name] = result
		if result != "healthy" && status == "healthy" {
			status = "degraded"
		}
	}

	if h.service != nil {
		degrade("sensor_backend", check(ctx, h.service))
	}
	if h.cache != nil {
		degrade("cache", check(ctx, h.cache))
	}
	if h.mqtt != nil {
		result := "healthy"
		if !h.mqtt.IsConnected() {
			result = "disconnected"
		}
		degrade("mqtt", result)
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.JSON(statusCode, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    checks,
	})
}

// Ready godoc
// @Summary Readiness probe
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Failure 503 {object} HealthResponse
// @Router /health/ready [get]
func (h *HealthHandler) Ready(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 5*time.Second)
	defer cancel()

	ready := h.service == nil || h.service.IsRunning()
	if ready && h.db != nil {
		ready = h.db.HealthCheck(ctx) == nil
	}

	if !ready {
		c.JSON(http.StatusServiceUnavailable, HealthResponse{
			Status:    "not ready",
			Timestamp: time.Now().UTC().Format(time.RFC3339),
		})
		return
	}

	c.JSON(http.StatusOK, HealthResponse{
		Status:    "ready",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Live godoc
// @Summary Liveness probe
// @Tags Health
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health/live [get]
func (h *HealthHandler) Live(c *gin.Context) {
	c.JSON(http.StatusOK, HealthResponse{
		Status:    "alive",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}
