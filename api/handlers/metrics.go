package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/parksense/internal/logger"
	"github.com/OldStager01/parksense/internal/monitor"
)

type MetricsHandler struct {
	service ParkingService
}

func NewMetricsHandler(service ParkingService) *MetricsHandler {
	return &MetricsHandler{service: service}
}

// Global godoc
// @Summary Lot-wide metrics
// @Description Averages, most and least used spots and the 24-hour histogram
// @Tags Metrics
// @Produce json
// @Success 200 {object} models.GlobalMetrics
// @Failure 500 {object} ErrorResponse
// @Router /metrics/global [get]
func (h *MetricsHandler) Global(c *gin.Context) {
	global, err := h.service.GlobalMetrics(c.Request.Context())
	if err != nil {
		logger.FromContext(c.Request.Context()).Errorf("Failed to compute global metrics: %v", err)
		c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "failed to compute metrics"})
		return
	}

	c.JSON(http.StatusOK, global)
}

// Hourly godoc
// @Summary Hourly occupancy rates
// @Tags Metrics
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /metrics/hourly [get]
func (h *MetricsHandler) Hourly(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.service.Hourly()})
}

// HourlyChart godoc
// @Summary Hourly occupied and free counts
// @Tags Metrics
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /metrics/hourly/chart [get]
func (h *MetricsHandler) HourlyChart(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.service.HourlyChart()})
}

// PeakHours godoc
// @Summary Busiest hours
// @Tags Metrics
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /metrics/peak-hours [get]
func (h *MetricsHandler) PeakHours(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"data": h.service.PeakHours()})
}

// Stats godoc
// @Summary Spot counts by status
// @Tags Metrics
// @Produce json
// @Success 200 {object} models.ParkingStats
// @Router /stats [get]
func (h *MetricsHandler) Stats(c *gin.Context) {
	c.JSON(http.StatusOK, h.service.Stats())
}

// Refresh godoc
// @Summary Poll the sensor backend now
// @Tags Metrics
// @Produce json
// @Security BearerAuth
// @Success 200 {object} monitor.RefreshSummary
// @Failure 502 {object} monitor.RefreshSummary
// @Failure 503 {object} ErrorResponse
// @Router /refresh [post]
func (h *MetricsHandler) Refresh(c *gin.Context) {
	summary, err := h.service.Refresh(c.Request.Context())
	switch {
	case err == nil:
		c.JSON(http.StatusOK, summary)
	case errors.Is(err, monitor.ErrRefreshFailed):
		c.JSON(http.StatusBadGateway, summary)
	case summary == nil:
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{Error: err.Error()})
	default:
		c.JSON(http.StatusGatewayTimeout, summary)
	}
}
