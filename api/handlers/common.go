package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/parksense/internal/monitor"
	"github.com/OldStager01/parksense/internal/store"
	"github.com/OldStager01/parksense/pkg/models"
	"github.com/OldStager01/parksense/pkg/validation"
)

// ParkingService is the monitor surface the handlers use.
type ParkingService interface {
	Spots() []models.ParkingSpot
	Spot(spotID string) (models.ParkingSpot, error)
	History(spotID string, limit int) ([]models.Observation, error)
	SpotPeriods(spotID string) ([]models.OccupancyPeriod, error)
	SpotMetrics(spotID string) (models.SpotMetrics, error)
	GlobalMetrics(ctx context.Context) (*models.GlobalMetrics, error)
	Hourly() []models.HourBucket
	HourlyChart() []models.HourlyChartPoint
	PeakHours() []string
	Stats() models.ParkingStats
	HandleUpdate(update models.SpotUpdate, source string)
	Refresh(ctx context.Context) (*monitor.RefreshSummary, error)
	ResetSpot(ctx context.Context, spotID string) error
	HealthCheck(ctx context.Context) error
	IsRunning() bool
}

type ErrorResponse struct {
	Error string `json:"error" example:"spot not found"`
}

const (
	defaultLimit = 100
	maxLimit     = 1000
)

// spotParam validates the :id path parameter, writing a 400 on failure.
func spotParam(c *gin.Context) (string, bool) {
	spotID := validation.SanitizeString(c.Param("id"))
	if err := validation.ValidateSpotID(spotID); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return "", false
	}
	return spotID, true
}

// writeSpotError maps lookup failures to status codes.
func writeSpotError(c *gin.Context, err error) {
	if errors.Is(err, store.ErrUnknownSpot) {
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "spot not found"})
		return
	}
	c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "internal error"})
}

func parseLimit(c *gin.Context, defaultVal, maxVal int) int {
	if defaultVal <= 0 {
		defaultVal = defaultLimit
	}
	if maxVal <= 0 {
		maxVal = maxLimit
	}

	limit := defaultVal
	if limitStr := c.Query("limit"); limitStr != "" {
		if parsed, err := strconv.Atoi(limitStr); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if limit > maxVal {
		limit = maxVal
	}
	return limit
}
