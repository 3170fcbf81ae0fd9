package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/OldStager01/parksense/internal/logger"
	"github.com/OldStager01/parksense/internal/occupancy"
	"github.com/OldStager01/parksense/internal/store"
	"github.com/OldStager01/parksense/pkg/config"
	"github.com/OldStager01/parksense/pkg/models"
)

type SpotHandler struct {
	service ParkingService
	config  *config.APIConfig

	// OnChange is told about spots edited through the API.
	OnChange func(spot models.ParkingSpot)
}

func NewSpotHandler(service ParkingService, cfg *config.APIConfig) *SpotHandler {
	return &SpotHandler{service: service, config: cfg}
}

type SpotSummary struct {
	ID         string            `json:"id" example:"A01"`
	Name       string            `json:"name" example:"Vaga A01"`
	Status     models.SpotStatus `json:"status" example:"occupied"`
	SensorType models.SensorType `json:"sensor_type" example:"ultrasonic"`
	LastUpdate time.Time         `json:"last_update"`
	IsOnline   bool              `json:"is_online"`
}

func toSummary(s models.ParkingSpot) SpotSummary {
	return SpotSummary{
		ID:         s.ID,
		Name:       s.Name,
		Status:     s.Status,
		SensorType: s.SensorType,
		LastUpdate: s.LastUpdate,
		IsOnline:   s.IsOnline,
	}
}

type PeriodResponse struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"duration_minutes" example:"45"`
	Duration        string    `json:"duration" example:"45min"`
}

type ObservationRequest struct {
	Occupied  *bool      `json:"occupied" binding:"required" example:"true"`
	Timestamp *time.Time `json:"timestamp"`
}

func (h *SpotHandler) limits() (int, int) {
	if h.config == nil {
		return 0, 0
	}
	return h.config.DefaultLimit, h.config.MaxLimit
}

func (h *SpotHandler) notify(spot models.ParkingSpot) {
	if h.OnChange != nil {
		h.OnChange(spot)
	}
}

// List godoc
// @Summary List spots
// @Description Current status of every known spot, in natural ID order
// @Tags Spots
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Router /spots [get]
func (h *SpotHandler) List(c *gin.Context) {
	spots := h.service.Spots()
	data := make([]SpotSummary, len(spots))
	for i, s := range spots {
		data[i] = toSummary(s)
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  data,
		"count": len(data),
	})
}

// Get godoc
// @Summary Get spot
// @Tags Spots
// @Produce json
// @Param id path string true "Spot ID"
// @Success 200 {object} SpotSummary
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Router /spots/{id} [get]
func (h *SpotHandler) Get(c *gin.Context) {
	spotID, ok := spotParam(c)
	if !ok {
		return
	}

	spot, err := h.service.Spot(spotID)
	if err != nil {
		writeSpotError(c, err)
		return
	}

	c.JSON(http.StatusOK, toSummary(spot))
}

// History godoc
// @Summary Spot history
// @Description Raw observations, oldest first; limit keeps the most recent ones
// @Tags Spots
// @Produce json
// @Param id path string true "Spot ID"
// @Param limit query int false "Maximum observations"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /spots/{id}/history [get]
func (h *SpotHandler) History(c *gin.Context) {
	spotID, ok := spotParam(c)
	if !ok {
		return
	}

	defLimit, maxLim := h.limits()
	history, err := h.service.History(spotID, parseLimit(c, defLimit, maxLim))
	if err != nil {
		writeSpotError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"spot_id": spotID,
		"data":    history,
		"count":   len(history),
	})
}

// Periods godoc
// @Summary Spot occupancy periods
// @Tags Spots
// @Produce json
// @Param id path string true "Spot ID"
// @Success 200 {object} map[string]interface{}
// @Failure 404 {object} ErrorResponse
// @Router /spots/{id}/periods [get]
func (h *SpotHandler) Periods(c *gin.Context) {
	spotID, ok := spotParam(c)
	if !ok {
		return
	}

	periods, err := h.service.SpotPeriods(spotID)
	if err != nil {
		writeSpotError(c, err)
		return
	}

	data := make([]PeriodResponse, len(periods))
	for i, p := range periods {
		data[i] = PeriodResponse{
			Start:           p.Start,
			End:             p.End,
			DurationMinutes: p.DurationMinutes,
			Duration:        occupancy.FormatDuration(p.DurationMinutes),
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"spot_id": spotID,
		"data":    data,
		"count":   len(data),
	})
}

// Metrics godoc
// @Summary Spot metrics
// @Tags Spots
// @Produce json
// @Param id path string true "Spot ID"
// @Success 200 {object} models.SpotMetrics
// @Failure 404 {object} ErrorResponse
// @Router /spots/{id}/metrics [get]
func (h *SpotHandler) Metrics(c *gin.Context) {
	spotID, ok := spotParam(c)
	if !ok {
		return
	}

	metrics, err := h.service.SpotMetrics(spotID)
	if err != nil {
		writeSpotError(c, err)
		return
	}

	c.JSON(http.StatusOK, metrics)
}

// AddObservation godoc
// @Summary Record an observation
// @Description Manually records a reading; unknown spots are registered
// @Tags Spots
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Spot ID"
// @Param request body ObservationRequest true "Observation"
// @Success 201 {object} SpotSummary
// @Failure 400 {object} ErrorResponse
// @Failure 401 {object} ErrorResponse
// @Router /spots/{id}/observations [post]
func (h *SpotHandler) AddObservation(c *gin.Context) {
	spotID, ok := spotParam(c)
	if !ok {
		return
	}

	var req ObservationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	update := models.SpotUpdate{SpotID: spotID, Occupied: *req.Occupied}
	if req.Timestamp != nil {
		update.Timestamp = *req.Timestamp
	}
	h.service.HandleUpdate(update, models.SourceAPI)

	logger.WithSpot(spotID).WithField("operator", c.GetString("username")).Info("Manual observation recorded")

	spot, err := h.service.Spot(spotID)
	if err != nil {
		writeSpotError(c, err)
		return
	}
	h.notify(spot)
	c.JSON(http.StatusCreated, toSummary(spot))
}

// ResetHistory godoc
// @Summary Clear spot history
// @Tags Spots
// @Security BearerAuth
// @Param id path string true "Spot ID"
// @Success 204
// @Failure 404 {object} ErrorResponse
// @Router /spots/{id}/history [delete]
func (h *SpotHandler) ResetHistory(c *gin.Context) {
	spotID, ok := spotParam(c)
	if !ok {
		return
	}

	if err := h.service.ResetSpot(c.Request.Context(), spotID); err != nil {
		if !errors.Is(err, store.ErrUnknownSpot) {
			logger.WithSpot(spotID).Errorf("Failed to reset history: %v", err)
		}
		writeSpotError(c, err)
		return
	}

	if spot, err := h.service.Spot(spotID); err == nil {
		h.notify(spot)
	}
	c.Status(http.StatusNoContent)
}
