package occupancy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/OldStager01/parksense/pkg/models"
)

func TestCurrentState(t *testing.T) {
	now := t0.Add(time.Hour)

	status, last := CurrentState(nil, now)
	assert.Equal(t, models.SpotStatusInactive, status)
	assert.Equal(t, now, last)

	status, last = CurrentState([]models.Observation{obs(0, false), obs(time.Minute, true)}, now)
	assert.Equal(t, models.SpotStatusOccupied, status)
	assert.Equal(t, t0.Add(time.Minute), last)

	status, _ = CurrentState([]models.Observation{obs(0, true), obs(time.Minute, false)}, now)
	assert.Equal(t, models.SpotStatusFree, status)
}

func TestRunStart(t *testing.T) {
	_, ok := RunStart(nil)
	assert.False(t, ok)

	start, ok := RunStart([]models.Observation{
		obs(0, true),
		obs(time.Minute, false),
		obs(2*time.Minute, true),
		obs(3*time.Minute, true),
	})
	assert.True(t, ok)
	assert.Equal(t, t0.Add(2*time.Minute), start)

	start, _ = RunStart([]models.Observation{obs(0, false), obs(time.Minute, false)})
	assert.Equal(t, t0, start)
}

func TestBuildSpot(t *testing.T) {
	spot := BuildSpot("A01", []models.Observation{obs(0, true)}, t0)

	assert.Equal(t, "Vaga A01", spot.Name)
	assert.Equal(t, models.SpotStatusOccupied, spot.Status)
	assert.Equal(t, models.SensorUltrasonic, spot.SensorType)
	assert.True(t, spot.IsOnline)

	inactive := BuildSpot("A02", nil, t0)
	assert.False(t, inactive.IsOnline)
	assert.Equal(t, t0, inactive.LastUpdate)
}

func TestFormatDuration(t *testing.T) {
	tests := []struct {
		minutes  int
		expected string
	}{
		{0, "0min"},
		{45, "45min"},
		{60, "1h"},
		{125, "2h 5min"},
		{180, "3h"},
	}

	for _, tt := range tests {
		t.Run(tt.expected, func(t *testing.T) {
			assert.Equal(t, tt.expected, FormatDuration(tt.minutes))
		})
	}
}

func TestCalculateStats(t *testing.T) {
	spots := []models.ParkingSpot{
		BuildSpot("A1", []models.Observation{obs(0, true)}, t0),
		BuildSpot("A2", []models.Observation{obs(0, false)}, t0),
		BuildSpot("A3", []models.Observation{obs(0, true)}, t0),
		BuildSpot("A4", nil, t0),
	}

	stats := models.CalculateStats(spots)

	assert.Equal(t, models.ParkingStats{
		TotalSpots:       4,
		FreeSpots:        1,
		OccupiedSpots:    2,
		InactiveSpots:    1,
		AverageOccupancy: 67,
	}, stats)
}

func TestEngine(t *testing.T) {
	now := t0.Add(10 * time.Minute)
	engine := NewEngine(Config{
		Location: time.UTC,
		Clock:    func() time.Time { return now },
	})

	spots := map[string][]models.Observation{
		"A10": {obs(0, true)},
		"A2":  {obs(0, false)},
	}

	views := engine.Spots(spots)
	assert.Equal(t, "A2", views[0].ID)
	assert.Equal(t, "A10", views[1].ID)

	m := engine.SpotMetrics("A10", spots["A10"])
	assert.Equal(t, 10, m.TotalOccupancyTime)
	assert.Equal(t, "Vaga A10", m.SpotName)

	assert.Len(t, engine.Periods(spots["A10"]), 1)
	assert.Equal(t, now, engine.GlobalMetrics(spots).ComputedAt)

	labels := engine.PeakHours(engine.Hourly(spots))
	assert.Equal(t, []string{"10:00 (50%)", "00:00 (0%)", "01:00 (0%)"}, labels)
}
