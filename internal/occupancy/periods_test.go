package occupancy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/parksense/pkg/models"
)

var t0 = time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC)

func obs(offset time.Duration, occupied bool) models.Observation {
	return models.Observation{Timestamp: t0.Add(offset), Occupied: occupied}
}

func TestExtractPeriods(t *testing.T) {
	tests := []struct {
		name     string
		history  []models.Observation
		now      time.Time
		expected []models.OccupancyPeriod
	}{
		{
			name:     "empty history",
			history:  nil,
			now:      t0,
			expected: []models.OccupancyPeriod{},
		},
		{
			name: "single closed period",
			history: []models.Observation{
				obs(0, false),
				obs(5*time.Minute, true),
				obs(35*time.Minute, false),
			},
			now: t0.Add(time.Hour),
			expected: []models.OccupancyPeriod{
				{Start: t0.Add(5 * time.Minute), End: t0.Add(35 * time.Minute), DurationMinutes: 30},
			},
		},
		{
			name:    "ongoing period ends at now",
			history: []models.Observation{obs(0, true)},
			now:     t0.Add(10 * time.Minute),
			expected: []models.OccupancyPeriod{
				{Start: t0, End: t0.Add(10 * time.Minute), DurationMinutes: 10},
			},
		},
		{
			name: "repeated states are ignored",
			history: []models.Observation{
				obs(0, true),
				obs(time.Minute, true),
				obs(2*time.Minute, true),
				obs(3*time.Minute, false),
				obs(4*time.Minute, false),
			},
			now: t0.Add(time.Hour),
			expected: []models.OccupancyPeriod{
				{Start: t0, End: t0.Add(3 * time.Minute), DurationMinutes: 3},
			},
		},
		{
			name: "sub-minute period floors to zero",
			history: []models.Observation{
				obs(0, true),
				obs(45*time.Second, false),
			},
			now: t0.Add(time.Hour),
			expected: []models.OccupancyPeriod{
				{Start: t0, End: t0.Add(45 * time.Second), DurationMinutes: 0},
			},
		},
		{
			name: "partial minutes are floored",
			history: []models.Observation{
				obs(0, true),
				obs(2*time.Minute+59*time.Second, false),
			},
			now: t0.Add(time.Hour),
			expected: []models.OccupancyPeriod{
				{Start: t0, End: t0.Add(2*time.Minute + 59*time.Second), DurationMinutes: 2},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			periods := ExtractPeriods(tt.history, tt.now)
			require.NotNil(t, periods)
			assert.Equal(t, tt.expected, periods)
		})
	}
}

func TestExtractPeriods_CountMatchesTransitions(t *testing.T) {
	pattern := []bool{false, true, true, false, true, false, false, true, true}
	history := make([]models.Observation, len(pattern))
	for i, occupied := range pattern {
		history[i] = obs(time.Duration(i)*time.Minute, occupied)
	}

	periods := ExtractPeriods(history, t0.Add(time.Hour))

	// three rising edges, the last one still open
	require.Len(t, periods, 3)
	assert.Equal(t, t0.Add(time.Hour), periods[2].End)

	for i, p := range periods {
		assert.False(t, p.End.Before(p.Start))
		assert.Equal(t, int(p.End.Sub(p.Start)/time.Minute), p.DurationMinutes)
		if i > 0 {
			assert.False(t, p.Start.Before(periods[i-1].End), "periods must not overlap")
		}
	}
}

func TestExtractPeriods_Idempotent(t *testing.T) {
	history := []models.Observation{obs(0, true), obs(7*time.Minute, false), obs(9*time.Minute, true)}
	now := t0.Add(20 * time.Minute)

	assert.Equal(t, ExtractPeriods(history, now), ExtractPeriods(history, now))
}

func TestExtractPeriods_NowBeforeOpenStart(t *testing.T) {
	periods := ExtractPeriods([]models.Observation{obs(time.Hour, true)}, t0)

	require.Len(t, periods, 1)
	assert.Equal(t, periods[0].Start, periods[0].End)
	assert.Zero(t, periods[0].DurationMinutes)
}
