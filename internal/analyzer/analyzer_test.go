package analyzer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/parksense/pkg/models"
)

var t0 = time.Date(2026, 2, 5, 8, 0, 0, 0, time.UTC)

func stats(free, occupied, inactive int) models.ParkingStats {
	return models.ParkingStats{
		TotalSpots:    free + occupied + inactive,
		FreeSpots:     free,
		OccupiedSpots: occupied,
		InactiveSpots: inactive,
	}
}

func TestSustainedTracker(t *testing.T) {
	tr := NewSustainedTracker()

	since, cleared := tr.Update("k", true, t0)
	assert.Equal(t, t0, since)
	assert.False(t, cleared)

	since, _ = tr.Update("k", true, t0.Add(time.Minute))
	assert.Equal(t, t0, since, "episode keeps its original start")
	assert.Equal(t, 10*time.Minute, tr.Duration("k", t0.Add(10*time.Minute)))

	assert.True(t, tr.Fire("k"))
	assert.False(t, tr.Fire("k"))
	assert.False(t, tr.Fire("other"), "no active episode")

	_, cleared = tr.Update("k", false, t0)
	assert.True(t, cleared)
	assert.Zero(t, tr.Duration("k", t0))

	_, cleared = tr.Update("k", false, t0)
	assert.False(t, cleared)
}

func TestAnalyzer_LotNearlyFull(t *testing.T) {
	a := New(Config{NearlyFullPercent: 90, SustainedFor: 10 * time.Minute, LongStay: 24 * time.Hour})

	// Inactive spots do not count toward capacity: 9 of 10 online occupied.
	full := stats(1, 9, 5)

	assert.Empty(t, a.Analyze(full, nil, t0))
	assert.Empty(t, a.Analyze(full, nil, t0.Add(5*time.Minute)))

	findings := a.Analyze(full, nil, t0.Add(10*time.Minute))
	require.Len(t, findings, 1)
	assert.Equal(t, models.FindingLotNearlyFull, findings[0].Kind)
	assert.Equal(t, models.SeverityWarning, findings[0].Severity)
	assert.Equal(t, 90.0, findings[0].Value)
	assert.Equal(t, t0, findings[0].Since)
	assert.Equal(t, "Lot at 90% occupancy for 10min (1 free)", findings[0].Message)

	assert.Empty(t, a.Analyze(full, nil, t0.Add(20*time.Minute)), "reported once per episode")

	findings = a.Analyze(stats(5, 5, 0), nil, t0.Add(30*time.Minute))
	require.Len(t, findings, 1)
	assert.Equal(t, models.FindingLotRecovered, findings[0].Kind)
	assert.Equal(t, models.SeverityInfo, findings[0].Severity)
}

func TestAnalyzer_BriefPeakDoesNotAlert(t *testing.T) {
	a := New(Config{SustainedFor: 10 * time.Minute})

	assert.Empty(t, a.Analyze(stats(0, 10, 0), nil, t0))
	assert.Empty(t, a.Analyze(stats(5, 5, 0), nil, t0.Add(5*time.Minute)), "no recovery without an alert")
	assert.Empty(t, a.Analyze(stats(0, 10, 0), nil, t0.Add(12*time.Minute)))
}

func TestAnalyzer_EmptyLot(t *testing.T) {
	a := New(Config{SustainedFor: time.Minute})

	assert.Empty(t, a.Analyze(stats(0, 0, 6), nil, t0))
	assert.Empty(t, a.Analyze(stats(0, 0, 6), nil, t0.Add(time.Hour)))
}

func TestAnalyzer_LongStay(t *testing.T) {
	a := New(Config{LongStay: 2 * time.Hour})
	lot := stats(5, 1, 0)

	parked := []SpotState{{SpotID: "A01", Status: models.SpotStatusOccupied, Since: t0}}

	assert.Empty(t, a.Analyze(lot, parked, t0.Add(time.Hour)))

	findings := a.Analyze(lot, parked, t0.Add(2*time.Hour+30*time.Minute))
	require.Len(t, findings, 1)
	assert.Equal(t, models.FindingLongStay, findings[0].Kind)
	assert.Equal(t, "A01", findings[0].SpotID)
	assert.Equal(t, 150.0, findings[0].Value)
	assert.Equal(t, "Vaga A01 occupied for 2h 30min", findings[0].Message)

	assert.Empty(t, a.Analyze(lot, parked, t0.Add(3*time.Hour)))

	// A new car in the same spot starts a new episode.
	next := []SpotState{{SpotID: "A01", Status: models.SpotStatusOccupied, Since: t0.Add(3 * time.Hour)}}
	assert.Empty(t, a.Analyze(lot, next, t0.Add(4*time.Hour)))
	assert.Len(t, a.Analyze(lot, next, t0.Add(5*time.Hour)), 1)

	// Freed spots and removed spots both end the episode.
	free := []SpotState{{SpotID: "A01", Status: models.SpotStatusFree, Since: t0.Add(6 * time.Hour)}}
	assert.Empty(t, a.Analyze(lot, free, t0.Add(6*time.Hour)))
	assert.Empty(t, a.Analyze(lot, nil, t0.Add(6*time.Hour)))
	assert.Empty(t, a.tracker.Keys())
}

func TestStates(t *testing.T) {
	now := t0.Add(time.Hour)
	spots := map[string][]models.Observation{
		"A10": {{Timestamp: t0, Occupied: true}, {Timestamp: t0.Add(time.Minute), Occupied: true}},
		"A2":  {{Timestamp: t0, Occupied: true}, {Timestamp: t0.Add(time.Minute), Occupied: false}},
		"B01": nil,
	}

	states := States(spots, now)
	require.Len(t, states, 3)

	assert.Equal(t, "A2", states[0].SpotID)
	assert.Equal(t, models.SpotStatusFree, states[0].Status)
	assert.Equal(t, t0.Add(time.Minute), states[0].Since)

	assert.Equal(t, "A10", states[1].SpotID)
	assert.Equal(t, models.SpotStatusOccupied, states[1].Status)
	assert.Equal(t, t0, states[1].Since)

	assert.Equal(t, "B01", states[2].SpotID)
	assert.Equal(t, models.SpotStatusInactive, states[2].Status)
	assert.Equal(t, now, states[2].Since)
}
