package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateStats(t *testing.T) {
	tests := []struct {
		name     string
		statuses []SpotStatus
		expected ParkingStats
	}{
		{
			name:     "empty lot",
			expected: ParkingStats{},
		},
		{
			name:     "mixed statuses",
			statuses: []SpotStatus{SpotStatusFree, SpotStatusOccupied, SpotStatusOccupied, SpotStatusInactive},
			expected: ParkingStats{TotalSpots: 4, FreeSpots: 1, OccupiedSpots: 2, InactiveSpots: 1, AverageOccupancy: 67},
		},
		{
			name:     "all inactive",
			statuses: []SpotStatus{SpotStatusInactive, SpotStatusInactive},
			expected: ParkingStats{TotalSpots: 2, InactiveSpots: 2},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spots := make([]ParkingSpot, 0, len(tt.statuses))
			for _, s := range tt.statuses {
				spots = append(spots, ParkingSpot{Status: s})
			}
			assert.Equal(t, tt.expected, CalculateStats(spots))
		})
	}
}

func TestOccupancyFlag_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		input    string
		expected OccupancyFlag
	}{
		{`{"data_hora":"2026-02-05T10:00:00","ocupada":"True"}`, "True"},
		{`{"data_hora":"2026-02-05T10:00:00","ocupada":true}`, "true"},
		{`{"data_hora":"2026-02-05T10:00:00","ocupada":1}`, "1"},
		{`{"data_hora":"2026-02-05T10:00:00","ocupada":null}`, ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			var raw RawObservation
			require.NoError(t, json.Unmarshal([]byte(tt.input), &raw))
			assert.Equal(t, tt.expected, raw.Ocupada)
			assert.Equal(t, "2026-02-05T10:00:00", raw.DataHora)
		})
	}
}

func TestNewEvent(t *testing.T) {
	event := NewEvent(EventTypeAlert, "A01", "lot nearly full").
		WithSeverity(SeverityWarning).
		WithData(StatusChange{SpotID: "A01", From: SpotStatusFree, To: SpotStatusOccupied}).
		WithTraceID("trace-1")

	assert.NotEmpty(t, event.ID)
	assert.Equal(t, EventTypeAlert, event.Type)
	assert.Equal(t, SeverityWarning, event.Severity)
	assert.Equal(t, "A01", event.SpotID)
	assert.Equal(t, "trace-1", event.TraceID)
	assert.IsType(t, StatusChange{}, event.Data)
	assert.WithinDuration(t, time.Now(), event.Timestamp, time.Minute)
}

func TestSpotUpdate_Observation(t *testing.T) {
	ts := time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC)
	update := SpotUpdate{SpotID: "A01", Occupied: true, Timestamp: ts}

	assert.Equal(t, Observation{Timestamp: ts, Occupied: true}, update.Observation())
	assert.Equal(t, "Vaga A01", SpotName("A01"))
}
