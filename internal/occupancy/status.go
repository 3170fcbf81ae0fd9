package occupancy

import (
	"fmt"
	"time"

	"github.com/OldStager01/parksense/pkg/models"
)

// CurrentState reports the status implied by the last observation. A spot
// with no history is inactive, stamped with now.
func CurrentState(observations []models.Observation, now time.Time) (models.SpotStatus, time.Time) {
	if len(observations) == 0 {
		return models.SpotStatusInactive, now
	}

	last := observations[len(observations)-1]
	if last.Occupied {
		return models.SpotStatusOccupied, last.Timestamp
	}
	return models.SpotStatusFree, last.Timestamp
}

// RunStart returns when the trailing run of identical readings began, e.g.
// when the car currently parked arrived.
func RunStart(observations []models.Observation) (time.Time, bool) {
	if len(observations) == 0 {
		return time.Time{}, false
	}

	i := len(observations) - 1
	state := observations[i].Occupied
	for i > 0 && observations[i-1].Occupied == state {
		i--
	}
	return observations[i].Timestamp, true
}

// BuildSpot maps a spot history to its dashboard view.
func BuildSpot(spotID string, observations []models.Observation, now time.Time) models.ParkingSpot {
	status, lastUpdate := CurrentState(observations, now)

	return models.ParkingSpot{
		ID:         spotID,
		Name:       models.SpotName(spotID),
		Status:     status,
		SensorType: models.SensorUltrasonic,
		LastUpdate: lastUpdate,
		IsOnline:   status != models.SpotStatusInactive,
		History:    observations,
	}
}

// FormatDuration renders minutes as "45min", "2h" or "2h 5min".
func FormatDuration(minutes int) string {
	if minutes < 60 {
		return fmt.Sprintf("%dmin", minutes)
	}
	hours := minutes / 60
	mins := minutes % 60
	if mins > 0 {
		return fmt.Sprintf("%dh %dmin", hours, mins)
	}
	return fmt.Sprintf("%dh", hours)
}
