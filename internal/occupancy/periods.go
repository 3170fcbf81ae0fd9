// Package occupancy derives occupancy periods and utilization statistics
// from per-spot sensor histories. Every function here is pure: the current
// instant is always passed in.
package occupancy

import (
	"time"

	"github.com/OldStager01/parksense/pkg/models"
)

// ExtractPeriods scans an ascending observation history and returns one
// period per free->occupied transition. A history that ends occupied yields
// a final period ending at now. Repeated states are ignored.
func ExtractPeriods(observations []models.Observation, now time.Time) []models.OccupancyPeriod {
	periods := make([]models.OccupancyPeriod, 0)

	var openStart time.Time
	open := false

	for _, obs := range observations {
		switch {
		case obs.Occupied && !open:
			openStart = obs.Timestamp
			open = true
		case !obs.Occupied && open:
			periods = append(periods, newPeriod(openStart, obs.Timestamp))
			open = false
		}
	}

	if open {
		periods = append(periods, newPeriod(openStart, now))
	}

	return periods
}

func newPeriod(start, end time.Time) models.OccupancyPeriod {
	if end.Before(start) {
		end = start
	}
	return models.OccupancyPeriod{
		Start:           start,
		End:             end,
		DurationMinutes: minutesBetween(start, end),
	}
}

// minutesBetween returns whole minutes from start to end, never negative.
func minutesBetween(start, end time.Time) int {
	d := end.Sub(start)
	if d <= 0 {
		return 0
	}
	return int(d / time.Minute)
}
