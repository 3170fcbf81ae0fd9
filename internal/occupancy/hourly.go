package occupancy

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/OldStager01/parksense/pkg/models"
)

const hoursPerDay = 24

type hourCounter struct {
	occupied int
	total    int
}

func countByHour(spots map[string][]models.Observation, loc *time.Location) [hoursPerDay]hourCounter {
	if loc == nil {
		loc = time.Local
	}

	var counters [hoursPerDay]hourCounter
	for _, history := range spots {
		for _, obs := range history {
			h := obs.Timestamp.In(loc).Hour()
			counters[h].total++
			if obs.Occupied {
				counters[h].occupied++
			}
		}
	}
	return counters
}

// HourlyOccupancy pools every observation of every spot into its wall-clock
// hour in loc and returns the occupied share per hour, 0..23 in order.
// Rates are weighted by observation count, not by time.
func HourlyOccupancy(spots map[string][]models.Observation, loc *time.Location) []models.HourBucket {
	counters := countByHour(spots, loc)

	buckets := make([]models.HourBucket, hoursPerDay)
	for h, c := range counters {
		buckets[h].Hour = h
		if c.total > 0 {
			buckets[h].OccupancyRate = int(math.Round(float64(c.occupied) / float64(c.total) * 100))
		}
	}
	return buckets
}

// HourlyChart returns occupied and free observation counts per hour.
func HourlyChart(spots map[string][]models.Observation, loc *time.Location) []models.HourlyChartPoint {
	counters := countByHour(spots, loc)

	points := make([]models.HourlyChartPoint, hoursPerDay)
	for h, c := range counters {
		points[h] = models.HourlyChartPoint{
			Hour:     fmt.Sprintf("%02d:00", h),
			Occupied: c.occupied,
			Free:     c.total - c.occupied,
		}
	}
	return points
}

// TopPeakHours returns the n buckets with the highest occupancy rate.
// Equal rates keep hour order.
func TopPeakHours(buckets []models.HourBucket, n int) []models.HourBucket {
	sorted := make([]models.HourBucket, len(buckets))
	copy(sorted, buckets)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OccupancyRate > sorted[j].OccupancyRate
	})
	if n < len(sorted) {
		sorted = sorted[:max(n, 0)]
	}
	return sorted
}

// FormatPeakHour renders a bucket as "08:00 (75%)".
func FormatPeakHour(b models.HourBucket) string {
	return fmt.Sprintf("%02d:00 (%d%%)", b.Hour, b.OccupancyRate)
}
