package occupancy

import (
	"math"
	"time"

	"github.com/OldStager01/parksense/pkg/models"
)

// DefaultWindow is the trailing window used for utilization.
const DefaultWindow = 24 * time.Hour

// CalculateSpotMetrics summarizes one spot's history using the default
// trailing 24h utilization window.
func CalculateSpotMetrics(spotID, spotName string, observations []models.Observation, now time.Time) models.SpotMetrics {
	return calculateSpotMetrics(spotID, spotName, observations, now, DefaultWindow)
}

func calculateSpotMetrics(spotID, spotName string, observations []models.Observation, now time.Time, window time.Duration) models.SpotMetrics {
	periods := ExtractPeriods(observations, now)
	return metricsFromPeriods(spotID, spotName, periods, now, window)
}

func metricsFromPeriods(spotID, spotName string, periods []models.OccupancyPeriod, now time.Time, window time.Duration) models.SpotMetrics {
	metrics := models.SpotMetrics{
		SpotID:         spotID,
		SpotName:       spotName,
		OccupancyCount: len(periods),
	}

	for _, p := range periods {
		metrics.TotalOccupancyTime += p.DurationMinutes
	}

	if len(periods) > 0 {
		avg := float64(metrics.TotalOccupancyTime) / float64(len(periods))
		metrics.AverageOccupancyMinutes = int(math.Round(avg))

		lastStart := periods[len(periods)-1].Start
		metrics.LastOccupancy = &lastStart
	}

	metrics.UtilizationRate = UtilizationRate(periods, now, window)

	return metrics
}

// UtilizationRate is the share of the trailing window, in percent with one
// decimal, covered by the given periods. Periods are clipped to the window.
func UtilizationRate(periods []models.OccupancyPeriod, now time.Time, window time.Duration) float64 {
	if window <= 0 {
		window = DefaultWindow
	}
	windowStart := now.Add(-window)

	occupiedMinutes := 0
	for _, p := range periods {
		if !p.End.After(windowStart) || !p.Start.Before(now) {
			continue
		}

		start := p.Start
		if start.Before(windowStart) {
			start = windowStart
		}
		end := p.End
		if end.After(now) {
			end = now
		}

		occupiedMinutes += minutesBetween(start, end)
	}

	rate := float64(occupiedMinutes) / window.Minutes() * 100
	return clampPercent(roundTenth(rate))
}

func roundTenth(v float64) float64 {
	return math.Round(v*10) / 10
}

func clampPercent(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 100:
		return 100
	default:
		return v
	}
}
