package models

import "time"

// OccupancyPeriod is one contiguous run of "occupied" readings.
type OccupancyPeriod struct {
	Start           time.Time `json:"start"`
	End             time.Time `json:"end"`
	DurationMinutes int       `json:"duration_minutes"`
}

// SpotMetrics summarizes the occupancy history of a single spot.
type SpotMetrics struct {
	SpotID                  string     `json:"spot_id"`
	SpotName                string     `json:"spot_name"`
	AverageOccupancyMinutes int        `json:"average_occupancy_minutes"`
	TotalOccupancyTime      int        `json:"total_occupancy_time"`
	OccupancyCount          int        `json:"occupancy_count"`
	UtilizationRate         float64    `json:"utilization_rate"`
	LastOccupancy           *time.Time `json:"last_occupancy"`
}

// HourBucket is the pooled occupancy rate for one hour of the day.
type HourBucket struct {
	Hour          int `json:"hour"`
	OccupancyRate int `json:"occupancy_rate"`
}

// HourlyChartPoint carries raw occupied/free observation counts for an hour.
type HourlyChartPoint struct {
	Hour     string `json:"hour"`
	Occupied int    `json:"occupied"`
	Free     int    `json:"free"`
}

// GlobalMetrics aggregates spot metrics across the whole parking lot.
type GlobalMetrics struct {
	AverageOccupancyMinutes int           `json:"average_occupancy_minutes"`
	MostUsedSpots           []SpotMetrics `json:"most_used_spots"`
	LeastUsedSpots          []SpotMetrics `json:"least_used_spots"`
	PeakHours               []HourBucket  `json:"peak_hours"`
	TotalOccupancyEvents    int           `json:"total_occupancy_events"`
	AverageUtilization      float64       `json:"average_utilization"`
	ComputedAt              time.Time     `json:"computed_at"`
}
