package models

import (
	"math"
	"time"
)

type SpotStatus string

const (
	SpotStatusFree     SpotStatus = "free"
	SpotStatusOccupied SpotStatus = "occupied"
	SpotStatusInactive SpotStatus = "inactive"
)

type SensorType string

const (
	SensorUltrasonic SensorType = "ultrasonic"
	SensorInfrared   SensorType = "infrared"
	SensorReedSwitch SensorType = "reed_switch"
	SensorDigital    SensorType = "digital"
)

// ParkingSpot is the dashboard view of one monitored spot.
type ParkingSpot struct {
	ID         string        `json:"id"`
	Name       string        `json:"name"`
	Status     SpotStatus    `json:"status"`
	SensorType SensorType    `json:"sensor_type"`
	LastUpdate time.Time     `json:"last_update"`
	IsOnline   bool          `json:"is_online"`
	History    []Observation `json:"history,omitempty"`
}

// ParkingStats is the lot-wide status breakdown.
type ParkingStats struct {
	TotalSpots       int `json:"total_spots"`
	FreeSpots        int `json:"free_spots"`
	OccupiedSpots    int `json:"occupied_spots"`
	InactiveSpots    int `json:"inactive_spots"`
	AverageOccupancy int `json:"average_occupancy"`
}

// CalculateStats counts spots by status. AverageOccupancy is the share of
// active (non-inactive) spots that are occupied.
func CalculateStats(spots []ParkingSpot) ParkingStats {
	stats := ParkingStats{TotalSpots: len(spots)}

	for _, s := range spots {
		switch s.Status {
		case SpotStatusFree:
			stats.FreeSpots++
		case SpotStatusOccupied:
			stats.OccupiedSpots++
		case SpotStatusInactive:
			stats.InactiveSpots++
		}
	}

	active := stats.TotalSpots - stats.InactiveSpots
	if active > 0 {
		stats.AverageOccupancy = int(math.Round(float64(stats.OccupiedSpots) / float64(active) * 100))
	}

	return stats
}
