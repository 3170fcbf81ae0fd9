package models

import (
	"bytes"
	"encoding/json"
	"strings"
	"time"
)

// Where an observation came from.
const (
	SourcePoll = "poll"
	SourceMQTT = "mqtt"
	SourceAPI  = "api"
)

// Observation is one normalized sensor sample for a parking spot.
type Observation struct {
	Timestamp time.Time `json:"timestamp"`
	Occupied  bool      `json:"occupied"`
}

// RawObservation matches the item shape served by the sensor backend, e.g.
// {"data_hora": "2026-02-05T10:15:00", "ocupada": "True"}.
type RawObservation struct {
	DataHora string        `json:"data_hora"`
	Ocupada  OccupancyFlag `json:"ocupada"`
}

// OccupancyFlag keeps the backend's loosely typed occupancy token as text.
// It unmarshals from a JSON string, boolean or number.
type OccupancyFlag string

func (f *OccupancyFlag) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*f = OccupancyFlag(s)
		return nil
	}

	// Booleans and numbers are kept as their literal text.
	*f = OccupancyFlag(strings.ToLower(string(data)))
	return nil
}

func (f OccupancyFlag) String() string {
	return string(f)
}

// SpotUpdate is a single live reading received for a spot.
type SpotUpdate struct {
	SpotID    string    `json:"spot_id"`
	Occupied  bool      `json:"occupied"`
	Timestamp time.Time `json:"timestamp"`
}

// Observation converts the update into a history sample.
func (u SpotUpdate) Observation() Observation {
	return Observation{Timestamp: u.Timestamp, Occupied: u.Occupied}
}
