package models

import "time"

type FindingKind string

const (
	FindingLotNearlyFull FindingKind = "lot_nearly_full"
	FindingLotRecovered  FindingKind = "lot_recovered"
	FindingLongStay      FindingKind = "long_stay"
)

// Finding is a condition worth alerting operators about. It is the payload
// of alert events.
type Finding struct {
	Kind     FindingKind   `json:"kind"`
	SpotID   string        `json:"spot_id,omitempty"`
	Severity EventSeverity `json:"severity"`
	Message  string        `json:"message"`
	Since    time.Time     `json:"since"`
	// Value is the occupancy percent for lot findings and minutes parked
	// for long stays.
	Value float64 `json:"value"`
}
