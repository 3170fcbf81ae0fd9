package models

import "time"

type EventType string

const (
	EventTypeObservationReceived EventType = "observation_received"
	EventTypeSpotStatusChanged   EventType = "spot_status_changed"
	EventTypeHistoryRefreshed    EventType = "history_refreshed"
	EventTypeMetricsComputed     EventType = "metrics_computed"
	EventTypeCollectionFailed    EventType = "collection_failed"
	EventTypeAlert               EventType = "alert"
	EventTypeError               EventType = "error"
)

// AllEventTypes lists every event type the bus can carry.
func AllEventTypes() []EventType {
	return []EventType{
		EventTypeObservationReceived,
		EventTypeSpotStatusChanged,
		EventTypeHistoryRefreshed,
		EventTypeMetricsComputed,
		EventTypeCollectionFailed,
		EventTypeAlert,
		EventTypeError,
	}
}

type EventSeverity string

const (
	SeverityInfo     EventSeverity = "info"
	SeverityWarning  EventSeverity = "warning"
	SeverityCritical EventSeverity = "critical"
)

// Event represents an internal system event
type Event struct {
	ID        string        `json:"id"`
	Type      EventType     `json:"type"`
	Severity  EventSeverity `json:"severity"`
	SpotID    string        `json:"spot_id,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
	Message   string        `json:"message"`
	Data      interface{}   `json:"data,omitempty"`
	TraceID   string        `json:"trace_id,omitempty"`
}

func NewEvent(eventType EventType, spotID, message string) *Event {
	return &Event{
		ID:        NewUUID(),
		Type:      eventType,
		Severity:  SeverityInfo,
		SpotID:    spotID,
		Timestamp: time.Now(),
		Message:   message,
	}
}

func (e *Event) WithSeverity(severity EventSeverity) *Event {
	e.Severity = severity
	return e
}

func (e *Event) WithData(data interface{}) *Event {
	e.Data = data
	return e
}

func (e *Event) WithTraceID(traceID string) *Event {
	e.TraceID = traceID
	return e
}

// StatusChange is the payload of a spot_status_changed event.
type StatusChange struct {
	SpotID    string     `json:"spot_id"`
	From      SpotStatus `json:"from"`
	To        SpotStatus `json:"to"`
	Timestamp time.Time  `json:"timestamp"`
}

// ObservationBatch is the payload of observation_received and
// history_refreshed events.
type ObservationBatch struct {
	SpotID       string        `json:"spot_id"`
	Source       string        `json:"source"`
	Observations []Observation `json:"observations"`
}
