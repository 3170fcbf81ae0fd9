package websocket

import (
	"encoding/json"
	"time"

	"github.com/OldStager01/parksense/pkg/models"
)

type MessageType string

const (
	MessageTypeStatusChange     MessageType = "status_change"
	MessageTypeObservation      MessageType = "observation"
	MessageTypeHistoryRefreshed MessageType = "history_refreshed"
	MessageTypeAlert            MessageType = "alert"
	MessageTypeSpotState        MessageType = "spot_state"
	MessageTypeSubscription     MessageType = "subscription_update"
)

type OutgoingMessage struct {
	Type      MessageType `json:"type"`
	SpotID    string      `json:"spot_id,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
	Data      interface{} `json:"data"`
}

func NewMessage(msgType MessageType, spotID string, data interface{}) *OutgoingMessage {
	return &OutgoingMessage{
		Type:      msgType,
		SpotID:    spotID,
		Timestamp: time.Now(),
		Data:      data,
	}
}

func (m *OutgoingMessage) JSON() []byte {
	data, _ := json.Marshal(m)
	return data
}

type StatusChangeData struct {
	From models.SpotStatus `json:"from"`
	To   models.SpotStatus `json:"to"`
}

type ObservationData struct {
	Occupied  bool      `json:"occupied"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}

type HistoryData struct {
	Count int        `json:"count"`
	Last  *time.Time `json:"last,omitempty"`
}

type AlertData struct {
	Severity string `json:"severity"`
	Message  string `json:"message"`
}

type SubscriptionData struct {
	Action string `json:"action"`
}

// BroadcastSpotState pushes a full spot view, e.g. after an operator edit.
func BroadcastSpotState(hub *Hub, spot models.ParkingSpot) {
	spot.History = nil
	msg := NewMessage(MessageTypeSpotState, spot.ID, spot)
	hub.BroadcastToSpot(spot.ID, msg.JSON())
}
