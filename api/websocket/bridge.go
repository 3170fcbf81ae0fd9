package websocket

import (
	"context"

	"github.com/OldStager01/parksense/internal/logger"
	"github.com/OldStager01/parksense/pkg/models"
)

// EventBridge forwards bus events to WebSocket clients.
type EventBridge struct {
	hub        *Hub
	eventsChan <-chan *models.Event
	ctx        context.Context
	cancel     context.CancelFunc
	done       chan struct{}
}

func NewEventBridge(hub *Hub, eventsChan <-chan *models.Event) *EventBridge {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventBridge{
		hub:        hub,
		eventsChan: eventsChan,
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
	}
}

func (b *EventBridge) Start() {
	go b.run()
	logger.Info("WebSocket event bridge started")
}

func (b *EventBridge) Stop() {
	b.cancel()
	<-b.done
	logger.Info("WebSocket event bridge stopped")
}

func (b *EventBridge) run() {
	defer close(b.done)
	for {
		select {
		case <-b.ctx.Done():
			return
		case event, ok := <-b.eventsChan:
			if !ok {
				logger.Info("Event channel closed, stopping bridge")
				return
			}
			b.forwardEvent(event)
		}
	}
}

func (b *EventBridge) forwardEvent(event *models.Event) {
	msg := convertToWSMessage(event)
	if msg == nil {
		return
	}
	b.hub.BroadcastToSpot(event.SpotID, msg.JSON())
}

// BridgedEventTypes are the bus events clients receive.
func BridgedEventTypes() []models.EventType {
	return []models.EventType{
		models.EventTypeSpotStatusChanged,
		models.EventTypeObservationReceived,
		models.EventTypeHistoryRefreshed,
		models.EventTypeAlert,
	}
}

func convertToWSMessage(event *models.Event) *OutgoingMessage {
	var (
		msgType MessageType
		data    interface{}
	)

	switch event.Type {
	case models.EventTypeSpotStatusChanged:
		change, ok := event.Data.(*models.StatusChange)
		if !ok {
			return nil
		}
		msgType = MessageTypeStatusChange
		data = StatusChangeData{From: change.From, To: change.To}

	case models.EventTypeObservationReceived:
		batch, ok := event.Data.(*models.ObservationBatch)
		if !ok || len(batch.Observations) == 0 {
			return nil
		}
		last := batch.Observations[len(batch.Observations)-1]
		msgType = MessageTypeObservation
		data = ObservationData{Occupied: last.Occupied, Timestamp: last.Timestamp, Source: batch.Source}

	case models.EventTypeHistoryRefreshed:
		batch, ok := event.Data.(*models.ObservationBatch)
		if !ok {
			return nil
		}
		hd := HistoryData{Count: len(batch.Observations)}
		if n := len(batch.Observations); n > 0 {
			ts := batch.Observations[n-1].Timestamp
			hd.Last = &ts
		}
		msgType = MessageTypeHistoryRefreshed
		data = hd

	case models.EventTypeAlert:
		msgType = MessageTypeAlert
		data = AlertData{Severity: string(event.Severity), Message: event.Message}

	default:
		return nil
	}

	return &OutgoingMessage{
		Type:      msgType,
		SpotID:    event.SpotID,
		Timestamp: event.Timestamp,
		Data:      data,
	}
}
