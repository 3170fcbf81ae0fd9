package events

import (
	"fmt"

	"github.com/OldStager01/parksense/pkg/models"
)

type Publisher struct {
	bus     *EventBus
	traceID string
}

func NewPublisher(bus *EventBus) *Publisher {
	return &Publisher{bus: bus}
}

func (p *Publisher) WithTraceID(traceID string) *Publisher {
	return &Publisher{
		bus:     p.bus,
		traceID: traceID,
	}
}

func (p *Publisher) publish(event *models.Event) {
	if p.traceID != "" {
		event.TraceID = p.traceID
	}
	p.bus.Publish(event)
}

// ObservationReceived announces a live reading, e.g. from MQTT or the API.
func (p *Publisher) ObservationReceived(update models.SpotUpdate, source string) {
	state := "free"
	if update.Occupied {
		state = "occupied"
	}
	event := models.NewEvent(models.EventTypeObservationReceived, update.SpotID, "Observation received: "+state).
		WithData(&models.ObservationBatch{
			SpotID:       update.SpotID,
			Source:       source,
			Observations: []models.Observation{update.Observation()},
		})
	p.publish(event)
}

func (p *Publisher) HistoryRefreshed(spotID string, observations []models.Observation) {
	msg := fmt.Sprintf("History refreshed: %d observations", len(observations))
	event := models.NewEvent(models.EventTypeHistoryRefreshed, spotID, msg).
		WithData(&models.ObservationBatch{
			SpotID:       spotID,
			Source:       models.SourcePoll,
			Observations: observations,
		})
	p.publish(event)
}

func (p *Publisher) SpotStatusChanged(change models.StatusChange) {
	msg := fmt.Sprintf("Spot %s: %s -> %s", change.SpotID, change.From, change.To)
	event := models.NewEvent(models.EventTypeSpotStatusChanged, change.SpotID, msg).
		WithData(&change)
	event.Timestamp = change.Timestamp
	p.publish(event)
}

func (p *Publisher) MetricsComputed(global *models.GlobalMetrics, version uint64) {
	msg := fmt.Sprintf("Global metrics computed at version %d", version)
	event := models.NewEvent(models.EventTypeMetricsComputed, "", msg).
		WithData(global)
	p.publish(event)
}

func (p *Publisher) CollectionFailed(spotID string, err error) {
	event := models.NewEvent(models.EventTypeCollectionFailed, spotID, "Collection failed").
		WithSeverity(models.SeverityWarning).
		WithData(map[string]interface{}{
			"error": err.Error(),
		})
	p.publish(event)
}

func (p *Publisher) Alert(spotID string, severity models.EventSeverity, message string, data interface{}) {
	event := models.NewEvent(models.EventTypeAlert, spotID, message).
		WithSeverity(severity).
		WithData(data)
	p.publish(event)
}

func (p *Publisher) Error(spotID string, message string, err error) {
	event := models.NewEvent(models.EventTypeError, spotID, message).
		WithSeverity(models.SeverityCritical).
		WithData(map[string]interface{}{
			"error": err.Error(),
		})
	p.publish(event)
}
