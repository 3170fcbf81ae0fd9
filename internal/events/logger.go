package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/OldStager01/parksense/internal/logger"
	"github.com/OldStager01/parksense/pkg/models"
)

type ObservationWriter interface {
	InsertBatch(ctx context.Context, spotID, source string, observations []models.Observation) (int64, error)
}

type StatusChangeWriter interface {
	Create(ctx context.Context, change models.StatusChange) (int64, error)
}

// EventLogger writes every event to the structured log and persists
// observations and status changes when writers are configured.
type EventLogger struct {
	observations ObservationWriter
	changes      StatusChangeWriter
	eventChan    <-chan *models.Event
	drainTimeout time.Duration
	ctx          context.Context
	cancel       context.CancelFunc
	done         chan struct{}
}

const (
	defaultDrainTimeout = 10 * time.Second
	persistTimeout      = 5 * time.Second
)

func NewEventLogger(eventChan <-chan *models.Event, observations ObservationWriter, changes StatusChangeWriter) *EventLogger {
	ctx, cancel := context.WithCancel(context.Background())
	return &EventLogger{
		observations: observations,
		changes:      changes,
		eventChan:    eventChan,
		drainTimeout: defaultDrainTimeout,
		ctx:          ctx,
		cancel:       cancel,
		done:         make(chan struct{}),
	}
}

func (l *EventLogger) Start() {
	go l.run()
}

// Stop waits for the event channel to be closed and drained. If that takes
// longer than the drain timeout, whatever is still queued is abandoned.
func (l *EventLogger) Stop() {
	timer := time.NewTimer(l.drainTimeout)
	defer timer.Stop()

	select {
	case <-l.done:
		return
	case <-timer.C:
		logger.Warnf("Event logger did not drain within %s", l.drainTimeout)
	}
	l.cancel()
	<-l.done
}

func (l *EventLogger) run() {
	defer close(l.done)
	for {
		select {
		case <-l.ctx.Done():
			return
		case event, ok := <-l.eventChan:
			if !ok {
				return
			}
			l.processEvent(event)
		}
	}
}

func (l *EventLogger) processEvent(event *models.Event) {
	entry := logger.WithFields(map[string]interface{}{
		"event_type": event.Type,
		"spot_id":    event.SpotID,
		"severity":   event.Severity,
		"trace_id":   event.TraceID,
	})

	switch event.Severity {
	case models.SeverityCritical:
		entry.Error(event.Message)
	case models.SeverityWarning:
		entry.Warn(event.Message)
	default:
		entry.Debug(event.Message)
	}

	// Not derived from l.ctx, so events drained during shutdown still persist.
	ctx, cancel := context.WithTimeout(context.Background(), persistTimeout)
	defer cancel()

	switch event.Type {
	case models.EventTypeObservationReceived, models.EventTypeHistoryRefreshed:
		l.persistObservations(ctx, event)
	case models.EventTypeSpotStatusChanged:
		l.persistStatusChange(ctx, event)
	}
}

func (l *EventLogger) persistObservations(ctx context.Context, event *models.Event) {
	if l.observations == nil {
		return
	}
	batch, ok := event.Data.(*models.ObservationBatch)
	if !ok || len(batch.Observations) == 0 {
		return
	}

	if _, err := l.observations.InsertBatch(ctx, batch.SpotID, batch.Source, batch.Observations); err != nil {
		logger.WithSpot(batch.SpotID).Errorf("Failed to persist observations: %v", err)
	}
}

func (l *EventLogger) persistStatusChange(ctx context.Context, event *models.Event) {
	if l.changes == nil {
		return
	}
	change, ok := event.Data.(*models.StatusChange)
	if !ok {
		return
	}

	if _, err := l.changes.Create(ctx, *change); err != nil {
		logger.WithSpot(change.SpotID).Errorf("Failed to persist status change: %v", err)
	}
}

func (l *EventLogger) LogToJSON(event *models.Event) string {
	data, _ := json.Marshal(event)
	return string(data)
}
