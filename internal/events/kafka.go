package events

import (
	"context"
	"encoding/json"
	"time"

	"github.com/segmentio/kafka-go"

	"github.com/OldStager01/parksense/internal/logger"
	"github.com/OldStager01/parksense/pkg/models"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

type KafkaSinkConfig struct {
	Brokers      []string
	Topic        string
	BatchTimeout time.Duration
}

// KafkaSink exports events as JSON records keyed by spot ID, so every
// spot's events stay ordered within one partition.
type KafkaSink struct {
	writer    messageWriter
	eventChan <-chan *models.Event
	done      chan struct{}
}

func NewKafkaWriter(cfg KafkaSinkConfig) *kafka.Writer {
	batchTimeout := cfg.BatchTimeout
	if batchTimeout <= 0 {
		batchTimeout = time.Second
	}
	return &kafka.Writer{
		Addr:         kafka.TCP(cfg.Brokers...),
		Topic:        cfg.Topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireOne,
		BatchTimeout: batchTimeout,
		Async:        false,
	}
}

func NewKafkaSink(writer messageWriter, eventChan <-chan *models.Event) *KafkaSink {
	return &KafkaSink{
		writer:    writer,
		eventChan: eventChan,
		done:      make(chan struct{}),
	}
}

func (s *KafkaSink) Start(ctx context.Context) {
	go s.run(ctx)
}

// Wait blocks until the sink has stopped.
func (s *KafkaSink) Wait() {
	<-s.done
}

func (s *KafkaSink) Close() error {
	return s.writer.Close()
}

func (s *KafkaSink) run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-s.eventChan:
			if !ok {
				return
			}
			if err := s.write(ctx, event); err != nil {
				logger.WithComponent("kafka").Errorf("Failed to export event %s: %v", event.Type, err)
			}
		}
	}
}

func (s *KafkaSink) write(ctx context.Context, event *models.Event) error {
	value, err := json.Marshal(event)
	if err != nil {
		return err
	}

	return s.writer.WriteMessages(ctx, kafka.Message{
		Key:   []byte(event.SpotID),
		Value: value,
		Time:  event.Timestamp,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
		},
	})
}
