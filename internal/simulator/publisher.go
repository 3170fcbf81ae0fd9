package simulator

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/OldStager01/parksense/pkg/models"
)

// Publisher pushes live readings to the sensor broker.
type Publisher interface {
	Publish(spotID string, occupied bool) error
	Close()
}

type MQTTConfig struct {
	Broker string
	// TopicPrefix is joined with the spot ID, e.g. pi5/estacionamento/vaga/A01.
	TopicPrefix string
	ClientID    string
	QoS         byte
	Timeout     time.Duration
}

type MQTTPublisher struct {
	client  mqtt.Client
	prefix  string
	qos     byte
	timeout time.Duration
}

type sensorMessage struct {
	Ocupada models.OccupancyFlag `json:"ocupada"`
}

func NewMQTTPublisher(cfg MQTTConfig) (*MQTTPublisher, error) {
	if cfg.TopicPrefix == "" {
		cfg.TopicPrefix = "pi5/estacionamento/vaga"
	}
	if cfg.ClientID == "" {
		cfg.ClientID = "parksense-sim-" + models.NewUUID()[:8]
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientID).
		SetConnectTimeout(cfg.Timeout).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if !token.WaitTimeout(cfg.Timeout) {
		return nil, fmt.Errorf("mqtt connect to %s timed out", cfg.Broker)
	}
	if err := token.Error(); err != nil {
		return nil, fmt.Errorf("mqtt connect to %s: %w", cfg.Broker, err)
	}

	return &MQTTPublisher{
		client:  client,
		prefix:  strings.TrimRight(cfg.TopicPrefix, "/"),
		qos:     cfg.QoS,
		timeout: cfg.Timeout,
	}, nil
}

func (p *MQTTPublisher) Publish(spotID string, occupied bool) error {
	payload, err := json.Marshal(sensorMessage{Ocupada: flag(occupied)})
	if err != nil {
		return err
	}

	token := p.client.Publish(p.prefix+"/"+spotID, p.qos, false, payload)
	if !token.WaitTimeout(p.timeout) {
		return fmt.Errorf("mqtt publish for %s timed out", spotID)
	}
	return token.Error()
}

func (p *MQTTPublisher) Close() {
	p.client.Disconnect(250)
}
