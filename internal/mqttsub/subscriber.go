// Package mqttsub receives live spot readings from the sensor MQTT broker.
package mqttsub

import (
	"errors"
	"fmt"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"github.com/OldStager01/parksense/internal/logger"
	"github.com/OldStager01/parksense/pkg/models"
)

const (
	ResultAccepted = "accepted"
	ResultInvalid  = "invalid"
)

var ErrGaveUp = errors.New("mqtt reconnect attempts exhausted")

type Handler func(update models.SpotUpdate)

type Config struct {
	Broker               string
	Topic                string
	ClientIDPrefix       string
	Username             string
	Password             string
	QoS                  byte
	ConnectTimeout       time.Duration
	ReconnectPeriod      time.Duration
	MaxReconnectAttempts int
}

type Subscriber struct {
	config  Config
	client  mqtt.Client
	handler Handler
	now     func() time.Time

	// OnResult is told whether each message was accepted or invalid.
	OnResult func(result string)

	mu         sync.Mutex
	reconnects int
	connected  bool
	gaveUp     bool
}

func New(cfg Config, handler Handler) *Subscriber {
	if cfg.ConnectTimeout <= 0 {
		cfg.ConnectTimeout = 10 * time.Second
	}
	if cfg.ReconnectPeriod <= 0 {
		cfg.ReconnectPeriod = 5 * time.Second
	}
	if cfg.MaxReconnectAttempts <= 0 {
		cfg.MaxReconnectAttempts = 5
	}
	if cfg.ClientIDPrefix == "" {
		cfg.ClientIDPrefix = "parksense-"
	}

	s := &Subscriber{
		config:  cfg,
		handler: handler,
		now:     time.Now,
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.Broker).
		SetClientID(cfg.ClientIDPrefix + models.NewUUID()[:8]).
		SetCleanSession(true).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(cfg.ReconnectPeriod).
		SetOnConnectHandler(s.onConnect).
		SetConnectionLostHandler(s.onConnectionLost).
		SetReconnectingHandler(s.onReconnecting)
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	s.client = mqtt.NewClient(opts)
	return s
}

// Start connects and subscribes. Subscription is renewed on every reconnect.
func (s *Subscriber) Start() error {
	token := s.client.Connect()
	if !token.WaitTimeout(s.config.ConnectTimeout) {
		return fmt.Errorf("mqtt connect to %s timed out", s.config.Broker)
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect to %s: %w", s.config.Broker, err)
	}
	return nil
}

func (s *Subscriber) Stop() {
	s.client.Disconnect(250)
	s.mu.Lock()
	s.connected = false
	s.mu.Unlock()
	logger.WithComponent("mqtt").Info("MQTT subscriber stopped")
}

func (s *Subscriber) IsConnected() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.connected
}

// Err reports ErrGaveUp once reconnect attempts are exhausted.
func (s *Subscriber) Err() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.gaveUp {
		return ErrGaveUp
	}
	return nil
}

func (s *Subscriber) onConnect(c mqtt.Client) {
	s.mu.Lock()
	s.connected = true
	s.reconnects = 0
	s.mu.Unlock()

	log := logger.WithComponent("mqtt").WithField("topic", s.config.Topic)
	log.Infof("Connected to %s", s.config.Broker)

	token := c.Subscribe(s.config.Topic, s.config.QoS, s.onMessage)
	go func() {
		token.Wait()
		if err := token.Error(); err != nil {
			log.Errorf("Subscribe failed: %v", err)
		}
	}()
}

func (s *Subscriber) onConnectionLost(_ mqtt.Client, err error) {
	s.mu.Lock()
	s.connected = false
	s.mu.Unlock()
	logger.WithComponent("mqtt").Warnf("Connection lost: %v", err)
}

func (s *Subscriber) onReconnecting(c mqtt.Client, _ *mqtt.ClientOptions) {
	s.mu.Lock()
	s.reconnects++
	attempt := s.reconnects
	exhausted := attempt > s.config.MaxReconnectAttempts
	if exhausted {
		s.gaveUp = true
	}
	s.mu.Unlock()

	log := logger.WithComponent("mqtt")
	if exhausted {
		log.Errorf("Giving up after %d reconnect attempts", s.config.MaxReconnectAttempts)
		go c.Disconnect(0)
		return
	}
	log.Warnf("Reconnecting (%d/%d)", attempt, s.config.MaxReconnectAttempts)
}

func (s *Subscriber) onMessage(_ mqtt.Client, msg mqtt.Message) {
	s.handle(msg.Topic(), msg.Payload())
}

func (s *Subscriber) handle(topic string, payload []byte) {
	update, err := ParseMessage(topic, payload, s.now())
	if err != nil {
		logger.WithComponent("mqtt").WithField("topic", topic).Warnf("Ignoring message: %v", err)
		s.report(ResultInvalid)
		return
	}

	s.report(ResultAccepted)
	if s.handler != nil {
		s.handler(update)
	}
}

func (s *Subscriber) report(result string) {
	if s.OnResult != nil {
		s.OnResult(result)
	}
}
