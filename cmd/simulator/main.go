package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/OldStager01/parksense/internal/logger"
	"github.com/OldStager01/parksense/internal/simulator"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	port := flag.Int("port", 9000, "simulator server port")
	spots := flag.String("spots", "A01,A02,A03,A04,A05,A06", "comma separated spot IDs")
	interval := flag.Duration("interval", 30*time.Second, "time between sensor readings")
	backfill := flag.Duration("backfill", 24*time.Hour, "history generated at startup")
	pattern := flag.String("pattern", "daily", "occupancy pattern: steady, daily, weekly, evening")
	seed := flag.Int64("seed", time.Now().UnixNano(), "random seed")
	mqttBroker := flag.String("mqtt-broker", "", "publish live readings to this broker, e.g. tcp://localhost:1883")
	mqttTopic := flag.String("mqtt-topic", "pi5/estacionamento/vaga", "topic prefix for live readings")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	logger.Setup(*logLevel, "development")
	logger.Info("Starting sensor simulator")

	cfg := simulator.Config{
		Port:     *port,
		Spots:    strings.Split(*spots, ","),
		Interval: *interval,
		Backfill: *backfill,
		Seed:     *seed,
		Pattern:  simulator.ParsePattern(*pattern),
	}

	if *mqttBroker != "" {
		pub, err := simulator.NewMQTTPublisher(simulator.MQTTConfig{
			Broker:      *mqttBroker,
			TopicPrefix: *mqttTopic,
		})
		if err != nil {
			return fmt.Errorf("failed to connect publisher: %w", err)
		}
		cfg.Publisher = pub
		logger.Infof("Publishing live readings to %s under %s", *mqttBroker, *mqttTopic)
	}

	sim := simulator.New(cfg)
	if err := sim.Start(); err != nil {
		return fmt.Errorf("failed to start simulator: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down simulator")
	return sim.Stop()
}
