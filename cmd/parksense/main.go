package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/OldStager01/parksense/api"
	"github.com/OldStager01/parksense/api/websocket"
	"github.com/OldStager01/parksense/internal/analyzer"
	"github.com/OldStager01/parksense/internal/auth"
	"github.com/OldStager01/parksense/internal/events"
	"github.com/OldStager01/parksense/internal/logger"
	"github.com/OldStager01/parksense/internal/metrics"
	"github.com/OldStager01/parksense/internal/monitor"
	"github.com/OldStager01/parksense/internal/mqttsub"
	"github.com/OldStager01/parksense/internal/occupancy"
	"github.com/OldStager01/parksense/internal/store"
	"github.com/OldStager01/parksense/pkg/config"
	"github.com/OldStager01/parksense/pkg/database"
	"github.com/OldStager01/parksense/pkg/database/queries"
	"github.com/OldStager01/parksense/pkg/models"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to config file")
	migrate := flag.Bool("migrate", false, "run database migrations and exit")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	logger.Setup(cfg.App.LogLevel, cfg.App.Mode)
	logger.Infof("Starting %s in %s mode", cfg.App.Name, cfg.App.Mode)

	loc, err := cfg.Metrics.Location()
	if err != nil {
		return fmt.Errorf("invalid timezone: %w", err)
	}

	var db *database.DB
	if cfg.Database.Enabled || *migrate {
		db, err = database.New(cfg.Database.ToDBConfig())
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		logger.Infof("Database connection established (%s)", db.Driver())

		if err := runMigrations(cfg.Database, db); err != nil {
			return err
		}
		if *migrate {
			return nil
		}
	}

	var (
		observationRepo *queries.ObservationRepository
		statusRepo      *queries.StatusChangeRepository
		operatorRepo    *queries.OperatorRepository
	)
	if db != nil {
		observationRepo = queries.NewObservationRepository(db)
		statusRepo = queries.NewStatusChangeRepository(db)
		operatorRepo = queries.NewOperatorRepository(db)
	}

	promMetrics := metrics.Get()
	bus := events.NewEventBus(cfg.Events.BufferSize)

	var eventLogger *events.EventLogger
	if db != nil {
		eventLogger = events.NewEventLogger(bus.SubscribeAll(), observationRepo, statusRepo)
	} else {
		eventLogger = events.NewEventLogger(bus.SubscribeAll(), nil, nil)
	}
	eventLogger.Start()

	rootCtx, stopRoot := context.WithCancel(context.Background())
	defer stopRoot()

	var kafkaSink *events.KafkaSink
	if cfg.Events.Kafka.Enabled {
		writer := events.NewKafkaWriter(events.KafkaSinkConfig{
			Brokers:      cfg.Events.Kafka.Brokers,
			Topic:        cfg.Events.Kafka.Topic,
			BatchTimeout: cfg.Events.Kafka.BatchTimeout,
		})
		kafkaSink = events.NewKafkaSink(writer, bus.Subscribe(models.EventTypeSpotStatusChanged))
		kafkaSink.Start(rootCtx)
		logger.Infof("Publishing status changes to kafka topic %s", cfg.Events.Kafka.Topic)
	}

	metricsCache, err := newCache(cfg.Cache)
	if err != nil {
		return err
	}
	defer metricsCache.Close()

	coll, err := newCollector(cfg.Collector, loc, promMetrics)
	if err != nil {
		return err
	}
	defer coll.Close()

	engine := occupancy.NewEngine(occupancy.Config{
		Window:   cfg.Metrics.Window,
		TopN:     cfg.Metrics.TopN,
		PeakN:    cfg.Metrics.PeakHours,
		Location: loc,
	})

	monCfg := monitor.Config{
		SpotIDs:     cfg.Collector.Spots,
		Interval:    cfg.Collector.Interval,
		Timeout:     cfg.Collector.Timeout,
		Concurrency: cfg.Collector.Concurrency,
		CacheTTL:    cfg.Metrics.CacheTTL,
		Collector:   coll,
		Store:       store.New(cfg.Metrics.MaxHistory),
		Engine:      engine,
		Cache:       metricsCache,
		EventBus:    bus,
		Metrics:     promMetrics,
	}
	if observationRepo != nil {
		monCfg.Repository = observationRepo
	}
	if cfg.Alerts.Enabled {
		monCfg.Analyzer = analyzer.New(analyzer.Config{
			NearlyFullPercent: cfg.Alerts.NearlyFullPercent,
			SustainedFor:      cfg.Alerts.SustainedFor,
			LongStay:          cfg.Alerts.LongStay,
		})
	}
	mon := monitor.New(monCfg)

	if db != nil {
		warmCtx, cancel := context.WithTimeout(rootCtx, 30*time.Second)
		if _, err := mon.Warmup(warmCtx, engine.Now().Add(-cfg.Metrics.Window)); err != nil {
			logger.Warnf("Warmup failed, starting with an empty store: %v", err)
		}
		cancel()
	}

	if err := mon.Start(); err != nil {
		return fmt.Errorf("failed to start monitor: %w", err)
	}

	var subscriber *mqttsub.Subscriber
	if cfg.MQTT.Enabled {
		subscriber = mqttsub.New(mqttsub.Config{
			Broker:               cfg.MQTT.Broker,
			Topic:                cfg.MQTT.Topic,
			ClientIDPrefix:       cfg.MQTT.ClientIDPrefix,
			Username:             cfg.MQTT.Username,
			Password:             cfg.MQTT.Password,
			QoS:                  cfg.MQTT.QoS,
			ConnectTimeout:       cfg.MQTT.ConnectTimeout,
			ReconnectPeriod:      cfg.MQTT.ReconnectPeriod,
			MaxReconnectAttempts: cfg.MQTT.MaxReconnectAttempts,
		}, func(update models.SpotUpdate) {
			mon.HandleUpdate(update, models.SourceMQTT)
		})
		subscriber.OnResult = promMetrics.IncMQTTMessages
		if err := subscriber.Start(); err != nil {
			// The API keeps serving polled data without the live feed.
			logger.Errorf("MQTT subscriber failed to start: %v", err)
		}
	}

	opts := api.Options{
		Service: mon,
		Events:  bus.Subscribe(websocket.BridgedEventTypes()...),
	}
	if operatorRepo != nil {
		opts.Users = auth.NewUserStore(cfg.API.AdminUsername, cfg.API.AdminPasswordHash, operatorRepo)
		opts.DB = db
	} else {
		opts.Users = auth.NewUserStore(cfg.API.AdminUsername, cfg.API.AdminPasswordHash, nil)
	}
	if checker, ok := metricsCache.(interface {
		HealthCheck(ctx context.Context) error
	}); ok {
		opts.Cache = checker
	}
	if subscriber != nil {
		opts.MQTT = subscriber
	}
	if cfg.API.AdminPasswordHash == "" && operatorRepo == nil {
		logger.Warn("No admin password hash and no operator database: protected routes are unreachable")
	}

	server := api.NewServer(cfg.API, cfg.WebSocket, opts)

	var promServer *metrics.Server
	if cfg.Prometheus.Enabled {
		promServer = metrics.NewServer(cfg.Prometheus.Port, "/metrics", promMetrics)
	}

	g, gctx := errgroup.WithContext(rootCtx)
	g.Go(func() error {
		logger.Infof("API server listening on port %d", cfg.API.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("api server: %w", err)
		}
		return nil
	})
	if promServer != nil {
		g.Go(func() error {
			if err := promServer.Start(); err != nil {
				return fmt.Errorf("metrics server: %w", err)
			}
			return nil
		})
	}
	if observationRepo != nil && cfg.Database.RetentionPeriod > 0 {
		g.Go(func() error {
			runRetention(gctx, observationRepo, cfg.Database.RetentionPeriod)
			return nil
		})
	}

	shutdownChan := make(chan os.Signal, 1)
	signal.Notify(shutdownChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-shutdownChan:
		logger.Infof("Received signal %v, shutting down", sig)
	case <-gctx.Done():
		logger.Error("A server stopped unexpectedly, shutting down")
	}

	timeout := cfg.App.ShutdownTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), timeout)
	defer shutdownCancel()

	if subscriber != nil {
		subscriber.Stop()
	}
	mon.Stop()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Errorf("API shutdown error: %v", err)
	}
	if promServer != nil {
		if err := promServer.Shutdown(shutdownCtx); err != nil {
			logger.Errorf("Metrics server shutdown error: %v", err)
		}
	}

	stopRoot()
	bus.Close()
	eventLogger.Stop()
	if kafkaSink != nil {
		kafkaSink.Wait()
		if err := kafkaSink.Close(); err != nil {
			logger.Errorf("Kafka writer close error: %v", err)
		}
	}

	if err := g.Wait(); err != nil {
		return err
	}

	logger.Info("Server stopped gracefully")
	return nil
}

func runMigrations(cfg config.DatabaseConfig, db *database.DB) error {
	timeout := cfg.MigrationTimeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	logger.Info("Running database migrations")
	if err := database.NewMigrator(db).Run(ctx); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}
	logger.Info("Migrations completed successfully")
	return nil
}
