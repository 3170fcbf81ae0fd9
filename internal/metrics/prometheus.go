package metrics

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/OldStager01/parksense/internal/logger"
)

const (
	MetricCollectionsTotal    = "parksense_collections_total"
	MetricCollectionDuration  = "parksense_collection_duration_seconds"
	MetricMQTTMessagesTotal   = "parksense_mqtt_messages_total"
	MetricSpotUtilization     = "parksense_spot_utilization_percent"
	MetricSpots               = "parksense_spots"
	MetricComputeDuration     = "parksense_metrics_compute_duration_seconds"
	MetricCircuitBreakerState = "parksense_circuit_breaker_state"
	MetricEventsDroppedTotal  = "parksense_events_dropped_total"
)

const (
	StatusSuccess = "success"
	StatusFailure = "failure"
)

// Metrics holds the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	collectionsTotal   *prometheus.CounterVec
	collectionDuration prometheus.Histogram
	mqttMessages       *prometheus.CounterVec
	spotUtilization    *prometheus.GaugeVec
	spots              *prometheus.GaugeVec
	computeDuration    prometheus.Histogram
	circuitBreaker     *prometheus.GaugeVec
	eventsDropped      prometheus.Counter
}

var (
	instance *Metrics
	once     sync.Once
)

// Get returns the process-wide metrics, which also export Go runtime
// and process collectors.
func Get() *Metrics {
	once.Do(func() {
		instance = New()
		instance.registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	})
	return instance
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		collectionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricCollectionsTotal,
				Help: "Total number of spot history collections by spot and status",
			},
			[]string{"spot_id", "status"},
		),
		collectionDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricCollectionDuration,
				Help:    "Duration of a full collection round in seconds",
				Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),
		mqttMessages: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: MetricMQTTMessagesTotal,
				Help: "Total number of MQTT messages by result",
			},
			[]string{"result"},
		),
		spotUtilization: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricSpotUtilization,
				Help: "Utilization of each spot over the trailing window",
			},
			[]string{"spot_id"},
		),
		spots: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricSpots,
				Help: "Number of spots by current status",
			},
			[]string{"status"},
		),
		computeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    MetricComputeDuration,
				Help:    "Duration of a global metrics computation in seconds",
				Buckets: prometheus.ExponentialBuckets(0.0001, 4, 8),
			},
		),
		circuitBreaker: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: MetricCircuitBreakerState,
				Help: "Circuit breaker state (0=closed, 1=open, 2=half-open)",
			},
			[]string{"name"},
		),
		eventsDropped: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: MetricEventsDroppedTotal,
				Help: "Total number of events dropped because a subscriber was full",
			},
		),
	}

	m.registry.MustRegister(m.Collectors()...)
	return m
}

func (m *Metrics) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.collectionsTotal,
		m.collectionDuration,
		m.mqttMessages,
		m.spotUtilization,
		m.spots,
		m.computeDuration,
		m.circuitBreaker,
		m.eventsDropped,
	}
}

func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) IncCollections(spotID, status string) {
	m.collectionsTotal.WithLabelValues(spotID, status).Inc()
}

func (m *Metrics) ObserveCollection(d time.Duration) {
	m.collectionDuration.Observe(d.Seconds())
}

func (m *Metrics) IncMQTTMessages(result string) {
	m.mqttMessages.WithLabelValues(result).Inc()
}

func (m *Metrics) SetSpotUtilization(spotID string, percent float64) {
	m.spotUtilization.WithLabelValues(spotID).Set(percent)
}

func (m *Metrics) DeleteSpot(spotID string) {
	m.spotUtilization.DeleteLabelValues(spotID)
}

func (m *Metrics) SetSpotCounts(free, occupied, inactive int) {
	m.spots.WithLabelValues("free").Set(float64(free))
	m.spots.WithLabelValues("occupied").Set(float64(occupied))
	m.spots.WithLabelValues("inactive").Set(float64(inactive))
}

func (m *Metrics) ObserveCompute(d time.Duration) {
	m.computeDuration.Observe(d.Seconds())
}

func (m *Metrics) SetCircuitBreakerState(name string, state int) {
	m.circuitBreaker.WithLabelValues(name).Set(float64(state))
}

// AddEventsDropped advances the drop counter to the bus total.
func (m *Metrics) AddEventsDropped(n uint64) {
	if n > 0 {
		m.eventsDropped.Add(float64(n))
	}
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Server exposes the registry on its own port.
type Server struct {
	httpServer *http.Server
}

func NewServer(port int, path string, m *Metrics) *Server {
	if path == "" {
		path = "/metrics"
	}
	mux := http.NewServeMux()
	mux.Handle(path, m.Handler())

	return &Server{
		httpServer: &http.Server{
			Addr:              fmt.Sprintf(":%d", port),
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		},
	}
}

func (s *Server) Start() error {
	logger.Infof("Prometheus metrics listening on %s", s.httpServer.Addr)
	err := s.httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}
