// Package monitor keeps the spot store fresh and answers metric queries
// over it.
package monitor

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/OldStager01/parksense/internal/analyzer"
	"github.com/OldStager01/parksense/internal/cache"
	"github.com/OldStager01/parksense/internal/collector"
	"github.com/OldStager01/parksense/internal/events"
	"github.com/OldStager01/parksense/internal/logger"
	"github.com/OldStager01/parksense/internal/metrics"
	"github.com/OldStager01/parksense/internal/occupancy"
	"github.com/OldStager01/parksense/internal/store"
	"github.com/OldStager01/parksense/pkg/models"
)

var ErrRefreshFailed = errors.New("refresh failed for every spot")

// Repository is the persisted history the monitor warms up from.
type Repository interface {
	LoadSince(ctx context.Context, since time.Time) (map[string][]models.Observation, error)
	DeleteBySpot(ctx context.Context, spotID string) (int64, error)
}

type Config struct {
	SpotIDs     []string
	Interval    time.Duration
	Timeout     time.Duration
	Concurrency int
	CacheTTL    time.Duration

	Collector  collector.Collector
	Store      *store.MemoryStore
	Engine     *occupancy.Engine
	Cache      cache.Cache
	EventBus   *events.EventBus
	Metrics    *metrics.Metrics
	Repository Repository
	// Analyzer raises alerts from lot state; nil disables alerting.
	Analyzer *analyzer.Analyzer
}

type Monitor struct {
	config    Config
	publisher *events.Publisher

	statusMu   sync.Mutex
	lastStatus map[string]models.SpotStatus
	dropped    uint64

	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	running bool
	mu      sync.Mutex
}

func New(cfg Config) *Monitor {
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 4
	}
	if cfg.Store == nil {
		cfg.Store = store.New(0)
	}
	if cfg.Engine == nil {
		cfg.Engine = occupancy.NewEngine(occupancy.Config{})
	}
	if cfg.Cache == nil {
		cfg.Cache = cache.NewMemoryCache()
	}
	if cfg.EventBus == nil {
		cfg.EventBus = events.NewEventBus(100)
	}
	if cfg.Metrics == nil {
		cfg.Metrics = metrics.New()
	}

	cfg.Store.Register(cfg.SpotIDs...)

	ctx, cancel := context.WithCancel(context.Background())

	m := &Monitor{
		config:     cfg,
		publisher:  events.NewPublisher(cfg.EventBus),
		lastStatus: make(map[string]models.SpotStatus),
		ctx:        ctx,
		cancel:     cancel,
	}
	for _, id := range cfg.SpotIDs {
		m.lastStatus[id] = models.SpotStatusInactive
	}
	return m
}

// Warmup seeds the store with persisted observations newer than since.
// Status baselines are set silently so a restart does not replay changes.
func (m *Monitor) Warmup(ctx context.Context, since time.Time) (int, error) {
	if m.config.Repository == nil {
		return 0, nil
	}

	histories, err := m.config.Repository.LoadSince(ctx, since)
	if err != nil {
		return 0, fmt.Errorf("failed to load persisted history: %w", err)
	}

	loaded := 0
	now := m.config.Engine.Now()
	m.statusMu.Lock()
	for spotID, observations := range histories {
		m.config.Store.Replace(spotID, observations)
		status, _ := occupancy.CurrentState(observations, now)
		m.lastStatus[spotID] = status
		loaded += len(observations)
	}
	m.statusMu.Unlock()

	m.updateGauges()
	logger.Infof("Warmed up %d observations for %d spots", loaded, len(histories))
	return loaded, nil
}

// Start launches the polling loop. Without a collector the monitor only
// serves live updates.
func (m *Monitor) Start() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}
	m.running = true

	if m.config.Collector != nil {
		m.wg.Add(1)
		go m.run()
	}

	logger.Infof("Monitor started for %d spots", len(m.config.SpotIDs))
	return nil
}

func (m *Monitor) Stop() {
	m.mu.Lock()
	if !m.running {
		m.mu.Unlock()
		return
	}
	m.running = false
	m.mu.Unlock()

	m.cancel()
	m.wg.Wait()

	logger.Info("Monitor stopped")
}

func (m *Monitor) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *Monitor) run() {
	defer m.wg.Done()

	ticker := time.NewTicker(m.config.Interval)
	defer ticker.Stop()

	m.runCycle()

	for {
		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
			m.runCycle()
		}
	}
}

func (m *Monitor) runCycle() {
	ctx, cancel := context.WithTimeout(m.ctx, m.config.Timeout)
	defer cancel()

	if _, err := m.Refresh(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logger.Errorf("Collection cycle failed: %v", err)
	}
}

// RefreshSummary reports one collection round.
type RefreshSummary struct {
	Refreshed []string          `json:"refreshed"`
	Failed    map[string]string `json:"failed,omitempty"`
	Version   uint64            `json:"version"`
	Duration  time.Duration     `json:"duration"`
}

// Refresh polls every configured spot once and replaces their histories.
// Spots that fail keep their previous history.
func (m *Monitor) Refresh(ctx context.Context) (*RefreshSummary, error) {
	if m.config.Collector == nil {
		return nil, errors.New("no collector configured")
	}

	start := time.Now()
	spotIDs := m.config.Store.SpotIDs()
	result := collector.CollectAll(ctx, m.config.Collector, spotIDs, m.config.Concurrency)

	summary := &RefreshSummary{
		Refreshed: make([]string, 0, len(result.Histories)),
		Failed:    make(map[string]string),
	}

	for _, spotID := range occupancy.SortedSpotIDs(result.Histories) {
		observations := result.Histories[spotID]
		m.config.Store.Replace(spotID, observations)
		m.config.Metrics.IncCollections(spotID, metrics.StatusSuccess)
		m.publisher.HistoryRefreshed(spotID, observations)
		m.checkStatus(spotID)
		summary.Refreshed = append(summary.Refreshed, spotID)
	}

	for spotID, err := range result.Errors {
		m.config.Metrics.IncCollections(spotID, metrics.StatusFailure)
		m.publisher.CollectionFailed(spotID, err)
		logger.WithSpot(spotID).Warnf("Collection failed: %v", err)
		summary.Failed[spotID] = err.Error()
	}

	summary.Duration = time.Since(start)
	summary.Version = m.config.Store.Version()
	m.config.Metrics.ObserveCollection(summary.Duration)
	if state, ok := m.circuitState(); ok {
		m.config.Metrics.SetCircuitBreakerState("collector", state)
	}
	m.updateGauges()

	if len(spotIDs) > 0 && len(result.Histories) == 0 {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		return summary, ErrRefreshFailed
	}
	return summary, nil
}

func (m *Monitor) circuitState() (int, bool) {
	rc, ok := m.config.Collector.(*collector.ResilientCollector)
	if !ok {
		return 0, false
	}
	return int(rc.CircuitState()), true
}

// HandleUpdate records a live reading. Unknown spots are registered on
// first sight.
func (m *Monitor) HandleUpdate(update models.SpotUpdate, source string) {
	if update.Timestamp.IsZero() {
		update.Timestamp = m.config.Engine.Now()
	}

	m.config.Store.Append(update.SpotID, update.Observation())
	m.publisher.ObservationReceived(update, source)
	m.checkStatus(update.SpotID)
	m.updateGauges()
}

// checkStatus publishes a status change when the spot's current state
// differs from the last one seen.
func (m *Monitor) checkStatus(spotID string) {
	history, err := m.config.Store.History(spotID)
	if err != nil {
		return
	}
	status, since := occupancy.CurrentState(history, m.config.Engine.Now())

	m.statusMu.Lock()
	prev, known := m.lastStatus[spotID]
	m.lastStatus[spotID] = status
	m.statusMu.Unlock()

	if !known {
		prev = models.SpotStatusInactive
	}
	if prev == status {
		return
	}

	m.publisher.SpotStatusChanged(models.StatusChange{
		SpotID:    spotID,
		From:      prev,
		To:        status,
		Timestamp: since,
	})
	logger.WithSpot(spotID).Infof("Status changed: %s -> %s", prev, status)
}

func (m *Monitor) updateGauges() {
	snap, _ := m.config.Store.Snapshot()
	stats := models.CalculateStats(m.config.Engine.Spots(snap))
	m.config.Metrics.SetSpotCounts(stats.FreeSpots, stats.OccupiedSpots, stats.InactiveSpots)
	m.raiseAlerts(snap, stats)

	for spotID, observations := range snap {
		sm := m.config.Engine.SpotMetrics(spotID, observations)
		m.config.Metrics.SetSpotUtilization(spotID, sm.UtilizationRate)
	}

	dropped := m.config.EventBus.Dropped()
	m.statusMu.Lock()
	delta := dropped - m.dropped
	m.dropped = dropped
	m.statusMu.Unlock()
	m.config.Metrics.AddEventsDropped(delta)
}

func (m *Monitor) raiseAlerts(snap map[string][]models.Observation, stats models.ParkingStats) {
	if m.config.Analyzer == nil {
		return
	}

	now := m.config.Engine.Now()
	for _, f := range m.config.Analyzer.Analyze(stats, analyzer.States(snap, now), now) {
		m.publisher.Alert(f.SpotID, f.Severity, f.Message, f)
		entry := logger.WithField("kind", f.Kind)
		if f.Severity == models.SeverityInfo {
			entry.Info(f.Message)
		} else {
			entry.Warn(f.Message)
		}
	}
}

// ResetSpot clears a spot's history in memory and in the repository.
func (m *Monitor) ResetSpot(ctx context.Context, spotID string) error {
	if err := m.config.Store.Reset(spotID); err != nil {
		return err
	}

	if m.config.Repository != nil {
		deleted, err := m.config.Repository.DeleteBySpot(ctx, spotID)
		if err != nil {
			return fmt.Errorf("failed to delete persisted history: %w", err)
		}
		logger.WithSpot(spotID).Infof("Deleted %d persisted observations", deleted)
	}

	m.checkStatus(spotID)
	m.updateGauges()
	return nil
}

// HealthCheck reports whether the sensor backend is reachable.
func (m *Monitor) HealthCheck(ctx context.Context) error {
	if m.config.Collector == nil {
		return nil
	}
	return m.config.Collector.HealthCheck(ctx)
}
