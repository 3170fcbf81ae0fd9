package monitor

import (
	"context"
	"time"

	"github.com/OldStager01/parksense/internal/cache"
	"github.com/OldStager01/parksense/internal/logger"
	"github.com/OldStager01/parksense/pkg/models"
)

func (m *Monitor) SpotIDs() []string {
	return m.config.Store.SpotIDs()
}

func (m *Monitor) Spots() []models.ParkingSpot {
	snap, _ := m.config.Store.Snapshot()
	return m.config.Engine.Spots(snap)
}

func (m *Monitor) Spot(spotID string) (models.ParkingSpot, error) {
	history, err := m.config.Store.History(spotID)
	if err != nil {
		return models.ParkingSpot{}, err
	}
	return m.config.Engine.Spot(spotID, history), nil
}

// History returns a spot's observations. A positive limit keeps only the
// most recent ones.
func (m *Monitor) History(spotID string, limit int) ([]models.Observation, error) {
	history, err := m.config.Store.History(spotID)
	if err != nil {
		return nil, err
	}
	if limit > 0 && len(history) > limit {
		history = history[len(history)-limit:]
	}
	return history, nil
}

func (m *Monitor) SpotPeriods(spotID string) ([]models.OccupancyPeriod, error) {
	history, err := m.config.Store.History(spotID)
	if err != nil {
		return nil, err
	}
	return m.config.Engine.Periods(history), nil
}

func (m *Monitor) SpotMetrics(spotID string) (models.SpotMetrics, error) {
	history, err := m.config.Store.History(spotID)
	if err != nil {
		return models.SpotMetrics{}, err
	}
	return m.config.Engine.SpotMetrics(spotID, history), nil
}

// GlobalMetrics returns the lot-wide metrics. Results are cached per store
// version for the configured TTL; cache failures fall back to computing.
func (m *Monitor) GlobalMetrics(ctx context.Context) (*models.GlobalMetrics, error) {
	snap, version := m.config.Store.Snapshot()
	key := cache.GlobalKey(version)

	cached, ok, err := m.config.Cache.Get(ctx, key)
	if err != nil {
		logger.WithComponent("cache").Warnf("Cache read failed: %v", err)
	} else if ok {
		return cached, nil
	}

	start := time.Now()
	global := m.config.Engine.GlobalMetrics(snap)
	m.config.Metrics.ObserveCompute(time.Since(start))

	if err := m.config.Cache.Set(ctx, key, &global, m.config.CacheTTL); err != nil {
		logger.WithComponent("cache").Warnf("Cache write failed: %v", err)
	}
	m.publisher.MetricsComputed(&global, version)

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &global, nil
}

func (m *Monitor) Hourly() []models.HourBucket {
	snap, _ := m.config.Store.Snapshot()
	return m.config.Engine.Hourly(snap)
}

func (m *Monitor) HourlyChart() []models.HourlyChartPoint {
	snap, _ := m.config.Store.Snapshot()
	return m.config.Engine.HourlyChart(snap)
}

func (m *Monitor) PeakHours() []string {
	return m.config.Engine.PeakHours(m.Hourly())
}

func (m *Monitor) Stats() models.ParkingStats {
	return models.CalculateStats(m.Spots())
}

func (m *Monitor) Version() uint64 {
	return m.config.Store.Version()
}
