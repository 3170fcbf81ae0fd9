package main

import (
	"context"
	"fmt"
	"time"

	"github.com/OldStager01/parksense/internal/cache"
	"github.com/OldStager01/parksense/internal/collector"
	"github.com/OldStager01/parksense/internal/logger"
	"github.com/OldStager01/parksense/internal/metrics"
	"github.com/OldStager01/parksense/internal/resilience"
	"github.com/OldStager01/parksense/pkg/config"
)

func newCache(cfg config.CacheConfig) (cache.Cache, error) {
	switch cfg.Type {
	case "redis":
		c := cache.NewRedisCache(cache.RedisConfig{
			Addr:      cfg.RedisAddr,
			Password:  cfg.RedisPassword,
			DB:        cfg.RedisDB,
			KeyPrefix: cfg.KeyPrefix,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := c.HealthCheck(ctx); err != nil {
			// Cache misses fall through to recomputation.
			logger.Warnf("Redis cache at %s is unreachable: %v", cfg.RedisAddr, err)
		}
		return c, nil
	case "memory", "":
		return cache.NewMemoryCache(), nil
	default:
		return nil, fmt.Errorf("unknown cache type %q", cfg.Type)
	}
}

func newCollector(cfg config.CollectorConfig, loc *time.Location, m *metrics.Metrics) (collector.Collector, error) {
	var base collector.Collector
	switch cfg.Type {
	case "http":
		base = collector.NewHTTPCollector(collector.HTTPCollectorConfig{
			Endpoint: cfg.Endpoint,
			Timeout:  cfg.Timeout,
			Location: loc,
		})
	case "mock":
		mock := collector.NewMockCollector(collector.MockCollectorConfig{Seed: time.Now().UnixNano()})
		for _, id := range cfg.Spots {
			mock.AddSpot(id)
		}
		base = mock
	default:
		return nil, fmt.Errorf("unknown collector type %q", cfg.Type)
	}

	return collector.NewResilientCollector(collector.ResilientCollectorConfig{
		Collector:     base,
		MaxFailures:   cfg.CircuitBreaker.MaxFailures,
		Timeout:       cfg.CircuitBreaker.Timeout,
		RetryAttempts: cfg.RetryAttempts,
		RetryDelay:    cfg.RetryDelay,
		OnStateChange: func(name string, from, to resilience.State) {
			logger.Warnf("Circuit breaker %s: %s -> %s", name, from, to)
			m.SetCircuitBreakerState(name, int(to))
		},
	}), nil
}

type retentionStore interface {
	DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// runRetention prunes persisted observations older than the retention period
// once an hour until ctx is done.
func runRetention(ctx context.Context, repo retentionStore, period time.Duration) {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for {
		prune(ctx, repo, period)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func prune(ctx context.Context, repo retentionStore, period time.Duration) {
	cutoff := time.Now().Add(-period)
	deleted, err := repo.DeleteBefore(ctx, cutoff)
	if err != nil {
		if ctx.Err() == nil {
			logger.Errorf("Retention cleanup failed: %v", err)
		}
		return
	}
	if deleted > 0 {
		logger.WithField("cutoff", cutoff).Infof("Pruned %d observations", deleted)
	}
}
