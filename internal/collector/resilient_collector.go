package collector

import (
	"context"
	"errors"
	"time"

	"github.com/OldStager01/parksense/internal/logger"
	"github.com/OldStager01/parksense/internal/resilience"
	"github.com/OldStager01/parksense/pkg/models"
)

type ResilientCollector struct {
	collector      Collector
	circuitBreaker *resilience.CircuitBreaker
	retryAttempts  int
	retryDelay     time.Duration
}

type ResilientCollectorConfig struct {
	Collector     Collector
	MaxFailures   int
	Timeout       time.Duration
	RetryAttempts int
	RetryDelay    time.Duration
	OnStateChange func(name string, from, to resilience.State)
}

func NewResilientCollector(cfg ResilientCollectorConfig) *ResilientCollector {
	if cfg.RetryAttempts <= 0 {
		cfg.RetryAttempts = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = 1 * time.Second
	}

	cb := resilience.NewCircuitBreaker(resilience.CircuitBreakerConfig{
		Name:          "collector",
		MaxFailures:   cfg.MaxFailures,
		Timeout:       cfg.Timeout,
		IsFailure:     isBackendFailure,
		OnStateChange: cfg.OnStateChange,
	})

	return &ResilientCollector{
		collector:      cfg.Collector,
		circuitBreaker: cb,
		retryAttempts:  cfg.RetryAttempts,
		retryDelay:     cfg.RetryDelay,
	}
}

// A missing spot or a cancelled caller says nothing about backend health.
func isBackendFailure(err error) bool {
	return err != nil &&
		!errors.Is(err, ErrSpotNotFound) &&
		!errors.Is(err, context.Canceled)
}

func (c *ResilientCollector) Collect(ctx context.Context, spotID string) ([]models.Observation, error) {
	var observations []models.Observation

	err := c.circuitBreaker.Execute(func() error {
		var lastErr error
		for attempt := 1; attempt <= c.retryAttempts; attempt++ {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			var err error
			observations, err = c.collector.Collect(ctx, spotID)
			if err == nil {
				return nil
			}
			if errors.Is(err, ErrSpotNotFound) {
				return err
			}

			lastErr = err
			logger.WithSpot(spotID).Warnf(
				"Collection attempt %d/%d failed: %v",
				attempt, c.retryAttempts, err,
			)

			if attempt < c.retryAttempts {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(c.retryDelay):
				}
			}
		}
		return lastErr
	})

	if err != nil {
		return nil, err
	}

	return observations, nil
}

func (c *ResilientCollector) HealthCheck(ctx context.Context) error {
	return c.collector.HealthCheck(ctx)
}

func (c *ResilientCollector) Close() error {
	return c.collector.Close()
}

func (c *ResilientCollector) CircuitState() resilience.State {
	return c.circuitBreaker.State()
}

func (c *ResilientCollector) ResetCircuit() {
	c.circuitBreaker.Reset()
}
