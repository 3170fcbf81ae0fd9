package collector

import (
	"context"
	"hash/fnv"
	"math/rand"
	"sync"
	"time"

	"github.com/OldStager01/parksense/pkg/models"
)

// MockCollector serves synthetic or fixed histories without a backend.
type MockCollector struct {
	mu           sync.RWMutex
	spots        map[string][]models.Observation
	seed         int64
	interval     time.Duration
	span         time.Duration
	occupancy    float64
	clock        func() time.Time
	shouldFail   bool
	failureError error
	calls        map[string]int
}

type MockCollectorConfig struct {
	Seed int64
	// Interval between synthetic samples.
	Interval time.Duration
	// Span of synthetic history ending at the current time.
	Span time.Duration
	// Occupancy is the probability that a sample reads occupied.
	Occupancy float64
	Clock     func() time.Time
}

func NewMockCollector(cfg MockCollectorConfig) *MockCollector {
	interval := cfg.Interval
	if interval == 0 {
		interval = 15 * time.Minute
	}

	span := cfg.Span
	if span == 0 {
		span = 24 * time.Hour
	}

	occupancy := cfg.Occupancy
	if occupancy == 0 {
		occupancy = 0.5
	}

	clock := cfg.Clock
	if clock == nil {
		clock = time.Now
	}

	return &MockCollector{
		spots:     make(map[string][]models.Observation),
		seed:      cfg.Seed,
		interval:  interval,
		span:      span,
		occupancy: occupancy,
		clock:     clock,
		calls:     make(map[string]int),
	}
}

// AddSpot registers a spot that returns synthetic history.
func (c *MockCollector) AddSpot(spotID string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, ok := c.spots[spotID]; !ok {
		c.spots[spotID] = nil
	}
}

// SetHistory registers a spot that always returns the given observations.
func (c *MockCollector) SetHistory(spotID string, observations []models.Observation) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := make([]models.Observation, len(observations))
	copy(cp, observations)
	c.spots[spotID] = cp
}

func (c *MockCollector) SetShouldFail(shouldFail bool, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.shouldFail = shouldFail
	c.failureError = err
}

// Calls reports how many times Collect ran for the spot.
func (c *MockCollector) Calls(spotID string) int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.calls[spotID]
}

func (c *MockCollector) Collect(ctx context.Context, spotID string) ([]models.Observation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	c.mu.Lock()
	c.calls[spotID]++
	shouldFail, failureError := c.shouldFail, c.failureError
	fixed, exists := c.spots[spotID]
	c.mu.Unlock()

	if shouldFail {
		if failureError != nil {
			return nil, failureError
		}
		return nil, ErrCollectionFailed
	}

	if !exists {
		return nil, ErrSpotNotFound
	}

	if fixed != nil {
		cp := make([]models.Observation, len(fixed))
		copy(cp, fixed)
		return cp, nil
	}

	return c.generate(spotID), nil
}

// generate produces a history aligned to the sample interval, so repeated
// calls within one interval return identical data for a given seed.
func (c *MockCollector) generate(spotID string) []models.Observation {
	end := c.clock().Truncate(c.interval)
	start := end.Add(-c.span)

	h := fnv.New64a()
	h.Write([]byte(spotID))
	rng := rand.New(rand.NewSource(c.seed ^ int64(h.Sum64())))

	observations := make([]models.Observation, 0, int(c.span/c.interval)+1)
	occupied := false
	for ts := start; !ts.After(end); ts = ts.Add(c.interval) {
		// Sticky states: a spot tends to stay in its current state.
		if rng.Float64() < 0.3 {
			occupied = rng.Float64() < c.occupancy
		}
		observations = append(observations, models.Observation{Timestamp: ts, Occupied: occupied})
	}

	return observations
}

func (c *MockCollector) HealthCheck(ctx context.Context) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.shouldFail {
		return ErrCollectionFailed
	}
	return nil
}

func (c *MockCollector) Close() error {
	return nil
}
