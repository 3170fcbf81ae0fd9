package collector

import (
	"context"
	"errors"

	"github.com/OldStager01/parksense/pkg/models"
)

var (
	ErrCollectionFailed = errors.New("history collection failed")
	ErrTimeout          = errors.New("collection timeout")
	ErrSpotNotFound     = errors.New("spot not found")
	ErrInvalidResponse  = errors.New("invalid response from sensor backend")
)

// Collector fetches the raw occupancy history of a spot from its data source.
type Collector interface {
	// Collect returns the spot's observations in ascending time order.
	Collect(ctx context.Context, spotID string) ([]models.Observation, error)

	// HealthCheck verifies the collector can reach its data source
	HealthCheck(ctx context.Context) error

	// Close releases any resources held by the collector
	Close() error
}
