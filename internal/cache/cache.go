// Package cache memoizes computed global metrics keyed by store version.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/OldStager01/parksense/pkg/models"
)

type Cache interface {
	Get(ctx context.Context, key string) (*models.GlobalMetrics, bool, error)
	Set(ctx context.Context, key string, value *models.GlobalMetrics, ttl time.Duration) error
	Close() error
}

// GlobalKey names the global metrics computed from a store version.
func GlobalKey(version uint64) string {
	return fmt.Sprintf("global:v%d", version)
}
