package occupancy

import (
	"time"

	"github.com/OldStager01/parksense/pkg/models"
)

type Config struct {
	Window   time.Duration
	TopN     int
	PeakN    int
	Location *time.Location
	Clock    func() time.Time
}

// Engine binds the occupancy functions to a clock and settings.
type Engine struct {
	config Config
}

func NewEngine(cfg Config) *Engine {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.TopN <= 0 {
		cfg.TopN = DefaultTopN
	}
	if cfg.PeakN <= 0 {
		cfg.PeakN = 3
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	return &Engine{config: cfg}
}

func (e *Engine) Now() time.Time {
	return e.config.Clock()
}

func (e *Engine) Location() *time.Location {
	return e.config.Location
}

func (e *Engine) Periods(observations []models.Observation) []models.OccupancyPeriod {
	return ExtractPeriods(observations, e.Now())
}

func (e *Engine) SpotMetrics(spotID string, observations []models.Observation) models.SpotMetrics {
	return calculateSpotMetrics(spotID, models.SpotName(spotID), observations, e.Now(), e.config.Window)
}

func (e *Engine) GlobalMetrics(spots map[string][]models.Observation) models.GlobalMetrics {
	return CalculateGlobalMetrics(spots, e.Now(), GlobalOptions{
		Window:   e.config.Window,
		TopN:     e.config.TopN,
		Location: e.config.Location,
	})
}

func (e *Engine) Hourly(spots map[string][]models.Observation) []models.HourBucket {
	return HourlyOccupancy(spots, e.config.Location)
}

func (e *Engine) HourlyChart(spots map[string][]models.Observation) []models.HourlyChartPoint {
	return HourlyChart(spots, e.config.Location)
}

// PeakHours returns the formatted labels of the busiest hours.
func (e *Engine) PeakHours(buckets []models.HourBucket) []string {
	top := TopPeakHours(buckets, e.config.PeakN)
	labels := make([]string, len(top))
	for i, b := range top {
		labels[i] = FormatPeakHour(b)
	}
	return labels
}

func (e *Engine) Spot(spotID string, observations []models.Observation) models.ParkingSpot {
	return BuildSpot(spotID, observations, e.Now())
}

// Spots builds the dashboard view of every spot, in natural ID order.
func (e *Engine) Spots(spots map[string][]models.Observation) []models.ParkingSpot {
	now := e.Now()
	views := make([]models.ParkingSpot, 0, len(spots))
	for _, id := range SortedSpotIDs(spots) {
		views = append(views, BuildSpot(id, spots[id], now))
	}
	return views
}
