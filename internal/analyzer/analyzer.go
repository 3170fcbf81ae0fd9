// Package analyzer watches lot state for conditions operators should hear
// about: a lot that stays nearly full and cars parked unusually long.
package analyzer

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/OldStager01/parksense/internal/logger"
	"github.com/OldStager01/parksense/internal/occupancy"
	"github.com/OldStager01/parksense/pkg/models"
)

const lotKey = "lot"

type Config struct {
	// NearlyFullPercent is the share of online spots occupied that counts
	// as nearly full.
	NearlyFullPercent float64
	// SustainedFor is how long the lot must stay nearly full before alerting.
	SustainedFor time.Duration
	// LongStay is how long a car may stay before alerting.
	LongStay time.Duration
}

// SpotState is the current occupancy run of one spot.
type SpotState struct {
	SpotID string
	Status models.SpotStatus
	Since  time.Time
}

type Analyzer struct {
	config  Config
	tracker *SustainedTracker
	mu      sync.Mutex
}

func New(cfg Config) *Analyzer {
	if cfg.NearlyFullPercent == 0 {
		cfg.NearlyFullPercent = 90.0
	}
	if cfg.SustainedFor == 0 {
		cfg.SustainedFor = 5 * time.Minute
	}
	if cfg.LongStay == 0 {
		cfg.LongStay = 4 * time.Hour
	}

	return &Analyzer{
		config:  cfg,
		tracker: NewSustainedTracker(),
	}
}

func (a *Analyzer) Config() Config {
	return a.config
}

// States derives spot states from histories, in natural spot order.
func States(spots map[string][]models.Observation, now time.Time) []SpotState {
	ids := make([]string, 0, len(spots))
	for id := range spots {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return occupancy.NaturalLess(ids[i], ids[j]) })

	states := make([]SpotState, 0, len(ids))
	for _, id := range ids {
		status, _ := occupancy.CurrentState(spots[id], now)
		since, ok := occupancy.RunStart(spots[id])
		if !ok {
			since = now
		}
		states = append(states, SpotState{SpotID: id, Status: status, Since: since})
	}
	return states
}

// Analyze returns the findings that became due at now. Each episode is
// reported once.
func (a *Analyzer) Analyze(stats models.ParkingStats, spots []SpotState, now time.Time) []models.Finding {
	a.mu.Lock()
	defer a.mu.Unlock()

	var findings []models.Finding
	if f, ok := a.evaluateLot(stats, now); ok {
		findings = append(findings, f)
	}

	seen := make(map[string]bool, len(spots))
	for _, spot := range spots {
		seen[spotKey(spot.SpotID)] = true
		if f, ok := a.evaluateSpot(spot, now); ok {
			findings = append(findings, f)
		}
	}

	// Spots that disappeared, e.g. after a reset, end their episodes.
	for _, key := range a.tracker.Keys() {
		if key != lotKey && !seen[key] {
			a.tracker.Reset(key)
		}
	}

	if len(findings) > 0 {
		logger.WithComponent("analyzer").Debugf("Raised %d findings", len(findings))
	}
	return findings
}

func occupancyPercent(stats models.ParkingStats) float64 {
	online := stats.FreeSpots + stats.OccupiedSpots
	if online == 0 {
		return 0
	}
	return float64(stats.OccupiedSpots) / float64(online) * 100
}

func (a *Analyzer) evaluateLot(stats models.ParkingStats, now time.Time) (models.Finding, bool) {
	percent := occupancyPercent(stats)
	holds := stats.FreeSpots+stats.OccupiedSpots > 0 && percent >= a.config.NearlyFullPercent

	since, cleared := a.tracker.Update(lotKey, holds, now)
	if cleared {
		return models.Finding{
			Kind:     models.FindingLotRecovered,
			Severity: models.SeverityInfo,
			Message:  fmt.Sprintf("Lot occupancy back to %.0f%%", percent),
			Since:    now,
			Value:    percent,
		}, true
	}
	if !holds || now.Sub(since) < a.config.SustainedFor || !a.tracker.Fire(lotKey) {
		return models.Finding{}, false
	}

	return models.Finding{
		Kind:     models.FindingLotNearlyFull,
		Severity: models.SeverityWarning,
		Message: fmt.Sprintf("Lot at %.0f%% occupancy for %s (%d free)",
			percent, occupancy.FormatDuration(int(now.Sub(since).Minutes())), stats.FreeSpots),
		Since: since,
		Value: percent,
	}, true
}

func (a *Analyzer) evaluateSpot(spot SpotState, now time.Time) (models.Finding, bool) {
	key := spotKey(spot.SpotID)
	holds := spot.Status == models.SpotStatusOccupied
	if holds && a.tracker.Duration(key, spot.Since) != 0 {
		// A different car: the tracked run started at another time.
		a.tracker.Reset(key)
	}

	since, _ := a.tracker.Update(key, holds, spot.Since)
	if !holds {
		return models.Finding{}, false
	}
	stay := now.Sub(since)
	if stay < a.config.LongStay || !a.tracker.Fire(key) {
		return models.Finding{}, false
	}

	minutes := int(stay.Minutes())
	return models.Finding{
		Kind:     models.FindingLongStay,
		SpotID:   spot.SpotID,
		Severity: models.SeverityWarning,
		Message:  fmt.Sprintf("%s occupied for %s", models.SpotName(spot.SpotID), occupancy.FormatDuration(minutes)),
		Since:    since,
		Value:    float64(minutes),
	}, true
}

func spotKey(spotID string) string {
	return "spot:" + spotID
}
