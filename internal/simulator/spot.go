package simulator

import (
	"math/rand"
	"sync"
	"time"

	"github.com/OldStager01/parksense/pkg/models"
)

// backendLayout is the zone-less timestamp format the sensor backend serves.
const backendLayout = "2006-01-02T15:04:05"

// switchRate is the chance per step that a spot re-rolls its state, which
// keeps cars parked for a while instead of flickering.
const switchRate = 0.3

// SpotSim is one simulated sensor with its reading history.
type SpotSim struct {
	id         string
	maxHistory int

	mu       sync.RWMutex
	rng      *rand.Rand
	occupied bool
	history  []models.Observation
}

func NewSpotSim(id string, seed int64, maxHistory int) *SpotSim {
	return &SpotSim{
		id:         id,
		maxHistory: maxHistory,
		rng:        rand.New(rand.NewSource(seed)),
	}
}

func (s *SpotSim) ID() string {
	return s.id
}

// Step records one reading at now and reports whether the state changed.
func (s *SpotSim) Step(now time.Time, pattern Pattern) (occupied, changed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.occupied
	if len(s.history) == 0 || s.rng.Float64() < switchRate {
		s.occupied = s.rng.Float64() < pattern.Occupancy(now)
	}
	s.record(now, s.occupied)

	return s.occupied, len(s.history) == 1 || s.occupied != prev
}

// Set forces a reading at now.
func (s *SpotSim) Set(now time.Time, occupied bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.occupied = occupied
	s.record(now, occupied)
}

// record must be called with mu held.
func (s *SpotSim) record(now time.Time, occupied bool) {
	s.history = append(s.history, models.Observation{Timestamp: now, Occupied: occupied})
	if s.maxHistory > 0 && len(s.history) > s.maxHistory {
		s.history = s.history[len(s.history)-s.maxHistory:]
	}
}

// Backfill generates readings every interval from start up to end.
func (s *SpotSim) Backfill(start, end time.Time, interval time.Duration, pattern Pattern) {
	for ts := start; !ts.After(end); ts = ts.Add(interval) {
		s.Step(ts, pattern)
	}
}

func (s *SpotSim) Occupied() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.occupied
}

func (s *SpotSim) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.history)
}

// Rows renders the history the way the backend does: wall-clock timestamps
// in loc and capitalized boolean tokens.
func (s *SpotSim) Rows(loc *time.Location) []models.RawObservation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]models.RawObservation, len(s.history))
	for i, obs := range s.history {
		rows[i] = models.RawObservation{
			DataHora: obs.Timestamp.In(loc).Format(backendLayout),
			Ocupada:  flag(obs.Occupied),
		}
	}
	return rows
}

func flag(occupied bool) models.OccupancyFlag {
	if occupied {
		return "True"
	}
	return "False"
}
