// Package store keeps the in-memory observation history of every spot.
package store

import (
	"errors"
	"sort"
	"sync"

	"github.com/OldStager01/parksense/internal/occupancy"
	"github.com/OldStager01/parksense/pkg/models"
)

var ErrUnknownSpot = errors.New("unknown spot")

// MemoryStore holds per-spot histories in ascending time order. Every
// mutation bumps Version, which callers use as a cache key.
type MemoryStore struct {
	mu         sync.RWMutex
	spots      map[string][]models.Observation
	version    uint64
	maxHistory int
}

// New creates a store. A positive maxHistory caps each spot's history,
// dropping the oldest observations first.
func New(maxHistory int) *MemoryStore {
	return &MemoryStore{
		spots:      make(map[string][]models.Observation),
		maxHistory: maxHistory,
	}
}

// Register makes a spot known with an empty history.
func (s *MemoryStore) Register(spotIDs ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	changed := false
	for _, id := range spotIDs {
		if _, ok := s.spots[id]; !ok {
			s.spots[id] = []models.Observation{}
			changed = true
		}
	}
	if changed {
		s.version++
	}
}

// Replace swaps a spot's whole history for a copy of observations.
func (s *MemoryStore) Replace(spotID string, observations []models.Observation) {
	cp := make([]models.Observation, len(observations))
	copy(cp, observations)

	s.mu.Lock()
	defer s.mu.Unlock()

	s.spots[spotID] = s.trim(cp)
	s.version++
}

// Append adds one observation, inserting it at its time position when it
// arrives out of order. It returns the previous last observation, if any.
func (s *MemoryStore) Append(spotID string, obs models.Observation) (prev *models.Observation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	history := s.spots[spotID]
	if n := len(history); n > 0 {
		last := history[n-1]
		prev = &last
	}

	i := sort.Search(len(history), func(i int) bool {
		return history[i].Timestamp.After(obs.Timestamp)
	})
	history = append(history, models.Observation{})
	copy(history[i+1:], history[i:])
	history[i] = obs

	s.spots[spotID] = s.trim(history)
	s.version++
	return prev
}

func (s *MemoryStore) trim(history []models.Observation) []models.Observation {
	if s.maxHistory > 0 && len(history) > s.maxHistory {
		return append([]models.Observation(nil), history[len(history)-s.maxHistory:]...)
	}
	return history
}

// History returns a copy of a spot's observations.
func (s *MemoryStore) History(spotID string) ([]models.Observation, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	history, ok := s.spots[spotID]
	if !ok {
		return nil, ErrUnknownSpot
	}

	cp := make([]models.Observation, len(history))
	copy(cp, history)
	return cp, nil
}

// Snapshot returns a deep copy of every history together with the version
// it reflects.
func (s *MemoryStore) Snapshot() (map[string][]models.Observation, uint64) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := make(map[string][]models.Observation, len(s.spots))
	for id, history := range s.spots {
		cp := make([]models.Observation, len(history))
		copy(cp, history)
		snap[id] = cp
	}
	return snap, s.version
}

// Reset clears a spot's history but keeps the spot registered.
func (s *MemoryStore) Reset(spotID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.spots[spotID]; !ok {
		return ErrUnknownSpot
	}
	s.spots[spotID] = []models.Observation{}
	s.version++
	return nil
}

func (s *MemoryStore) Has(spotID string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.spots[spotID]
	return ok
}

// SpotIDs lists known spots in natural order.
func (s *MemoryStore) SpotIDs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return occupancy.SortedSpotIDs(s.spots)
}

func (s *MemoryStore) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}
