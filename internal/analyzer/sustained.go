package analyzer

import (
	"sync"
	"time"
)

// SustainedTracker remembers since when a condition has held per key, and
// whether it was already reported during the current episode.
type SustainedTracker struct {
	starts map[string]time.Time
	fired  map[string]bool
	mu     sync.RWMutex
}

func NewSustainedTracker() *SustainedTracker {
	return &SustainedTracker{
		starts: make(map[string]time.Time),
		fired:  make(map[string]bool),
	}
}

// Update records whether the condition holds for key. A new episode starts
// at start. When the condition stops holding, cleared reports whether the
// episode that ended had been fired.
func (t *SustainedTracker) Update(key string, holds bool, start time.Time) (since time.Time, cleared bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !holds {
		cleared = t.fired[key]
		delete(t.starts, key)
		delete(t.fired, key)
		return time.Time{}, cleared
	}

	since, exists := t.starts[key]
	if !exists {
		since = start
		t.starts[key] = since
	}
	return since, false
}

// Fire marks the current episode as reported. It returns false if it
// already was, or if no episode is active.
func (t *SustainedTracker) Fire(key string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, active := t.starts[key]; !active || t.fired[key] {
		return false
	}
	t.fired[key] = true
	return true
}

func (t *SustainedTracker) Duration(key string, now time.Time) time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if startTime, exists := t.starts[key]; exists {
		return now.Sub(startTime)
	}
	return 0
}

// Keys lists the keys with an active episode.
func (t *SustainedTracker) Keys() []string {
	t.mu.RLock()
	defer t.mu.RUnlock()

	keys := make([]string, 0, len(t.starts))
	for k := range t.starts {
		keys = append(keys, k)
	}
	return keys
}

func (t *SustainedTracker) Reset(key string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.starts, key)
	delete(t.fired, key)
}
