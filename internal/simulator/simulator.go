// Package simulator imitates the parking sensor backend: it serves per-spot
// reading histories over HTTP and can push live readings to MQTT.
package simulator

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"hash/fnv"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/OldStager01/parksense/internal/logger"
	"github.com/OldStager01/parksense/pkg/validation"
)

type Config struct {
	Port     int
	Spots    []string
	Interval time.Duration
	// Backfill is how much history is generated at startup.
	Backfill   time.Duration
	MaxHistory int
	Seed       int64
	Pattern    Pattern
	Location   *time.Location
	Clock      func() time.Time
	Publisher  Publisher
}

type Simulator struct {
	config     Config
	httpServer *http.Server

	mu      sync.RWMutex
	spots   map[string]*SpotSim
	pattern Pattern

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

func New(cfg Config) *Simulator {
	if cfg.Port == 0 {
		cfg.Port = 9000
	}
	if cfg.Interval <= 0 {
		cfg.Interval = 30 * time.Second
	}
	if cfg.MaxHistory <= 0 {
		cfg.MaxHistory = 5000
	}
	if cfg.Pattern == nil {
		cfg.Pattern = PatternDaily
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	s := &Simulator{
		config:  cfg,
		spots:   make(map[string]*SpotSim),
		pattern: cfg.Pattern,
	}

	end := cfg.Clock().Truncate(cfg.Interval)
	for _, id := range cfg.Spots {
		spot := s.addSpot(id)
		if cfg.Backfill > 0 {
			spot.Backfill(end.Add(-cfg.Backfill), end, cfg.Interval, cfg.Pattern)
		}
	}
	return s
}

func (s *Simulator) addSpot(id string) *SpotSim {
	h := fnv.New64a()
	h.Write([]byte(id))

	spot := NewSpotSim(id, s.config.Seed^int64(h.Sum64()), s.config.MaxHistory)
	s.spots[id] = spot
	return spot
}

func cors(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, ngrok-skip-browser-warning")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next(w, r)
	}
}

// Handler serves the backend routes.
func (s *Simulator) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("/health", cors(s.healthHandler))
	mux.HandleFunc("/spots", cors(s.listSpotsHandler))
	mux.HandleFunc("/spots/", cors(s.setSpotHandler))
	mux.HandleFunc("/pattern", cors(s.patternHandler))
	mux.HandleFunc("/", cors(s.historyHandler))

	return mux
}

func (s *Simulator) Start() error {
	addr := fmt.Sprintf(":%d", s.config.Port)
	s.httpServer = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	logger.Infof("Simulator listening on %s with %d spots", addr, len(s.config.Spots))

	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Errorf("Simulator server error: %v", err)
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel
	s.wg.Add(1)
	go s.run(ctx)

	return nil
}

func (s *Simulator) Stop() error {
	if s.cancel != nil {
		s.cancel()
		s.wg.Wait()
	}
	if s.config.Publisher != nil {
		s.config.Publisher.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if s.httpServer != nil {
		return s.httpServer.Shutdown(ctx)
	}
	return nil
}

func (s *Simulator) run(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Tick()
		}
	}
}

// Tick advances every spot by one reading and publishes the ones that
// changed.
func (s *Simulator) Tick() int {
	now := s.config.Clock()

	s.mu.RLock()
	pattern := s.pattern
	spots := make([]*SpotSim, 0, len(s.spots))
	for _, spot := range s.spots {
		spots = append(spots, spot)
	}
	s.mu.RUnlock()

	changed := 0
	for _, spot := range spots {
		occupied, didChange := spot.Step(now, pattern)
		if !didChange {
			continue
		}
		changed++
		s.publish(spot.ID(), occupied)
	}

	if changed > 0 {
		logger.Debugf("Simulator tick: %d spots changed", changed)
	}
	return changed
}

func (s *Simulator) publish(spotID string, occupied bool) {
	if s.config.Publisher == nil {
		return
	}
	if err := s.config.Publisher.Publish(spotID, occupied); err != nil {
		logger.WithSpot(spotID).Warnf("Failed to publish reading: %v", err)
	}
}

func (s *Simulator) Spot(id string) (*SpotSim, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	spot, exists := s.spots[id]
	return spot, exists
}

func (s *Simulator) SetPattern(p Pattern) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pattern = p
}

// HTTP Handlers

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func (s *Simulator) healthHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "healthy",
		"service": "sensor-simulator",
	})
}

type historyResponse struct {
	Dados interface{} `json:"dados"`
}

// historyHandler serves /vaga{ID}.json.
func (s *Simulator) historyHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	name := strings.TrimPrefix(r.URL.Path, "/")
	if !strings.HasPrefix(name, "vaga") || !strings.HasSuffix(name, ".json") {
		http.NotFound(w, r)
		return
	}
	spotID := strings.TrimSuffix(strings.TrimPrefix(name, "vaga"), ".json")

	spot, exists := s.Spot(spotID)
	if !exists {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, http.StatusOK, historyResponse{Dados: spot.Rows(s.config.Location)})
}

func (s *Simulator) listSpotsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	s.mu.RLock()
	spots := make([]map[string]interface{}, 0, len(s.spots))
	for id, spot := range s.spots {
		spots = append(spots, map[string]interface{}{
			"id":       id,
			"occupied": spot.Occupied(),
			"readings": spot.Len(),
		})
	}
	pattern := s.pattern.Name()
	s.mu.RUnlock()

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"spots":   spots,
		"count":   len(spots),
		"pattern": pattern,
	})
}

type SetSpotRequest struct {
	Occupied bool `json:"occupied"`
}

// setSpotHandler forces a reading on /spots/{ID}, creating the spot if needed.
func (s *Simulator) setSpotHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	spotID := strings.TrimPrefix(r.URL.Path, "/spots/")
	if err := validation.ValidateSpotID(spotID); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	var req SetSpotRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	s.mu.Lock()
	spot, exists := s.spots[spotID]
	if !exists {
		spot = s.addSpot(spotID)
		logger.Infof("Created simulated spot %s", spotID)
	}
	s.mu.Unlock()

	spot.Set(s.config.Clock(), req.Occupied)
	s.publish(spotID, req.Occupied)

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"id":       spotID,
		"occupied": req.Occupied,
	})
}

type PatternRequest struct {
	Pattern string `json:"pattern"` // "steady", "daily", "weekly", "evening"
}

func (s *Simulator) patternHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req PatternRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	pattern := ParsePattern(req.Pattern)
	s.SetPattern(pattern)

	logger.Infof("Set occupancy pattern %s", pattern.Name())

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "pattern set",
		"pattern": pattern.Name(),
	})
}
