package collector

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/OldStager01/parksense/internal/logger"
	"github.com/OldStager01/parksense/pkg/models"
	"github.com/OldStager01/parksense/pkg/validation"
)

const userAgent = "ParkSense/1.0"

type HTTPCollector struct {
	client   *http.Client
	endpoint string
	timeout  time.Duration
	location *time.Location
}

type HTTPCollectorConfig struct {
	Endpoint string
	Timeout  time.Duration
	// Location interprets backend timestamps that carry no zone offset.
	Location *time.Location
}

func NewHTTPCollector(cfg HTTPCollectorConfig) *HTTPCollector {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 5 * time.Second
	}
	loc := cfg.Location
	if loc == nil {
		loc = time.Local
	}

	return &HTTPCollector{
		client: &http.Client{
			Timeout: timeout,
		},
		endpoint: strings.TrimRight(cfg.Endpoint, "/"),
		timeout:  timeout,
		location: loc,
	}
}

// wrappedResponse is the shape some proxies put around the history array.
type wrappedResponse struct {
	Dados []models.RawObservation `json:"dados"`
}

func (c *HTTPCollector) SpotURL(spotID string) string {
	return fmt.Sprintf("%s/vaga%s.json", c.endpoint, spotID)
}

func (c *HTTPCollector) Collect(ctx context.Context, spotID string) ([]models.Observation, error) {
	url := c.SpotURL(spotID)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to create request: %v", ErrCollectionFailed, err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("ngrok-skip-browser-warning", "true")
	req.Header.Set("User-Agent", userAgent)

	logger.WithSpot(spotID).Debugf("Collecting history from %s", url)

	resp, err := c.client.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, ErrTimeout
		}
		return nil, fmt.Errorf("%w: %v", ErrCollectionFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, fmt.Errorf("%w: %s", ErrSpotNotFound, spotID)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status code %d", ErrCollectionFailed, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read response body: %v", ErrCollectionFailed, err)
	}

	rows, err := decodeRows(body)
	if err != nil {
		return nil, err
	}

	observations := Normalize(spotID, rows, c.location)

	logger.WithSpot(spotID).Debugf("Collected %d observations", len(observations))

	return observations, nil
}

// decodeRows accepts either a bare JSON array or {"dados": [...]}.
func decodeRows(body []byte) ([]models.RawObservation, error) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return nil, fmt.Errorf("%w: empty body", ErrInvalidResponse)
	}

	switch trimmed[0] {
	case '[':
		var rows []models.RawObservation
		if err := json.Unmarshal(trimmed, &rows); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		return rows, nil
	case '{':
		var wrapped wrappedResponse
		if err := json.Unmarshal(trimmed, &wrapped); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidResponse, err)
		}
		return wrapped.Dados, nil
	default:
		return nil, fmt.Errorf("%w: expected JSON array or object", ErrInvalidResponse)
	}
}

// Normalize converts backend rows into observations sorted by time. Rows with
// an unparsable timestamp are dropped; unrecognized occupancy tokens read as
// free.
func Normalize(spotID string, rows []models.RawObservation, loc *time.Location) []models.Observation {
	observations := make([]models.Observation, 0, len(rows))
	dropped, unknown := 0, 0

	for _, row := range rows {
		ts, err := validation.ParseTimestamp(row.DataHora, loc)
		if err != nil {
			dropped++
			continue
		}
		occupied, err := validation.ParseOccupancyFlagStrict(row.Ocupada.String())
		if err != nil {
			unknown++
		}
		observations = append(observations, models.Observation{
			Timestamp: ts,
			Occupied:  occupied,
		})
	}

	if dropped > 0 {
		logger.WithSpot(spotID).Warnf("Dropped %d observations with invalid timestamps", dropped)
	}
	if unknown > 0 {
		logger.WithSpot(spotID).Warnf("Read %d unrecognized occupancy flags as free", unknown)
	}

	sort.SliceStable(observations, func(i, j int) bool {
		return observations[i].Timestamp.Before(observations[j].Timestamp)
	})

	return observations
}

func (c *HTTPCollector) HealthCheck(ctx context.Context) error {
	url := fmt.Sprintf("%s/health", c.endpoint)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("failed to create health check request: %w", err)
	}
	req.Header.Set("ngrok-skip-browser-warning", "true")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("health check returned status %d", resp.StatusCode)
	}

	return nil
}

func (c *HTTPCollector) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
