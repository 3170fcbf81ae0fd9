package mqttsub

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/OldStager01/parksense/pkg/models"
	"github.com/OldStager01/parksense/pkg/validation"
)

var (
	ErrInvalidTopic   = errors.New("invalid topic")
	ErrInvalidPayload = errors.New("invalid payload")
)

type sensorPayload struct {
	Ocupada *models.OccupancyFlag `json:"ocupada"`
}

// ParseMessage turns one sensor message into a spot update stamped with now.
// The spot ID is the last topic segment and must be a valid spot ID, the
// same rule the API applies. The payload is either a JSON object with an
// "ocupada" field or a bare token such as "true"; tokens that are not
// recognizably true read as free.
func ParseMessage(topic string, payload []byte, now time.Time) (models.SpotUpdate, error) {
	segments := strings.Split(strings.TrimRight(topic, "/"), "/")
	spotID := validation.SanitizeString(segments[len(segments)-1])
	if err := validation.ValidateSpotID(spotID); err != nil {
		return models.SpotUpdate{}, fmt.Errorf("%w: %q: %v", ErrInvalidTopic, topic, err)
	}

	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return models.SpotUpdate{}, fmt.Errorf("%w: empty", ErrInvalidPayload)
	}

	var token string
	if payload[0] == '{' {
		var p sensorPayload
		if err := json.Unmarshal(payload, &p); err != nil {
			return models.SpotUpdate{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
		}
		if p.Ocupada == nil {
			return models.SpotUpdate{}, fmt.Errorf("%w: missing ocupada field", ErrInvalidPayload)
		}
		token = p.Ocupada.String()
	} else {
		token = strings.Trim(string(payload), `"`)
	}

	return models.SpotUpdate{
		SpotID:    spotID,
		Occupied:  validation.ParseOccupancyFlag(token),
		Timestamp: now,
	}, nil
}
