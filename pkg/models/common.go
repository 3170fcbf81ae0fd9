package models

import (
	"fmt"

	"github.com/google/uuid"
)

// NewUUID generates a new UUID string
func NewUUID() string {
	return uuid.New().String()
}

// SpotName is the display name used for a spot ID.
func SpotName(spotID string) string {
	return fmt.Sprintf("Vaga %s", spotID)
}
