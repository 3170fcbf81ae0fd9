package validation

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

var (
	// ErrInvalidInput indicates the input failed validation
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidFlag is returned by strict parsing for unknown occupancy tokens
	ErrInvalidFlag = errors.New("invalid occupancy flag")

	// ErrInvalidSpotID is returned for identifiers outside the sensor naming scheme
	ErrInvalidSpotID = errors.New("invalid spot id")

	ErrInvalidTimestamp = errors.New("invalid timestamp")

	// Spot IDs are a row letter followed by two or three digits: A01, B12, C105
	spotIDRegex = regexp.MustCompile(`^[A-Z][0-9]{2,3}$`)
)

// Layouts accepted for the backend's data_hora field, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04",
}

// SanitizeString removes potentially dangerous characters and trims whitespace
func SanitizeString(input string) string {
	input = strings.TrimSpace(input)
	input = strings.ReplaceAll(input, "\x00", "")

	// Remove control characters except newline and tab
	var builder strings.Builder
	for _, r := range input {
		if !unicode.IsControl(r) || r == '\n' || r == '\t' {
			builder.WriteRune(r)
		}
	}

	return builder.String()
}

// ParseOccupancyFlag reads a loosely typed occupancy token. Anything that is
// not a recognizable "true" token counts as free.
func ParseOccupancyFlag(s string) bool {
	occupied, err := ParseOccupancyFlagStrict(s)
	if err != nil {
		return false
	}
	return occupied
}

// ParseOccupancyFlagStrict accepts "true" and "false" in any case and
// rejects everything else with ErrInvalidFlag. Numeric tokens are not
// occupancy flags.
func ParseOccupancyFlagStrict(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true":
		return true, nil
	case "false":
		return false, nil
	default:
		return false, fmt.Errorf("%w: %q", ErrInvalidFlag, s)
	}
}

// ParseTimestamp parses a sensor timestamp. Values without a zone offset are
// read as wall-clock time in loc.
func ParseTimestamp(s string, loc *time.Location) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidTimestamp)
	}
	if loc == nil {
		loc = time.Local
	}

	if t, err := time.Parse(timestampLayouts[0], s); err == nil {
		return t, nil
	}
	for _, layout := range timestampLayouts[1:] {
		if t, err := time.ParseInLocation(layout, s, loc); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, s)
}

// ValidateSpotID checks if a spot identifier is valid
func ValidateSpotID(id string) error {
	id = SanitizeString(id)

	if id == "" {
		return fmt.Errorf("%w: spot id cannot be empty", ErrInvalidSpotID)
	}

	if !spotIDRegex.MatchString(id) {
		return fmt.Errorf("%w: %q must be a row letter followed by 2-3 digits", ErrInvalidSpotID, id)
	}

	return nil
}

// ValidateUsername checks if an operator username is valid
func ValidateUsername(username string) error {
	username = SanitizeString(username)

	if username == "" {
		return errors.New("username cannot be empty")
	}

	if len(username) < 3 {
		return errors.New("username must be at least 3 characters")
	}

	if len(username) > 50 {
		return errors.New("username must not exceed 50 characters")
	}

	return nil
}
