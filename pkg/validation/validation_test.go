package validation

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseOccupancyFlag(t *testing.T) {
	tests := []struct {
		input    string
		expected bool
	}{
		{"True", true},
		{"true", true},
		{"TRUE", true},
		{" true ", true},
		{"1", false},
		{"False", false},
		{"false", false},
		{"0", false},
		{"", false},
		{"yes", false},
		{"ocupada", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, ParseOccupancyFlag(tt.input))
		})
	}
}

func TestParseOccupancyFlagStrict(t *testing.T) {
	occupied, err := ParseOccupancyFlagStrict("False")
	require.NoError(t, err)
	assert.False(t, occupied)

	occupied, err = ParseOccupancyFlagStrict("True")
	require.NoError(t, err)
	assert.True(t, occupied)

	for _, token := range []string{"maybe", "1", "0"} {
		_, err = ParseOccupancyFlagStrict(token)
		assert.ErrorIs(t, err, ErrInvalidFlag, token)
	}
}

func TestParseTimestamp(t *testing.T) {
	loc := time.FixedZone("BRT", -3*60*60)

	tests := []struct {
		name     string
		input    string
		expected time.Time
	}{
		{
			name:     "backend local format",
			input:    "2026-02-05T10:15:00",
			expected: time.Date(2026, 2, 5, 10, 15, 0, 0, loc),
		},
		{
			name:     "fractional seconds",
			input:    "2026-02-05T10:15:00.250",
			expected: time.Date(2026, 2, 5, 10, 15, 0, 250_000_000, loc),
		},
		{
			name:     "space separator",
			input:    "2026-02-05 10:15:00",
			expected: time.Date(2026, 2, 5, 10, 15, 0, 0, loc),
		},
		{
			name:     "rfc3339 keeps its own offset",
			input:    "2026-02-05T10:15:00Z",
			expected: time.Date(2026, 2, 5, 10, 15, 0, 0, time.UTC),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := ParseTimestamp(tt.input, loc)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(parsed), "expected %v, got %v", tt.expected, parsed)
		})
	}

	_, err := ParseTimestamp("yesterday", loc)
	assert.ErrorIs(t, err, ErrInvalidTimestamp)

	_, err = ParseTimestamp("", loc)
	assert.ErrorIs(t, err, ErrInvalidTimestamp)
}

func TestValidateSpotID(t *testing.T) {
	for _, id := range []string{"A01", "B12", "C105"} {
		assert.NoError(t, ValidateSpotID(id), id)
	}
	for _, id := range []string{"", "a01", "A1", "A0001", "../etc", "A01;"} {
		assert.ErrorIs(t, ValidateSpotID(id), ErrInvalidSpotID, id)
	}
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "A01", SanitizeString("  A01\x00\x07 "))
}
