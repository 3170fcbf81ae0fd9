package mqttsub

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/parksense/pkg/models"
)

var now = time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC)

func TestParseMessage(t *testing.T) {
	tests := []struct {
		name     string
		topic    string
		payload  string
		spotID   string
		occupied bool
		err      error
	}{
		{"json boolean", "pi5/estacionamento/vaga/A01", `{"ocupada": true}`, "A01", true, nil},
		{"json python string", "pi5/estacionamento/vaga/A02", `{"ocupada": "True"}`, "A02", true, nil},
		{"json false string", "pi5/estacionamento/vaga/A03", `{"ocupada": "False"}`, "A03", false, nil},
		{"json unknown token", "pi5/estacionamento/vaga/A03", `{"ocupada": "yes"}`, "A03", false, nil},
		{"bare true", "pi5/estacionamento/vaga/B10", "true", "B10", true, nil},
		{"bare padded", "pi5/estacionamento/vaga/B10", " TRUE ", "B10", true, nil},
		{"numeric token reads free", "pi5/estacionamento/vaga/B10", "1", "B10", false, nil},
		{"quoted token", "pi5/estacionamento/vaga/B10", `"true"`, "B10", true, nil},
		{"trailing slash", "pi5/estacionamento/vaga/C101/", "true", "C101", true, nil},
		{"missing field", "pi5/estacionamento/vaga/A01", `{"status": 1}`, "", false, ErrInvalidPayload},
		{"broken json", "pi5/estacionamento/vaga/A01", `{"ocupada": `, "", false, ErrInvalidPayload},
		{"empty payload", "pi5/estacionamento/vaga/A01", "  ", "", false, ErrInvalidPayload},
		{"empty topic", "", "true", "", false, ErrInvalidTopic},
		{"no spot segment", "pi5/estacionamento/vaga/", "true", "", false, ErrInvalidTopic},
		{"lowercase spot", "pi5/estacionamento/vaga/a01", "true", "", false, ErrInvalidTopic},
		{"extra segment", "pi5/estacionamento/vaga/A01/extra", "true", "", false, ErrInvalidTopic},
		{"wildcard", "pi5/estacionamento/vaga/#", "true", "", false, ErrInvalidTopic},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			update, err := ParseMessage(tt.topic, []byte(tt.payload), now)

			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, models.SpotUpdate{SpotID: tt.spotID, Occupied: tt.occupied, Timestamp: now}, update)
		})
	}
}

func TestSubscriber_Handle(t *testing.T) {
	var updates []models.SpotUpdate
	var results []string

	s := New(Config{Broker: "tcp://localhost:1883", Topic: "pi5/estacionamento/vaga/#"}, func(u models.SpotUpdate) {
		updates = append(updates, u)
	})
	s.now = func() time.Time { return now }
	s.OnResult = func(r string) { results = append(results, r) }

	s.handle("pi5/estacionamento/vaga/A01", []byte(`{"ocupada":"True"}`))
	s.handle("pi5/estacionamento/vaga/A01", []byte(""))
	s.handle("pi5/estacionamento/vaga/a01", []byte(`{"ocupada":"True"}`))

	require.Len(t, updates, 1)
	assert.Equal(t, "A01", updates[0].SpotID)
	assert.True(t, updates[0].Occupied)
	assert.Equal(t, []string{ResultAccepted, ResultInvalid, ResultInvalid}, results)
	assert.False(t, s.IsConnected())
	assert.NoError(t, s.Err())
}

func TestSubscriber_GivesUpAfterMaxReconnects(t *testing.T) {
	s := New(Config{Broker: "tcp://localhost:1883", Topic: "t/#", MaxReconnectAttempts: 2}, nil)

	s.onReconnecting(s.client, nil)
	s.onReconnecting(s.client, nil)
	assert.NoError(t, s.Err())

	s.onReconnecting(s.client, nil)
	assert.ErrorIs(t, s.Err(), ErrGaveUp)
}
