package websocket

import (
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gws "github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/parksense/pkg/config"
	"github.com/OldStager01/parksense/pkg/models"
)

var t0 = time.Date(2026, 2, 5, 10, 0, 0, 0, time.UTC)

func newTestClient(hub *Hub, spotID string) *Client {
	return NewClient(hub, nil, spotID)
}

func startHub(t *testing.T, cfg *config.WebSocketConfig) *Hub {
	t.Helper()
	hub := NewHub(cfg)
	go hub.Run()
	t.Cleanup(hub.Stop)
	return hub
}

func recv(t *testing.T, ch <-chan []byte) OutgoingMessage {
	t.Helper()
	select {
	case data := <-ch:
		var msg OutgoingMessage
		require.NoError(t, json.Unmarshal(data, &msg))
		return msg
	case <-time.After(time.Second):
		t.Fatal("no message")
		return OutgoingMessage{}
	}
}

func TestNewWebSocketSettings(t *testing.T) {
	s := NewWebSocketSettings(nil)
	assert.Equal(t, 1000, s.MaxConnections)
	assert.Equal(t, 54*time.Second, s.PingInterval)

	s = NewWebSocketSettings(&config.WebSocketConfig{MaxConnections: 2, PongTimeout: 10 * time.Second})
	assert.Equal(t, 2, s.MaxConnections)
	assert.Equal(t, 9*time.Second, s.PingInterval)
}

func TestHub_BroadcastToSpot(t *testing.T) {
	hub := startHub(t, nil)

	a01 := newTestClient(hub, "A01")
	all := newTestClient(hub, "")
	b02 := newTestClient(hub, "B02")
	for _, c := range []*Client{a01, all, b02} {
		hub.Register(c)
	}
	require.Eventually(t, func() bool { return hub.ClientCount() == 3 }, time.Second, 5*time.Millisecond)

	hub.BroadcastToSpot("A01", []byte(`{"type":"x"}`))

	assert.Len(t, a01.send, 1)
	assert.Len(t, all.send, 1)
	assert.Len(t, b02.send, 0)

	// lot-wide messages reach everyone
	hub.BroadcastToSpot("", []byte(`{"type":"y"}`))
	assert.Len(t, b02.send, 1)

	hub.Unregister(b02)
	require.Eventually(t, func() bool { return hub.ClientCount() == 2 }, time.Second, 5*time.Millisecond)
	_, open := <-b02.send
	for open {
		_, open = <-b02.send
	}
}

func TestHub_DropsSlowConsumer(t *testing.T) {
	hub := startHub(t, &config.WebSocketConfig{ClientBuffer: 1})

	slow := newTestClient(hub, "")
	hub.Register(slow)
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	hub.Broadcast([]byte("1"))
	hub.Broadcast([]byte("2"))

	assert.Eventually(t, func() bool { return hub.ClientCount() == 0 }, time.Second, 5*time.Millisecond)
}

func TestClient_HandleMessage(t *testing.T) {
	hub := NewHub(nil)
	c := newTestClient(hub, "A01")

	c.handleMessage(&IncomingMessage{Type: "subscribe", SpotID: "B02"})
	assert.Equal(t, "B02", c.SpotID())
	msg := recv(t, c.send)
	assert.Equal(t, MessageTypeSubscription, msg.Type)
	assert.Equal(t, "B02", msg.SpotID)

	c.handleMessage(&IncomingMessage{Type: "unsubscribe"})
	assert.Equal(t, AllSpots, c.SpotID())
	assert.True(t, c.wants("Z99"))
}

func TestConvertToWSMessage(t *testing.T) {
	change := models.NewEvent(models.EventTypeSpotStatusChanged, "A01", "changed").
		WithData(&models.StatusChange{SpotID: "A01", From: models.SpotStatusFree, To: models.SpotStatusOccupied, Timestamp: t0})
	msg := convertToWSMessage(change)
	require.NotNil(t, msg)
	assert.Equal(t, MessageTypeStatusChange, msg.Type)
	assert.Equal(t, StatusChangeData{From: models.SpotStatusFree, To: models.SpotStatusOccupied}, msg.Data)

	obs := models.NewEvent(models.EventTypeObservationReceived, "A01", "obs").
		WithData(&models.ObservationBatch{SpotID: "A01", Source: models.SourceMQTT, Observations: []models.Observation{{Timestamp: t0, Occupied: true}}})
	msg = convertToWSMessage(obs)
	require.NotNil(t, msg)
	assert.Equal(t, ObservationData{Occupied: true, Timestamp: t0, Source: models.SourceMQTT}, msg.Data)

	refreshed := models.NewEvent(models.EventTypeHistoryRefreshed, "A01", "refreshed").
		WithData(&models.ObservationBatch{SpotID: "A01"})
	msg = convertToWSMessage(refreshed)
	require.NotNil(t, msg)
	assert.Equal(t, HistoryData{Count: 0}, msg.Data)

	assert.Nil(t, convertToWSMessage(models.NewEvent(models.EventTypeMetricsComputed, "", "computed")))
	assert.Nil(t, convertToWSMessage(models.NewEvent(models.EventTypeSpotStatusChanged, "A01", "no data")))
}

func TestServeWebSocket_EndToEnd(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := startHub(t, nil)

	events := make(chan *models.Event, 1)
	bridge := NewEventBridge(hub, events)
	bridge.Start()
	defer bridge.Stop()

	r := gin.New()
	r.GET("/ws", ServeWebSocket(hub))
	srv := httptest.NewServer(r)
	defer srv.Close()

	url := "ws" + strings.TrimPrefix(srv.URL, "http") + "/ws?spot_id=A01"
	conn, _, err := gws.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	defer conn.Close()

	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	events <- models.NewEvent(models.EventTypeSpotStatusChanged, "A01", "changed").
		WithData(&models.StatusChange{SpotID: "A01", From: models.SpotStatusFree, To: models.SpotStatusOccupied, Timestamp: t0})

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg OutgoingMessage
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageTypeStatusChange, msg.Type)
	assert.Equal(t, "A01", msg.SpotID)

	BroadcastSpotState(hub, models.ParkingSpot{ID: "A01", Status: models.SpotStatusOccupied, History: []models.Observation{{}}})
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, MessageTypeSpotState, msg.Type)
	assert.NotContains(t, msg.Data, "history")
}

func TestServeWebSocket_Full(t *testing.T) {
	gin.SetMode(gin.TestMode)
	hub := startHub(t, &config.WebSocketConfig{MaxConnections: 1})
	hub.Register(newTestClient(hub, ""))
	require.Eventually(t, func() bool { return hub.ClientCount() == 1 }, time.Second, 5*time.Millisecond)

	r := gin.New()
	r.GET("/ws", ServeWebSocket(hub))
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest("GET", "/ws", nil))

	assert.Equal(t, 503, rec.Code)
}
