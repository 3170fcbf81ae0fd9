package websocket

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/OldStager01/parksense/internal/logger"
)

type Client struct {
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	mu     sync.RWMutex
	spotID string
}

type IncomingMessage struct {
	Type   string `json:"type"`
	SpotID string `json:"spot_id,omitempty"`
}

func NewClient(hub *Hub, conn *websocket.Conn, spotID string) *Client {
	if spotID == "" {
		spotID = AllSpots
	}
	return &Client{
		hub:    hub,
		conn:   conn,
		send:   make(chan []byte, hub.settings.ClientBuffer),
		spotID: spotID,
	}
}

func (c *Client) SpotID() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.spotID
}

func (c *Client) wants(spotID string) bool {
	sub := c.SpotID()
	return sub == AllSpots || spotID == "" || sub == spotID
}

func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	settings := c.hub.settings
	c.conn.SetReadLimit(settings.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(settings.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(settings.PongTimeout))
		return nil
	})

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				logger.Errorf("WebSocket error: %v", err)
			}
			break
		}

		var msg IncomingMessage
		if err := json.Unmarshal(message, &msg); err == nil {
			c.handleMessage(&msg)
		}
	}
}

func (c *Client) WritePump() {
	settings := c.hub.settings
	ticker := time.NewTicker(settings.PingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(settings.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			// One JSON document per frame.
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(settings.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func (c *Client) handleMessage(msg *IncomingMessage) {
	switch msg.Type {
	case "subscribe":
		spotID := msg.SpotID
		if spotID == "" {
			spotID = AllSpots
		}
		c.setSpot(spotID)
		logger.WithSpot(spotID).Debug("Client subscribed")
		c.sendConfirmation("subscribed", spotID)
	case "unsubscribe":
		old := c.SpotID()
		c.setSpot(AllSpots)
		c.sendConfirmation("unsubscribed", old)
	}
}

func (c *Client) setSpot(spotID string) {
	c.mu.Lock()
	c.spotID = spotID
	c.mu.Unlock()
}

func (c *Client) sendConfirmation(action, spotID string) {
	msg := NewMessage(MessageTypeSubscription, spotID, SubscriptionData{Action: action})
	select {
	case c.send <- msg.JSON():
	default:
		logger.Warn("Client send channel full, dropping confirmation")
	}
}

func newUpgrader(settings *WebSocketSettings) websocket.Upgrader {
	return websocket.Upgrader{
		ReadBufferSize:  settings.ReadBufferSize,
		WriteBufferSize: settings.WriteBufferSize,
		CheckOrigin: func(r *http.Request) bool {
			return true
		},
	}
}

// ServeWebSocket upgrades the request. The optional spot_id query
// parameter picks the initial subscription; the default is every spot.
func ServeWebSocket(hub *Hub) gin.HandlerFunc {
	upgrader := newUpgrader(hub.settings)

	return func(c *gin.Context) {
		if hub.Full() {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "too many websocket connections"})
			return
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			logger.Errorf("WebSocket upgrade failed: %v", err)
			return
		}

		client := NewClient(hub, conn, c.Query("spot_id"))
		hub.Register(client)

		go client.WritePump()
		go client.ReadPump()
	}
}
