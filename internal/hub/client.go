package hub

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	sendBufferSize = 256
)

// Client is one live WebSocket connection. Its id plays the role of the
// sender identifier in broadcast messages; a reconnecting peer gets a new id
// and the hub treats it as a brand-new client.
type Client struct {
	id     string
	conn   *websocket.Conn
	send   chan []byte
	hub    *Hub
	closed bool
}

func NewClient(conn *websocket.Conn, hub *Hub) *Client {
	return &Client{
		id:   uuid.NewString(),
		conn: conn,
		send: make(chan []byte, sendBufferSize),
		hub:  hub,
	}
}

// ID returns the connection identifier assigned at upgrade time.
func (c *Client) ID() string {
	return c.id
}

// readPump consumes inbound frames until the connection dies. Invalid
// payloads are dropped without any reply to the sender: binary frames are not
// chat messages, and empty or whitespace-only text carries nothing to relay.
func (c *Client) readPump() {
	defer func() {
		// During shutdown the hub loop is gone; don't block on it.
		select {
		case c.hub.unregister <- c:
		case <-c.hub.ctx.Done():
		}
		_ = c.conn.Close()
	}()

	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		messageType, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				c.hub.log.Warnw("read error", "id", c.id, "err", err)
			}
			return
		}

		if messageType != websocket.TextMessage {
			c.hub.log.Debugw("dropping non-text frame", "id", c.id, "type", messageType)
			continue
		}
		content := string(raw)
		if strings.TrimSpace(content) == "" {
			c.hub.log.Debugw("dropping empty message", "id", c.id)
			continue
		}

		msg := Message{
			ID:       uuid.NewString(),
			Content:  content,
			SenderID: c.id,
		}
		select {
		case c.hub.broadcast <- msg:
		case <-c.hub.ctx.Done():
			return
		}
	}
}

// writePump drains the send buffer and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case payload, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-c.hub.ctx.Done():
			return
		}
	}
}
