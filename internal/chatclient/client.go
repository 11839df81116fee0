// Package chatclient is the Go counterpart of the browser chat UI: a
// reconnecting WebSocket client that keeps an append-only, deduplicated log
// of received messages.
package chatclient

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/snow6692/chat/internal/hub"
)

var (
	// ErrEmptyMessage is returned by Send for blank input; nothing reaches
	// the server in that case.
	ErrEmptyMessage = errors.New("message must be at least 1 character")
	// ErrNotConnected is returned by Send while no connection is established.
	ErrNotConnected = errors.New("not connected to server")
)

const (
	defaultRetryAttempts = 5
	defaultRetryDelay    = time.Second
)

// Handlers are optional callbacks fired from the client's read goroutine.
type Handlers struct {
	// OnMessage fires once per unique message; duplicates are swallowed.
	OnMessage func(hub.Message)
	// OnConnect fires after a successful dial. attempt is 1 for the first
	// connection and counts up across reconnects.
	OnConnect func(attempt int)
	// OnError fires when the retry budget is exhausted.
	OnError func(err error)
}

// Client dials the relay and retries a fixed number of times with a fixed
// delay. Reconnection is entirely client-driven; the server sees each attempt
// as a brand-new connection.
type Client struct {
	url      string
	attempts int
	delay    time.Duration
	handlers Handlers

	mu        sync.Mutex
	conn      *websocket.Conn
	connected bool
	closed    bool
	dials     int

	log *MessageLog
}

func New(url string, handlers Handlers) *Client {
	return &Client{
		url:      url,
		attempts: defaultRetryAttempts,
		delay:    defaultRetryDelay,
		handlers: handlers,
		log:      NewMessageLog(),
	}
}

// Connect dials the relay, retrying up to the attempt budget. On success the
// read loop starts in the background.
func (c *Client) Connect() error {
	var lastErr error
	for i := 0; i < c.attempts; i++ {
		if i > 0 {
			time.Sleep(c.delay)
		}
		conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
		if err != nil {
			lastErr = err
			continue
		}

		c.mu.Lock()
		c.conn = conn
		c.connected = true
		c.dials++
		dials := c.dials
		c.mu.Unlock()

		if c.handlers.OnConnect != nil {
			c.handlers.OnConnect(dials)
		}
		go c.readLoop(conn)
		return nil
	}

	err := fmt.Errorf("connection failed after %d attempts: %w", c.attempts, lastErr)
	if c.handlers.OnError != nil {
		c.handlers.OnError(err)
	}
	return err
}

// Send emits the text as one message. It refuses blank input and requires an
// established connection, mirroring the UI-side guard.
func (c *Client) Send(text string) error {
	if strings.TrimSpace(text) == "" {
		return ErrEmptyMessage
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected || c.conn == nil {
		return ErrNotConnected
	}
	return c.conn.WriteMessage(websocket.TextMessage, []byte(text))
}

// Connected reports whether a connection is currently established.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Messages returns the deduplicated message log in arrival order.
func (c *Client) Messages() []hub.Message {
	return c.log.Messages()
}

// Close tears the connection down and disables reconnection.
func (c *Client) Close() error {
	c.mu.Lock()
	c.closed = true
	c.connected = false
	conn := c.conn
	c.mu.Unlock()

	if conn != nil {
		return conn.Close()
	}
	return nil
}

func (c *Client) readLoop(conn *websocket.Conn) {
	for {
		var msg hub.Message
		if err := conn.ReadJSON(&msg); err != nil {
			break
		}
		if c.log.Append(msg) && c.handlers.OnMessage != nil {
			c.handlers.OnMessage(msg)
		}
	}

	c.mu.Lock()
	c.connected = false
	closed := c.closed
	c.mu.Unlock()

	if closed {
		return
	}
	// Connection dropped: spend a fresh retry budget on reconnecting.
	_ = c.Connect()
}
