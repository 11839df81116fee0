// Package hub implements the broadcast relay: it owns the registry of live
// WebSocket connections and fans every accepted message out to all of them,
// sender included. Messages exist only in transit; nothing is persisted and
// late joiners receive no history.
package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Message is the broadcast payload. ID is a fresh uuid per message, SenderID
// the connection id of the origin.
type Message struct {
	ID       string `json:"id"`
	Content  string `json:"content"`
	SenderID string `json:"senderId"`
}

// Hub owns the connection registry and the broadcast loop. All registry
// mutation happens on the Run goroutine; the mutex only guards the snapshot
// reads done while fanning out.
type Hub struct {
	clients    map[*Client]bool
	register   chan *Client
	unregister chan *Client
	broadcast  chan Message

	mutex  sync.RWMutex
	wg     sync.WaitGroup
	ctx    context.Context
	cancel context.CancelFunc
	done   chan struct{}
	log    *zap.SugaredLogger
}

func New(log *zap.SugaredLogger) *Hub {
	ctx, cancel := context.WithCancel(context.Background())
	return &Hub{
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		broadcast:  make(chan Message),
		ctx:        ctx,
		cancel:     cancel,
		done:       make(chan struct{}),
		log:        log,
	}
}

// Register hands a freshly upgraded connection to the hub, which starts its
// read and write pumps.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Run is the hub's event loop and must run on its own goroutine.
func (h *Hub) Run() {
	defer close(h.done)

	for {
		select {
		case <-h.ctx.Done():
			h.closeAllClients()
			return

		case client := <-h.register:
			h.mutex.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mutex.Unlock()
			h.log.Infow("client connected", "id", client.id, "clients", count)

			h.wg.Add(2)
			go func() {
				defer h.wg.Done()
				client.writePump()
			}()
			go func() {
				defer h.wg.Done()
				client.readPump()
			}()

		case client := <-h.unregister:
			h.mutex.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				client.closed = true
				count := len(h.clients)
				h.mutex.Unlock()
				close(client.send)
				h.log.Infow("client disconnected", "id", client.id, "clients", count)
			} else {
				h.mutex.Unlock()
			}

		case msg := <-h.broadcast:
			h.fanOut(msg)
		}
	}
}

// fanOut delivers the message to every registered connection, including the
// sender. Delivery is fire-and-forget: a client whose send buffer is full is
// dropped so it cannot block the others.
func (h *Hub) fanOut(msg Message) {
	payload, err := json.Marshal(msg)
	if err != nil {
		h.log.Errorw("failed to marshal message", "err", err)
		return
	}

	h.mutex.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.RUnlock()

	var stalled []*Client
	for _, client := range clients {
		if !h.trySend(client, payload) {
			stalled = append(stalled, client)
		}
	}
	h.dropClients(stalled)
}

func (h *Hub) trySend(client *Client, payload []byte) bool {
	h.mutex.RLock()
	defer h.mutex.RUnlock()

	if _, ok := h.clients[client]; !ok || client.closed {
		return false
	}
	select {
	case client.send <- payload:
		return true
	default:
		return false
	}
}

func (h *Hub) dropClients(clients []*Client) {
	if len(clients) == 0 {
		return
	}

	h.mutex.Lock()
	var toClose []chan []byte
	for _, client := range clients {
		if _, ok := h.clients[client]; ok {
			delete(h.clients, client)
			client.closed = true
			toClose = append(toClose, client.send)
			h.log.Warnw("client dropped, send buffer full", "id", client.id)
		}
	}
	h.mutex.Unlock()

	for _, ch := range toClose {
		close(ch)
	}
}

func (h *Hub) closeAllClients() {
	h.mutex.Lock()
	clients := make([]*Client, 0, len(h.clients))
	for client := range h.clients {
		clients = append(clients, client)
	}
	h.mutex.Unlock()

	for _, client := range clients {
		_ = client.conn.Close()
	}
	h.log.Infow("closed client connections", "count", len(clients))
}

// Shutdown stops the event loop, closes every connection, and waits for the
// pump goroutines up to the given timeout.
func (h *Hub) Shutdown(timeout time.Duration) error {
	h.cancel()
	<-h.done

	finished := make(chan struct{})
	go func() {
		h.wg.Wait()
		close(finished)
	}()

	select {
	case <-finished:
		return nil
	case <-time.After(timeout):
		return context.DeadlineExceeded
	}
}
