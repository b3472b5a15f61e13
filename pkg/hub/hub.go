package hub

import (
	"context"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/teslashibe/go-wekbridge/internal/log"
)

// Hub maintains the set of monitor clients and broadcasts events to them
type Hub struct {
	// Name for logging
	name string
	log  *slog.Logger

	// Registered clients
	clients map[*Client]bool

	// Inbound events to broadcast
	broadcast chan Message

	// Register requests from clients
	register chan *Client

	// Unregister requests from clients
	unregister chan *Client

	// Mutex for client count (read-only access from outside)
	mu sync.RWMutex

	// Closed when Run returns
	done chan struct{}

	running atomic.Bool
	dropped atomic.Uint64
}

// New creates a new Hub
func New(name string) *Hub {
	return &Hub{
		name:       name,
		log:        log.With("component", "hub", "hub", name),
		clients:    make(map[*Client]bool),
		broadcast:  make(chan Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run starts the hub's main loop until ctx is done.
// This should be called in a goroutine.
func (h *Hub) Run(ctx context.Context) {
	h.running.Store(true)
	defer func() {
		h.running.Store(false)
		close(h.done)
	}()

	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.mu.Unlock()
			return

		case client := <-h.register:
			h.mu.Lock()
			h.clients[client] = true
			count := len(h.clients)
			h.mu.Unlock()
			h.log.Info("monitor connected", "session_filter", client.session, "clients", count)

		case client := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
			}
			count := len(h.clients)
			h.mu.Unlock()
			h.log.Info("monitor disconnected", "clients", count)

		case message := <-h.broadcast:
			h.mu.Lock()
			for client := range h.clients {
				if !client.wants(message) {
					continue
				}
				select {
				case client.send <- message:
				default:
					// Client's buffer is full, drop it
					close(client.send)
					delete(h.clients, client)
					h.log.Warn("dropped slow monitor")
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues an event for every interested client.
// When the queue is full the event is dropped.
func (h *Hub) Broadcast(ev Event) {
	msg, err := NewMessage(ev)
	if err != nil {
		h.log.Warn("encode event", "error", err)
		return
	}
	select {
	case h.broadcast <- msg:
	default:
		h.dropped.Add(1)
		h.log.Debug("broadcast channel full, dropping event")
	}
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Dropped returns how many events were dropped because the queue was full
func (h *Hub) Dropped() uint64 {
	return h.dropped.Load()
}

// IsRunning returns whether the hub loop is active
func (h *Hub) IsRunning() bool {
	return h.running.Load()
}
