// Package websocket pushes dataset-refresh notifications to connected chart
// views so they re-query after a successful upload.
package websocket

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"tradelens/pkg/contracts/domain"
)

// Message type constants.
const (
	TypeConnection       = "connection"
	TypeDatasetRefreshed = "dataset_refreshed"
)

// Event is the wire format for hub broadcasts.
type Event struct {
	Type      string      `json:"type"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp string      `json:"timestamp"`
}

// Hub maintains the set of active clients and broadcasts events to them.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan []byte
	register   chan *Client
	unregister chan *Client
	quit       chan struct{}

	mu      sync.Mutex
	running bool

	logger *slog.Logger
}

// NewHub creates a hub. Call Start before serving connections.
func NewHub(logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan []byte, 16),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		quit:       make(chan struct{}),
		logger:     logger.With(slog.String("component", "websocket.hub")),
	}
}

// Start launches the hub loop once.
func (h *Hub) Start() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return
	}
	h.running = true
	go h.run()
}

// Stop shuts the hub down and disconnects all clients.
func (h *Hub) Stop() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.running {
		return
	}
	h.running = false
	close(h.quit)
}

func (h *Hub) run() {
	for {
		select {
		case <-h.quit:
			for client := range h.clients {
				close(client.send)
				delete(h.clients, client)
			}
			h.logger.Info("hub shut down")
			return

		case client := <-h.register:
			h.clients[client] = true
			h.logger.Info("client registered",
				slog.String("client_id", client.id),
				slog.Int("total_clients", len(h.clients)))
			client.enqueue(marshalEvent(Event{
				Type:      TypeConnection,
				Data:      map[string]string{"status": "connected", "client_id": client.id},
				Timestamp: time.Now().Format(time.RFC3339),
			}))

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				close(client.send)
				h.logger.Info("client unregistered",
					slog.String("client_id", client.id),
					slog.Duration("connected", time.Since(client.connectedAt)))
			}

		case message := <-h.broadcast:
			for client := range h.clients {
				client.enqueue(message)
			}
		}
	}
}

// BroadcastDatasetRefreshed notifies all clients that a new dataset replaced
// the previous one.
func (h *Hub) BroadcastDatasetRefreshed(summary domain.Summary) {
	event := Event{
		Type:      TypeDatasetRefreshed,
		Data:      summary,
		Timestamp: time.Now().Format(time.RFC3339),
	}
	select {
	case h.broadcast <- marshalEvent(event):
	default:
		h.logger.Warn("broadcast channel full, dropping event",
			slog.String("type", event.Type))
	}
}

func marshalEvent(event Event) []byte {
	data, err := json.Marshal(event)
	if err != nil {
		// Events carry only marshalable types; reaching this is a bug.
		return []byte(`{"type":"error"}`)
	}
	return data
}
