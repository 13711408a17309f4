// Package realtime serves the websocket endpoint that binds browser
// connections to users in the presence registry.
package realtime

import (
	"log/slog"
	"net/http"
	"slices"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/prudhvinik1/foodbridge/internal/obs"
	"github.com/prudhvinik1/foodbridge/internal/presence"
)

type Hub struct {
	registry *presence.Registry
	logger   *slog.Logger
	metrics  *obs.Metrics
	upgrader websocket.Upgrader

	mu      sync.Mutex
	clients map[*Client]struct{}
	closed  bool
}

// NewHub creates a websocket hub. allowedOrigins containing "*" accepts any
// origin. metrics may be nil.
func NewHub(registry *presence.Registry, allowedOrigins []string, logger *slog.Logger, metrics *obs.Metrics) *Hub {
	h := &Hub{
		registry: registry,
		logger:   logger,
		metrics:  metrics,
		clients:  make(map[*Client]struct{}),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 || slices.Contains(allowed, "*") {
		return func(r *http.Request) bool { return true }
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(allowed, origin)
	}
}

func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the HTTP error.
		h.logger.Debug("websocket upgrade failed", "error", err)
		return
	}

	client := newClient(h, conn)

	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		conn.Close()
		return
	}
	h.clients[client] = struct{}{}
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.WSConnections.Inc()
	}
	h.logger.Debug("websocket connected", "remote_addr", r.RemoteAddr)

	go client.writePump()
	client.readPump()
}

// disconnect removes every trace of the client. It runs once per client when
// its read loop exits.
func (h *Hub) disconnect(c *Client) {
	removed := h.registry.Unregister(c)
	c.close()

	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()

	if h.metrics != nil {
		h.metrics.WSConnections.Dec()
	}
	h.logger.Debug("websocket disconnected", "registrations_removed", removed)
}

// Len reports the number of open connections.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

// Shutdown closes every open connection and refuses new ones. Hijacked
// connections are not closed by http.Server.Shutdown.
func (h *Hub) Shutdown() {
	h.mu.Lock()
	h.closed = true
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		c.close()
	}
}
