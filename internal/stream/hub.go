// Package stream pushes each completed live result set to websocket
// subscribers.
package stream

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/live-odds/internal/metrics"
	"github.com/yourusername/live-odds/internal/models"
)

// Hub maintains the set of active clients and broadcasts result sets to them
type Hub struct {
	clients   map[*Client]struct{}
	clientsMu sync.RWMutex

	broadcast  chan models.LiveResultSet
	register   chan *Client
	unregister chan *Client

	upgrader websocket.Upgrader
	logger   *logrus.Entry

	stateMu sync.RWMutex
	ctx     context.Context
	latest  models.LiveResultSet
}

// NewHub creates a hub. An empty origin list accepts every origin.
func NewHub(logger *logrus.Logger, allowedOrigins []string) *Hub {
	h := &Hub{
		clients:    make(map[*Client]struct{}),
		broadcast:  make(chan models.LiveResultSet, 8),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		logger:     logger.WithField("component", "stream"),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 4096,
		CheckOrigin:     originChecker(allowedOrigins),
	}
	return h
}

func originChecker(allowed []string) func(r *http.Request) bool {
	if len(allowed) == 0 {
		return func(*http.Request) bool { return true }
	}
	set := make(map[string]struct{}, len(allowed))
	for _, o := range allowed {
		set[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := set[origin]
		return ok
	}
}

// Run starts the hub's main loop and blocks until ctx ends
func (h *Hub) Run(ctx context.Context) {
	h.stateMu.Lock()
	h.ctx = ctx
	h.stateMu.Unlock()

	h.logger.Info("Stream hub started")

	for {
		select {
		case <-ctx.Done():
			h.shutdown()
			return

		case c := <-h.register:
			h.registerClient(c)

		case c := <-h.unregister:
			h.unregisterClient(c)

		case results := <-h.broadcast:
			h.broadcastResults(results)
		}
	}
}

// Broadcast queues a result set for every client. It never blocks; when the
// queue is full the update is dropped.
func (h *Hub) Broadcast(results models.LiveResultSet) {
	h.stateMu.Lock()
	h.latest = results
	h.stateMu.Unlock()

	select {
	case h.broadcast <- results:
	default:
		h.logger.Warn("Broadcast queue full, dropping update")
	}
}

// Unregister removes a client from the hub
func (h *Hub) Unregister(c *Client) {
	ctx := h.runContext()
	if ctx == nil {
		return
	}
	select {
	case h.unregister <- c:
	case <-ctx.Done():
	}
}

// ServeWS upgrades the request and attaches a new client
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	ctx := h.runContext()
	if ctx == nil || ctx.Err() != nil {
		http.Error(w, "stream unavailable", http.StatusServiceUnavailable)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("Websocket upgrade failed")
		return
	}

	c := newClient(uuid.New().String(), conn, h, h.logger)
	select {
	case h.register <- c:
	case <-ctx.Done():
		conn.Close()
		return
	}

	go c.writePump(ctx)
	go c.readPump(ctx)
}

// ClientCount returns the number of connected clients
func (h *Hub) ClientCount() int {
	h.clientsMu.RLock()
	defer h.clientsMu.RUnlock()
	return len(h.clients)
}

func (h *Hub) runContext() context.Context {
	h.stateMu.RLock()
	defer h.stateMu.RUnlock()
	return h.ctx
}

func (h *Hub) registerClient(c *Client) {
	h.clientsMu.Lock()
	h.clients[c] = struct{}{}
	count := len(h.clients)
	h.clientsMu.Unlock()

	metrics.UpdateStreamClients(count)
	h.logger.WithFields(logrus.Fields{"client_id": c.ID, "clients": count}).Info("Client connected")

	h.stateMu.RLock()
	latest := h.latest
	h.stateMu.RUnlock()
	if latest != nil {
		c.trySend(liveUpdate(c.filter(latest)))
	}
}

func (h *Hub) unregisterClient(c *Client) {
	h.clientsMu.Lock()
	_, ok := h.clients[c]
	if ok {
		delete(h.clients, c)
		close(c.send)
	}
	count := len(h.clients)
	h.clientsMu.Unlock()

	if ok {
		metrics.UpdateStreamClients(count)
		h.logger.WithFields(logrus.Fields{"client_id": c.ID, "clients": count}).Info("Client disconnected")
	}
}

func (h *Hub) broadcastResults(results models.LiveResultSet) {
	h.clientsMu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.clientsMu.RUnlock()

	for _, c := range clients {
		if !c.trySend(liveUpdate(c.filter(results))) {
			h.logger.WithField("client_id", c.ID).Warn("Client buffer full, disconnecting")
			h.unregisterClient(c)
		}
	}
	metrics.RecordStreamBroadcast()
}

func (h *Hub) shutdown() {
	h.clientsMu.Lock()
	defer h.clientsMu.Unlock()

	h.logger.WithField("clients", len(h.clients)).Info("Stream hub shutting down")
	for c := range h.clients {
		close(c.send)
		delete(h.clients, c)
	}
	metrics.UpdateStreamClients(0)
}

func liveUpdate(results models.LiveResultSet) ServerMessage {
	return ServerMessage{
		Type:      MessageTypeLiveUpdate,
		Payload:   LiveUpdate{Count: len(results), LiveMatches: results},
		Timestamp: time.Now(),
	}
}
