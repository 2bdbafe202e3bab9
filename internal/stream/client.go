package stream

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/live-odds/internal/models"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1024
	sendBufferSize = 16
)

type unregisterer interface {
	Unregister(c *Client)
}

// Client is one websocket subscriber
type Client struct {
	ID     string
	conn   *websocket.Conn
	send   chan ServerMessage
	hub    unregisterer
	logger *logrus.Entry

	filterMu sync.RWMutex
	matchIDs map[string]struct{}
}

func newClient(id string, conn *websocket.Conn, hub unregisterer, logger *logrus.Entry) *Client {
	return &Client{
		ID:     id,
		conn:   conn,
		send:   make(chan ServerMessage, sendBufferSize),
		hub:    hub,
		logger: logger.WithField("client_id", id),
	}
}

// readPump handles inbound control messages until the connection closes
func (c *Client) readPump(ctx context.Context) {
	defer func() {
		c.hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		if ctx.Err() != nil {
			return
		}
		var msg ClientMessage
		if err := c.conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.logger.WithError(err).Warn("Unexpected websocket close")
			}
			return
		}
		c.handleMessage(msg)
	}
}

// writePump drains the send buffer and keeps the connection alive with pings
func (c *Client) writePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			c.conn.WriteMessage(websocket.CloseMessage, []byte{})
			return

		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteJSON(message); err != nil {
				c.logger.WithError(err).Debug("Websocket write failed")
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// trySend queues a message without blocking. It returns false when the
// client's buffer is full.
func (c *Client) trySend(msg ServerMessage) bool {
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) handleMessage(msg ClientMessage) {
	switch msg.Type {
	case MessageTypeSubscribe:
		c.setFilter(msg.MatchIDs)
	case MessageTypeUnsubscribe:
		c.setFilter(nil)
	case MessageTypeHeartbeat:
		c.trySend(ServerMessage{Type: MessageTypeHeartbeat, Timestamp: time.Now()})
	default:
		c.trySend(ServerMessage{
			Type: MessageTypeError,
			Payload: ErrorMessage{
				Code:    "unknown_message_type",
				Message: fmt.Sprintf("unknown message type: %s", msg.Type),
			},
			Timestamp: time.Now(),
		})
	}
}

func (c *Client) setFilter(ids []string) {
	c.filterMu.Lock()
	defer c.filterMu.Unlock()

	if len(ids) == 0 {
		c.matchIDs = nil
		return
	}
	c.matchIDs = make(map[string]struct{}, len(ids))
	for _, id := range ids {
		c.matchIDs[id] = struct{}{}
	}
}

// filter returns the subset of results this client subscribed to
func (c *Client) filter(results models.LiveResultSet) models.LiveResultSet {
	c.filterMu.RLock()
	defer c.filterMu.RUnlock()

	if c.matchIDs == nil {
		return results
	}
	out := make(models.LiveResultSet, 0, len(c.matchIDs))
	for _, event := range results {
		if _, ok := c.matchIDs[event.MatchID]; ok {
			out = append(out, event)
		}
	}
	return out
}
