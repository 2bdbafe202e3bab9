package stream

import (
	"time"

	"github.com/yourusername/live-odds/internal/models"
)

// Message types exchanged over the socket
const (
	MessageTypeLiveUpdate  = "live_update"
	MessageTypeSubscribe   = "subscribe"
	MessageTypeUnsubscribe = "unsubscribe"
	MessageTypeHeartbeat   = "heartbeat"
	MessageTypeError       = "error"
)

// ServerMessage is sent from the hub to clients
type ServerMessage struct {
	Type      string      `json:"type"`
	Payload   interface{} `json:"payload"`
	Timestamp time.Time   `json:"timestamp"`
}

// ClientMessage is sent from clients to the hub
type ClientMessage struct {
	Type     string   `json:"type"`
	MatchIDs []string `json:"match_ids,omitempty"`
}

// LiveUpdate is the payload of a live_update message
type LiveUpdate struct {
	Count       int                  `json:"count"`
	LiveMatches models.LiveResultSet `json:"live_matches"`
}

// ErrorMessage is the payload of an error message
type ErrorMessage struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
