// Package hub fans encoded frames out to monitor websocket clients
// using the channel-based broadcast pattern.
package hub

import (
	"encoding/json"
	"time"

	"github.com/teslashibe/go-wekbridge/pkg/motion"
)

// EventType indicates what a monitor event carries
type EventType string

const (
	// FrameEvent carries an encoded frame that was sent to Wekinator
	FrameEvent EventType = "frame"
	// ClearEvent reports that no face was found for a tick
	ClearEvent EventType = "clear"
	// SessionEvent reports a session lifecycle change
	SessionEvent EventType = "session"
)

// Event is the JSON payload pushed to monitor clients
type Event struct {
	Type      EventType       `json:"type"`
	SessionID string          `json:"session_id"`
	Timestamp int64           `json:"ts"`
	Modality  motion.Modality `json:"modality,omitempty"`
	Address   string          `json:"address,omitempty"`
	Values    []float32       `json:"values,omitempty"`
	State     string          `json:"state,omitempty"`
}

// Message is a pre-encoded event plus the session it belongs to
type Message struct {
	SessionID string
	Data      []byte
}

// NewMessage encodes an event, stamping it with the current time if unset
func NewMessage(ev Event) (Message, error) {
	if ev.Timestamp == 0 {
		ev.Timestamp = time.Now().UnixMilli()
	}
	data, err := json.Marshal(ev)
	if err != nil {
		return Message{}, err
	}
	return Message{SessionID: ev.SessionID, Data: data}, nil
}
