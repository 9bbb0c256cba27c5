package notification

import (
	"encoding/json"
	"log/slog"
	"time"
)

// Message protocol for the notification stream.

type EnvelopeType string

const (
	EnvelopeConnected    EnvelopeType = "connected"    // welcome after register
	EnvelopeNotification EnvelopeType = "notification" // new broadcast
	EnvelopeHeartbeat    EnvelopeType = "heartbeat"    // periodic liveness
)

// Envelope is one typed stream message.
type Envelope struct {
	Type      EnvelopeType  `json:"type"`
	Data      *Notification `json:"data,omitempty"`
	Message   string        `json:"message,omitempty"`
	Timestamp int64         `json:"timestamp"`
}

// NewConnectedEnvelope builds the welcome message sent on register.
func NewConnectedEnvelope(now time.Time) *Envelope {
	return &Envelope{
		Type:      EnvelopeConnected,
		Message:   "connected to notification service",
		Timestamp: now.UnixMilli(),
	}
}

// NewNotificationEnvelope wraps a notification for fan-out.
func NewNotificationEnvelope(n Notification) *Envelope {
	return &Envelope{
		Type:      EnvelopeNotification,
		Data:      &n,
		Timestamp: n.Timestamp,
	}
}

// NewHeartbeatEnvelope builds a periodic liveness message.
func NewHeartbeatEnvelope(now time.Time) *Envelope {
	return &Envelope{
		Type:      EnvelopeHeartbeat,
		Timestamp: now.UnixMilli(),
	}
}

// ToJSON marshals the envelope.
func (e *Envelope) ToJSON() ([]byte, error) {
	data, err := json.Marshal(e)
	if err != nil {
		slog.Error("failed to marshal stream envelope", "error", err)
		return nil, err
	}
	return data, nil
}

// EnvelopeFromJSON unmarshals one stream message.
func EnvelopeFromJSON(data []byte) (*Envelope, error) {
	var e Envelope
	if err := json.Unmarshal(data, &e); err != nil {
		return nil, err
	}
	return &e, nil
}
