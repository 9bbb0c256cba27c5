package notification

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Type identifies what kind of event a notification describes.
// Unknown values are carried through and rendered generically.
type Type string

const (
	TypeMaintenanceAlert     Type = "maintenance_alert"
	TypeMaintenanceCompleted Type = "maintenance_completed"
	TypeServiceAnnouncement  Type = "service_announcement"
	TypeConnectionRestored   Type = "connection_restored"
	TypeConnectionLost       Type = "connection_lost"
	TypeSlowConnection       Type = "slow_connection"
)

// Priority affects visual emphasis and device-push flags, never delivery order.
type Priority string

const (
	PriorityNormal Priority = "normal"
	PriorityHigh   Priority = "high"
	PriorityUrgent Priority = "urgent"
)

// DefaultDuration is the time-to-live applied when the sender gives none.
const DefaultDuration = 5 * time.Minute

// Notification is an immutable broadcast record. Lifecycle state is always
// derived from the timestamp and duration, never stored as a flag.
type Notification struct {
	ID              string   `json:"id"`
	Type            Type     `json:"notificationType"`
	Title           string   `json:"title"`
	Message         string   `json:"message"`
	Duration        int64    `json:"duration"`        // time-to-live in milliseconds
	DisplayDuration int      `json:"displayDuration"` // same budget expressed in minutes
	Priority        Priority `json:"priority"`
	Timestamp       int64    `json:"timestamp"` // creation instant, epoch milliseconds
	Sender          string   `json:"sender"`
}

// New builds a notification with server-side defaults applied: a generated id
// when the sender supplied none, the default type/priority/duration, and the
// creation timestamp.
func New(id string, typ Type, title, message string, duration time.Duration, priority Priority, now time.Time) Notification {
	if typ == "" {
		typ = TypeServiceAnnouncement
	}
	if priority == "" {
		priority = PriorityNormal
	}
	if duration <= 0 {
		duration = DefaultDuration
	}
	if id == "" {
		id = fmt.Sprintf("%d_%s", now.UnixMilli(), uuid.NewString()[:8])
	}
	return Notification{
		ID:              id,
		Type:            typ,
		Title:           title,
		Message:         message,
		Duration:        duration.Milliseconds(),
		DisplayDuration: int((duration + time.Minute - 1) / time.Minute),
		Priority:        priority,
		Timestamp:       now.UnixMilli(),
		Sender:          "admin",
	}
}

// CreatedAt returns the creation instant.
func (n Notification) CreatedAt() time.Time {
	return time.UnixMilli(n.Timestamp)
}

// ExpiresAt returns the instant the notification stops being active.
func (n Notification) ExpiresAt() time.Time {
	return time.UnixMilli(n.Timestamp + n.Duration)
}

// ActiveAt reports whether the notification has not yet expired.
func (n Notification) ActiveAt(now time.Time) bool {
	return n.ExpiresAt().After(now)
}

// Remaining returns the time left before expiry, floored at zero.
func (n Notification) Remaining(now time.Time) time.Duration {
	r := n.ExpiresAt().Sub(now)
	if r < 0 {
		return 0
	}
	return r
}

// IdentityKey is the deduplication key: the explicit id, or type+timestamp
// when the sender supplied none.
func (n Notification) IdentityKey() string {
	if n.ID != "" {
		return n.ID
	}
	return fmt.Sprintf("%s_%d", n.Type, n.Timestamp)
}

// ToJSON marshals the notification.
func (n Notification) ToJSON() ([]byte, error) {
	return json.Marshal(n)
}
