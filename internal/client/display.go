package client

import (
	"time"

	"portalhub/internal/notification"
)

// Source tags where a delivery came from.
type Source string

const (
	SourceStream    Source = "stream"
	SourceBroadcast Source = "broadcast"
	SourceFeed      Source = "feed"
	SourceRestore   Source = "restore"
)

// View is everything a renderer needs for one visible notification.
type View struct {
	Key       string
	Icon      string
	Title     string // per-type default already substituted
	Message   string
	Priority  notification.Priority
	Remaining time.Duration
	Emphasis  time.Duration // cosmetic pulse window after display, zero for none
	Restored  bool
	Source    Source
	ShownAt   time.Time
}

// Display renders notifications. Implementations must tolerate Dismiss and
// Remove for keys they no longer hold.
type Display interface {
	Show(v View)
	// Dismiss starts the exit transition for key.
	Dismiss(key string)
	// Remove drops key after the exit transition.
	Remove(key string)
}

// PriorityEmphasis returns the cosmetic emphasis window for a priority.
// Zero means no emphasis. Emphasis never changes timing or state.
func PriorityEmphasis(p notification.Priority) time.Duration {
	switch p {
	case notification.PriorityUrgent:
		return 1500 * time.Millisecond
	case notification.PriorityHigh:
		return 2 * time.Second
	default:
		return 0
	}
}

// DeviceNote is a device-level (OS) notification for the fallback channel.
type DeviceNote struct {
	Tag                string
	Icon               string
	Title              string
	Body               string
	Vibration          []int
	Dir                string
	RequireInteraction bool
	// CloseAfter mirrors the in-page copy's remaining time.
	CloseAfter time.Duration
}

// DeviceNotifier delivers device-level notifications when the page is
// hidden or the device is touch-classified. Additive to the in-page copy,
// never a substitute for its dedup bookkeeping.
type DeviceNotifier interface {
	Notify(note DeviceNote) error
}

// NewDeviceNote builds the fallback note for a notification with the given
// remaining display time.
func NewDeviceNote(n notification.Notification, remaining time.Duration) DeviceNote {
	meta := notification.MetaFor(n.Type)
	return DeviceNote{
		Tag:                n.IdentityKey(),
		Icon:               meta.Icon,
		Title:              n.DisplayTitle(),
		Body:               n.Message,
		Vibration:          notification.VibrationPattern(n.Priority),
		Dir:                "rtl",
		RequireInteraction: n.RequireInteraction(),
		CloseAfter:         remaining,
	}
}
