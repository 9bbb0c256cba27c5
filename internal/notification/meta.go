package notification

// Display metadata per notification type. Unknown types fall through to a
// generic entry so future server-side types still render.

type Meta struct {
	Icon         string
	DefaultTitle string
}

var metaByType = map[Type]Meta{
	TypeMaintenanceAlert:     {Icon: "🔧", DefaultTitle: "System Maintenance"},
	TypeMaintenanceCompleted: {Icon: "✅", DefaultTitle: "Maintenance Completed"},
	TypeServiceAnnouncement:  {Icon: "📢", DefaultTitle: "Service Announcement"},
	TypeConnectionRestored:   {Icon: "✅", DefaultTitle: "Connection Restored"},
	TypeConnectionLost:       {Icon: "⚠️", DefaultTitle: "Connection Lost"},
	TypeSlowConnection:       {Icon: "🐌", DefaultTitle: "Slow Connection"},
}

var genericMeta = Meta{Icon: "🔔", DefaultTitle: "Notification"}

// MetaFor returns the display metadata for a type, falling back to the
// generic entry for unknown types.
func MetaFor(t Type) Meta {
	if m, ok := metaByType[t]; ok {
		return m
	}
	return genericMeta
}

// DisplayTitle returns the notification title, substituting the per-type
// default when the sender left it empty.
func (n Notification) DisplayTitle() string {
	if n.Title != "" {
		return n.Title
	}
	return MetaFor(n.Type).DefaultTitle
}

// VibrationPattern returns the device vibration pattern for a priority,
// in milliseconds of alternating vibrate/pause.
func VibrationPattern(p Priority) []int {
	switch p {
	case PriorityUrgent:
		return []int{200, 100, 200, 100, 200, 100, 200}
	case PriorityHigh:
		return []int{100, 50, 100, 50, 100}
	default:
		return []int{100, 50, 100}
	}
}

// RequireInteraction reports whether a device-level notification should stay
// on screen until acknowledged.
func (n Notification) RequireInteraction() bool {
	return n.Priority == PriorityUrgent || n.Type == TypeMaintenanceAlert
}
