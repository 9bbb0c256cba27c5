package notification

import (
	"encoding/json"
	"strings"
	"testing"
	"time"
)

func TestNewAppliesDefaults(t *testing.T) {
	now := time.UnixMilli(1_700_000_000_000)
	n := New("", "", "", "all good", 0, "", now)

	if n.Type != TypeServiceAnnouncement {
		t.Errorf("Expected default type %s, got %s", TypeServiceAnnouncement, n.Type)
	}
	if n.Priority != PriorityNormal {
		t.Errorf("Expected default priority %s, got %s", PriorityNormal, n.Priority)
	}
	if n.Duration != DefaultDuration.Milliseconds() {
		t.Errorf("Expected default duration %d, got %d", DefaultDuration.Milliseconds(), n.Duration)
	}
	if n.DisplayDuration != 5 {
		t.Errorf("Expected display duration 5 minutes, got %d", n.DisplayDuration)
	}
	if n.ID == "" {
		t.Error("Expected a generated id")
	}
	if n.Sender != "admin" {
		t.Errorf("Expected sender admin, got %s", n.Sender)
	}
	if n.Timestamp != now.UnixMilli() {
		t.Errorf("Expected timestamp %d, got %d", now.UnixMilli(), n.Timestamp)
	}
}

func TestNewKeepsSuppliedID(t *testing.T) {
	n := New("custom-id", TypeConnectionLost, "t", "m", time.Minute, PriorityHigh, time.Now())
	if n.ID != "custom-id" {
		t.Errorf("Expected supplied id kept, got %s", n.ID)
	}
	if n.DisplayDuration != 1 {
		t.Errorf("Expected 1 minute display duration, got %d", n.DisplayDuration)
	}
}

func TestIdentityKey(t *testing.T) {
	tests := []struct {
		name string
		n    Notification
		want string
	}{
		{
			name: "explicit id",
			n:    Notification{ID: "abc", Type: TypeSlowConnection, Timestamp: 42},
			want: "abc",
		},
		{
			name: "type plus timestamp fallback",
			n:    Notification{Type: TypeSlowConnection, Timestamp: 42},
			want: "slow_connection_42",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.n.IdentityKey(); got != tt.want {
				t.Errorf("IdentityKey() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActiveAtAndRemaining(t *testing.T) {
	created := time.UnixMilli(1_000_000)
	n := Notification{Timestamp: created.UnixMilli(), Duration: 60_000}

	if !n.ActiveAt(created.Add(59 * time.Second)) {
		t.Error("Expected active one second before expiry")
	}
	if n.ActiveAt(created.Add(60 * time.Second)) {
		t.Error("Expected inactive at the expiry instant")
	}
	if got := n.Remaining(created.Add(45 * time.Second)); got != 15*time.Second {
		t.Errorf("Remaining = %v, want 15s", got)
	}
	if got := n.Remaining(created.Add(2 * time.Minute)); got != 0 {
		t.Errorf("Remaining after expiry = %v, want 0", got)
	}
}

func TestMetaForUnknownType(t *testing.T) {
	m := MetaFor(Type("future_feature"))
	if m.Icon != "🔔" || m.DefaultTitle != "Notification" {
		t.Errorf("Expected generic fallback meta, got %+v", m)
	}
}

func TestDisplayTitle(t *testing.T) {
	withTitle := Notification{Type: TypeMaintenanceAlert, Title: "Custom"}
	if withTitle.DisplayTitle() != "Custom" {
		t.Errorf("Expected explicit title kept, got %q", withTitle.DisplayTitle())
	}
	empty := Notification{Type: TypeMaintenanceAlert}
	if empty.DisplayTitle() != "System Maintenance" {
		t.Errorf("Expected per-type default, got %q", empty.DisplayTitle())
	}
}

func TestVibrationPattern(t *testing.T) {
	tests := []struct {
		priority Priority
		pulses   int
	}{
		{PriorityUrgent, 7},
		{PriorityHigh, 5},
		{PriorityNormal, 3},
		{Priority("unknown"), 3},
	}
	for _, tt := range tests {
		if got := len(VibrationPattern(tt.priority)); got != tt.pulses {
			t.Errorf("VibrationPattern(%s) has %d elements, want %d", tt.priority, got, tt.pulses)
		}
	}
}

func TestRequireInteraction(t *testing.T) {
	urgent := Notification{Type: TypeServiceAnnouncement, Priority: PriorityUrgent}
	if !urgent.RequireInteraction() {
		t.Error("Expected urgent to require interaction")
	}
	maint := Notification{Type: TypeMaintenanceAlert, Priority: PriorityNormal}
	if !maint.RequireInteraction() {
		t.Error("Expected maintenance_alert to require interaction")
	}
	normal := Notification{Type: TypeServiceAnnouncement, Priority: PriorityNormal}
	if normal.RequireInteraction() {
		t.Error("Expected normal announcement not to require interaction")
	}
}

func TestNotificationWireFormat(t *testing.T) {
	n := New("id1", TypeMaintenanceAlert, "t", "m", time.Minute, PriorityUrgent, time.UnixMilli(7))
	data, err := n.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	for _, field := range []string{`"notificationType"`, `"duration"`, `"displayDuration"`, `"timestamp"`, `"sender"`} {
		if !strings.Contains(string(data), field) {
			t.Errorf("Wire format missing field %s: %s", field, data)
		}
	}
}

func TestEnvelopeRoundTrip(t *testing.T) {
	n := New("id2", TypeConnectionRestored, "", "back up", time.Minute, PriorityNormal, time.UnixMilli(99))
	env := NewNotificationEnvelope(n)

	data, err := env.ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}

	parsed, err := EnvelopeFromJSON(data)
	if err != nil {
		t.Fatalf("EnvelopeFromJSON failed: %v", err)
	}
	if parsed.Type != EnvelopeNotification {
		t.Errorf("Type = %s, want %s", parsed.Type, EnvelopeNotification)
	}
	if parsed.Data == nil || parsed.Data.ID != "id2" {
		t.Errorf("Data not preserved: %+v", parsed.Data)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal raw: %v", err)
	}
	if raw["type"] != "notification" {
		t.Errorf("wire type = %v, want notification", raw["type"])
	}
}

func TestHeartbeatEnvelopeHasNoData(t *testing.T) {
	data, err := NewHeartbeatEnvelope(time.UnixMilli(5)).ToJSON()
	if err != nil {
		t.Fatalf("ToJSON failed: %v", err)
	}
	if strings.Contains(string(data), `"data"`) {
		t.Errorf("heartbeat should omit data: %s", data)
	}
}
