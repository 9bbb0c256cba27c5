package push

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"

	"portalhub/internal/notification"
)

// Payload is the message handed to the device's service worker. Field names
// follow the Web Notification options the worker passes through.
type Payload struct {
	Title              string      `json:"title"`
	Body               string      `json:"body"`
	Tag                string      `json:"tag"`
	RequireInteraction bool        `json:"requireInteraction"`
	Dir                string      `json:"dir"`
	Vibrate            []int       `json:"vibrate"`
	Data               PayloadData `json:"data"`
}

// PayloadData rides along for the worker's click handler.
type PayloadData struct {
	NotificationType notification.Type `json:"notificationType"`
	Timestamp        int64             `json:"timestamp"`
	URL              string            `json:"url"`
}

// NewPayload builds the push payload for a notification, substituting the
// per-type default title and priority vibration pattern.
func NewPayload(n notification.Notification) Payload {
	meta := notification.MetaFor(n.Type)
	return Payload{
		Title:              meta.Icon + " " + n.DisplayTitle(),
		Body:               n.Message,
		Tag:                string(n.Type) + "_" + itoa(n.Timestamp),
		RequireInteraction: n.RequireInteraction(),
		Dir:                "rtl",
		Vibrate:            notification.VibrationPattern(n.Priority),
		Data: PayloadData{
			NotificationType: n.Type,
			Timestamp:        n.Timestamp,
			URL:              "/login.html",
		},
	}
}

func itoa(v int64) string {
	return time.UnixMilli(v).UTC().Format("20060102150405.000")
}

// Sender delivers payloads to every registered subscription with VAPID
// authentication.
type Sender struct {
	registry   *Registry
	subscriber string
	publicKey  string
	privateKey string
	ttl        int
}

// NewSender creates a sender for the given VAPID identity.
func NewSender(registry *Registry, subscriber, publicKey, privateKey string) *Sender {
	return &Sender{
		registry:   registry,
		subscriber: subscriber,
		publicKey:  publicKey,
		privateKey: privateKey,
		ttl:        30,
	}
}

// PublicKey returns the VAPID public key clients subscribe with.
func (s *Sender) PublicKey() string {
	return s.publicKey
}

// SendAll pushes payload to every registered subscription concurrently and
// returns how many deliveries succeeded. Subscriptions the push service
// reports gone (410/404) or oversized (413) are pruned; other failures are
// logged and left alone. One failed delivery never aborts the rest.
func (s *Sender) SendAll(ctx context.Context, payload Payload) int {
	body, err := json.Marshal(payload)
	if err != nil {
		slog.Error("failed to marshal push payload", "error", err)
		return 0
	}

	clients := s.registry.Snapshot()
	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		sent int
	)

	for _, c := range clients {
		wg.Add(1)
		go func(c *Client) {
			defer wg.Done()
			if err := s.sendTo(ctx, c, body); err != nil {
				slog.Warn("push delivery failed", "client_id", c.ClientID, "error", err)
				return
			}
			mu.Lock()
			sent++
			mu.Unlock()
		}(c)
	}

	wg.Wait()
	slog.Info("push notifications sent", "sent", sent, "total", len(clients))
	return sent
}

func (s *Sender) sendTo(ctx context.Context, c *Client, body []byte) error {
	resp, err := webpush.SendNotificationWithContext(ctx, body, &c.Subscription, &webpush.Options{
		Subscriber:      s.subscriber,
		VAPIDPublicKey:  s.publicKey,
		VAPIDPrivateKey: s.privateKey,
		TTL:             s.ttl,
	})
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusGone, http.StatusNotFound, http.StatusRequestEntityTooLarge:
		slog.Info("pruning expired push subscription", "client_id", c.ClientID, "status", resp.StatusCode)
		s.registry.Remove(c.ClientID)
		return errSubscriptionGone
	}
	if resp.StatusCode >= 400 {
		return errDeliveryStatus(resp.StatusCode)
	}
	return nil
}
