package server

import (
	"crypto/subtle"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/gin-gonic/gin"

	"portalhub/internal/notification"
	"portalhub/internal/push"
)

// Handler wires the notification API onto gin.
type Handler struct {
	store      *Store
	hub        *Hub
	registry   *push.Registry
	sender     *push.Sender
	adminToken string
	startedAt  time.Time
	now        func() time.Time
}

// NewHandler creates the API handler.
func NewHandler(store *Store, hub *Hub, registry *push.Registry, sender *push.Sender, adminToken string) *Handler {
	return &Handler{
		store:      store,
		hub:        hub,
		registry:   registry,
		sender:     sender,
		adminToken: adminToken,
		startedAt:  time.Now(),
		now:        time.Now,
	}
}

// RegisterRoutes mounts the API routes on the group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup, sendLimiter gin.HandlerFunc) {
	notif := rg.Group("/notifications")
	if sendLimiter != nil {
		notif.POST("/send", sendLimiter, h.SendNotification)
	} else {
		notif.POST("/send", h.SendNotification)
	}
	notif.GET("/active", h.ActiveNotifications)

	rg.GET("/status", h.Status)

	p := rg.Group("/push")
	p.GET("/vapid-public-key", h.VapidPublicKey)
	p.POST("/subscribe", h.PushSubscribe)
	p.POST("/send", h.PushSend)
}

// SendRequest is the admin broadcast body. Duration is in milliseconds,
// DisplayDuration in minutes; duration wins when both are present.
type SendRequest struct {
	Token           string                `json:"token"`
	ID              string                `json:"id"`
	Type            notification.Type     `json:"notificationType"`
	Title           string                `json:"title"`
	Message         string                `json:"message"`
	Duration        int64                 `json:"duration"`
	DisplayDuration int                   `json:"displayDuration"`
	Priority        notification.Priority `json:"priority"`
}

func (r SendRequest) ttl() time.Duration {
	if r.Duration > 0 {
		return time.Duration(r.Duration) * time.Millisecond
	}
	if r.DisplayDuration > 0 {
		return time.Duration(r.DisplayDuration) * time.Minute
	}
	return notification.DefaultDuration
}

// SendNotification stores an admin notification and fans it out to every
// open stream. Malformed bodies are rejected before anything is stored.
func (h *Handler) SendNotification(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if !h.authorized(req.Token) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	n := notification.New(req.ID, req.Type, req.Title, req.Message, req.ttl(), req.Priority, h.now())
	h.store.Add(n)
	notified := h.hub.Broadcast(n)

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"notificationId":  n.ID,
		"clientsNotified": notified,
	})
}

// ActiveNotifications returns the stored notifications that have not expired.
func (h *Handler) ActiveNotifications(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"notifications": h.store.Active()})
}

// Status reports connection and store counters.
func (h *Handler) Status(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":              "running",
		"connectedClients":    h.hub.Count(),
		"activeNotifications": h.store.Len(),
		"uptime":              time.Since(h.startedAt).Seconds(),
		"timestamp":           h.now().UnixMilli(),
	})
}

// VapidPublicKey hands clients the key they need to create a push
// subscription.
func (h *Handler) VapidPublicKey(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"publicKey": h.sender.PublicKey()})
}

// SubscribeRequest registers a device-push subscription.
type SubscribeRequest struct {
	Subscription webpush.Subscription `json:"subscription"`
	ClientID     string               `json:"clientId"`
}

// PushSubscribe stores a push subscription keyed by client id.
func (h *Handler) PushSubscribe(c *gin.Context) {
	var req SubscribeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}

	clientID, err := h.registry.Subscribe(req.ClientID, req.Subscription)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid subscription data"})
		return
	}

	slog.Info("push subscription registered", "client_id", clientID, "total", h.registry.Count())
	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"clientId":        clientID,
		"totalSubscribed": h.registry.Count(),
	})
}

// PushSend delivers a device-level push to every stored subscription.
// Subscriptions the push service reports gone are pruned by the sender.
func (h *Handler) PushSend(c *gin.Context) {
	var req SendRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid JSON"})
		return
	}
	if !h.authorized(req.Token) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	n := notification.New(req.ID, req.Type, req.Title, req.Message, req.ttl(), req.Priority, h.now())
	sent := h.sender.SendAll(c.Request.Context(), push.NewPayload(n))

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"clientsNotified": sent,
	})
}

// Stream upgrades the request to a Server-Sent Events stream fed by the hub.
func (h *Handler) Stream(c *gin.Context) {
	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	flusher, ok := c.Writer.(http.Flusher)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "streaming unsupported"})
		return
	}

	conn := h.hub.Register()
	defer h.hub.Unregister(conn)

	c.Writer.WriteHeader(http.StatusOK)
	flusher.Flush()

	ctx := c.Request.Context()
	for {
		select {
		case msg, open := <-conn.Messages():
			if !open {
				return
			}
			if _, err := fmt.Fprintf(c.Writer, "data: %s\n\n", msg); err != nil {
				// write failure: client is gone, drop it
				return
			}
			flusher.Flush()
		case <-ctx.Done():
			return
		}
	}
}

func (h *Handler) authorized(token string) bool {
	return subtle.ConstantTimeCompare([]byte(token), []byte(h.adminToken)) == 1
}
