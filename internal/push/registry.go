package push

import (
	"errors"
	"fmt"
	"sync"
	"time"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/google/uuid"
)

// ErrInvalidSubscription is returned for a subscription without an endpoint.
var ErrInvalidSubscription = errors.New("invalid push subscription")

// Client is one registered device-push subscription.
type Client struct {
	ClientID     string
	Subscription webpush.Subscription
	RegisteredAt time.Time
}

// Registry tracks device-push subscriptions keyed by client id.
type Registry struct {
	mu      sync.RWMutex
	clients map[string]*Client
	now     func() time.Time
}

// NewRegistry creates an empty subscription registry.
func NewRegistry() *Registry {
	return &Registry{
		clients: make(map[string]*Client),
		now:     time.Now,
	}
}

// Subscribe stores a subscription under clientID, generating an id when none
// is supplied. Re-registering an existing clientID overwrites the previous
// subscription: last write wins, so a device that re-subscribes (permission
// re-grant, new tab) is never delivered to twice.
func (r *Registry) Subscribe(clientID string, sub webpush.Subscription) (string, error) {
	if sub.Endpoint == "" {
		return "", ErrInvalidSubscription
	}
	if clientID == "" {
		clientID = fmt.Sprintf("client_%s", uuid.NewString())
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[clientID] = &Client{
		ClientID:     clientID,
		Subscription: sub,
		RegisteredAt: r.now(),
	}
	return clientID, nil
}

// Remove drops a subscription.
func (r *Registry) Remove(clientID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.clients, clientID)
}

// Count returns the number of registered subscriptions.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.clients)
}

// Snapshot returns a copy of the registered clients, safe to iterate while
// removals happen concurrently.
func (r *Registry) Snapshot() []*Client {
	r.mu.RLock()
	defer r.mu.RUnlock()

	clients := make([]*Client, 0, len(r.clients))
	for _, c := range r.clients {
		clients = append(clients, c)
	}
	return clients
}
