package server

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"portalhub/internal/notification"
)

// MaxStored caps the store at the most recently created notifications,
// oldest evicted first regardless of expiry.
const MaxStored = 10

// SweepInterval is how often expired entries are purged.
const SweepInterval = 5 * time.Minute

// Store holds recent notifications in insertion order. Notifications are
// never mutated after Add; active/expired is derived from the clock.
type Store struct {
	mu    sync.RWMutex
	items []notification.Notification
	now   func() time.Time
}

// NewStore creates an empty notification store.
func NewStore() *Store {
	return &Store{now: time.Now}
}

// Add appends a notification and trims the store to the MaxStored most
// recent entries.
func (s *Store) Add(n notification.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.items = append(s.items, n)
	if len(s.items) > MaxStored {
		s.items = s.items[len(s.items)-MaxStored:]
	}
}

// Active returns the stored notifications whose expiry has not passed,
// preserving insertion order. Pure query, no side effects.
func (s *Store) Active() []notification.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now()
	active := make([]notification.Notification, 0, len(s.items))
	for _, n := range s.items {
		if n.ActiveAt(now) {
			active = append(active, n)
		}
	}
	return active
}

// Len returns the number of stored entries, expired ones included.
func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Sweep removes expired entries and returns how many were dropped.
func (s *Store) Sweep() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	kept := s.items[:0]
	for _, n := range s.items {
		if n.ActiveAt(now) {
			kept = append(kept, n)
		}
	}
	dropped := len(s.items) - len(kept)
	s.items = kept
	return dropped
}

// RunSweeper purges expired notifications on a fixed interval until the
// context is cancelled.
func (s *Store) RunSweeper(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if dropped := s.Sweep(); dropped > 0 {
				slog.Info("cleaned up expired notifications", "dropped", dropped)
			}
		case <-ctx.Done():
			return
		}
	}
}
