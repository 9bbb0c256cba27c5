package client

import (
	"log/slog"
	"time"

	"portalhub/internal/notification"
)

// feedEntry is one notification in the shared server-notifications record,
// stored with its precomputed expiry.
type feedEntry struct {
	Notification notification.Notification `json:"notification"`
	ExpiresAt    int64                     `json:"expiresAt"` // epoch ms
}

// FeedStore holds the record of server notifications this device knows
// about. The stream path writes into it; the periodic feed check queries it
// so a controller that missed the broadcast still discovers active entries.
// It is a query surface over already-known data, not a delivery channel.
type FeedStore struct {
	storage Storage
}

func NewFeedStore(storage Storage) *FeedStore {
	return &FeedStore{storage: storage}
}

// Record upserts a notification by id and prunes expired entries.
func (f *FeedStore) Record(n notification.Notification, now time.Time) {
	entries := f.load()
	kept := entries[:0]
	for _, e := range entries {
		if e.Notification.ID == n.ID {
			continue
		}
		if e.ExpiresAt > now.UnixMilli() {
			kept = append(kept, e)
		}
	}
	kept = append(kept, feedEntry{Notification: n, ExpiresAt: n.ExpiresAt().UnixMilli()})

	if err := f.storage.Set(KeyFeed, kept); err != nil {
		slog.Warn("failed to persist server notifications record", "error", err)
	}
}

// Active returns the recorded notifications whose expiry is still ahead.
func (f *FeedStore) Active(now time.Time) []notification.Notification {
	var active []notification.Notification
	for _, e := range f.load() {
		if e.ExpiresAt > now.UnixMilli() {
			active = append(active, e.Notification)
		}
	}
	return active
}

func (f *FeedStore) load() []feedEntry {
	var entries []feedEntry
	if _, err := f.storage.Get(KeyFeed, &entries); err != nil {
		slog.Warn("discarding corrupt server notifications record", "error", err)
		return nil
	}
	return entries
}
