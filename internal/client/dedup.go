package client

import (
	"log/slog"
	"time"
)

const (
	// MaxRecentKeys bounds the recently-shown set.
	MaxRecentKeys = 20

	// DedupWindow is how long a shown identity key suppresses re-display.
	DedupWindow = 5 * time.Minute
)

type recentEntry struct {
	Key     string `json:"key"`
	ShownAt int64  `json:"shownAt"` // epoch ms
}

// RecentSet is the bounded set of recently-shown identity keys. Entries
// self-expire after the dedup window and the set keeps only the last
// MaxRecentKeys. It is persisted so a reload cannot re-show a notification
// inside the window.
type RecentSet struct {
	storage Storage
	entries []recentEntry
}

// NewRecentSet loads the persisted set; a missing or corrupt record starts
// empty.
func NewRecentSet(storage Storage) *RecentSet {
	rs := &RecentSet{storage: storage}
	if _, err := storage.Get(KeyRecent, &rs.entries); err != nil {
		slog.Warn("discarding corrupt recent-notifications record", "error", err)
		rs.entries = nil
	}
	return rs
}

// Seen reports whether key was shown within the dedup window.
func (rs *RecentSet) Seen(key string, now time.Time) bool {
	cutoff := now.Add(-DedupWindow).UnixMilli()
	for _, e := range rs.entries {
		if e.Key == key && e.ShownAt > cutoff {
			return true
		}
	}
	return false
}

// Mark records key as shown, expiring old entries and trimming to the cap.
func (rs *RecentSet) Mark(key string, now time.Time) {
	cutoff := now.Add(-DedupWindow).UnixMilli()
	kept := rs.entries[:0]
	for _, e := range rs.entries {
		if e.ShownAt > cutoff {
			kept = append(kept, e)
		}
	}
	rs.entries = append(kept, recentEntry{Key: key, ShownAt: now.UnixMilli()})

	if len(rs.entries) > MaxRecentKeys {
		rs.entries = rs.entries[len(rs.entries)-MaxRecentKeys:]
	}
	if err := rs.storage.Set(KeyRecent, rs.entries); err != nil {
		slog.Warn("failed to persist recent notifications", "error", err)
	}
}

// Len returns the current number of tracked keys.
func (rs *RecentSet) Len() int {
	return len(rs.entries)
}
