package client

import (
	"log/slog"

	"portalhub/internal/notification"
)

// SavedEntry is one in-flight notification persisted across restarts.
type SavedEntry struct {
	ID            string                    `json:"id"`
	Data          notification.Notification `json:"data"`
	StartTime     int64                     `json:"startTime"`     // epoch ms
	Duration      int64                     `json:"duration"`      // countdown budget, ms
	RemainingTime int64                     `json:"remainingTime"` // ms at save instant
}

// SnapshotStore persists the set of still-live display entries.
type SnapshotStore struct {
	storage Storage
}

func NewSnapshotStore(storage Storage) *SnapshotStore {
	return &SnapshotStore{storage: storage}
}

// Save overwrites the snapshot with the given entries.
func (s *SnapshotStore) Save(entries []SavedEntry) {
	if err := s.storage.Set(KeySnapshot, entries); err != nil {
		slog.Warn("failed to save notification snapshot", "error", err)
	}
}

// Consume reads the snapshot once and clears it. A corrupt record is
// discarded, not an error.
func (s *SnapshotStore) Consume() []SavedEntry {
	var entries []SavedEntry
	ok, err := s.storage.Get(KeySnapshot, &entries)
	if err != nil {
		slog.Warn("discarding corrupt notification snapshot", "error", err)
	}
	_ = s.storage.Delete(KeySnapshot)
	if !ok || err != nil {
		return nil
	}
	return entries
}
