package server

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"portalhub/internal/notification"
)

func TestStoreCapsAtMostRecent(t *testing.T) {
	store := NewStore()
	base := time.UnixMilli(1_000_000)

	for i := 0; i < MaxStored+1; i++ {
		store.Add(notification.New(
			fmt.Sprintf("n-%d", i),
			notification.TypeServiceAnnouncement,
			"", "m",
			time.Hour,
			notification.PriorityNormal,
			base.Add(time.Duration(i)*time.Second),
		))
	}

	require.Equal(t, MaxStored, store.Len())

	active := store.Active()
	require.Len(t, active, MaxStored)
	assert.Equal(t, "n-1", active[0].ID, "oldest entry should have been evicted")
	assert.Equal(t, fmt.Sprintf("n-%d", MaxStored), active[len(active)-1].ID)
}

func TestStoreActiveExcludesExpired(t *testing.T) {
	store := NewStore()
	base := time.UnixMilli(1_000_000)
	store.now = func() time.Time { return base.Add(2 * time.Minute) }

	store.Add(notification.New("expired", "", "", "m", time.Minute, "", base))
	store.Add(notification.New("live", "", "", "m", time.Hour, "", base))

	active := store.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "live", active[0].ID)
	assert.Equal(t, 2, store.Len(), "Active must not mutate the store")
}

func TestStoreActivePreservesInsertionOrder(t *testing.T) {
	store := NewStore()
	base := time.UnixMilli(1_000_000)

	// Later insertion with an earlier timestamp still comes second.
	store.Add(notification.New("first", "", "", "m", time.Hour, "", base.Add(time.Minute)))
	store.Add(notification.New("second", "", "", "m", time.Hour, "", base))

	active := store.Active()
	require.Len(t, active, 2)
	assert.Equal(t, "first", active[0].ID)
	assert.Equal(t, "second", active[1].ID)
}

func TestStoreSweep(t *testing.T) {
	store := NewStore()
	base := time.UnixMilli(1_000_000)
	store.now = func() time.Time { return base.Add(30 * time.Minute) }

	store.Add(notification.New("a", "", "", "m", time.Minute, "", base))
	store.Add(notification.New("b", "", "", "m", time.Hour, "", base))
	store.Add(notification.New("c", "", "", "m", 5*time.Minute, "", base))

	dropped := store.Sweep()
	assert.Equal(t, 2, dropped)
	assert.Equal(t, 1, store.Len())

	active := store.Active()
	require.Len(t, active, 1)
	assert.Equal(t, "b", active[0].ID)
}
