package push

import (
	"testing"

	webpush "github.com/SherClockHolmes/webpush-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSubscribeGeneratesClientID(t *testing.T) {
	r := NewRegistry()

	id, err := r.Subscribe("", webpush.Subscription{Endpoint: "https://push.example.com/a"})
	require.NoError(t, err)
	assert.Contains(t, id, "client_")
	assert.Equal(t, 1, r.Count())
}

func TestSubscribeKeepsSuppliedClientID(t *testing.T) {
	r := NewRegistry()

	id, err := r.Subscribe("client_7", webpush.Subscription{Endpoint: "https://push.example.com/a"})
	require.NoError(t, err)
	assert.Equal(t, "client_7", id)
}

func TestSubscribeRejectsMissingEndpoint(t *testing.T) {
	r := NewRegistry()

	_, err := r.Subscribe("client_7", webpush.Subscription{})
	assert.ErrorIs(t, err, ErrInvalidSubscription)
	assert.Equal(t, 0, r.Count())
}

func TestResubscribeOverwrites(t *testing.T) {
	r := NewRegistry()

	_, err := r.Subscribe("client_7", webpush.Subscription{Endpoint: "https://push.example.com/old"})
	require.NoError(t, err)
	_, err = r.Subscribe("client_7", webpush.Subscription{Endpoint: "https://push.example.com/new"})
	require.NoError(t, err)

	require.Equal(t, 1, r.Count())
	clients := r.Snapshot()
	require.Len(t, clients, 1)
	assert.Equal(t, "https://push.example.com/new", clients[0].Subscription.Endpoint)
}

func TestRemove(t *testing.T) {
	r := NewRegistry()

	id, err := r.Subscribe("", webpush.Subscription{Endpoint: "https://push.example.com/a"})
	require.NoError(t, err)

	r.Remove(id)
	r.Remove(id)
	assert.Equal(t, 0, r.Count())
	assert.Empty(t, r.Snapshot())
}
