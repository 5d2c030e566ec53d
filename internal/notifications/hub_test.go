package notifications

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHub_RegisterAndUnregister(t *testing.T) {
	hub := NewHub()

	clientA, err := hub.Register(10, nil)
	require.NoError(t, err)
	clientB, err := hub.Register(10, nil)
	require.NoError(t, err)
	assert.True(t, hub.IsOnline(10))

	hub.UnregisterClient(clientA)
	assert.True(t, hub.IsOnline(10))

	hub.UnregisterClient(clientB)
	assert.False(t, hub.IsOnline(10))

	// Double unregister is a no-op.
	hub.UnregisterClient(clientB)
	assert.False(t, hub.IsOnline(10))
}

func TestHub_PerUserConnectionLimit(t *testing.T) {
	hub := NewHub()

	for i := 0; i < maxConnsPerUser; i++ {
		_, err := hub.Register(7, nil)
		require.NoError(t, err)
	}
	_, err := hub.Register(7, nil)
	assert.Error(t, err)

	// Another user is unaffected.
	_, err = hub.Register(8, nil)
	assert.NoError(t, err)
}

func TestHub_CircleSubscriptions(t *testing.T) {
	hub := NewHub()

	// Not connected, join is ignored.
	hub.JoinCircle(5, 3)
	assert.False(t, hub.IsSubscribed(5, 3))

	client, err := hub.Register(5, nil)
	require.NoError(t, err)
	hub.JoinCircle(5, 3)
	assert.True(t, hub.IsSubscribed(5, 3))

	hub.LeaveCircle(5, 3)
	assert.False(t, hub.IsSubscribed(5, 3))

	// Last disconnect drops subscriptions.
	hub.JoinCircle(5, 3)
	hub.UnregisterClient(client)
	assert.False(t, hub.IsSubscribed(5, 3))
}

func TestHub_BroadcastCircle(t *testing.T) {
	hub := NewHub()

	member, err := hub.Register(1, nil)
	require.NoError(t, err)
	outsider, err := hub.Register(2, nil)
	require.NoError(t, err)
	hub.JoinCircle(1, 3)

	hub.BroadcastCircle(3, `{"id":1}`)

	select {
	case msg := <-member.Send:
		assert.Equal(t, `{"id":1}`, string(msg))
	default:
		t.Fatal("expected subscribed member to receive the message")
	}

	select {
	case <-outsider.Send:
		t.Fatal("unsubscribed user must not receive circle messages")
	default:
	}
}

func TestHub_BroadcastToUserConnections(t *testing.T) {
	hub := NewHub()

	clientA, err := hub.Register(4, nil)
	require.NoError(t, err)
	clientB, err := hub.Register(4, nil)
	require.NoError(t, err)

	hub.Broadcast(4, "ping")

	for _, c := range []*Client{clientA, clientB} {
		select {
		case msg := <-c.Send:
			assert.Equal(t, "ping", string(msg))
		default:
			t.Fatal("expected every connection of the user to receive the message")
		}
	}
}

func TestHub_ShutdownClearsState(t *testing.T) {
	hub := NewHub()
	_, err := hub.Register(9, nil)
	require.NoError(t, err)
	hub.JoinCircle(9, 2)

	require.NoError(t, hub.Shutdown(context.Background()))
	assert.False(t, hub.IsOnline(9))
	assert.False(t, hub.IsSubscribed(9, 2))
}
