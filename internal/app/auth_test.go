package app

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New(Config{
		DBPath:    ":memory:",
		JWTSecret: []byte("0123456789abcdef0123456789abcdef"),
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })
	return a
}

func TestTokenRoundTrip(t *testing.T) {
	a := newTestApp(t)

	tok, err := a.IssueToken(42, RoleUser)
	require.NoError(t, err)

	uid, err := a.VerifyToken(tok)
	require.NoError(t, err)
	assert.Equal(t, int64(42), uid)
}

func TestVerifyTokenRejectsGarbage(t *testing.T) {
	a := newTestApp(t)

	_, err := a.VerifyToken("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestVerifyTokenRejectsWrongKey(t *testing.T) {
	a := newTestApp(t)
	b := newTestApp(t)
	b.cfg.JWTSecret = []byte("ffffffffffffffffffffffffffffffff")

	tok, err := a.IssueToken(7, RoleUser)
	require.NoError(t, err)

	_, err = b.VerifyToken(tok)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestHashPasswordMinimumLength(t *testing.T) {
	_, err := HashPassword("short")
	assert.Error(t, err)

	h, err := HashPassword("long enough pw")
	require.NoError(t, err)
	assert.True(t, CheckPassword(h, "long enough pw"))
	assert.False(t, CheckPassword(h, "wrong"))
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "user@bar.test", NormalizeEmail("  USER@Bar.Test "))
}

func TestEventHubTopicsAreIsolated(t *testing.T) {
	h := NewEventHub(nil)

	orders, cancelOrders := h.Subscribe([]string{TopicOrders()}, 4)
	defer cancelOrders()
	inv, cancelInv := h.Subscribe([]string{TopicInventory()}, 4)
	defer cancelInv()

	h.BroadcastOrders(Event{Type: "order:created"})

	select {
	case ev := <-orders:
		assert.Equal(t, "order:created", ev.Type)
	case <-time.After(time.Second):
		t.Fatal("orders subscriber never received the event")
	}

	select {
	case ev := <-inv:
		t.Fatalf("inventory subscriber received %q", ev.Type)
	default:
	}
}

func TestEventHubCancelStopsDelivery(t *testing.T) {
	h := NewEventHub(nil)

	ch, cancel := h.Subscribe([]string{TopicInventory()}, 1)
	cancel()

	h.BroadcastInventory(Event{Type: "inventory:changed"})

	_, open := <-ch
	assert.False(t, open, "cancel closes the channel")
}

func TestEventHubDropsWhenSubscriberIsFull(t *testing.T) {
	h := NewEventHub(nil)

	ch, cancel := h.Subscribe([]string{TopicOrders()}, 1)
	defer cancel()

	// second send must not block even though nobody is reading
	h.BroadcastOrders(Event{Type: "first"})
	h.BroadcastOrders(Event{Type: "second"})

	ev := <-ch
	assert.Equal(t, "first", ev.Type)
	select {
	case ev := <-ch:
		t.Fatalf("unexpected buffered event %q", ev.Type)
	default:
	}
}

func TestEventHubCancelDuringBroadcast(t *testing.T) {
	h := NewEventHub(nil)

	// Hammer broadcast against subscribe/cancel churn on the same topic.
	// Closing a channel a concurrent broadcast still sends on would panic.
	stop := make(chan struct{})
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case <-stop:
				return
			default:
				h.BroadcastOrders(Event{Type: "tick"})
			}
		}
	}()

	for i := 0; i < 500; i++ {
		_, cancel := h.Subscribe([]string{TopicOrders()}, 1)
		cancel()
	}

	close(stop)
	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("broadcaster did not stop")
	}
}
