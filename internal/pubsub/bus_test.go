package pubsub

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func waitSignal(t *testing.T, ch <-chan struct{}) {
	t.Helper()
	select {
	case <-ch:
	case <-time.After(2 * time.Second):
		t.Fatal("no notification received")
	}
}

func TestBus_Local(t *testing.T) {
	bus := New(nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, stop := bus.Subscribe(ctx, ThreadChannel("t1"))
	other, stopOther := bus.Subscribe(ctx, ThreadChannel("t2"))
	defer stopOther()

	require.NoError(t, bus.Publish(ctx, ThreadChannel("t1")))
	waitSignal(t, ch)

	select {
	case <-other:
		t.Fatal("unrelated channel notified")
	default:
	}

	// Pending notifications are merged.
	require.NoError(t, bus.Publish(ctx, ThreadChannel("t1")))
	require.NoError(t, bus.Publish(ctx, ThreadChannel("t1")))
	waitSignal(t, ch)
	select {
	case <-ch:
		t.Fatal("expected a single merged notification")
	default:
	}

	stop()
	require.NoError(t, bus.Publish(ctx, ThreadChannel("t1")))
	select {
	case <-ch:
		t.Fatal("notified after unsubscribe")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestBus_ContextEndsSubscription(t *testing.T) {
	bus := New(nil, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())

	bus.Subscribe(ctx, ThreadChannel("t1"))
	cancel()

	assert.Eventually(t, func() bool {
		bus.mu.Lock()
		defer bus.mu.Unlock()
		return len(bus.subs) == 0
	}, time.Second, 5*time.Millisecond)
}

func TestBus_Redis(t *testing.T) {
	addr := os.Getenv("TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("TEST_REDIS_ADDR not set")
	}
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	t.Cleanup(func() { rdb.Close() })

	bus := New(rdb, zap.NewNop())
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch, stop := bus.Subscribe(ctx, ThreadChannel("t1"))
	defer stop()

	// Subscriptions are established asynchronously.
	assert.Eventually(t, func() bool {
		require.NoError(t, bus.Publish(ctx, ThreadChannel("t1")))
		select {
		case <-ch:
			return true
		case <-time.After(50 * time.Millisecond):
			return false
		}
	}, 2*time.Second, 10*time.Millisecond)
}
