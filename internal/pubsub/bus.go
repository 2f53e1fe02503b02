package pubsub

import (
	"context"
	"sync"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Bus carries "something changed" notifications for chat threads. With a
// Redis client they reach subscribers on every instance; without one they
// stay in process.
type Bus struct {
	rdb *redis.Client
	log *zap.Logger

	mu   sync.Mutex
	subs map[string]map[chan struct{}]struct{}
}

func New(rdb *redis.Client, log *zap.Logger) *Bus {
	return &Bus{
		rdb:  rdb,
		log:  log,
		subs: make(map[string]map[chan struct{}]struct{}),
	}
}

// ThreadChannel is the channel a ticket's chat thread changes go to.
func ThreadChannel(ticketID string) string {
	return "askadam:" + ticketID
}

// Publish notifies the subscribers of channel.
func (b *Bus) Publish(ctx context.Context, channel string) error {
	if b.rdb != nil {
		if err := b.rdb.Publish(ctx, channel, "changed").Err(); err != nil {
			b.log.Error("Failed to publish event", zap.String("channel", channel), zap.Error(err))
			return err
		}
		return nil
	}

	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs[channel] {
		signal(ch)
	}
	return nil
}

// Subscribe returns a channel that receives a value after each publish to
// channel. Notifications arriving while one is pending are merged. The
// subscription ends when ctx is done or the returned func is called.
func (b *Bus) Subscribe(ctx context.Context, channel string) (<-chan struct{}, func()) {
	ch := make(chan struct{}, 1)

	if b.rdb != nil {
		ps := b.rdb.Subscribe(ctx, channel)
		go func() {
			for range ps.Channel() {
				signal(ch)
			}
		}()
		var once sync.Once
		stop := func() {
			once.Do(func() {
				if err := ps.Close(); err != nil {
					b.log.Debug("Failed to close subscription", zap.String("channel", channel), zap.Error(err))
				}
			})
		}
		go func() {
			<-ctx.Done()
			stop()
		}()
		return ch, stop
	}

	b.mu.Lock()
	if b.subs[channel] == nil {
		b.subs[channel] = make(map[chan struct{}]struct{})
	}
	b.subs[channel][ch] = struct{}{}
	b.mu.Unlock()

	var once sync.Once
	stop := func() {
		once.Do(func() {
			b.mu.Lock()
			defer b.mu.Unlock()
			if subs := b.subs[channel]; subs != nil {
				delete(subs, ch)
				if len(subs) == 0 {
					delete(b.subs, channel)
				}
			}
		})
	}
	go func() {
		<-ctx.Done()
		stop()
	}()
	return ch, stop
}

func signal(ch chan struct{}) {
	select {
	case ch <- struct{}{}:
	default:
	}
}
