package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
)

type memoryEntry struct {
	token   string
	expires time.Time
}

// MemoryGuard keeps reservations in process. Used when no Redis is
// configured; reservations do not survive restarts.
type MemoryGuard struct {
	mu     sync.Mutex
	cache  *expirable.LRU[string, memoryEntry]
	window time.Duration
	now    func() time.Time
}

func NewMemoryGuard(size int, window time.Duration) *MemoryGuard {
	return &MemoryGuard{
		cache:  expirable.NewLRU[string, memoryEntry](size, nil, window),
		window: window,
		now:    time.Now,
	}
}

func (g *MemoryGuard) Reserve(ctx context.Context, key string) (Reservation, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if held, ok := g.cache.Get(key); ok && now.Before(held.expires) {
		return Reservation{Key: key, RetryAfter: held.expires.Sub(now)}, nil
	}

	r := Reservation{Key: key, Token: newToken(), OK: true}
	g.cache.Add(key, memoryEntry{token: r.Token, expires: now.Add(g.window)})
	return r, nil
}

func (g *MemoryGuard) Release(ctx context.Context, r Reservation) error {
	if !r.OK {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if held, ok := g.cache.Peek(r.Key); ok && held.token == r.Token {
		g.cache.Remove(r.Key)
	}
	return nil
}
