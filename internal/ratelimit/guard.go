// Package ratelimit holds the per-ticket submission guard for chat
// questions. A reservation is taken with a single conditional insert so
// concurrent submissions for the same ticket cannot both pass.
package ratelimit

import (
	"context"
	"time"

	"github.com/oklog/ulid/v2"
)

// Reservation is the outcome of a Reserve call.
type Reservation struct {
	Key   string
	Token string
	// OK is false when another submission already holds the key.
	OK bool
	// RetryAfter is how long the current holder keeps the key. Only set
	// when OK is false.
	RetryAfter time.Duration
}

type Guard interface {
	// Reserve takes key for the guard's window unless it is already held.
	Reserve(ctx context.Context, key string) (Reservation, error)
	// Release drops a reservation, but only if it is still held with the
	// same token.
	Release(ctx context.Context, r Reservation) error
}

func newToken() string {
	return ulid.Make().String()
}
