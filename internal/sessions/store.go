// Package sessions keeps the transient per-sender conversation state that lets a
// stateless webhook hold a multi-turn conversation.
package sessions

import (
	"context"
	"errors"
	"time"

	"github.com/zosswater/whatsapp-bot/internal/models"
)

// DefaultTTL is how long an idle session survives a sweep
const DefaultTTL = time.Hour

// ErrNotFound is returned by Update when the sender has no session
var ErrNotFound = errors.New("session not found")

// Store is the session store used by the chat flow.
//
// Get returns (nil, nil) when no session exists. Set replaces the session
// wholesale and stamps LastActivity. Update returns ErrNotFound for unknown
// keys and writes nothing.
// Lock serializes read-modify-write sequences for a single sender. Get, Set,
// Update and Clear never take that lock, so callers may hold it across calls.
// Sweep takes it for every session it removes and re-checks staleness under it.
type Store interface {
	Get(ctx context.Context, key string) (*models.Session, error)
	Set(ctx context.Context, key string, session *models.Session) error
	Update(ctx context.Context, key string, patch models.SessionPatch) error
	Clear(ctx context.Context, key string) error
	Sweep(ctx context.Context, now time.Time, ttl time.Duration) (int, error)
	Count(ctx context.Context) (int, error)
	Lock(key string) (unlock func())
}

// Option configures a store
type Option func(*options)

type options struct {
	now func() time.Time
	ttl time.Duration
}

// WithClock overrides the time source used to stamp LastActivity
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithTTL sets the expiry a store may apply natively (Redis key TTL)
func WithTTL(ttl time.Duration) Option {
	return func(o *options) { o.ttl = ttl }
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, ttl: DefaultTTL}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}
