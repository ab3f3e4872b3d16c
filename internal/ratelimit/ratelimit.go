package ratelimit

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Limiter throttles operator commands per user.
type Limiter interface {
	Allow(userID int64) bool
}

// Pacer spaces outbound sends. Wait blocks until the next send may start or
// ctx is done.
type Pacer interface {
	Wait(ctx context.Context) error
}

type InMemoryLimiter struct {
	users map[int64]*rate.Limiter
	mu    sync.Mutex
	r     rate.Limit
	b     int
}

var _ Limiter = (*InMemoryLimiter)(nil)

// NewInMemoryLimiter allows requests per period with the given burst.
// NewInMemoryLimiter(1, 5*time.Second, 3) permits three commands in a row,
// then one every five seconds.
func NewInMemoryLimiter(requests int, per time.Duration, burst int) *InMemoryLimiter {
	if requests < 1 {
		requests = 1
	}
	if burst < 1 {
		burst = 1
	}
	return &InMemoryLimiter{
		users: make(map[int64]*rate.Limiter),
		r:     rate.Every(per / time.Duration(requests)),
		b:     burst,
	}
}

func (l *InMemoryLimiter) Allow(userID int64) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	limiter, exists := l.users[userID]
	if !exists {
		limiter = rate.NewLimiter(l.r, l.b)
		l.users[userID] = limiter
	}

	return limiter.Allow()
}

// TokenBucketPacer lets burst sends through at once and then one per interval.
type TokenBucketPacer struct {
	limiter *rate.Limiter
}

var _ Pacer = (*TokenBucketPacer)(nil)

// NewPacer returns a pacer for interval and burst. A zero interval disables pacing.
func NewPacer(interval time.Duration, burst int) *TokenBucketPacer {
	if burst < 1 {
		burst = 1
	}
	limit := rate.Inf
	if interval > 0 {
		limit = rate.Every(interval)
	}
	return &TokenBucketPacer{limiter: rate.NewLimiter(limit, burst)}
}

func (p *TokenBucketPacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
