// Package admission provides the rate-limit decision consumed before
// mutating operations. The facade only needs the decision; enforcement
// details stay behind the Limiter interface so tests can substitute fakes.
package admission

import (
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/spendwise-platform/internal/config"
)

// Decision is the outcome of one admission check
type Decision struct {
	Allowed    bool
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether a caller may perform a mutating operation now
type Limiter interface {
	Allow(key string) Decision
}

// TokenBucketLimiter keeps one rate.Limiter per key, refilling at the
// configured per-minute rate up to the burst capacity. State is per process.
type TokenBucketLimiter struct {
	mu       sync.Mutex
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
	now      func() time.Time
}

func NewTokenBucketLimiter(cfg *config.RateLimitConfig) *TokenBucketLimiter {
	return &TokenBucketLimiter{
		limiters: make(map[string]*rate.Limiter),
		limit:    rate.Limit(float64(cfg.RequestsPerMinute) / 60.0),
		burst:    cfg.Burst,
		now:      time.Now,
	}
}

// Allow consumes one token for the key if available
func (l *TokenBucketLimiter) Allow(key string) Decision {
	l.mu.Lock()
	lim, ok := l.limiters[key]
	if !ok {
		lim = rate.NewLimiter(l.limit, l.burst)
		l.limiters[key] = lim
	}
	l.mu.Unlock()

	now := l.now()
	res := lim.ReserveN(now, 1)
	if !res.OK() {
		return Decision{Allowed: false}
	}

	if delay := res.DelayFrom(now); delay > 0 {
		// Not admitted now; hand the token back and surface the wait.
		res.CancelAt(now)
		return Decision{Allowed: false, Remaining: 0, RetryAfter: delay}
	}

	return Decision{Allowed: true, Remaining: int(lim.TokensAt(now))}
}

var _ Limiter = (*TokenBucketLimiter)(nil)
