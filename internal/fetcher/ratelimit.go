package fetcher

import (
	"context"
	"sync"
	"time"
)

const (
	defaultQuota  = 5000
	lowWatermark  = 10
	minCallDelay  = 50 * time.Millisecond
	fallbackReset = time.Hour
)

// limiter paces upstream calls: it enforces a minimum delay between
// requests and blocks until the quota window resets once the remaining
// budget runs low. Updated from response headers after every call.
type limiter struct {
	mu        sync.Mutex
	remaining int
	resetTime time.Time
	lastCall  time.Time
}

func newLimiter() *limiter {
	return &limiter{
		remaining: defaultQuota,
		resetTime: time.Now().Add(fallbackReset),
	}
}

// Wait blocks until it is safe to make another upstream call.
func (l *limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.remaining <= lowWatermark {
		waitDuration := time.Until(l.resetTime)
		if waitDuration > 0 {
			l.mu.Unlock()
			select {
			case <-ctx.Done():
				l.mu.Lock()
				return ctx.Err()
			case <-time.After(waitDuration):
				l.mu.Lock()
			}
		}
		l.remaining = defaultQuota
		l.resetTime = time.Now().Add(fallbackReset)
	}

	elapsed := time.Since(l.lastCall)
	if elapsed < minCallDelay {
		l.mu.Unlock()
		select {
		case <-ctx.Done():
			l.mu.Lock()
			return ctx.Err()
		case <-time.After(minCallDelay - elapsed):
			l.mu.Lock()
		}
	}

	l.lastCall = time.Now()
	return nil
}

// Update records the quota reported by the latest response.
func (l *limiter) Update(remaining int, resetTime time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.remaining = remaining
	l.resetTime = resetTime
}
