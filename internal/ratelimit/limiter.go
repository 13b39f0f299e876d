// Package ratelimit provides fixed-window request counting per client
// identity. Each throttled action kind gets its own independent Limiter.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

type clientWindow struct {
	count     int
	resetTime time.Time
}

// Limiter counts requests per client in fixed windows. The counter resets
// wholesale at the window boundary, as opposed to a sliding window.
type Limiter struct {
	mu      sync.Mutex
	window  time.Duration
	max     int
	clients map[string]*clientWindow

	now func() time.Time
}

type LimiterOpt func(*Limiter)

// WithClock replaces the time source.
func WithClock(now func() time.Time) LimiterOpt {
	return func(l *Limiter) {
		l.now = now
	}
}

func NewLimiter(window time.Duration, maxRequests int, opts ...LimiterOpt) *Limiter {
	l := &Limiter{
		window:  window,
		max:     maxRequests,
		clients: make(map[string]*clientWindow),
		now:     time.Now,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Allow reports whether the client may make another request. The first
// request of a window (re)initializes the counter; subsequent requests
// increment it until maxRequests is reached.
func (l *Limiter) Allow(clientId string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cw, ok := l.clients[clientId]
	if !ok || now.After(cw.resetTime) {
		l.clients[clientId] = &clientWindow{
			count:     1,
			resetTime: now.Add(l.window),
		}
		return true
	}

	if cw.count >= l.max {
		return false
	}

	cw.count++
	return true
}

// Remaining returns how many requests the client has left in the current
// window, or the full allowance if no window is active.
func (l *Limiter) Remaining(clientId string) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	cw, ok := l.clients[clientId]
	if !ok || l.now().After(cw.resetTime) {
		return l.max
	}
	if rem := l.max - cw.count; rem > 0 {
		return rem
	}
	return 0
}

// ResetTime returns when the client's current window expires. Without an
// active window it reports one window length from now.
func (l *Limiter) ResetTime(clientId string) time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()

	if cw, ok := l.clients[clientId]; ok {
		return cw.resetTime
	}
	return l.now().Add(l.window)
}

// Tick drops entries whose window has already expired. Allow re-checks
// expiry itself, so the sweep only bounds memory. Runs on the driver tick.
func (l *Limiter) Tick(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	for id, cw := range l.clients {
		if now.After(cw.resetTime) {
			delete(l.clients, id)
		}
	}
	return nil
}
