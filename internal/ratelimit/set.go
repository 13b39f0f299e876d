package ratelimit

import (
	"context"
	"time"
)

// Default allowances per throttled action kind.
const (
	DefaultActionWindow   = 15 * time.Second
	DefaultActionRequests = 5

	DefaultJoinWindow   = time.Minute
	DefaultJoinRequests = 3

	DefaultNarrationWindow   = time.Minute
	DefaultNarrationRequests = 10
)

// Set groups the per-kind limiters the session protocol applies, each with
// its own counter table keyed by the connection's source address.
type Set struct {
	Action    *Limiter
	Join      *Limiter
	Narration *Limiter
}

func NewDefaultSet() *Set {
	return &Set{
		Action:    NewLimiter(DefaultActionWindow, DefaultActionRequests),
		Join:      NewLimiter(DefaultJoinWindow, DefaultJoinRequests),
		Narration: NewLimiter(DefaultNarrationWindow, DefaultNarrationRequests),
	}
}

// Tick sweeps all limiters. Satisfies driver.Manager.
func (s *Set) Tick(ctx context.Context) error {
	for _, l := range []*Limiter{s.Action, s.Join, s.Narration} {
		if err := l.Tick(ctx); err != nil {
			return err
		}
	}
	return nil
}
