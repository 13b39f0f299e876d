package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-saga/internal/ratelimit"
)

type RateLimitConfig struct {
	Action    WindowConfig `json:"action"`
	Join      WindowConfig `json:"join"`
	Narration WindowConfig `json:"narration"`
}

func (c *RateLimitConfig) validate() error {
	el := errors.NewErrorList()

	el.Add(c.Action.validate("action"))
	el.Add(c.Join.validate("join"))
	el.Add(c.Narration.validate("narration"))

	return el.Err()
}

func (c *RateLimitConfig) BuildSet() (*ratelimit.Set, error) {
	set := ratelimit.NewDefaultSet()

	action, err := c.Action.build(set.Action, ratelimit.DefaultActionWindow, ratelimit.DefaultActionRequests)
	if err != nil {
		return nil, fmt.Errorf("building action limiter: %w", err)
	}
	set.Action = action

	join, err := c.Join.build(set.Join, ratelimit.DefaultJoinWindow, ratelimit.DefaultJoinRequests)
	if err != nil {
		return nil, fmt.Errorf("building join limiter: %w", err)
	}
	set.Join = join

	narration, err := c.Narration.build(set.Narration, ratelimit.DefaultNarrationWindow, ratelimit.DefaultNarrationRequests)
	if err != nil {
		return nil, fmt.Errorf("building narration limiter: %w", err)
	}
	set.Narration = narration

	return set, nil
}

type WindowConfig struct {
	Window      string `json:"window,omitempty"`
	MaxRequests int    `json:"max_requests,omitempty"`
}

func (c *WindowConfig) validate(kind string) error {
	el := errors.NewErrorList()

	if c.Window != "" {
		d, err := time.ParseDuration(c.Window)
		if err != nil {
			el.Add(fmt.Errorf("%s: parsing window: %w", kind, err))
		} else if d <= 0 {
			el.Add(fmt.Errorf("%s: window must be positive", kind))
		}
	}
	if c.MaxRequests < 0 {
		el.Add(fmt.Errorf("%s: max_requests must not be negative", kind))
	}

	return el.Err()
}

// build returns the default limiter unless the config overrides it.
func (c *WindowConfig) build(def *ratelimit.Limiter, defWindow time.Duration, defMax int) (*ratelimit.Limiter, error) {
	if c.Window == "" && c.MaxRequests == 0 {
		return def, nil
	}

	window := defWindow
	if c.Window != "" {
		d, err := time.ParseDuration(c.Window)
		if err != nil {
			return nil, fmt.Errorf("parsing window: %w", err)
		}
		window = d
	}

	max := c.MaxRequests
	if max == 0 {
		max = defMax
	}

	return ratelimit.NewLimiter(window, max), nil
}
