package command

import (
	"fmt"
	"time"

	"github.com/pixil98/go-errors"
)

type Config struct {
	SweepInterval string           `json:"sweep_interval"`
	Listeners     []ListenerConfig `json:"listeners"`
	Nats          NatsConfig       `json:"nats"`
	Storage       StorageConfig    `json:"storage"`
	World         WorldConfig      `json:"world"`
	Narrator      NarratorConfig   `json:"narrator"`
	RateLimits    RateLimitConfig  `json:"rate_limits"`
	Session       SessionConfig    `json:"session"`
}

func (c *Config) Validate() error {
	el := errors.NewErrorList()

	if c.SweepInterval != "" {
		d, err := time.ParseDuration(c.SweepInterval)
		if err != nil {
			el.Add(fmt.Errorf("parsing sweep_interval: %w", err))
		} else if d < time.Second {
			el.Add(fmt.Errorf("sweep_interval must be at least 1 second"))
		}
	}

	if len(c.Listeners) == 0 {
		el.Add(fmt.Errorf("at least one listener is required"))
	}
	for i, l := range c.Listeners {
		err := l.validate()
		if err != nil {
			el.Add(fmt.Errorf("listener %d: %w", i, err))
		}
	}

	el.Add(c.Nats.validate())
	el.Add(c.Storage.validate())
	el.Add(c.World.validate())
	el.Add(c.Narrator.validate())
	el.Add(c.RateLimits.validate())
	el.Add(c.Session.validate())

	return el.Err()
}

type SessionConfig struct {
	MaxActionLength int `json:"max_action_length"`
}

func (c *SessionConfig) validate() error {
	el := errors.NewErrorList()

	if c.MaxActionLength < 0 {
		el.Add(fmt.Errorf("max_action_length must not be negative"))
	}

	return el.Err()
}
