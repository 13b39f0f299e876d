package driver

import (
	"context"
	"time"
)

const (
	DefaultTickLength = time.Second * 30
)

// Manager is periodic housekeeping run on the driver tick, such as the
// rate-limit window sweep.
type Manager interface {
	Tick(context.Context) error
}

type Driver struct {
	tickLength time.Duration
	managers   []Manager
}

func NewDriver(managers []Manager, opts ...DriverOpt) *Driver {
	d := &Driver{
		tickLength: DefaultTickLength,
		managers:   managers,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

func (d *Driver) Start(ctx context.Context) error {
	ticker := time.NewTicker(d.tickLength)
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			err := d.Tick(ctx)
			if err != nil {
				return err
			}
		}
	}
}

func (d *Driver) Tick(ctx context.Context) error {
	for _, m := range d.managers {
		if err := m.Tick(ctx); err != nil {
			return err
		}
	}
	return nil
}
