package command

import (
	"context"
	"fmt"
	"time"

	"github.com/pixil98/go-saga/internal/driver"
	"github.com/pixil98/go-saga/internal/listener"
	"github.com/pixil98/go-saga/internal/messaging"
	"github.com/pixil98/go-saga/internal/session"
	"github.com/pixil98/go-service"
)

func BuildWorkers(config interface{}) (service.WorkerList, error) {
	cfg, ok := config.(*Config)
	if !ok {
		return nil, fmt.Errorf("unable to cast config")
	}

	// Message bus all broadcasts ride on
	nats, err := cfg.Nats.buildNatsServer()
	if err != nil {
		return nil, fmt.Errorf("creating nats server: %w", err)
	}
	pub := messaging.NewRoomPublisher(nats)

	// Load the world from its location assets
	locs, err := cfg.Storage.Locations.BuildFileStore()
	if err != nil {
		return nil, fmt.Errorf("creating location store: %w", err)
	}
	world, err := cfg.World.BuildWorldState(locs)
	if err != nil {
		return nil, fmt.Errorf("creating world state: %w", err)
	}

	narrator, err := cfg.Narrator.BuildNarrator(context.Background())
	if err != nil {
		return nil, fmt.Errorf("creating narrator: %w", err)
	}

	limits, err := cfg.RateLimits.BuildSet()
	if err != nil {
		return nil, fmt.Errorf("creating rate limiters: %w", err)
	}

	sessions := session.NewManager(world, limits, narrator, pub,
		session.WithMaxActionLen(cfg.Session.MaxActionLength))
	cm := listener.NewConnectionManager(sessions, pub)

	// Create Listeners
	listeners := make(service.WorkerList, len(cfg.Listeners))
	for i, l := range cfg.Listeners {
		listeners[fmt.Sprintf("listener-%d", i)] = l.BuildListener(cm)
	}

	// Periodic housekeeping: rate-limit window sweep
	var driverOpts []driver.DriverOpt
	if cfg.SweepInterval != "" {
		d, err := time.ParseDuration(cfg.SweepInterval)
		if err != nil {
			return nil, fmt.Errorf("parsing sweep_interval: %w", err)
		}
		driverOpts = append(driverOpts, driver.WithTickLength(d))
	}
	sweeper := driver.NewDriver([]driver.Manager{limits}, driverOpts...)

	// Create a worker list
	return service.WorkerList{
		"nats":      nats,
		"sweeper":   sweeper,
		"listeners": &listeners,
	}, nil
}
