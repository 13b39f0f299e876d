package command

import (
	"fmt"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-saga/internal/game"
	"github.com/pixil98/go-saga/internal/storage"
)

type WorldConfig struct {
	StartLocation string `json:"start_location"`
	OpeningScene  string `json:"opening_scene"`
}

func (c *WorldConfig) validate() error {
	el := errors.NewErrorList()

	if c.StartLocation == "" {
		el.Add(fmt.Errorf("start_location is required"))
	}
	if c.OpeningScene == "" {
		el.Add(fmt.Errorf("opening_scene is required"))
	}

	return el.Err()
}

func (c *WorldConfig) BuildWorldState(locs storage.Storer[*game.Location]) (*game.WorldState, error) {
	return game.NewWorldState(locs, c.StartLocation, c.OpeningScene)
}
