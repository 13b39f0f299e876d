package command

import (
	"fmt"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-saga/internal/game"
	"github.com/pixil98/go-saga/internal/storage"
)

type StorageConfig struct {
	Locations AssetConfig[*game.Location] `json:"locations"`
}

func (c *StorageConfig) validate() error {
	el := errors.NewErrorList()

	el.Add(c.Locations.validate())

	return el.Err()
}

type AssetConfig[T storage.ValidatingSpec] struct {
	Path string `json:"path"`
}

func (c *AssetConfig[T]) validate() error {
	el := errors.NewErrorList()

	if c.Path == "" {
		el.Add(fmt.Errorf("path is required"))
	} else if info, err := os.Stat(c.Path); err != nil {
		el.Add(fmt.Errorf("stat %q: %w", c.Path, err))
	} else if !info.IsDir() {
		el.Add(fmt.Errorf("%q is not a directory", c.Path))
	}

	return el.Err()
}

func (c *AssetConfig[T]) BuildFileStore() (*storage.FileStore[T], error) {
	return storage.NewFileStore[T](c.Path)
}
