package storage

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
)

// Storer provides read access to a set of identified records.
type Storer[T ValidatingSpec] interface {
	Get(string) T
	GetAll() map[string]T
}

// FileStore loads every JSON asset under a directory at startup and serves
// the records from memory.
type FileStore[T ValidatingSpec] struct {
	path    string
	records map[string]T

	mu sync.RWMutex
}

func NewFileStore[T ValidatingSpec](path string) (*FileStore[T], error) {
	s := &FileStore[T]{
		path:    path,
		records: map[string]T{},
	}

	err := s.load()
	if err != nil {
		return nil, err
	}

	return s, nil
}

func (s *FileStore[T]) load() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Clear existing records when loading
	s.records = map[string]T{}

	return filepath.Walk(s.path, func(path string, info os.FileInfo, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}

		// Load all json files in the assets path
		if !info.IsDir() && filepath.Ext(path) == ".json" {
			asset, err := s.loadAsset(path)
			if err != nil {
				return err
			}

			err = asset.Validate()
			if err != nil {
				return fmt.Errorf("validating %s: %w", filepath.Base(path), err)
			}

			// Error if the key is already in use
			_, ok := s.records[asset.Id()]
			if ok {
				return fmt.Errorf("duplicate key detected: %s", asset.Id())
			}

			s.records[asset.Id()] = asset.Spec
		}

		return nil
	})
}

func (s *FileStore[T]) Get(id string) T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	val, ok := s.records[id]
	if !ok {
		var nilVal T
		return nilVal
	}

	return val
}

func (s *FileStore[T]) GetAll() map[string]T {
	s.mu.RLock()
	defer s.mu.RUnlock()

	vals := map[string]T{}
	for id, v := range s.records {
		vals[id] = v
	}

	return vals
}

func (s *FileStore[T]) loadAsset(path string) (*Asset[T], error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file: %w", err)
	}

	// Ignoring close error - file is read-only, error is not actionable
	defer func() { _ = file.Close() }()

	jsonData, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("reading file: %w", err)
	}

	var spec T
	asset := &Asset[T]{
		Spec: spec,
	}
	err = json.Unmarshal(jsonData, asset)
	if err != nil {
		return nil, fmt.Errorf("unmarshalling asset: %w", err)
	}

	return asset, nil
}
