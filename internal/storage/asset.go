package storage

import (
	"fmt"
	"regexp"

	"github.com/pixil98/go-errors"
)

var identifierPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]*$`)

// ValidatingSpec is any asset payload that can validate itself after load.
type ValidatingSpec interface {
	Validate() error
}

// Asset is the on-disk envelope around a spec record.
type Asset[T ValidatingSpec] struct {
	Version    uint   `json:"version"`
	Identifier string `json:"id"`
	Spec       T      `json:"spec"`
}

func (a *Asset[T]) Id() string {
	return a.Identifier
}

func (a *Asset[T]) Validate() error {
	el := errors.NewErrorList()

	if a.Version == 0 {
		el.Add(fmt.Errorf("version must be set"))
	}

	if a.Identifier == "" {
		el.Add(fmt.Errorf("id must be set"))
	}

	if !identifierPattern.MatchString(a.Identifier) {
		el.Add(fmt.Errorf("id must be alphanumeric"))
	}

	el.Add(a.Spec.Validate())

	return el.Err()
}
