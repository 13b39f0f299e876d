package game

import "errors"

var (
	ErrPlayerNotFound   = errors.New("player not found")
	ErrLocationNotFound = errors.New("location not found")
)
