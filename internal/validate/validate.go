// Package validate type-checks and sanitizes inbound payloads before they
// reach the world. Every check returns a *Error carrying the offending
// field, surfaced to the originating connection only.
package validate

import (
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/pixil98/go-saga/internal/game"
)

const (
	// DefaultMaxActionLen bounds free-text player actions.
	DefaultMaxActionLen = 500

	maxIdLen   = 50
	maxNameLen = 50
)

var (
	playerIdPattern = regexp.MustCompile(`^[a-zA-Z0-9@._-]+$`)
	roomIdPattern   = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// dangerousPatterns reject markup and script injection in free text.
	dangerousPatterns = []*regexp.Regexp{
		regexp.MustCompile(`(?i)<script`),
		regexp.MustCompile(`(?i)javascript:`),
		regexp.MustCompile(`(?i)on\w+\s*=`),
		regexp.MustCompile(`(?i)eval\s*\(`),
		regexp.MustCompile(`(?i)function\s*\(`),
		regexp.MustCompile(`(?i)document\.`),
		regexp.MustCompile(`(?i)window\.`),
	}
)

// Error is a validation failure tied to a single field.
type Error struct {
	Field   string
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func newError(field, format string, args ...any) *Error {
	return &Error{
		Field:   field,
		Message: fmt.Sprintf("%s %s", field, fmt.Sprintf(format, args...)),
	}
}

// String requires the trimmed value's character count to lie in
// [minLen, maxLen] and returns the trimmed value.
func String(value, field string, minLen, maxLen int) (string, error) {
	trimmed := strings.TrimSpace(value)
	length := utf8.RuneCountInString(trimmed)
	if length < minLen {
		return "", newError(field, "is too short (minimum %d characters)", minLen)
	}
	if length > maxLen {
		return "", newError(field, "is too long (maximum %d characters)", maxLen)
	}
	return trimmed, nil
}

// PlayerId validates a player identifier against its allow-list pattern.
func PlayerId(value, field string) (string, error) {
	id, err := String(value, field, 1, maxIdLen)
	if err != nil {
		return "", err
	}
	if !playerIdPattern.MatchString(id) {
		return "", newError(field, "contains invalid characters")
	}
	return id, nil
}

// RoomId validates a room identifier against its allow-list pattern.
func RoomId(value, field string) (string, error) {
	id, err := String(value, field, 1, maxIdLen)
	if err != nil {
		return "", err
	}
	if !roomIdPattern.MatchString(id) {
		return "", newError(field, "contains invalid characters")
	}
	return id, nil
}

// PlayerAction validates a free-text action, rejecting anything matching
// the injection deny-list.
func PlayerAction(value, field string, maxLen int) (string, error) {
	if maxLen <= 0 {
		maxLen = DefaultMaxActionLen
	}
	action, err := String(value, field, 1, maxLen)
	if err != nil {
		return "", err
	}
	for _, pattern := range dangerousPatterns {
		if pattern.MatchString(action) {
			return "", newError(field, "contains disallowed content")
		}
	}
	return action, nil
}

// Player validates a joining player in declaration order: id, name, str,
// dex, hp. The first offending field is reported, so errors are
// deterministic for identical input.
func Player(p *game.Player, field string) error {
	if p == nil {
		return newError(field, "must be an object")
	}
	if p.Id == "" || p.Name == "" {
		return newError(field, "must contain id and name")
	}

	id, err := PlayerId(p.Id, field+".id")
	if err != nil {
		return err
	}
	name, err := String(p.Name, field+".name", 1, maxNameLen)
	if err != nil {
		return err
	}

	if p.Str < 1 || p.Str > 20 {
		return newError(field+".str", "must be a number between 1 and 20")
	}
	if p.Dex < 1 || p.Dex > 20 {
		return newError(field+".dex", "must be a number between 1 and 20")
	}
	if p.HP < 1 || p.HP > 100 {
		return newError(field+".hp", "must be a number between 1 and 100")
	}

	p.Id = id
	p.Name = name
	return nil
}
