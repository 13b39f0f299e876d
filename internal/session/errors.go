package session

import "time"

// rateLimitError is surfaced to the client with the window reset timestamp.
type rateLimitError struct {
	message   string
	resetTime time.Time
}

func (e *rateLimitError) Error() string {
	return e.message
}
