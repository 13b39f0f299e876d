package narrate

import "errors"

var (
	// ErrBackendUnavailable means no narration could be produced at all:
	// either no credential is configured or every candidate model was
	// exhausted without yielding text. The session degrades the turn to an
	// empty narrative.
	ErrBackendUnavailable = errors.New("narration backend unavailable")

	// ErrModelNotFound marks a candidate identifier the backend no longer
	// serves. The orchestrator moves on to the next candidate instead of
	// aborting.
	ErrModelNotFound = errors.New("model not found")
)
