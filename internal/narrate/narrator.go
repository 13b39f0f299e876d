// Package narrate builds prompts from world state and turns them into
// narrative text through a generative backend, falling back across an
// ordered list of model identifiers.
package narrate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
)

// DefaultMaxResponseLen bounds narrative text returned to the session.
const DefaultMaxResponseLen = 500

// fallbackModels is the fixed candidate sequence tried after the preferred
// model, newest first.
var fallbackModels = []string{
	"gemini-2.5-pro",
	"gemini-2.5-flash",
	"gemini-2.0-flash",
	"gemini-1.5-pro",
	"gemini-1.5-flash",
}

// Backend is a single generation call against one model identifier.
type Backend interface {
	Generate(ctx context.Context, model, prompt string) (*Response, error)
}

// Narrator iterates candidate models, extracts text from responses and
// post-processes it. A nil backend means no credential was configured.
type Narrator struct {
	backend    Backend
	candidates []string
	maxLen     int

	// retryable decides whether a candidate failure means "try the next
	// model" rather than aborting the whole chain.
	retryable func(error) bool
}

type NarratorOpt func(*Narrator)

// WithPreferredModel puts a model in front of the fallback sequence.
func WithPreferredModel(model string) NarratorOpt {
	return func(n *Narrator) {
		if model != "" {
			n.candidates = dedup(append([]string{model}, fallbackModels...))
		}
	}
}

// WithMaxResponseLen overrides the truncation budget.
func WithMaxResponseLen(max int) NarratorOpt {
	return func(n *Narrator) {
		if max > 0 {
			n.maxLen = max
		}
	}
}

// WithRetryClassifier replaces the failure classifier.
func WithRetryClassifier(retryable func(error) bool) NarratorOpt {
	return func(n *Narrator) {
		n.retryable = retryable
	}
}

func NewNarrator(backend Backend, opts ...NarratorOpt) *Narrator {
	n := &Narrator{
		backend:    backend,
		candidates: dedup(fallbackModels),
		maxLen:     DefaultMaxResponseLen,
		retryable: func(err error) bool {
			return errors.Is(err, ErrModelNotFound)
		},
	}

	for _, opt := range opts {
		opt(n)
	}

	return n
}

// Generate runs the candidate chain for one prompt and returns the first
// non-empty post-processed narrative. Not-found-class failures advance to
// the next candidate; any other failure aborts the chain.
func (n *Narrator) Generate(ctx context.Context, prompt string) (string, error) {
	if n.backend == nil {
		return "", ErrBackendUnavailable
	}

	for _, model := range n.candidates {
		resp, err := n.backend.Generate(ctx, model, prompt)
		if err != nil {
			if n.retryable(err) {
				slog.WarnContext(ctx, "narration model unavailable, trying next", "model", model, "error", err)
				continue
			}
			return "", fmt.Errorf("calling narration backend: %w", err)
		}

		text := Truncate(StripMachineSection(ExtractText(resp)), n.maxLen)
		if text != "" {
			return text, nil
		}
	}

	return "", ErrBackendUnavailable
}

func dedup(models []string) []string {
	seen := make(map[string]bool, len(models))
	out := make([]string, 0, len(models))
	for _, m := range models {
		if m == "" || seen[m] {
			continue
		}
		seen[m] = true
		out = append(out, m)
	}
	return out
}
