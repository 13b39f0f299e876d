package command

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/pixil98/go-errors"
	"github.com/pixil98/go-saga/internal/narrate"
)

const defaultAPIKeyEnv = "GEMINI_API_KEY"

type NarratorConfig struct {
	// APIKeyEnv names the environment variable holding the backend
	// credential. Without a credential narration degrades to empty text.
	APIKeyEnv         string `json:"api_key_env,omitempty"`
	Model             string `json:"model,omitempty"`
	MaxResponseLength int    `json:"max_response_length,omitempty"`
}

func (c *NarratorConfig) validate() error {
	el := errors.NewErrorList()

	if c.MaxResponseLength < 0 {
		el.Add(fmt.Errorf("max_response_length must not be negative"))
	}

	return el.Err()
}

func (c *NarratorConfig) BuildNarrator(ctx context.Context) (*narrate.Narrator, error) {
	keyEnv := c.APIKeyEnv
	if keyEnv == "" {
		keyEnv = defaultAPIKeyEnv
	}

	var backend narrate.Backend
	if apiKey := os.Getenv(keyEnv); apiKey != "" {
		gemini, err := narrate.NewGeminiBackend(ctx, apiKey)
		if err != nil {
			return nil, fmt.Errorf("creating narration backend: %w", err)
		}
		backend = gemini
	} else {
		slog.Warn("no narration credential configured, narration disabled", "env", keyEnv)
	}

	return narrate.NewNarrator(backend,
		narrate.WithPreferredModel(c.Model),
		narrate.WithMaxResponseLen(c.MaxResponseLength),
	), nil
}
