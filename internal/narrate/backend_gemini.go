package narrate

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"regexp"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

var notFoundMessage = regexp.MustCompile(`(?i)not\s*found|removed`)

// GeminiBackend generates narration through the Gemini API.
type GeminiBackend struct {
	client *genai.Client
}

func NewGeminiBackend(ctx context.Context, apiKey string) (*GeminiBackend, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("creating generative client: %w", err)
	}
	return &GeminiBackend{client: client}, nil
}

func (b *GeminiBackend) Generate(ctx context.Context, model, prompt string) (*Response, error) {
	resp, err := b.client.GenerativeModel(model).GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return nil, classifyModelErr(model, err)
	}

	var text string
	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil {
		for _, part := range resp.Candidates[0].Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				text += string(txt)
			}
		}
	}
	return &Response{Text: text}, nil
}

func (b *GeminiBackend) Close() error {
	return b.client.Close()
}

// classifyModelErr tags not-found-class failures with ErrModelNotFound so
// the orchestrator can distinguish "try the next candidate" from terminal
// failures like rate limiting without matching on message strings upstream.
func classifyModelErr(model string, err error) error {
	var gerr *googleapi.Error
	if errors.As(err, &gerr) && gerr.Code == http.StatusNotFound {
		return fmt.Errorf("model %s: %w", model, ErrModelNotFound)
	}
	if notFoundMessage.MatchString(err.Error()) {
		return fmt.Errorf("model %s: %w", model, ErrModelNotFound)
	}
	return err
}
