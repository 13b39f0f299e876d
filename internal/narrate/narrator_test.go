package narrate

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// fakeBackend scripts a per-model outcome and records the call order.
type fakeBackend struct {
	responses map[string]*Response
	errs      map[string]error
	calls     []string
}

func (b *fakeBackend) Generate(ctx context.Context, model, prompt string) (*Response, error) {
	b.calls = append(b.calls, model)
	if err, ok := b.errs[model]; ok {
		return nil, err
	}
	if resp, ok := b.responses[model]; ok {
		return resp, nil
	}
	return nil, fmt.Errorf("model %q: %w", model, ErrModelNotFound)
}

func TestNarrator_Generate(t *testing.T) {
	backend := &fakeBackend{
		responses: map[string]*Response{
			"gemini-2.5-pro": {Text: "The tavern falls silent."},
		},
	}
	n := NewNarrator(backend)

	got, err := n.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "The tavern falls silent." {
		t.Errorf("got %q", got)
	}
	if len(backend.calls) != 1 {
		t.Errorf("calls = %v, expected a single call", backend.calls)
	}
}

func TestNarrator_FallsBackOnModelNotFound(t *testing.T) {
	backend := &fakeBackend{
		errs: map[string]error{
			"gemini-2.5-pro": fmt.Errorf("model removed: %w", ErrModelNotFound),
		},
		responses: map[string]*Response{
			"gemini-2.5-flash": {Text: "The goblin lunges."},
		},
	}
	n := NewNarrator(backend)

	got, err := n.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "The goblin lunges." {
		t.Errorf("got %q", got)
	}
	wantCalls := []string{"gemini-2.5-pro", "gemini-2.5-flash"}
	if len(backend.calls) != len(wantCalls) || backend.calls[0] != wantCalls[0] || backend.calls[1] != wantCalls[1] {
		t.Errorf("calls = %v, expected %v", backend.calls, wantCalls)
	}
}

func TestNarrator_NonRetryableErrorAborts(t *testing.T) {
	quota := errors.New("quota exhausted")
	backend := &fakeBackend{
		errs: map[string]error{
			"gemini-2.5-pro": quota,
		},
	}
	n := NewNarrator(backend)

	_, err := n.Generate(context.Background(), "prompt")
	if !errors.Is(err, quota) {
		t.Fatalf("err = %v, expected the backend error", err)
	}
	if len(backend.calls) != 1 {
		t.Errorf("calls = %v, expected the chain to abort after one call", backend.calls)
	}
}

func TestNarrator_AllCandidatesExhausted(t *testing.T) {
	backend := &fakeBackend{}
	n := NewNarrator(backend)

	_, err := n.Generate(context.Background(), "prompt")
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("err = %v, expected ErrBackendUnavailable", err)
	}
	if len(backend.calls) != len(fallbackModels) {
		t.Errorf("calls = %v, expected every candidate to be tried", backend.calls)
	}
}

func TestNarrator_EmptyResponseAdvancesChain(t *testing.T) {
	backend := &fakeBackend{
		responses: map[string]*Response{
			"gemini-2.5-pro":   {Text: "   "},
			"gemini-2.5-flash": {Text: "A cold wind blows."},
		},
	}
	n := NewNarrator(backend)

	got, err := n.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "A cold wind blows." {
		t.Errorf("got %q", got)
	}
}

func TestNarrator_NilBackend(t *testing.T) {
	n := NewNarrator(nil)

	_, err := n.Generate(context.Background(), "prompt")
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("err = %v, expected ErrBackendUnavailable", err)
	}
}

func TestNarrator_WithPreferredModel(t *testing.T) {
	backend := &fakeBackend{
		responses: map[string]*Response{
			"gemini-exp": {Text: "ok"},
		},
	}
	n := NewNarrator(backend, WithPreferredModel("gemini-exp"))

	if _, err := n.Generate(context.Background(), "prompt"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if backend.calls[0] != "gemini-exp" {
		t.Errorf("first call = %q, expected the preferred model", backend.calls[0])
	}
}

func TestNarrator_PreferredModelAlreadyInChain(t *testing.T) {
	n := NewNarrator(&fakeBackend{}, WithPreferredModel("gemini-2.0-flash"))

	if n.candidates[0] != "gemini-2.0-flash" {
		t.Errorf("first candidate = %q, expected the preferred model", n.candidates[0])
	}
	if len(n.candidates) != len(fallbackModels) {
		t.Errorf("candidates = %v, expected no duplicate entries", n.candidates)
	}
}

func TestNarrator_Truncates(t *testing.T) {
	backend := &fakeBackend{
		responses: map[string]*Response{
			"gemini-2.5-pro": {Text: strings.Repeat("a", 600)},
		},
	}
	n := NewNarrator(backend, WithMaxResponseLen(100))

	got, err := n.Generate(context.Background(), "prompt")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len([]rune(got)) != 101 {
		t.Errorf("length = %d, expected 100 runes plus ellipsis", len([]rune(got)))
	}
}
