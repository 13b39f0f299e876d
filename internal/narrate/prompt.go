package narrate

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/Masterminds/sprig/v3"

	"github.com/pixil98/go-saga/internal/game"
)

// templateFuncs provides utility functions for prompt templates.
var templateFuncs = sprig.TxtFuncMap()

var welcomeTemplate = template.Must(template.New("welcome").Funcs(templateFuncs).Parse(
	`You are the narrator of a collaborative adventure.
The party has just arrived at {{ .Name }}: {{ .Description }}
Describe the scene atmospherically in 3-4 sentences to set the mood.`))

var actionTemplate = template.Must(template.New("action").Funcs(templateFuncs).Parse(
	`You are the narrator of a collaborative adventure.
Current scene: {{ .Scene }}
{{- if .Events }}
Recent events:
{{- range .Events }}
{{ .PlayerId }}: {{ .Action }} ({{ ternary "success" "failure" .Success }})
{{- end }}
{{- end }}
{{- if .NPCs }}
Characters present:
{{- range .NPCs }}
{{ .Name }}: {{ .HP }}/{{ .MaxHP }}
{{- end }}
{{- end }}
Player {{ .PlayerName }} does: "{{ .Action }}"
Continue the scene in 2-3 sentences. Do not repeat the existing description.`))

// promptEventWindow is how many recent events are embedded in a prompt.
const promptEventWindow = 3

type actionPromptData struct {
	Scene      string
	Events     []game.LogEntry
	NPCs       []game.NPC
	PlayerName string
	Action     string
}

// WelcomePrompt builds the opening-scene instruction from the world's
// current location.
func WelcomePrompt(snap *game.Snapshot) (string, error) {
	loc := snap.CurrentLocation()
	if loc == nil {
		return "", fmt.Errorf("current location %q: %w", snap.Context.CurrentLocation, game.ErrLocationNotFound)
	}

	var buf bytes.Buffer
	if err := welcomeTemplate.Execute(&buf, loc); err != nil {
		return "", fmt.Errorf("executing welcome template: %w", err)
	}
	return buf.String(), nil
}

// ActionPrompt builds the continuation instruction for one player action,
// embedding the current scene, the last few events, and a status line per
// NPC in the current location.
func ActionPrompt(playerName, action string, snap *game.Snapshot) (string, error) {
	data := &actionPromptData{
		Scene:      snap.Context.CurrentScene,
		PlayerName: playerName,
		Action:     action,
	}

	events := snap.Context.RecentEvents
	if len(events) > promptEventWindow {
		events = events[len(events)-promptEventWindow:]
	}
	data.Events = events

	if loc := snap.CurrentLocation(); loc != nil {
		data.NPCs = loc.NPCs
	}

	var buf bytes.Buffer
	if err := actionTemplate.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("executing action template: %w", err)
	}
	return buf.String(), nil
}
