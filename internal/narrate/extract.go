package narrate

import "strings"

// machineSectionDelimiter marks the start of a trailing machine-readable
// section some responses append after the narrative text.
const machineSectionDelimiter = "**World State JSON:**"

// ExtractText pulls narrative text out of a backend response, preferring
// the flat text field and falling back to the first structured content
// block. Returns "" if neither yields text.
func ExtractText(resp *Response) string {
	if resp == nil {
		return ""
	}
	if t := strings.TrimSpace(resp.Text); t != "" {
		return t
	}
	if len(resp.Content) > 0 {
		return strings.TrimSpace(resp.Content[0].Text)
	}
	return ""
}

// StripMachineSection drops everything from the machine-readable delimiter
// onward, keeping only the narrative that precedes it.
func StripMachineSection(text string) string {
	if idx := strings.Index(text, machineSectionDelimiter); idx >= 0 {
		return strings.TrimSpace(text[:idx])
	}
	return text
}

// sentenceBoundaryShare is how far into the truncation budget a sentence
// boundary must lie for the cut to land on it instead of hard-cutting.
const sentenceBoundaryShare = 0.7

// Truncate bounds text to max runes. Text that fits is returned unchanged.
// Otherwise the cut lands on the nearest sentence-terminating punctuation,
// provided that boundary lies beyond 70% of the budget; failing that the
// text is hard-cut and an ellipsis appended.
func Truncate(text string, max int) string {
	runes := []rune(text)
	if len(runes) <= max {
		return text
	}

	cut := runes[:max]
	boundary := -1
	for i := len(cut) - 1; i >= 0; i-- {
		if cut[i] == '.' || cut[i] == '!' || cut[i] == '?' {
			boundary = i
			break
		}
	}

	if boundary >= 0 && float64(boundary) > float64(max)*sentenceBoundaryShare {
		return string(cut[:boundary+1])
	}
	return string(cut) + "…"
}
