package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// ParseError reports a model response that could not be repaired into the
// expected JSON array.
type ParseError struct {
	Reason string
	Raw    string
}

func (e *ParseError) Error() string {
	return "parse generation response: " + e.Reason
}

// ParseArray extracts a JSON array of objects from a raw model response.
// Markdown fences, prose around the array, and a truncated tail are repaired
// here so no other layer needs to touch raw model output. The result has
// exactly want entries when want > 0; extra entries are dropped, a short
// array is a ParseError.
func ParseArray(content string, want int) ([]json.RawMessage, error) {
	text := stripFences(strings.TrimSpace(content))
	if text == "" {
		return nil, &ParseError{Reason: "empty response", Raw: content}
	}

	start := strings.Index(text, "[")
	if start < 0 {
		return nil, &ParseError{Reason: "no array in response", Raw: content}
	}

	candidate := text[start:]
	if end := strings.LastIndex(candidate, "]"); end >= 0 {
		candidate = candidate[:end+1]
	} else {
		candidate = closeTruncated(candidate)
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(candidate), &items); err != nil {
		repaired := closeTruncated(text[start:])
		if repaired == candidate {
			return nil, &ParseError{Reason: "malformed array: " + err.Error(), Raw: content}
		}
		items = nil
		if err := json.Unmarshal([]byte(repaired), &items); err != nil {
			return nil, &ParseError{Reason: "malformed array: " + err.Error(), Raw: content}
		}
	}

	if want > 0 {
		if len(items) < want {
			return nil, &ParseError{Reason: fmt.Sprintf("expected %d items, got %d", want, len(items)), Raw: content}
		}
		items = items[:want]
	}

	return items, nil
}

// closeTruncated trims a cut-off array fragment back to its last complete
// object and closes it.
func closeTruncated(fragment string) string {
	last := strings.LastIndex(fragment, "}")
	if last < 0 {
		return fragment
	}
	return fragment[:last+1] + "]"
}

func stripFences(text string) string {
	if !strings.HasPrefix(text, "```") {
		return text
	}
	text = strings.TrimPrefix(text, "```")
	if idx := strings.IndexByte(text, '\n'); idx >= 0 {
		text = text[idx+1:]
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")
	return strings.TrimSpace(text)
}
