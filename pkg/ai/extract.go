// Package ai wraps language model providers with resilience and recovers
// structured JSON from their free-text output.
package ai

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// fencePattern matches the first markdown code block, optionally tagged
// json, and captures its interior.
var fencePattern = regexp.MustCompile("(?s)```(?:json)?\\s*\\n?(.*?)```")

const previewLen = 120

// ParseError is returned when no extraction strategy recovers a JSON value
// from a model response. It carries a preview of the offending text and the
// underlying decode error.
type ParseError struct {
	Preview string
	Err     error
}

func (e *ParseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("no JSON value found in response %q: %v", e.Preview, e.Err)
	}
	return fmt.Sprintf("no JSON value found in response %q", e.Preview)
}

func (e *ParseError) Unwrap() error { return e.Err }

// Extract recovers a JSON value from free-text model output. The text may
// be pure JSON, fenced in a code block, or interleaved with prose.
//
// Strategies run in strict order: a fenced block is parsed first and a
// parse failure there is terminal, because a fence signals clear intent and
// its content must not be silently reinterpreted. Without a fence the
// earliest of '[' or '{' decides whether an array or object span is
// captured (closing delimiter found from the end); as a last resort the
// whole trimmed input is parsed.
func Extract(content string) (any, error) {
	var v any
	if err := ExtractInto(content, &v); err != nil {
		return nil, err
	}
	return v, nil
}

// ExtractInto is Extract decoding into a caller-supplied value.
func ExtractInto(content string, v any) error {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return &ParseError{Preview: preview(content), Err: fmt.Errorf("empty response")}
	}

	if m := fencePattern.FindStringSubmatch(content); m != nil {
		inner := strings.TrimSpace(m[1])
		if err := json.Unmarshal([]byte(inner), v); err != nil {
			return &ParseError{Preview: preview(inner), Err: err}
		}
		return nil
	}

	if span, ok := delimitedSpan(content); ok {
		if err := json.Unmarshal([]byte(span), v); err == nil {
			return nil
		}
	}

	if err := json.Unmarshal([]byte(trimmed), v); err != nil {
		return &ParseError{Preview: preview(trimmed), Err: err}
	}
	return nil
}

// delimitedSpan captures the outermost bracketed region of the text. The
// delimiter that appears first decides between array and object so that an
// object nested inside a top-level array is not captured by mistake.
func delimitedSpan(content string) (string, bool) {
	arrayStart := strings.Index(content, "[")
	objectStart := strings.Index(content, "{")

	var start int
	var closer string
	switch {
	case arrayStart < 0 && objectStart < 0:
		return "", false
	case objectStart < 0 || (arrayStart >= 0 && arrayStart < objectStart):
		start, closer = arrayStart, "]"
	default:
		start, closer = objectStart, "}"
	}

	end := strings.LastIndex(content, closer)
	if end <= start {
		return "", false
	}
	return content[start : end+1], true
}

func preview(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > previewLen {
		return s[:previewLen] + "..."
	}
	return s
}
