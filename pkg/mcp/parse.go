package mcp

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
)

// Validator lets payload types check their own shape after decoding.
// ParsePayload calls it when the target type implements it, so protocol
// drift in a remote server fails with a precise error instead of a
// downstream nil dereference.
type Validator interface {
	Validate() error
}

// PlainTextError reports a successful remote response that carried plain
// text where the caller expected JSON. It is distinguishable with
// errors.As so callers can fall back to ParseText when appropriate.
type PlainTextError struct {
	Text string
}

func (e *PlainTextError) Error() string {
	return fmt.Sprintf("expected JSON tool response, got plain text: %.120s", e.Text)
}

// ParsePayload normalizes a remote tool response into a validated payload
// of type T. Error responses become a native error carrying exactly the
// remote's text. Non-error responses prefer the structured payload field
// and fall back to parsing the first text item as JSON.
func ParsePayload[T any](result *mcp.CallToolResult) (T, error) {
	var zero T
	if result == nil {
		return zero, errors.New("mcp tool result is nil")
	}

	if result.IsError {
		return zero, fmt.Errorf("%s", remoteErrorText(result))
	}

	if result.StructuredContent != nil {
		raw, err := json.Marshal(result.StructuredContent)
		if err != nil {
			return zero, fmt.Errorf("re-encode structured content: %w", err)
		}
		return decodePayload[T](raw)
	}

	text := firstTextContent(result.Content)
	if text == "" {
		return zero, errors.New("mcp tool response has no content")
	}
	if !json.Valid([]byte(text)) {
		return zero, &PlainTextError{Text: text}
	}
	return decodePayload[T]([]byte(text))
}

// ParseText normalizes a remote tool response into its plain text
// payload, with the same error-path handling as ParsePayload.
func ParseText(result *mcp.CallToolResult) (string, error) {
	if result == nil {
		return "", errors.New("mcp tool result is nil")
	}
	if result.IsError {
		return "", fmt.Errorf("%s", remoteErrorText(result))
	}
	return extractTextContent(result.Content), nil
}

func decodePayload[T any](raw []byte) (T, error) {
	var out T
	if err := json.Unmarshal(raw, &out); err != nil {
		var zero T
		return zero, fmt.Errorf("decode tool payload: %w", err)
	}
	if v, ok := any(out).(Validator); ok {
		if err := v.Validate(); err != nil {
			var zero T
			return zero, fmt.Errorf("invalid tool payload: %w", err)
		}
	} else if v, ok := any(&out).(Validator); ok {
		if err := v.Validate(); err != nil {
			var zero T
			return zero, fmt.Errorf("invalid tool payload: %w", err)
		}
	}
	return out, nil
}

func remoteErrorText(result *mcp.CallToolResult) string {
	if text := firstTextContent(result.Content); text != "" {
		return text
	}
	return "remote tool call failed"
}

// firstTextContent returns the first text item only. The error message and
// the JSON source come from the first item; trailing items are advisory.
func firstTextContent(items []mcp.Content) string {
	for _, item := range items {
		switch content := item.(type) {
		case mcp.TextContent:
			return content.Text
		case *mcp.TextContent:
			return content.Text
		}
	}
	return ""
}

// extractTextContent joins every text item; only ParseText wants the full
// transcript.
func extractTextContent(items []mcp.Content) string {
	if len(items) == 0 {
		return ""
	}
	var parts []string
	for _, item := range items {
		switch content := item.(type) {
		case mcp.TextContent:
			parts = append(parts, content.Text)
		case *mcp.TextContent:
			parts = append(parts, content.Text)
		}
	}
	return strings.Join(parts, "\n")
}
