package mcp

import (
	"errors"
	"fmt"
	"reflect"
	"testing"

	mcpgo "github.com/mark3labs/mcp-go/mcp"
)

type walletPositions struct {
	Address   string  `json:"address"`
	Positions []token `json:"positions"`
}

type token struct {
	Symbol string `json:"symbol"`
	Amount string `json:"amount"`
}

func (w walletPositions) Validate() error {
	if w.Address == "" {
		return fmt.Errorf("address is required")
	}
	return nil
}

func TestParsePayload_StructuredContentRoundTrip(t *testing.T) {
	want := walletPositions{
		Address:   "0xabc",
		Positions: []token{{Symbol: "USDC", Amount: "12.5"}},
	}
	result := &mcpgo.CallToolResult{
		StructuredContent: map[string]any{
			"address": "0xabc",
			"positions": []any{
				map[string]any{"symbol": "USDC", "amount": "12.5"},
			},
		},
	}

	got, err := ParsePayload[walletPositions](result)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got %+v\nwant %+v", got, want)
	}
}

func TestParsePayload_ErrorPath(t *testing.T) {
	result := &mcpgo.CallToolResult{
		IsError: true,
		Content: []mcpgo.Content{mcpgo.TextContent{Type: "text", Text: "boom"}},
	}

	_, err := ParsePayload[walletPositions](result)
	if err == nil {
		t.Fatal("expected an error")
	}
	if err.Error() != "boom" {
		t.Errorf("error message must be exactly the remote text, got %q", err.Error())
	}
}

func TestParsePayload_ErrorPathFirstTextItemOnly(t *testing.T) {
	result := &mcpgo.CallToolResult{
		IsError: true,
		Content: []mcpgo.Content{
			mcpgo.TextContent{Type: "text", Text: "boom"},
			mcpgo.TextContent{Type: "text", Text: "stack trace follows"},
		},
	}

	_, err := ParsePayload[walletPositions](result)
	if err == nil {
		t.Fatal("expected an error")
	}
	if err.Error() != "boom" {
		t.Errorf("error must carry only the first text item, got %q", err.Error())
	}
}

func TestParsePayload_FirstTextItemIsJSONSource(t *testing.T) {
	result := &mcpgo.CallToolResult{
		Content: []mcpgo.Content{
			mcpgo.TextContent{Type: "text", Text: `{"address":"0xabc","positions":[]}`},
			mcpgo.TextContent{Type: "text", Text: "human-readable summary"},
		},
	}

	got, err := ParsePayload[walletPositions](result)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Address != "0xabc" {
		t.Errorf("unexpected address %q", got.Address)
	}
}

func TestParsePayload_TextJSON(t *testing.T) {
	result := &mcpgo.CallToolResult{
		Content: []mcpgo.Content{mcpgo.TextContent{Type: "text", Text: `{"address":"0xdef","positions":[]}`}},
	}

	got, err := ParsePayload[walletPositions](result)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Address != "0xdef" {
		t.Errorf("unexpected address %q", got.Address)
	}
}

func TestParsePayload_PlainTextOnSuccess(t *testing.T) {
	result := &mcpgo.CallToolResult{
		Content: []mcpgo.Content{mcpgo.TextContent{Type: "text", Text: "all good, thanks"}},
	}

	_, err := ParsePayload[walletPositions](result)
	if err == nil {
		t.Fatal("expected an error for plain text on a success path")
	}
	var pt *PlainTextError
	if !errors.As(err, &pt) {
		t.Fatalf("expected PlainTextError, got %T: %v", err, err)
	}
	if pt.Text != "all good, thanks" {
		t.Errorf("unexpected text %q", pt.Text)
	}
}

func TestParsePayload_ValidationFailure(t *testing.T) {
	result := &mcpgo.CallToolResult{
		Content: []mcpgo.Content{mcpgo.TextContent{Type: "text", Text: `{"positions":[]}`}},
	}

	if _, err := ParsePayload[walletPositions](result); err == nil {
		t.Fatal("expected a validation error for a payload without an address")
	}
}

func TestParsePayload_NilResult(t *testing.T) {
	if _, err := ParsePayload[walletPositions](nil); err == nil {
		t.Fatal("expected an error for a nil result")
	}
}

func TestParseText(t *testing.T) {
	result := &mcpgo.CallToolResult{
		Content: []mcpgo.Content{
			mcpgo.TextContent{Type: "text", Text: "plain answer"},
			mcpgo.TextContent{Type: "text", Text: "second line"},
		},
	}
	got, err := ParseText(result)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != "plain answer\nsecond line" {
		t.Errorf("unexpected text %q", got)
	}
}

func TestParseText_ErrorPath(t *testing.T) {
	result := &mcpgo.CallToolResult{
		IsError: true,
		Content: []mcpgo.Content{mcpgo.TextContent{Type: "text", Text: "upstream down"}},
	}
	_, err := ParseText(result)
	if err == nil || err.Error() != "upstream down" {
		t.Fatalf("expected the remote message, got %v", err)
	}
}
