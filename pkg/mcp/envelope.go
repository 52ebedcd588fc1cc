package mcp

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mark3labs/mcp-go/mcp"
)

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]+`)

// TagURIAuthority derives the authority part of a tag URI from an agent
// id: lowercased, runs of non-alphanumeric characters collapsed to a
// single hyphen, leading and trailing hyphens trimmed. The transform is
// part of the wire contract and must stay stable.
func TagURIAuthority(agentID string) string {
	lowered := strings.ToLower(agentID)
	hyphenated := nonAlphanumeric.ReplaceAllString(lowered, "-")
	return strings.Trim(hyphenated, "-")
}

// NewA2AResponse wraps a task or message as a resource content item so it
// can travel over the tool-invocation protocol. The resource URI is a tag
// URI derived from the agent id and the current date.
func NewA2AResponse(v any, agentID string) (*mcp.CallToolResult, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode task envelope: %w", err)
	}
	uri := fmt.Sprintf("tag:%s,%s:%s", TagURIAuthority(agentID), time.Now().UTC().Format("2006-01-02"), uuid.NewString())
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.EmbeddedResource{
				Type: "resource",
				Resource: mcp.TextResourceContents{
					URI:      uri,
					MIMEType: "application/json",
					Text:     string(payload),
				},
			},
		},
	}, nil
}

// NewErrorResponse builds the protocol-level error envelope. When an
// error name is given the text is prefixed as "[Name]: message".
func NewErrorResponse(message, errorName string) *mcp.CallToolResult {
	text := message
	if errorName != "" {
		text = fmt.Sprintf("[%s]: %s", errorName, message)
	}
	return &mcp.CallToolResult{
		IsError: true,
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}
