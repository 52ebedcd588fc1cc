package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	agenterrors "github.com/chainweave/agentkit/pkg/errors"
)

// ToolHandler serves one registered tool invocation.
type ToolHandler func(ctx context.Context, args map[string]any) (*mcp.CallToolResult, error)

// Server exposes registered tools over the MCP protocol.
type Server struct {
	mcpServer *server.MCPServer
}

// NewServer creates an MCP server with the given identity.
func NewServer(name, version string) *Server {
	return &Server{
		mcpServer: server.NewMCPServer(name, version),
	}
}

// RegisterTool registers a tool under the given name and JSON schema. Only
// object schemas can be exposed to callers; anything else is an
// UnsupportedSchemaError.
func (s *Server) RegisterTool(name, description string, schema map[string]any, handler ToolHandler) error {
	raw, err := encodeObjectSchema(name, schema)
	if err != nil {
		return err
	}

	tool := mcp.Tool{
		Name:           name,
		Description:    description,
		RawInputSchema: raw,
	}
	s.mcpServer.AddTool(tool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args, _ := request.Params.Arguments.(map[string]any)
		return handler(ctx, args)
	})
	return nil
}

// ValidateObjectSchema reports whether the schema can be exposed as a
// tool input schema, without registering anything.
func ValidateObjectSchema(name string, schema map[string]any) error {
	_, err := encodeObjectSchema(name, schema)
	return err
}

// ServeStdio blocks serving the registered tools on stdio.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func encodeObjectSchema(name string, schema map[string]any) (json.RawMessage, error) {
	if schema == nil {
		schema = map[string]any{"type": "object", "properties": map[string]any{}}
	}
	if t, ok := schema["type"].(string); !ok || t != "object" {
		return nil, agenterrors.NewUnsupportedSchema("tool " + name + ": input schema must be an object schema").
			WithDetail("tool", name)
	}
	raw, err := json.Marshal(schema)
	if err != nil {
		return nil, agenterrors.NewInternal("encode input schema", err)
	}
	return raw, nil
}
