// Package mcpserver is the MCP front end: it registers the fixed tool
// catalog with an in-process MCP server and serves it over stdio,
// translating each CallToolRequest's raw arguments into the map the
// Dispatcher expects and folding its result (or *rpcerr.Error) back into
// a CallToolResult.
package mcpserver

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/deepreason/orchestrator/pkg/dispatch"
	"github.com/deepreason/orchestrator/pkg/rpcerr"
)

// Server wraps an *mcp.Server bound to one Dispatcher.
type Server struct {
	mcpServer  *mcp.Server
	dispatcher *dispatch.Dispatcher
}

// New builds a Server, registering every tool in dispatch.ToolNames.
func New(name, version string, d *dispatch.Dispatcher) *Server {
	srv := &Server{
		dispatcher: d,
		mcpServer: mcp.NewServer(&mcp.Implementation{
			Name:    name,
			Version: version,
		}, &mcp.ServerOptions{HasTools: true}),
	}
	for _, tool := range dispatch.ToolNames() {
		srv.registerTool(tool)
	}
	return srv
}

// Run serves the registered tool catalog over stdio until ctx is done or
// the transport itself fails.
func (s *Server) Run(ctx context.Context) error {
	slog.Info("mcp server starting", "transport", "stdio")
	return s.mcpServer.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) registerTool(tool dispatch.ToolName) {
	def := toolCatalog[tool]

	mcpTool := &mcp.Tool{
		Name:        string(tool),
		Description: def.description,
		InputSchema: def.schema,
	}

	handler := func(ctx context.Context, request *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var args map[string]any
		if len(request.Params.Arguments) > 0 {
			if err := json.Unmarshal(request.Params.Arguments, &args); err != nil {
				return errorResult(rpcerr.Wrap(rpcerr.KindInvalidInput, err)), nil
			}
		}

		result, err := s.dispatcher.Dispatch(ctx, tool, args)
		if err != nil {
			return errorResult(err), nil
		}
		return successResult(result)
	}

	s.mcpServer.AddTool(mcpTool, handler)
}

func successResult(v any) (*mcp.CallToolResult, error) {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return errorResult(rpcerr.Wrap(rpcerr.KindInternal, err)), nil
	}
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(raw)}},
	}, nil
}

func errorResult(err error) *mcp.CallToolResult {
	rerr, ok := err.(*rpcerr.Error)
	if !ok {
		rerr = rpcerr.Wrap(rpcerr.KindInternal, err)
	}
	data := map[string]any{"kind": rerr.Kind}
	if rerr.CorrelationID != "" {
		data["correlationId"] = rerr.CorrelationID
	}
	if rerr.RetryAfterMs > 0 {
		data["retryAfterMs"] = rerr.RetryAfterMs
	}
	payload, _ := json.MarshalIndent(map[string]any{
		"message": rerr.Error(),
		"data":    data,
	}, "", "  ")
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: string(payload)}},
		IsError: true,
	}
}
