// Package server bridges a tool registry onto the MCP protocol and runs it
// over the stdio transport.
package server

import (
	"context"
	"sort"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"toolbridge/internal/logger"
	"toolbridge/internal/tool"
)

// Version is reported to MCP hosts during initialization.
const Version = "1.0.0"

// Server wraps an MCP server around a tool registry.
type Server struct {
	name     string
	registry *tool.Registry
	log      *logger.Logger
	mcp      *mcp.Server
}

// New builds an MCP server exposing every tool in the registry. A nil
// logger disables diagnostics.
func New(name string, registry *tool.Registry, log *logger.Logger) *Server {
	if log == nil {
		log = logger.New(nil, logger.LevelError)
	}
	s := &Server{
		name:     name,
		registry: registry,
		log:      log,
	}

	impl := &mcp.Implementation{
		Name:    name,
		Version: Version,
	}
	srv := mcp.NewServer(impl, nil)

	for _, def := range registry.List() {
		s.addTool(srv, def)
	}

	s.mcp = srv
	return s
}

// mcpTool translates a definition into its wire form, including the
// read-only behavior hint hosts use to gate confirmation prompts.
func mcpTool(def *tool.Definition) *mcp.Tool {
	return &mcp.Tool{
		Name:        def.Name,
		Description: def.Description,
		InputSchema: def.Schema.JSONSchema(),
		Annotations: &mcp.ToolAnnotations{ReadOnlyHint: def.ReadOnly},
	}
}

func (s *Server) addTool(srv *mcp.Server, def *tool.Definition) {
	t := mcpTool(def)
	mcp.AddTool(srv, t, func(ctx context.Context, req *mcp.CallToolRequest, args map[string]any) (*mcp.CallToolResult, any, error) {
		start := time.Now()
		s.log.ToolCall(def.Name, argNames(args))

		result := s.registry.Dispatch(ctx, def.Name, tool.Args(args))

		s.log.ToolResult(def.Name, result.Status, result.Payload, time.Since(start))
		return &mcp.CallToolResult{
			Content: []mcp.Content{&mcp.TextContent{Text: result.Payload}},
			IsError: result.Status == tool.StatusError,
		}, nil, nil
	})
}

// Run serves MCP over stdin/stdout until the context is canceled or the
// host closes the stream. Diagnostics go to stderr only.
func (s *Server) Run(ctx context.Context) error {
	s.log.Info("%s serving %d tools over stdio", s.name, len(s.registry.List()))
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}

func argNames(args map[string]any) []string {
	names := make([]string, 0, len(args))
	for k := range args {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}
