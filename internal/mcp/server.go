// Package mcp exposes the thesis command surface as MCP tools over stdio,
// so agent clients can drive the same interpreter the CLI uses.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/hpungsan/quill/internal/command"
)

// toolEntry pairs a tool definition with a handler factory.
type toolEntry struct {
	def     mcp.Tool
	handler func(*Handlers) server.ToolHandlerFunc
}

// toolRegistry maps tool names to their definitions and handler factories.
var toolRegistry = map[string]toolEntry{
	"thesis_execute": {
		def: mcp.NewTool("thesis_execute",
			mcp.WithDescription("Execute one thesis command line (e.g. \"add-chapter Introduction\"). Returns the uniform result envelope with success, message, and optional data."),
			mcp.WithString("line",
				mcp.Required(),
				mcp.Description("The command line to execute; the first token is the command name, the rest are positional arguments"),
			),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleExecute },
	},
	"thesis_commands": {
		def: mcp.NewTool("thesis_commands",
			mcp.WithDescription("List all available thesis commands with name, description, and usage."),
		),
		handler: func(h *Handlers) server.ToolHandlerFunc { return h.HandleCommands },
	},
}

// NewServer creates a new MCP server with quill tools registered.
func NewServer(interp *command.Interpreter, version string) *server.MCPServer {
	s := server.NewMCPServer(
		"quill",
		version,
		server.WithToolCapabilities(true),
	)

	h := NewHandlers(interp)
	for _, entry := range toolRegistry {
		s.AddTool(entry.def, entry.handler(h))
	}

	return s
}

// Run starts the MCP server using stdio transport.
func Run(interp *command.Interpreter, version string) error {
	s := NewServer(interp, version)
	return server.ServeStdio(s)
}
