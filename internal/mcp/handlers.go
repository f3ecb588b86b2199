package mcp

import (
	"context"
	"encoding/json"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/quill/internal/command"
	"github.com/hpungsan/quill/internal/errors"
)

// Handlers holds dependencies for MCP tool handlers.
type Handlers struct {
	interp *command.Interpreter
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(interp *command.Interpreter) *Handlers {
	return &Handlers{interp: interp}
}

// ExecuteRequest represents the arguments for thesis_execute.
type ExecuteRequest struct {
	Line string `json:"line"`
}

// HandleExecute handles the thesis_execute tool call. The interpreter already
// converts every fault into a failed result envelope, so the envelope is
// returned as-is; IsError mirrors the envelope's success flag.
func (h *Handlers) HandleExecute(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	input, err := decode[ExecuteRequest](req)
	if err != nil {
		return errorResult(errors.NewInvalidRequest(err.Error())), nil
	}

	result := h.interp.Execute(ctx, input.Line)
	out, err := mcp.NewToolResultJSON(result)
	if err != nil {
		return nil, err
	}
	out.IsError = !result.Success
	return out, nil
}

// HandleCommands handles the thesis_commands tool call.
func (h *Handlers) HandleCommands(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return successResult(h.interp.Registry().List())
}

// errorResult creates an MCP error result from any error.
func errorResult(err error) *mcp.CallToolResult {
	var payload map[string]any

	if qErr, ok := err.(*errors.QuillError); ok {
		errorObj := map[string]any{
			"code":    qErr.Code,
			"message": qErr.Message,
			"status":  qErr.Status,
		}
		// Only include details for non-internal errors to avoid leaking
		// sensitive info like file paths or SQL errors
		if qErr.Code != errors.ErrInternal && qErr.Details != nil {
			errorObj["details"] = qErr.Details
		}
		payload = map[string]any{"error": errorObj}
	} else {
		payload = map[string]any{
			"error": map[string]any{
				"code":    "INTERNAL",
				"message": "an internal error occurred",
				"status":  500,
			},
		}
	}

	content, _ := json.Marshal(payload)
	return &mcp.CallToolResult{
		Content: []mcp.Content{mcp.TextContent{Type: "text", Text: string(content)}},
		IsError: true,
	}
}

// successResult creates an MCP success result from any data.
func successResult(data any) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultJSON(data)
}
