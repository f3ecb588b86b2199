package mcp

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/hpungsan/quill/internal/command"
	"github.com/hpungsan/quill/internal/config"
	"github.com/hpungsan/quill/internal/errors"
	"github.com/hpungsan/quill/internal/repo"
	"github.com/hpungsan/quill/internal/store"
)

func newTestHandlers(t *testing.T) *Handlers {
	t.Helper()
	doc := repo.NewDocument(store.NewMemory(), config.DefaultConfig())
	return NewHandlers(command.NewInterpreter(command.NewDefaultRegistry(doc, "test")))
}

func callRequest(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text payload from a tool result.
func resultText(t *testing.T, result *mcp.CallToolResult) string {
	t.Helper()
	if len(result.Content) == 0 {
		t.Fatal("result has no content")
	}
	text, ok := result.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content = %T, want TextContent", result.Content[0])
	}
	return text.Text
}

func TestHandleExecute(t *testing.T) {
	ctx := context.Background()
	h := newTestHandlers(t)

	result, err := h.HandleExecute(ctx, callRequest(map[string]any{"line": "add-chapter Introduction"}))
	if err != nil {
		t.Fatalf("HandleExecute failed: %v", err)
	}
	if result.IsError {
		t.Fatalf("IsError = true: %s", resultText(t, result))
	}

	var envelope command.Result
	if err := json.Unmarshal([]byte(resultText(t, result)), &envelope); err != nil {
		t.Fatalf("payload is not a result envelope: %v", err)
	}
	if !envelope.Success || !strings.Contains(envelope.Message, "Introduction") {
		t.Errorf("envelope = %+v", envelope)
	}
}

func TestHandleExecute_FailedCommand(t *testing.T) {
	ctx := context.Background()
	h := newTestHandlers(t)

	result, err := h.HandleExecute(ctx, callRequest(map[string]any{"line": "no-such-command"}))
	if err != nil {
		t.Fatalf("HandleExecute failed: %v", err)
	}
	if !result.IsError {
		t.Error("IsError should mirror the envelope's failure")
	}

	var envelope command.Result
	if err := json.Unmarshal([]byte(resultText(t, result)), &envelope); err != nil {
		t.Fatalf("payload is not a result envelope: %v", err)
	}
	if envelope.Success {
		t.Error("envelope should report failure")
	}
}

func TestHandleCommands(t *testing.T) {
	ctx := context.Background()
	h := newTestHandlers(t)

	result, err := h.HandleCommands(ctx, callRequest(nil))
	if err != nil {
		t.Fatalf("HandleCommands failed: %v", err)
	}

	var defs []command.Definition
	if err := json.Unmarshal([]byte(resultText(t, result)), &defs); err != nil {
		t.Fatalf("payload is not a definition list: %v", err)
	}
	names := make(map[string]bool, len(defs))
	for _, def := range defs {
		names[def.Name] = true
	}
	for _, want := range []string{"start", "add-chapter", "merge-sections", "export", "status"} {
		if !names[want] {
			t.Errorf("missing command %q", want)
		}
	}
}

func TestErrorResult_HidesInternalDetails(t *testing.T) {
	internal := errors.NewInternal(nil)
	internal.Details = map[string]any{"path": "/home/user/.quill/quill.db"}

	text := resultText(t, errorResult(internal))
	if strings.Contains(text, "/home/user") {
		t.Errorf("internal details leaked: %s", text)
	}

	notFound := errors.NewNotFound("chapter", "7")
	text = resultText(t, errorResult(notFound))
	if !strings.Contains(text, "NOT_FOUND") {
		t.Errorf("payload = %s", text)
	}
}

func TestErrorResult_PlainError(t *testing.T) {
	text := resultText(t, errorResult(json.Unmarshal([]byte("{"), &struct{}{})))
	if !strings.Contains(text, "INTERNAL") {
		t.Errorf("payload = %s", text)
	}
	if strings.Contains(text, "unexpected end") {
		t.Errorf("raw error message leaked: %s", text)
	}
}

func TestDecode(t *testing.T) {
	req := callRequest(map[string]any{"line": "status"})
	input, err := decode[ExecuteRequest](req)
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if input.Line != "status" {
		t.Errorf("Line = %q", input.Line)
	}

	// Absent fields decode to zero values
	input, err = decode[ExecuteRequest](callRequest(nil))
	if err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if input.Line != "" {
		t.Errorf("Line = %q, want empty", input.Line)
	}
}
