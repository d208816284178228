package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerHistoryTools() {
	// ── list_history ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_history",
		mcp.WithDescription("List the diagnosis history of the active note with labels and rendered HTML"),
	), s.handleListHistory)

	// ── push_history ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("push_history",
		mcp.WithDescription("Append a diagnosis to the history. Give either plain text or an editor JSON document."),
		mcp.WithString("text", mcp.Description("Plain text; blank lines separate paragraphs")),
		mcp.WithString("editor", mcp.Description("Editor JSON document (takes precedence over text)")),
	), s.handlePushHistory)

	// ── update_history ─────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("update_history",
		mcp.WithDescription("Replace the history entry at index"),
		mcp.WithNumber("index", mcp.Description("0-based entry index"), mcp.Required()),
		mcp.WithString("text", mcp.Description("Plain text")),
		mcp.WithString("editor", mcp.Description("Editor JSON document (takes precedence over text)")),
	), s.handleUpdateHistory)

	// ── clear_history (destructive) ────────────────────
	s.mcp.AddTool(mcp.NewTool("clear_history",
		mcp.WithDescription("🛑 DESTRUCTIVE: Remove every history entry of the active note. Requires user approval."),
		mcp.WithToolAnnotation(mcp.ToolAnnotation{DestructiveHint: boolPtr(true)}),
	), s.handleClearHistory)
}

func (s *Server) handleListHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := s.requireActive(); err != nil {
		return nil, err
	}
	return jsonResult(s.history.List())
}

func (s *Server) handlePushHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	doc, err := documentArg(req.GetArguments())
	if err != nil {
		return nil, err
	}
	h, err := s.history.Push(ctx, doc)
	if err != nil {
		return nil, err
	}
	return jsonResult(h)
}

func (s *Server) handleUpdateHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	index, ok := intArg(args, "index")
	if !ok {
		return nil, fmt.Errorf("index is required")
	}
	doc, err := documentArg(args)
	if err != nil {
		return nil, err
	}
	updated, err := s.history.Update(ctx, index, doc)
	if err != nil {
		return nil, err
	}
	if !updated {
		return textResult(fmt.Sprintf("No entry at index %d; nothing changed", index)), nil
	}
	return textResult(fmt.Sprintf("Entry %d updated", index)), nil
}

func (s *Server) handleClearHistory(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	noteID, err := s.requireActive()
	if err != nil {
		return nil, err
	}
	n := len(s.history.List())
	if n == 0 {
		return textResult("History is already empty"), nil
	}

	meta := fmt.Sprintf(`{"noteId":%q,"entries":%d}`, noteID, n)
	approved, err := s.approval.Request(ctx, "clear_history",
		fmt.Sprintf("Clear %d history entr%s of note %s", n, plural(n, "y", "ies"), noteID), meta)
	if err != nil {
		return nil, err
	}
	if !approved {
		return textResult("Clear history rejected by user"), nil
	}
	if err := s.history.Clear(ctx); err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Cleared %d entr%s", n, plural(n, "y", "ies"))), nil
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}
