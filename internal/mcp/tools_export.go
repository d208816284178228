package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerExportTools() {
	// ── list_export_targets ────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_export_targets",
		mcp.WithDescription("List external databases the history can be exported to"),
	), s.handleListExportTargets)

	// ── run_export ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("run_export",
		mcp.WithDescription("Mirror a note's diagnosis history into an export target"),
		mcp.WithString("targetId", mcp.Description("Export target ID"), mcp.Required()),
		mcp.WithString("noteId", mcp.Description("Note to export (optional, defaults to the active note)")),
	), s.handleRunExport)
}

func (s *Server) handleListExportTargets(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	targets, err := s.export.ListTargets()
	if err != nil {
		return nil, fmt.Errorf("list export targets: %w", err)
	}

	type targetSummary struct {
		ID       string `json:"id"`
		Name     string `json:"name"`
		Driver   string `json:"driver"`
		Table    string `json:"table"`
		Schedule string `json:"schedule,omitempty"`
	}
	out := make([]targetSummary, 0, len(targets))
	for _, t := range targets {
		out = append(out, targetSummary{ID: t.ID, Name: t.Name, Driver: string(t.Driver), Table: t.Table, Schedule: t.Schedule})
	}
	return jsonResult(out)
}

func (s *Server) handleRunExport(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	targetID := req.GetString("targetId", "")
	if targetID == "" {
		return nil, fmt.Errorf("targetId is required")
	}
	noteID := req.GetString("noteId", "")
	if noteID == "" {
		noteID = s.ActiveNoteID()
	}
	run, err := s.export.Run(ctx, targetID, noteID)
	if run == nil && err != nil {
		return nil, err
	}
	// A failed run comes back with Status "error" and its message.
	return jsonResult(run)
}
