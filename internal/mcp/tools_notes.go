package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerNoteTools() {
	// ── list_notes ─────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_notes",
		mcp.WithDescription("List all diagnostic notes"),
	), s.handleListNotes)

	// ── set_active_note ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("set_active_note",
		mcp.WithDescription("Open a note. Canvas and history tools act on the active note."),
		mcp.WithString("noteId",
			mcp.Description("ID of the note to open"),
			mcp.Required(),
		),
	), s.handleSetActiveNote)
}

func (s *Server) handleListNotes(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	notes, err := s.notes.ListNotes()
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	type noteSummary struct {
		ID      string `json:"id"`
		Title   string `json:"title"`
		Patient string `json:"patient,omitempty"`
		Active  bool   `json:"active,omitempty"`
	}
	active := s.ActiveNoteID()
	out := make([]noteSummary, 0, len(notes))
	for _, n := range notes {
		out = append(out, noteSummary{ID: n.ID, Title: n.Title, Patient: n.Patient, Active: n.ID == active})
	}
	return jsonResult(out)
}

func (s *Server) handleSetActiveNote(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	noteID := req.GetString("noteId", "")
	if noteID == "" {
		return nil, fmt.Errorf("noteId is required")
	}
	state, err := s.activate(ctx, noteID)
	if err != nil {
		return nil, fmt.Errorf("open note: %w", err)
	}
	return textResult(fmt.Sprintf("Active note set to %s (%q, %d history entries)",
		noteID, state.Note.Title, len(state.History))), nil
}
