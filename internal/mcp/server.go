package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"diagnote/internal/domain"
	"diagnote/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server is the MCP server of the app. It lets agents inspect a note,
// annotate its canvas and maintain its diagnosis history.
type Server struct {
	mcp      *server.MCPServer
	emitter  EventEmitter
	approval *ApprovalQueue

	notes   *service.NoteService
	canvas  *service.CanvasService
	history *service.HistoryService
	export  *service.ExportService
	entries domain.HistoryEntryStore
}

// Deps holds what the App layer passes to the MCP server.
type Deps struct {
	Emitter   EventEmitter
	Notes     *service.NoteService
	Canvas    *service.CanvasService
	History   *service.HistoryService
	Export    *service.ExportService
	Entries   domain.HistoryEntryStore // read by the note:// resource
	Approvals ApprovalStore            // where destructive tools ask the app for approval
}

// New creates and configures the MCP server with all tools and resources.
func New(ctx context.Context, deps Deps) *Server {
	approval := NewApprovalQueue(ctx, deps.Approvals)
	s := &Server{
		emitter:  deps.Emitter,
		approval: approval,
		notes:    deps.Notes,
		canvas:   deps.Canvas,
		history:  deps.History,
		export:   deps.Export,
		entries:  deps.Entries,
	}

	s.mcp = server.NewMCPServer(
		"diagnote-mcp",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
		server.WithPromptCapabilities(true),
	)

	s.registerNoteTools()
	s.registerCanvasTools()
	s.registerHistoryTools()
	if s.export != nil {
		s.registerExportTools()
	}
	s.registerResources()
	s.registerPrompts()

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	log.Println("[MCP] Starting stdio server...")
	return server.ServeStdio(s.mcp)
}

// ActiveNoteID returns the note tools operate on. The canvas and history
// services are shared with the UI, so a note opened there is active here
// too.
func (s *Server) ActiveNoteID() string {
	return s.canvas.NoteID()
}

// activate opens noteID in the canvas and history services.
func (s *Server) activate(ctx context.Context, noteID string) (*domain.NoteState, error) {
	note, err := s.notes.GetNote(noteID)
	if err != nil {
		return nil, err
	}
	if _, err := s.canvas.Open(ctx, noteID); err != nil {
		return nil, err
	}
	list, err := s.history.Open(ctx, noteID)
	if err != nil {
		return nil, err
	}

	s.emitter.Emit(ctx, "mcp:note-activated", map[string]string{"noteId": noteID})
	return &domain.NoteState{Note: *note, History: list}, nil
}

// requireActive fails when no note is open.
func (s *Server) requireActive() (string, error) {
	if id := s.ActiveNoteID(); id != "" {
		return id, nil
	}
	return "", fmt.Errorf("no active note (use set_active_note first)")
}

// ── Helpers ────────────────────────────────────────────────

// textResult creates a simple text tool result.
func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{Type: "text", Text: text},
		},
	}
}

// jsonResult serializes v to JSON and wraps it in a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal result: %w", err)
	}
	return textResult(string(data)), nil
}

func boolPtr(v bool) *bool { return &v }
