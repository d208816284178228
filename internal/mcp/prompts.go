package mcpserver

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerPrompts() {
	s.mcp.AddPrompt(mcp.NewPrompt("review_history",
		mcp.WithPromptDescription("Summarise a note's diagnosis history and suggest the next entry"),
		mcp.WithArgument("noteId",
			mcp.ArgumentDescription("Note to review"),
			mcp.RequiredArgument(),
		),
	), s.handleReviewHistoryPrompt)

	s.mcp.AddPrompt(mcp.NewPrompt("annotate_scan",
		mcp.WithPromptDescription("Place a scan on the canvas, mark findings and record them in the history"),
		mcp.WithArgument("src",
			mcp.ArgumentDescription("Image URL or path of the scan"),
			mcp.RequiredArgument(),
		),
	), s.handleAnnotateScanPrompt)
}

func (s *Server) handleReviewHistoryPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	noteID := req.Params.Arguments["noteId"]
	if noteID == "" {
		return nil, fmt.Errorf("noteId is required")
	}
	state, err := s.activate(ctx, noteID)
	if err != nil {
		return nil, err
	}

	history := plainHistory(state.History)
	if history == "" {
		history = "(no entries yet)"
	}
	return &mcp.GetPromptResult{
		Description: fmt.Sprintf("Review the history of %s", state.Note.Title),
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Review the diagnosis history of note "%s" (patient: %s). The note is now active.

%s

1. Summarise how the findings changed from the first entry to the last.
2. Point out contradictions or gaps between entries.
3. Draft the next entry and, once confirmed, add it with push_history.

Do not call clear_history.`, state.Note.Title, state.Note.Patient, history),
				},
			},
		},
	}, nil
}

func (s *Server) handleAnnotateScanPrompt(ctx context.Context, req mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	src := req.Params.Arguments["src"]
	return &mcp.GetPromptResult{
		Description: "Annotate a scan on the active note",
		Messages: []mcp.PromptMessage{
			{
				Role: mcp.RoleUser,
				Content: mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf(`Annotate the scan at %s on the active note. Follow these steps:

1. Use insert_image to place the scan on the canvas
2. Mark each finding with draw_stroke (red, width 3) around the region
3. Use list_canvas_objects, then select_canvas_objects and group_selection to group the marks of one finding
4. Record the findings as a new entry with push_history`, src),
				},
			},
		},
	}, nil
}
