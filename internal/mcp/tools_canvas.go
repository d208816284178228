package mcpserver

import (
	"context"
	"fmt"

	"diagnote/internal/annotate"

	"github.com/mark3labs/mcp-go/mcp"
)

func (s *Server) registerCanvasTools() {
	// ── list_canvas_objects ────────────────────────────
	s.mcp.AddTool(mcp.NewTool("list_canvas_objects",
		mcp.WithDescription("List the top-level objects on the active note's canvas with their handles and placement"),
	), s.handleListCanvasObjects)

	// ── select_canvas_objects ──────────────────────────
	s.mcp.AddTool(mcp.NewTool("select_canvas_objects",
		mcp.WithDescription("Replace the canvas selection. Two or more handles form a multi-selection."),
		mcp.WithString("handles",
			mcp.Description("Comma-separated object handles (or a JSON array)"),
			mcp.Required(),
		),
	), s.handleSelectCanvasObjects)

	// ── group_selection ────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("group_selection",
		mcp.WithDescription("Group the current multi-selection into one composite. Members keep their placement."),
	), s.handleGroupSelection)

	// ── ungroup_selection ──────────────────────────────
	s.mcp.AddTool(mcp.NewTool("ungroup_selection",
		mcp.WithDescription("Dissolve the selected composite back into its members"),
	), s.handleUngroupSelection)

	// ── insert_image ───────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("insert_image",
		mcp.WithDescription("Place an image on the canvas at half size, clipped to a circle. Accepts http(s) URLs, data URLs and file paths."),
		mcp.WithString("src", mcp.Description("Image source"), mcp.Required()),
	), s.handleInsertImage)

	// ── draw_stroke ────────────────────────────────────
	s.mcp.AddTool(mcp.NewTool("draw_stroke",
		mcp.WithDescription("Draw a free-hand stroke through the given points"),
		mcp.WithString("points",
			mcp.Description(`JSON array of points, e.g. [{"x":10,"y":20},{"x":40,"y":60}] or [[10,20],[40,60]]`),
			mcp.Required(),
		),
		mcp.WithNumber("width", mcp.Description("Brush width (default 5)")),
		mcp.WithString("color", mcp.Description("Brush color (default black)")),
	), s.handleDrawStroke)
}

func (s *Server) handleListCanvasObjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	if _, err := s.requireActive(); err != nil {
		return nil, err
	}
	scene, err := s.canvas.Scene()
	if err != nil {
		return nil, err
	}
	selected, _ := s.canvas.Selection()
	isSelected := make(map[string]bool, len(selected))
	for _, h := range selected {
		isSelected[h] = true
	}

	type objectSummary struct {
		Handle   string  `json:"handle"`
		Type     string  `json:"type"`
		Left     float64 `json:"left"`
		Top      float64 `json:"top"`
		Width    float64 `json:"width"`
		Height   float64 `json:"height"`
		Members  int     `json:"members,omitempty"`
		Selected bool    `json:"selected,omitempty"`
	}
	out := make([]objectSummary, 0, len(scene.Objects))
	for _, o := range scene.Objects {
		out = append(out, objectSummary{
			Handle:   o.Handle,
			Type:     o.Type,
			Left:     o.Left,
			Top:      o.Top,
			Width:    o.Width * o.ScaleX,
			Height:   o.Height * o.ScaleY,
			Members:  len(o.Objects),
			Selected: isSelected[o.Handle],
		})
	}
	return jsonResult(out)
}

func (s *Server) handleSelectCanvasObjects(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	handles := splitList(req.GetArguments()["handles"])
	if len(handles) == 0 {
		return nil, fmt.Errorf("handles is required")
	}
	n, err := s.canvas.Select(handles)
	if err != nil {
		return nil, err
	}
	return textResult(fmt.Sprintf("Selected %d of %d object(s)", n, len(handles))), nil
}

func (s *Server) handleGroupSelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	handle, err := s.canvas.Group(ctx)
	if err != nil {
		return nil, err
	}
	if handle == "" {
		return textResult("Nothing grouped: select two or more objects first"), nil
	}
	return jsonResult(map[string]string{"group": handle})
}

func (s *Server) handleUngroupSelection(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	ok, err := s.canvas.Ungroup(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return textResult("Nothing ungrouped: the selection is not a group"), nil
	}
	return textResult("Group dissolved"), nil
}

func (s *Server) handleInsertImage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	src := req.GetString("src", "")
	if src == "" {
		return nil, fmt.Errorf("src is required")
	}
	img, err := s.canvas.InsertImage(ctx, src)
	if err != nil {
		return nil, err
	}
	return jsonResult(img)
}

func (s *Server) handleDrawStroke(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	args := req.GetArguments()
	raw, _ := args["points"].(string)
	points, err := parsePoints(raw)
	if err != nil {
		return nil, err
	}
	if len(points) == 0 {
		return nil, fmt.Errorf("points must not be empty")
	}
	width, _ := args["width"].(float64)
	color, _ := args["color"].(string)

	if err := s.canvas.StartDraw(ctx, annotate.DrawOptions{Width: width, Color: color}); err != nil {
		return nil, err
	}
	defer s.canvas.EndDraw(ctx)

	path, err := s.canvas.DrawStroke(ctx, points)
	if err != nil {
		return nil, err
	}
	return jsonResult(path)
}
