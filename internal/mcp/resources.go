package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"diagnote/internal/canvas"
	"diagnote/internal/domain"
	"diagnote/internal/richtext"
	"diagnote/internal/service"

	"github.com/mark3labs/mcp-go/mcp"
)

const noteURIPrefix = "note://"

func (s *Server) registerResources() {
	// ── note://notes ───────────────────────────────────
	s.mcp.AddResource(mcp.NewResource(
		noteURIPrefix+"notes",
		"All Notes",
		mcp.WithMIMEType("application/json"),
	), s.handleNotesResource)

	// ── note://{id} ────────────────────────────────────
	s.mcp.AddResourceTemplate(
		mcp.NewResourceTemplate(
			noteURIPrefix+"{id}",
			"Note with canvas and history",
			mcp.WithTemplateMIMEType("application/json"),
		),
		s.handleNoteResource,
	)
}

func (s *Server) handleNotesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	notes, err := s.notes.ListNotes()
	if err != nil {
		return nil, err
	}
	data, _ := json.MarshalIndent(notes, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// noteResource is what note://{id} returns.
type noteResource struct {
	Note    domain.Note               `json:"note"`
	Canvas  *canvas.Scene             `json:"canvas,omitempty"`
	History []domain.DiagnosisHistory `json:"history"`
}

func (s *Server) handleNoteResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	uri := req.Params.URI
	noteID := noteIDFromURI(uri)
	if noteID == "" {
		return nil, fmt.Errorf("could not extract note id from URI: %s", uri)
	}

	note, err := s.notes.GetNote(noteID)
	if err != nil {
		return nil, err
	}
	res := noteResource{Note: *note, History: []domain.DiagnosisHistory{}}
	if note.CanvasJSON != "" {
		var scene canvas.Scene
		if err := json.Unmarshal([]byte(note.CanvasJSON), &scene); err == nil {
			res.Canvas = &scene
		}
	}
	res.Note.CanvasJSON = ""

	if s.entries != nil {
		entries, err := s.entries.List(noteID)
		if err != nil {
			return nil, err
		}
		today := time.Now().Format("2006-01-02")
		for _, e := range entries {
			res.History = append(res.History, domain.DiagnosisHistory{
				Index:  e.Position,
				Date:   e.CreatedAt.Format("2006-01-02"),
				Label:  service.Label(today, e.Position),
				Editor: e.Editor,
				HTML:   e.HTML,
				Author: e.Author,
			})
		}
	}

	data, _ := json.MarshalIndent(res, "", "  ")
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

// noteIDFromURI extracts the id from "note://{id}".
func noteIDFromURI(uri string) string {
	id, ok := strings.CutPrefix(uri, noteURIPrefix)
	if !ok || id == "" || strings.Contains(id, "/") {
		return ""
	}
	return id
}

// plainHistory renders history entries as text for prompts.
func plainHistory(list []domain.DiagnosisHistory) string {
	var b strings.Builder
	for _, h := range list {
		fmt.Fprintf(&b, "[%s]\n%s\n\n", h.Label, richtext.PlainText(h.Editor))
	}
	return strings.TrimSpace(b.String())
}
