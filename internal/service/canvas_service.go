package service

import (
	"context"
	"fmt"
	"log"
	"sync"

	"diagnote/internal/annotate"
	"diagnote/internal/canvas"
	"diagnote/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Canvas Service: annotation session of the open note
// ─────────────────────────────────────────────────────────────

const (
	defaultCanvasWidth  = 1200
	defaultCanvasHeight = 800
)

// CanvasService owns the canvas of the open note. Calls arrive from the
// frontend bridge and the MCP server on different goroutines; the mutex
// keeps every canvas mutation single-writer.
//
// After a mutating call that requested a repaint the scene is saved to the
// note and EventCanvasRender is emitted.
type CanvasService struct {
	notes   domain.NoteStore
	loader  annotate.ImageLoader
	emitter EventEmitter

	mu       sync.Mutex
	noteID   string
	saved    string // canvas_json last loaded or written by this session
	canvas   *canvas.Canvas
	group    *annotate.GroupPlugin
	draw     *annotate.FreeDrawPlugin
	repaints int
}

// NewCanvasService creates a CanvasService.
func NewCanvasService(notes domain.NoteStore, loader annotate.ImageLoader, emitter EventEmitter) *CanvasService {
	return &CanvasService{notes: notes, loader: loader, emitter: emitter}
}

// Open loads the canvas of noteID, replacing any open session.
func (s *CanvasService) Open(ctx context.Context, noteID string) (*canvas.Scene, error) {
	n, err := s.notes.GetNote(noteID)
	if err != nil {
		return nil, err
	}
	c, err := loadCanvas(n.CanvasJSON)
	if err != nil {
		return nil, fmt.Errorf("load canvas of %s: %w", noteID, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.noteID = noteID
	s.installLocked(c, n.CanvasJSON)

	scene := c.Snapshot()
	log.Printf("[CANVAS] opened note %s (%d objects)", noteID, len(scene.Objects))
	return &scene, nil
}

func loadCanvas(data string) (*canvas.Canvas, error) {
	if data == "" {
		return canvas.New(defaultCanvasWidth, defaultCanvasHeight), nil
	}
	return canvas.UnmarshalScene([]byte(data))
}

func (s *CanvasService) installLocked(c *canvas.Canvas, saved string) {
	s.canvas = c
	s.saved = saved
	s.group = annotate.NewGroupPlugin(c)
	s.draw = annotate.NewFreeDrawPlugin(c)
	s.repaints = 0
	c.OnRender(func() { s.repaints++ })
}

// syncLocked reloads the canvas when the saved scene is no longer the one
// this session last loaded or wrote, which happens when the standalone MCP
// process and the app edit the same note. Selection and drawing mode
// carry over by handle. It reports whether the canvas was reloaded.
func (s *CanvasService) syncLocked() (bool, error) {
	n, err := s.notes.GetNote(s.noteID)
	if err != nil {
		return false, fmt.Errorf("reload note %s: %w", s.noteID, err)
	}
	if n.CanvasJSON == s.saved {
		return false, nil
	}
	c, err := loadCanvas(n.CanvasJSON)
	if err != nil {
		return false, fmt.Errorf("load canvas of %s: %w", s.noteID, err)
	}

	old := s.canvas
	var selected []*canvas.Object
	for _, o := range old.ActiveObjects() {
		if m := c.FindByID(o.Handle); m != nil {
			selected = append(selected, m)
		}
	}
	c.SetDrawingMode(old.IsDrawingMode())
	c.SetFreeDrawingBrush(old.FreeDrawingBrush())
	c.Select(selected...)

	s.installLocked(c, n.CanvasJSON)
	log.Printf("[CANVAS] note %s changed elsewhere, reloaded (%d objects)", s.noteID, c.Len())
	return true, nil
}

// Close drops the session.
func (s *CanvasService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noteID = ""
	s.saved = ""
	s.canvas = nil
	s.group = nil
	s.draw = nil
}

// NoteID returns the open note, or "".
func (s *CanvasService) NoteID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.noteID
}

// Scene returns the current scene.
func (s *CanvasService) Scene() (*canvas.Scene, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.canvas == nil {
		return nil, ErrNoActiveNote
	}
	if _, err := s.syncLocked(); err != nil {
		return nil, err
	}
	scene := s.canvas.Snapshot()
	return &scene, nil
}

// Selection returns the handles of the selected objects.
func (s *CanvasService) Selection() ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.canvas == nil {
		return nil, ErrNoActiveNote
	}
	if _, err := s.syncLocked(); err != nil {
		return nil, err
	}
	var handles []string
	for _, o := range s.canvas.ActiveObjects() {
		handles = append(handles, o.Handle)
	}
	return handles, nil
}

// Select replaces the selection with the top-level objects named by
// handles. Unknown handles are skipped; the number selected is returned.
func (s *CanvasService) Select(handles []string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.canvas == nil {
		return 0, ErrNoActiveNote
	}
	if _, err := s.syncLocked(); err != nil {
		return 0, err
	}
	var objs []*canvas.Object
	for _, h := range handles {
		if o := s.canvas.FindByID(h); o != nil {
			objs = append(objs, o)
		}
	}
	s.canvas.Select(objs...)
	return len(s.canvas.ActiveObjects()), nil
}

// Group groups the current multi-selection. It returns the new composite's
// handle, or "" when the selection is not a multi-selection.
func (s *CanvasService) Group(ctx context.Context) (string, error) {
	var handle string
	err := s.mutate(ctx, func() {
		if g := s.group.GroupSelected(); g != nil {
			handle = g.Handle
			log.Printf("[CANVAS] grouped %d objects into %s", g.Size(), handle)
		}
	})
	return handle, err
}

// Ungroup dissolves the selected composite. It reports whether anything
// changed.
func (s *CanvasService) Ungroup(ctx context.Context) (bool, error) {
	var ok bool
	err := s.mutate(ctx, func() {
		ok = s.group.UngroupSelected()
	})
	return ok, err
}

// StartDraw enters free-drawing mode.
func (s *CanvasService) StartDraw(ctx context.Context, opts annotate.DrawOptions) error {
	return s.mutate(ctx, func() { s.draw.StartDraw(opts) })
}

// EndDraw leaves free-drawing mode.
func (s *CanvasService) EndDraw(ctx context.Context) error {
	return s.mutate(ctx, func() { s.draw.EndDraw() })
}

// DrawStroke adds a finished stroke while drawing mode is on. It returns
// nil when the stroke was ignored.
func (s *CanvasService) DrawStroke(ctx context.Context, points []canvas.Point) (*canvas.ObjectJSON, error) {
	var out *canvas.ObjectJSON
	err := s.mutate(ctx, func() {
		if p := s.canvas.DrawStroke(points); p != nil {
			j := p.ToJSON()
			out = &j
		}
	})
	return out, err
}

// InsertImage loads src and places it on the canvas. The image is fetched
// before the session is locked; a failed load changes nothing, and so does
// a load that finishes after another note was opened.
func (s *CanvasService) InsertImage(ctx context.Context, src string) (*canvas.ObjectJSON, error) {
	noteID := s.NoteID()
	if noteID == "" {
		return nil, ErrNoActiveNote
	}
	info, err := s.loader.Load(ctx, src)
	if err != nil {
		log.Printf("[CANVAS] image load failed: %v", err)
		return nil, fmt.Errorf("load image %q: %w", src, err)
	}

	var out *canvas.ObjectJSON
	var drawErr error
	err = s.mutate(ctx, func() {
		if s.noteID != noteID {
			drawErr = fmt.Errorf("insert image %q: note %s: %w", src, noteID, ErrNoteSwitched)
			return
		}
		img, err := annotate.DrawPNG(ctx, s.canvas, loadedImage{info}, src)
		if err != nil {
			drawErr = err
			return
		}
		j := img.ToJSON()
		out = &j
	})
	if err != nil {
		return nil, err
	}
	return out, drawErr
}

// loadedImage hands an already fetched image to DrawPNG.
type loadedImage struct {
	info *annotate.ImageInfo
}

func (l loadedImage) Load(context.Context, string) (*annotate.ImageInfo, error) {
	return l.info, nil
}

// mutate runs fn on the open session and saves the scene when fn asked
// for a repaint. The session is first brought up to date with the saved
// scene so edits made elsewhere are not overwritten.
func (s *CanvasService) mutate(ctx context.Context, fn func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.canvas == nil {
		return ErrNoActiveNote
	}
	reloaded, err := s.syncLocked()
	if err != nil {
		return err
	}

	before := s.repaints
	fn()
	if s.repaints == before {
		if reloaded {
			s.emitter.Emit(ctx, EventCanvasRender, s.canvas.Snapshot())
		}
		return nil
	}

	data, err := canvas.MarshalScene(s.canvas)
	if err != nil {
		return fmt.Errorf("encode canvas: %w", err)
	}
	if err := s.notes.UpdateCanvas(s.noteID, string(data)); err != nil {
		return fmt.Errorf("save canvas: %w", err)
	}
	s.saved = string(data)
	scene := s.canvas.Snapshot()
	s.emitter.Emit(ctx, EventCanvasRender, scene)
	return nil
}
