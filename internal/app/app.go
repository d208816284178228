package app

import (
	"context"
	"encoding/base64"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"diagnote/internal/annotate"
	"diagnote/internal/canvas"
	"diagnote/internal/config"
	"diagnote/internal/domain"
	"diagnote/internal/editorbridge"
	"diagnote/internal/report"
	"diagnote/internal/secret"
	"diagnote/internal/service"
	"diagnote/internal/storage"
	"diagnote/internal/terminal"
)

// App is the main Wails application struct.
// All exported methods are available as Wails bindings.
type App struct {
	ctx     context.Context
	cfg     *config.Config
	db      *storage.DB
	emitter service.EventEmitter

	*services

	term    *terminal.Manager
	bridge  *editorbridge.Bridge
	watcher *noteWatcher
	editing editSession
}

// New creates a new App.
func New() *App {
	return &App{}
}

// wailsEmitter delivers service events to the frontend.
type wailsEmitter struct{}

func (wailsEmitter) Emit(ctx context.Context, event string, data any) {
	wailsRuntime.EventsEmit(ctx, event, data)
}

// Startup is called when the app starts.
func (a *App) Startup(ctx context.Context) {
	a.ctx = ctx

	// macOS: disable "Press and Hold" so key repeat works in the embedded editor.
	exec.Command("defaults", "write", "com.wails.diagnote", "ApplePressAndHoldEnabled", "-bool", "false").Run()

	cfg, err := config.Load(config.File())
	if err != nil {
		wailsRuntime.LogErrorf(ctx, "Failed to load config, using defaults: %v", err)
		cfg = config.Default()
	}
	a.cfg = cfg

	db, err := storage.New(cfg.DBPath(), filepath.Join(cfg.DataDir, "editor"))
	if err != nil {
		wailsRuntime.LogFatalf(ctx, "Failed to open database: %v", err)
		return
	}
	a.db = db
	a.emitter = wailsEmitter{}
	a.services = newServices(cfg, db, secret.Default(), a.emitter)

	a.term = terminal.New(terminal.Options{
		Editor: cfg.EditorCommand(),
		OnData: func(data []byte) {
			wailsRuntime.EventsEmit(ctx, "terminal:data", base64.StdEncoding.EncodeToString(data))
		},
		OnExit: func(exitLine int) {
			a.onEditorExit()
			wailsRuntime.EventsEmit(ctx, "terminal:exit", map[string]int{"cursorLine": exitLine})
		},
	})

	bridge, err := editorbridge.New(func(index int, content string) {
		a.applyEditorText(index, content)
	}, cfg.WatchInterval()/4)
	if err != nil {
		wailsRuntime.LogErrorf(ctx, "Failed to create editor bridge: %v", err)
	}
	a.bridge = bridge

	a.watcher = newNoteWatcher(ctx, db.Conn(), a.emitter, cfg.WatchInterval())
	a.watcher.Start()

	if cfg.Export.Enabled {
		a.export.RestartSchedules(ctx)
	}

	if id := a.settings.LastNoteID(); id != "" {
		if _, err := a.OpenNote(id); err != nil {
			wailsRuntime.LogInfof(ctx, "Last note %s not reopened: %v", id, err)
		}
	}
	wailsRuntime.LogInfof(ctx, "diagnote started (data dir %s)", cfg.DataDir)
}

// DomReady restores the saved window size once the window exists.
func (a *App) DomReady(ctx context.Context) {
	if a.services == nil {
		return
	}
	size := a.settings.LoadWindowSize()
	wailsRuntime.WindowSetSize(ctx, size.Width, size.Height)
}

// Shutdown is called when the app is closing.
func (a *App) Shutdown(ctx context.Context) {
	if a.services != nil {
		w, h := wailsRuntime.WindowGetSize(ctx)
		if err := a.settings.SaveWindowSize(w, h); err != nil {
			wailsRuntime.LogErrorf(ctx, "save window size: %v", err)
		}
	}
	if a.watcher != nil {
		a.watcher.Stop()
	}
	if a.term != nil {
		a.term.Close()
	}
	if a.bridge != nil {
		a.bridge.Close()
	}
	if a.services != nil {
		a.export.Stop()
		a.export.WaitRunning(ctx)
	}
	if a.db != nil {
		a.db.Close()
	}
}

// ============================================================
// Notes
// ============================================================

func (a *App) ListNotes() ([]domain.Note, error) {
	return a.notes.ListNotes()
}

func (a *App) CreateNote(title, patient string) (*domain.Note, error) {
	return a.notes.CreateNote(a.ctx, title, patient)
}

func (a *App) RenameNote(id, title, patient string) error {
	return a.notes.RenameNote(a.ctx, id, title, patient)
}

func (a *App) DeleteNote(id string) error {
	if a.canvas.NoteID() == id {
		a.CloseEditor()
		a.canvas.Close()
		a.history.Close()
		a.watcher.SetNote("")
	}
	return a.notes.DeleteNote(a.ctx, id)
}

// OpenNote makes id the note shown in the window and returns everything
// needed to render it.
func (a *App) OpenNote(id string) (*domain.NoteState, error) {
	note, err := a.notes.GetNote(id)
	if err != nil {
		return nil, err
	}
	if err := a.openNote(a.ctx, id); err != nil {
		return nil, err
	}
	a.CloseEditor()
	a.watcher.SetNote(id)
	if err := a.settings.SaveLastNoteID(id); err != nil {
		wailsRuntime.LogErrorf(a.ctx, "save last note: %v", err)
	}
	return &domain.NoteState{Note: *note, History: a.history.List()}, nil
}

// ReloadNote re-reads the open note after an external change.
func (a *App) ReloadNote() (*domain.NoteState, error) {
	id := a.canvas.NoteID()
	if id == "" {
		return nil, service.ErrNoActiveNote
	}
	return a.OpenNote(id)
}

// ============================================================
// Canvas
// ============================================================

func (a *App) GetScene() (*canvas.Scene, error) {
	return a.canvas.Scene()
}

func (a *App) SelectObjects(handles []string) (int, error) {
	return a.canvas.Select(handles)
}

func (a *App) GroupSelection() (string, error) {
	return a.canvas.Group(a.ctx)
}

func (a *App) UngroupSelection() (bool, error) {
	return a.canvas.Ungroup(a.ctx)
}

func (a *App) StartDraw(width float64, color string) error {
	return a.canvas.StartDraw(a.ctx, annotate.DrawOptions{Width: width, Color: color})
}

func (a *App) EndDraw() error {
	return a.canvas.EndDraw(a.ctx)
}

func (a *App) DrawStroke(points []canvas.Point) (*canvas.ObjectJSON, error) {
	return a.canvas.DrawStroke(a.ctx, points)
}

func (a *App) InsertImage(src string) (*canvas.ObjectJSON, error) {
	return a.canvas.InsertImage(a.ctx, src)
}

// PickImageFile opens a native file picker and returns the chosen path.
func (a *App) PickImageFile() (string, error) {
	return wailsRuntime.OpenFileDialog(a.ctx, wailsRuntime.OpenDialogOptions{
		Title: "Insert image",
		Filters: []wailsRuntime.FileFilter{
			{DisplayName: "Images", Pattern: "*.png;*.jpg;*.jpeg;*.gif;*.webp;*.bmp"},
		},
	})
}

// ============================================================
// History
// ============================================================

func (a *App) ListHistory() []domain.DiagnosisHistory {
	return a.history.List()
}

func (a *App) SelectHistory(index int) bool {
	return a.history.Select(a.ctx, index)
}

func (a *App) PushHistory(doc domain.Document) (*domain.DiagnosisHistory, error) {
	return a.history.Push(a.ctx, doc)
}

func (a *App) UpdateHistory(index int, doc domain.Document) (bool, error) {
	return a.history.Update(a.ctx, index, doc)
}

func (a *App) ClearHistory() error {
	a.CloseEditor()
	return a.history.Clear(a.ctx)
}

// ============================================================
// Report
// ============================================================

// ExportNotePDF asks for a destination and writes a PDF report of the open
// note. It returns the written path, or "" when the dialog was cancelled.
func (a *App) ExportNotePDF() (string, error) {
	id := a.canvas.NoteID()
	if id == "" {
		return "", service.ErrNoActiveNote
	}
	note, err := a.notes.GetNote(id)
	if err != nil {
		return "", err
	}
	path, err := wailsRuntime.SaveFileDialog(a.ctx, wailsRuntime.SaveDialogOptions{
		Title:           "Export PDF",
		DefaultFilename: safeFileName(note.Title) + ".pdf",
		Filters:         []wailsRuntime.FileFilter{{DisplayName: "PDF", Pattern: "*.pdf"}},
	})
	if err != nil || path == "" {
		return "", err
	}
	scene, err := a.canvas.Scene()
	if err != nil {
		return "", err
	}
	if err := report.WriteNotePDF(path, note, a.history.List(), scene); err != nil {
		return "", fmt.Errorf("export pdf: %w", err)
	}
	return path, nil
}

func safeFileName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return "note"
	}
	return strings.Map(func(r rune) rune {
		if strings.ContainsRune(`/\:*?"<>|`, r) {
			return '_'
		}
		return r
	}, s)
}

// ============================================================
// Settings
// ============================================================

func (a *App) GetWindowSize() service.WindowSize {
	return a.settings.LoadWindowSize()
}

func (a *App) SaveWindowSize(width, height int) error {
	return a.settings.SaveWindowSize(width, height)
}

// ============================================================
// MCP approvals (standalone MCP process)
// ============================================================

func (a *App) ListPendingApprovals() ([]domain.Approval, error) {
	return a.approvals.ListPending()
}

func (a *App) ApproveMCPAction(id string) error {
	return a.resolveApproval(id, true)
}

func (a *App) RejectMCPAction(id string) error {
	return a.resolveApproval(id, false)
}

func (a *App) resolveApproval(id string, approved bool) error {
	ok, err := a.approvals.Resolve(id, approved)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("approval %s is no longer pending", id)
	}
	return nil
}
