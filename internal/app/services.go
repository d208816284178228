package app

import (
	"context"

	"diagnote/internal/annotate"
	"diagnote/internal/config"
	"diagnote/internal/secret"
	"diagnote/internal/service"
	"diagnote/internal/storage"
)

// services is the backend shared by the desktop app and the standalone
// MCP process.
type services struct {
	noteStore *storage.NoteStore
	entries   *storage.HistoryEntryStore
	approvals *storage.ApprovalStore

	notes    *service.NoteService
	canvas   *service.CanvasService
	history  *service.HistoryService
	export   *service.ExportService
	settings *service.SettingsService
}

func newServices(cfg *config.Config, db *storage.DB, secrets secret.SecretStore, emitter service.EventEmitter) *services {
	noteStore := storage.NewNoteStore(db)
	entries := storage.NewHistoryEntryStore(db)
	loc := cfg.Location()

	return &services{
		noteStore: noteStore,
		entries:   entries,
		approvals: storage.NewApprovalStore(db),
		notes:     service.NewNoteService(noteStore, emitter),
		canvas:    service.NewCanvasService(noteStore, annotate.NewSourceLoader(cfg.ImageTimeout()), emitter),
		history:   service.NewHistoryService(entries, emitter, loc, cfg.Author),
		export:    service.NewExportService(storage.NewExportStore(db), entries, secrets, emitter, loc),
		settings:  service.NewSettingsService(storage.NewSettingsStore(db)),
	}
}

// openNote opens noteID in the canvas and history services.
func (s *services) openNote(ctx context.Context, noteID string) error {
	if _, err := s.canvas.Open(ctx, noteID); err != nil {
		return err
	}
	_, err := s.history.Open(ctx, noteID)
	return err
}
