package app

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"diagnote/internal/service"
)

// noteWatcher polls the database for changes made outside this process
// (the standalone MCP server) and emits events so the frontend reloads.
type noteWatcher struct {
	ctx      context.Context
	db       *sql.DB
	emitter  service.EventEmitter
	interval time.Duration

	mu          sync.Mutex
	noteID      string
	lastNote    string // note updated_at
	lastHistory string // history count + max(updated_at)
	lastList    string // notes count + max(updated_at)
	stopCh      chan struct{}
	// approvals already announced, so each is emitted once
	emittedApprovals map[string]bool
}

func newNoteWatcher(ctx context.Context, db *sql.DB, emitter service.EventEmitter, interval time.Duration) *noteWatcher {
	return &noteWatcher{
		ctx:              ctx,
		db:               db,
		emitter:          emitter,
		interval:         interval,
		emittedApprovals: map[string]bool{},
	}
}

// SetNote changes the watched note. "" stops watching note content.
func (w *noteWatcher) SetNote(noteID string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.noteID = noteID
	w.lastNote = ""
	w.lastHistory = ""
}

// Start begins the polling loop. Should be called once on app startup.
func (w *noteWatcher) Start() {
	w.stopCh = make(chan struct{})
	go w.pollLoop()
}

// Stop terminates the polling loop.
func (w *noteWatcher) Stop() {
	if w.stopCh != nil {
		close(w.stopCh)
		w.stopCh = nil
	}
}

func (w *noteWatcher) pollLoop() {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	stop := w.stopCh
	for {
		select {
		case <-ticker.C:
			w.check()
		case <-stop:
			return
		case <-w.ctx.Done():
			return
		}
	}
}

// fingerprint returns "count:max(updated_at)" for a query shaped that way.
func (w *noteWatcher) fingerprint(query string, args ...any) (string, error) {
	var count int
	var updated string
	if err := w.db.QueryRow(query, args...).Scan(&count, &updated); err != nil {
		return "", err
	}
	return fmt.Sprintf("%d:%s", count, updated), nil
}

func (w *noteWatcher) check() {
	w.mu.Lock()
	noteID := w.noteID
	w.mu.Unlock()

	// ── Note list (sidebar) ─────────────────────────────
	list, err := w.fingerprint(`SELECT COUNT(*), COALESCE(MAX(updated_at), '') FROM notes`)
	if err != nil {
		return
	}

	// ── Active note canvas and history ──────────────────
	var noteFP, historyFP string
	if noteID != "" {
		noteFP, err = w.fingerprint(`SELECT COUNT(*), COALESCE(MAX(updated_at), '') FROM notes WHERE id = ?`, noteID)
		if err != nil {
			return
		}
		historyFP, err = w.fingerprint(
			`SELECT COUNT(*), COALESCE(MAX(updated_at), '') FROM history_entries WHERE note_id = ?`, noteID,
		)
		if err != nil {
			return
		}
	}

	w.mu.Lock()
	if w.noteID != noteID {
		// switched while querying; compare next tick
		w.mu.Unlock()
		return
	}
	listChanged := w.lastList != "" && w.lastList != list
	noteChanged := noteID != "" && w.lastNote != "" && w.lastNote != noteFP
	historyChanged := noteID != "" && w.lastHistory != "" && w.lastHistory != historyFP
	w.lastList = list
	w.lastNote = noteFP
	w.lastHistory = historyFP
	w.mu.Unlock()

	// ── Emit events ────────────────────────────────────
	if listChanged {
		w.emitter.Emit(w.ctx, "mcp:notes-changed", nil)
	}
	if noteChanged {
		w.emitter.Emit(w.ctx, "mcp:canvas-changed", map[string]string{"noteId": noteID})
	}
	if historyChanged {
		w.emitter.Emit(w.ctx, "mcp:history-changed", map[string]string{"noteId": noteID})
	}

	w.checkApprovals()
}

// checkApprovals announces approvals requested by the standalone MCP
// process.
func (w *noteWatcher) checkApprovals() {
	rows, err := w.db.Query(
		`SELECT id, tool, description, created_at, metadata FROM mcp_approvals WHERE status = 'pending'`,
	)
	if err != nil {
		return
	}
	pending := map[string]bool{}
	var fresh []map[string]string
	for rows.Next() {
		var id, tool, desc, createdAt, metadata string
		if rows.Scan(&id, &tool, &desc, &createdAt, &metadata) != nil {
			continue
		}
		pending[id] = true
		w.mu.Lock()
		sent := w.emittedApprovals[id]
		w.emittedApprovals[id] = true
		w.mu.Unlock()
		if !sent {
			fresh = append(fresh, map[string]string{
				"id":          id,
				"tool":        tool,
				"description": desc,
				"createdAt":   createdAt,
				"metadata":    metadata,
			})
		}
	}
	rows.Close()

	for _, a := range fresh {
		w.emitter.Emit(w.ctx, "mcp:approval-required", a)
	}

	// The standalone process deletes rows once it has read the decision.
	w.mu.Lock()
	for id := range w.emittedApprovals {
		if !pending[id] {
			delete(w.emittedApprovals, id)
			w.emitter.Emit(w.ctx, "mcp:approval-dismissed", map[string]string{"id": id})
		}
	}
	w.mu.Unlock()
}
