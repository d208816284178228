package app

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"

	"diagnote/internal/richtext"
	"diagnote/internal/service"
)

// ============================================================
// Embedded Terminal (external editor)
// ============================================================

// editSession is the history entry open in the external editor.
type editSession struct {
	mu     sync.Mutex
	noteID string
	index  int
	path   string
}

func (s *editSession) set(noteID string, index int, path string) {
	s.mu.Lock()
	s.noteID, s.index, s.path = noteID, index, path
	s.mu.Unlock()
}

// take returns the session and clears it.
func (s *editSession) take() (noteID string, index int, path string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	noteID, index, path = s.noteID, s.index, s.path
	s.noteID, s.index, s.path = "", 0, ""
	return
}

func (s *editSession) current() (noteID string, index int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.noteID, s.index
}

// TerminalWrite sends input from xterm.js to the PTY.
func (a *App) TerminalWrite(data string) error {
	return a.term.Write(data)
}

// TerminalResize resizes the PTY.
func (a *App) TerminalResize(cols, rows int) error {
	return a.term.Resize(uint16(cols), uint16(rows))
}

// entryPath is the scratch file used to edit a history entry as text.
func (a *App) entryPath(noteID string, index int) string {
	return filepath.Join(a.db.DataDir(), noteID, fmt.Sprintf("entry-%d.txt", index))
}

// OpenHistoryInEditor writes the entry at index as plain text and opens it
// in the embedded terminal editor. Saves are applied to the entry while
// the editor runs.
func (a *App) OpenHistoryInEditor(index int) error {
	noteID := a.history.NoteID()
	if noteID == "" {
		return service.ErrNoActiveNote
	}
	entries := a.history.List()
	if index < 0 || index >= len(entries) {
		return fmt.Errorf("no history entry at index %d", index)
	}

	a.CloseEditor()

	path := a.entryPath(noteID, index)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create editor dir: %w", err)
	}
	text := richtext.PlainText(entries[index].Editor)
	if err := os.WriteFile(path, []byte(text+"\n"), 0644); err != nil {
		return fmt.Errorf("write entry file: %w", err)
	}

	a.editing.set(noteID, index, path)
	if a.bridge != nil {
		if err := a.bridge.Watch(index, path); err != nil {
			wailsRuntime.LogErrorf(a.ctx, "watch %s: %v", path, err)
		}
	}
	return a.term.OpenFile(path, 0)
}

// CloseEditor closes the embedded terminal session without applying the
// file again.
func (a *App) CloseEditor() {
	_, index, path := a.editing.take()
	if path != "" && a.bridge != nil {
		a.bridge.Unwatch(index)
	}
	if a.term != nil {
		a.term.Close()
	}
}

// onEditorExit applies the final file content when the editor quits.
func (a *App) onEditorExit() {
	noteID, index, path := a.editing.take()
	if path == "" {
		return
	}
	if a.bridge != nil {
		a.bridge.Unwatch(index)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		wailsRuntime.LogErrorf(a.ctx, "read entry file: %v", err)
		return
	}
	a.applyEntryText(noteID, index, strings.TrimSpace(string(data)))
}

// applyEditorText is the bridge callback for saves made while editing.
func (a *App) applyEditorText(index int, content string) {
	noteID, current := a.editing.current()
	if noteID == "" || current != index {
		return
	}
	a.applyEntryText(noteID, index, content)
}

func (a *App) applyEntryText(noteID string, index int, content string) {
	// The user may have switched notes while the editor was open.
	if a.history.NoteID() != noteID {
		return
	}
	entries := a.history.List()
	if index >= len(entries) || richtext.PlainText(entries[index].Editor) == content {
		return
	}
	if _, err := a.history.Update(a.ctx, index, richtext.FromPlainText(content)); err != nil {
		wailsRuntime.LogErrorf(a.ctx, "apply editor text: %v", err)
	}
}
