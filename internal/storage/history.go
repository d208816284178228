package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"diagnote/internal/domain"
)

// HistoryEntryStore persists the diagnosis history of each note, one row
// per position.
type HistoryEntryStore struct {
	db *DB
}

func NewHistoryEntryStore(db *DB) *HistoryEntryStore {
	return &HistoryEntryStore{db: db}
}

// Append stores e after the note's last entry and sets e.Position.
func (s *HistoryEntryStore) Append(e *domain.HistoryEntry) error {
	editor, err := json.Marshal(e.Editor)
	if err != nil {
		return fmt.Errorf("marshal editor: %w", err)
	}

	var next int
	if err := s.db.conn.QueryRow(
		`SELECT COALESCE(MAX(position) + 1, 0) FROM history_entries WHERE note_id = ?`, e.NoteID,
	).Scan(&next); err != nil {
		return fmt.Errorf("next position: %w", err)
	}

	now := time.Now()
	e.Position = next
	e.CreatedAt = now
	e.UpdatedAt = now
	_, err = s.db.conn.Exec(
		`INSERT INTO history_entries (note_id, position, editor_json, html, author, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.NoteID, e.Position, string(editor), e.HTML, e.Author, e.CreatedAt, e.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert history entry: %w", err)
	}
	return nil
}

// Update replaces the entry at e.Position. It reports false, with no
// error, when the note has no entry there.
func (s *HistoryEntryStore) Update(e *domain.HistoryEntry) (bool, error) {
	editor, err := json.Marshal(e.Editor)
	if err != nil {
		return false, fmt.Errorf("marshal editor: %w", err)
	}
	e.UpdatedAt = time.Now()
	res, err := s.db.conn.Exec(
		`UPDATE history_entries SET editor_json = ?, html = ?, author = ?, updated_at = ?
		 WHERE note_id = ? AND position = ?`,
		string(editor), e.HTML, e.Author, e.UpdatedAt, e.NoteID, e.Position,
	)
	if err != nil {
		return false, fmt.Errorf("update history entry: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// Clear removes every entry of a note.
func (s *HistoryEntryStore) Clear(noteID string) error {
	_, err := s.db.conn.Exec(`DELETE FROM history_entries WHERE note_id = ?`, noteID)
	return err
}

// List returns a note's entries ordered by position.
func (s *HistoryEntryStore) List(noteID string) ([]domain.HistoryEntry, error) {
	rows, err := s.db.conn.Query(
		`SELECT note_id, position, editor_json, html, author, created_at, updated_at
		 FROM history_entries WHERE note_id = ? ORDER BY position ASC`, noteID,
	)
	if err != nil {
		return nil, fmt.Errorf("list history entries: %w", err)
	}
	defer rows.Close()

	var entries []domain.HistoryEntry
	for rows.Next() {
		var e domain.HistoryEntry
		var editor string
		if err := rows.Scan(&e.NoteID, &e.Position, &editor, &e.HTML, &e.Author, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan history entry: %w", err)
		}
		if err := json.Unmarshal([]byte(editor), &e.Editor); err != nil {
			return nil, fmt.Errorf("decode editor at %d: %w", e.Position, err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}
