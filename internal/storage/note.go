package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"diagnote/internal/domain"
)

// NoteStore implements domain.NoteStore using SQLite.
type NoteStore struct {
	db *DB
}

func NewNoteStore(db *DB) *NoteStore {
	return &NoteStore{db: db}
}

func (s *NoteStore) CreateNote(n *domain.Note) error {
	now := time.Now()
	n.CreatedAt = now
	n.UpdatedAt = now
	_, err := s.db.conn.Exec(
		`INSERT INTO notes (id, title, patient, canvas_json, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`,
		n.ID, n.Title, n.Patient, n.CanvasJSON, n.CreatedAt, n.UpdatedAt,
	)
	return err
}

func (s *NoteStore) GetNote(id string) (*domain.Note, error) {
	n := &domain.Note{}
	err := s.db.conn.QueryRow(
		`SELECT id, title, patient, canvas_json, created_at, updated_at FROM notes WHERE id = ?`, id,
	).Scan(&n.ID, &n.Title, &n.Patient, &n.CanvasJSON, &n.CreatedAt, &n.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get note %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

func (s *NoteStore) ListNotes() ([]domain.Note, error) {
	rows, err := s.db.conn.Query(`SELECT id, title, patient, canvas_json, created_at, updated_at FROM notes ORDER BY updated_at DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var notes []domain.Note
	for rows.Next() {
		var n domain.Note
		if err := rows.Scan(&n.ID, &n.Title, &n.Patient, &n.CanvasJSON, &n.CreatedAt, &n.UpdatedAt); err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, rows.Err()
}

func (s *NoteStore) UpdateNote(n *domain.Note) error {
	n.UpdatedAt = time.Now()
	_, err := s.db.conn.Exec(
		`UPDATE notes SET title = ?, patient = ?, canvas_json = ?, updated_at = ? WHERE id = ?`,
		n.Title, n.Patient, n.CanvasJSON, n.UpdatedAt, n.ID,
	)
	return err
}

// UpdateCanvas stores the serialized canvas scene of a note.
func (s *NoteStore) UpdateCanvas(id, canvasJSON string) error {
	res, err := s.db.conn.Exec(
		`UPDATE notes SET canvas_json = ?, updated_at = ? WHERE id = ?`,
		canvasJSON, time.Now(), id,
	)
	if err != nil {
		return fmt.Errorf("update canvas: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("update canvas %s: %w", id, ErrNotFound)
	}
	return nil
}

// DeleteNote removes a note together with its history.
func (s *NoteStore) DeleteNote(id string) error {
	if _, err := s.db.conn.Exec(`DELETE FROM history_entries WHERE note_id = ?`, id); err != nil {
		return err
	}
	_, err := s.db.conn.Exec(`DELETE FROM notes WHERE id = ?`, id)
	return err
}
