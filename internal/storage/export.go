package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"diagnote/internal/domain"
)

// ExportStore manages export targets and their run log in SQLite.
type ExportStore struct {
	db *DB
}

// NewExportStore creates a new ExportStore.
func NewExportStore(db *DB) *ExportStore {
	return &ExportStore{db: db}
}

const exportTargetColumns = `id, name, driver, host, port, database_name, username, ssl_mode,
	table_name, schedule, note_id, extra_json, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanTarget(row scanner, t *domain.ExportTarget) error {
	return row.Scan(&t.ID, &t.Name, &t.Driver, &t.Host, &t.Port, &t.Database, &t.Username, &t.SSLMode,
		&t.Table, &t.Schedule, &t.NoteID, &t.ExtraJSON, &t.CreatedAt, &t.UpdatedAt)
}

// ── Targets ────────────────────────────────────────────────

func (s *ExportStore) CreateTarget(t *domain.ExportTarget) error {
	now := time.Now()
	if t.ID == "" {
		t.ID = uuid.New().String()
	}
	if t.ExtraJSON == "" {
		t.ExtraJSON = "{}"
	}
	t.CreatedAt = now
	t.UpdatedAt = now

	_, err := s.db.conn.Exec(
		`INSERT INTO export_targets (`+exportTargetColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		t.ID, t.Name, t.Driver, t.Host, t.Port, t.Database, t.Username, t.SSLMode,
		t.Table, t.Schedule, t.NoteID, t.ExtraJSON, t.CreatedAt, t.UpdatedAt,
	)
	return err
}

func (s *ExportStore) GetTarget(id string) (*domain.ExportTarget, error) {
	t := &domain.ExportTarget{}
	err := scanTarget(s.db.conn.QueryRow(`SELECT `+exportTargetColumns+` FROM export_targets WHERE id = ?`, id), t)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("export target %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

func (s *ExportStore) ListTargets() ([]domain.ExportTarget, error) {
	rows, err := s.db.conn.Query(`SELECT ` + exportTargetColumns + ` FROM export_targets ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var targets []domain.ExportTarget
	for rows.Next() {
		var t domain.ExportTarget
		if err := scanTarget(rows, &t); err != nil {
			return nil, err
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}

func (s *ExportStore) UpdateTarget(t *domain.ExportTarget) error {
	t.UpdatedAt = time.Now()
	_, err := s.db.conn.Exec(
		`UPDATE export_targets SET name=?, driver=?, host=?, port=?, database_name=?, username=?, ssl_mode=?,
		 table_name=?, schedule=?, note_id=?, extra_json=?, updated_at=? WHERE id=?`,
		t.Name, t.Driver, t.Host, t.Port, t.Database, t.Username, t.SSLMode,
		t.Table, t.Schedule, t.NoteID, t.ExtraJSON, t.UpdatedAt, t.ID,
	)
	return err
}

func (s *ExportStore) DeleteTarget(id string) error {
	// Delete run logs first.
	if _, err := s.db.conn.Exec(`DELETE FROM export_runs WHERE target_id = ?`, id); err != nil {
		return err
	}
	_, err := s.db.conn.Exec(`DELETE FROM export_targets WHERE id = ?`, id)
	return err
}

// ── Runs ───────────────────────────────────────────────────

func (s *ExportStore) RecordRun(r *domain.ExportRun) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	_, err := s.db.conn.Exec(
		`INSERT INTO export_runs (id, target_id, note_id, started_at, finished_at, status, rows_written, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		r.ID, r.TargetID, r.NoteID, r.StartedAt, r.FinishedAt, r.Status, r.Rows, r.Error,
	)
	return err
}

// ListRuns returns the most recent runs of a target, newest first.
func (s *ExportStore) ListRuns(targetID string, limit int) ([]domain.ExportRun, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.conn.Query(
		`SELECT id, target_id, note_id, started_at, finished_at, status, rows_written, error
		 FROM export_runs WHERE target_id = ? ORDER BY started_at DESC LIMIT ?`,
		targetID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []domain.ExportRun
	for rows.Next() {
		var r domain.ExportRun
		if err := rows.Scan(&r.ID, &r.TargetID, &r.NoteID, &r.StartedAt, &r.FinishedAt, &r.Status, &r.Rows, &r.Error); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
