package storage

import (
	"database/sql"
	"errors"
	"fmt"

	"diagnote/internal/domain"
)

// ApprovalStore is the mcp_approvals table. The standalone MCP process
// writes pending actions; the app lists them and records the decision.
type ApprovalStore struct {
	db *DB
}

func NewApprovalStore(db *DB) *ApprovalStore {
	return &ApprovalStore{db: db}
}

func (s *ApprovalStore) Insert(a domain.Approval) error {
	meta := a.Metadata
	if meta == "" {
		meta = "{}"
	}
	_, err := s.db.conn.Exec(
		`INSERT INTO mcp_approvals (id, tool, description, status, metadata) VALUES (?, ?, ?, 'pending', ?)`,
		a.ID, a.Tool, a.Description, meta,
	)
	if err != nil {
		return fmt.Errorf("insert approval: %w", err)
	}
	return nil
}

// Status returns the status of id, or ErrNotFound.
func (s *ApprovalStore) Status(id string) (string, error) {
	var status string
	err := s.db.conn.QueryRow(`SELECT status FROM mcp_approvals WHERE id = ?`, id).Scan(&status)
	if errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("approval %s: %w", id, ErrNotFound)
	}
	if err != nil {
		return "", fmt.Errorf("approval status: %w", err)
	}
	return status, nil
}

// Resolve records the user's decision on a pending action. It reports
// false when id is not pending.
func (s *ApprovalStore) Resolve(id string, approved bool) (bool, error) {
	status := domain.ApprovalRejected
	if approved {
		status = domain.ApprovalApproved
	}
	res, err := s.db.conn.Exec(
		`UPDATE mcp_approvals SET status = ? WHERE id = ? AND status = 'pending'`, status, id,
	)
	if err != nil {
		return false, fmt.Errorf("resolve approval: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (s *ApprovalStore) Delete(id string) error {
	_, err := s.db.conn.Exec(`DELETE FROM mcp_approvals WHERE id = ?`, id)
	return err
}

// ListPending returns pending actions, oldest first.
func (s *ApprovalStore) ListPending() ([]domain.Approval, error) {
	rows, err := s.db.conn.Query(
		`SELECT id, tool, description, status, created_at, metadata
		 FROM mcp_approvals WHERE status = 'pending' ORDER BY created_at ASC, rowid ASC`,
	)
	if err != nil {
		return nil, fmt.Errorf("list approvals: %w", err)
	}
	defer rows.Close()

	var out []domain.Approval
	for rows.Next() {
		var a domain.Approval
		if err := rows.Scan(&a.ID, &a.Tool, &a.Description, &a.Status, &a.CreatedAt, &a.Metadata); err != nil {
			return nil, fmt.Errorf("scan approval: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}
