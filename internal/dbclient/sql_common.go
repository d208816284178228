package dbclient

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"
)

// dialect captures the SQL differences between the supported engines.
type dialect struct {
	driver      string
	quote       string
	placeholder func(i int) string // 1-based
	textType    string
	keyType     string
	upsert      func(cols []string) string
}

// exportColumns in insert order; note_id and position form the key.
var exportColumns = []string{
	"note_id", "position", "label", "entry_date", "author", "html", "plain_text", "editor_json", "updated_at",
}

func assignList(cols []string, format string) string {
	parts := make([]string, 0, len(cols))
	for _, c := range cols {
		parts = append(parts, fmt.Sprintf(format, c))
	}
	return strings.Join(parts, ", ")
}

func (d dialect) ident(name string) string {
	return d.quote + name + d.quote
}

func (d dialect) createTable(table string) string {
	return fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		note_id %s NOT NULL,
		position INTEGER NOT NULL,
		label %s,
		entry_date %s,
		author %s,
		html %s,
		plain_text %s,
		editor_json %s,
		updated_at %s,
		PRIMARY KEY (note_id, position)
	)`, d.ident(table), d.keyType, d.textType, d.textType, d.textType, d.textType, d.textType, d.textType, d.textType)
}

func (d dialect) insert(table string) string {
	quoted := make([]string, len(exportColumns))
	marks := make([]string, len(exportColumns))
	for i, c := range exportColumns {
		quoted[i] = d.ident(c)
		marks[i] = d.placeholder(i + 1)
	}
	return fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) %s",
		d.ident(table), strings.Join(quoted, ", "), strings.Join(marks, ", "), d.upsert(exportColumns[2:]))
}

func (d dialect) trim(table string) string {
	return fmt.Sprintf("DELETE FROM %s WHERE note_id = %s AND position >= %s",
		d.ident(table), d.placeholder(1), d.placeholder(2))
}

// sqlExporter is the shared implementation for MySQL, Postgres and SQLite.
type sqlExporter struct {
	dialect dialect
	db      *sql.DB
}

func newSQLExporter(d dialect, dsn string) (*sqlExporter, error) {
	db, err := sql.Open(d.driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", d.driver, err)
	}
	// Exports are short batches from a desktop app.
	db.SetMaxOpenConns(2)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(10 * time.Minute)

	return &sqlExporter{dialect: d, db: db}, nil
}

func (e *sqlExporter) TestConnection(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return e.db.PingContext(ctx)
}

func (e *sqlExporter) WriteEntries(ctx context.Context, table string, rows []ExportRow) (int, error) {
	if table == "" {
		table = DefaultTable
	}
	if !ValidTableName(table) {
		return 0, fmt.Errorf("invalid table name %q", table)
	}

	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	if _, err := e.db.ExecContext(ctx, e.dialect.createTable(table)); err != nil {
		return 0, fmt.Errorf("create table %s: %w", table, err)
	}

	tx, err := e.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, e.dialect.insert(table))
	if err != nil {
		return 0, fmt.Errorf("prepare insert: %w", err)
	}
	defer stmt.Close()

	written := 0
	for _, r := range rows {
		if _, err := stmt.ExecContext(ctx,
			r.NoteID, r.Position, r.Label, r.Date, r.Author, r.HTML, r.PlainText, r.EditorJSON,
			r.UpdatedAt.UTC().Format(time.RFC3339),
		); err != nil {
			return written, fmt.Errorf("write %s/%d: %w", r.NoteID, r.Position, err)
		}
		written++
	}

	for noteID, n := range noteBounds(rows) {
		if _, err := tx.ExecContext(ctx, e.dialect.trim(table), noteID, n); err != nil {
			return written, fmt.Errorf("trim %s: %w", noteID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return written, nil
}

// ClearNote removes every exported row of a note.
func (e *sqlExporter) ClearNote(ctx context.Context, table, noteID string) error {
	if table == "" {
		table = DefaultTable
	}
	if !ValidTableName(table) {
		return fmt.Errorf("invalid table name %q", table)
	}
	if _, err := e.db.ExecContext(ctx, e.dialect.createTable(table)); err != nil {
		return fmt.Errorf("create table %s: %w", table, err)
	}
	if _, err := e.db.ExecContext(ctx, e.dialect.trim(table), noteID, 0); err != nil {
		return fmt.Errorf("clear %s: %w", noteID, err)
	}
	return nil
}

func (e *sqlExporter) Close() error {
	return e.db.Close()
}
