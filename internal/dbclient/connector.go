package dbclient

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"diagnote/internal/domain"
)

// ExportRow is one history entry as written to an external database.
type ExportRow struct {
	NoteID     string    `json:"noteId" bson:"note_id"`
	Position   int       `json:"position" bson:"position"`
	Label      string    `json:"label" bson:"label"`
	Date       string    `json:"date" bson:"date"`
	Author     string    `json:"author" bson:"author"`
	HTML       string    `json:"html" bson:"html"`
	PlainText  string    `json:"plainText" bson:"plain_text"`
	EditorJSON string    `json:"editorJson" bson:"editor_json"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updated_at"`
}

// Exporter writes diagnosis history to an external database.
type Exporter interface {
	// TestConnection verifies connectivity.
	TestConnection(ctx context.Context) error

	// WriteEntries mirrors rows into table: rows are upserted on
	// (note_id, position) and rows of the same notes beyond the given
	// positions are removed. It returns the number of rows written.
	WriteEntries(ctx context.Context, table string, rows []ExportRow) (int, error)

	// ClearNote removes every row of noteID from table.
	ClearNote(ctx context.Context, table, noteID string) error

	// Close releases the connection.
	Close() error
}

// DefaultTable is used when a target does not name a table.
const DefaultTable = "diagnosis_history"

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]{0,62}$`)

// ValidTableName reports whether name is a plain identifier usable as a
// table or collection name.
func ValidTableName(name string) bool {
	return identRe.MatchString(name)
}

// NewExporter creates an Exporter for target. The password comes from the
// SecretStore.
func NewExporter(target *domain.ExportTarget, password string) (Exporter, error) {
	switch target.Driver {
	case domain.ExportDriverSQLite:
		return newSQLiteExporter(target)
	case domain.ExportDriverMySQL:
		return newSQLExporter(mysqlDialect, buildMySQLDSN(target, password))
	case domain.ExportDriverPostgres:
		return newSQLExporter(postgresDialect, buildPostgresDSN(target, password))
	case domain.ExportDriverMongoDB:
		return newMongoExporter(target, password)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", target.Driver)
	}
}

// noteBounds returns, per note, the number of rows being written.
func noteBounds(rows []ExportRow) map[string]int {
	bounds := make(map[string]int)
	for _, r := range rows {
		if r.Position+1 > bounds[r.NoteID] {
			bounds[r.NoteID] = r.Position + 1
		}
	}
	return bounds
}
