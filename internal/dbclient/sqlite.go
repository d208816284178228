package dbclient

import (
	"fmt"

	"diagnote/internal/domain"

	_ "modernc.org/sqlite"
)

// newSQLiteExporter opens an external SQLite file given as the target host.
// WAL mode and a busy timeout allow other readers of the file.
func newSQLiteExporter(t *domain.ExportTarget) (*sqlExporter, error) {
	if t.Host == "" {
		return nil, fmt.Errorf("sqlite export: no file path")
	}
	dsn := t.Host + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	return newSQLExporter(sqliteDialect, dsn)
}

var sqliteDialect = dialect{
	driver:      "sqlite",
	quote:       `"`,
	placeholder: func(int) string { return "?" },
	textType:    "TEXT",
	keyType:     "TEXT",
	upsert: func(cols []string) string {
		return "ON CONFLICT (note_id, position) DO UPDATE SET " + assignList(cols, `"%[1]s" = excluded."%[1]s"`)
	},
}
