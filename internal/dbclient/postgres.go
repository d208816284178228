package dbclient

import (
	"fmt"

	"diagnote/internal/domain"

	_ "github.com/lib/pq"
)

// buildPostgresDSN constructs a Postgres connection string from an ExportTarget.
func buildPostgresDSN(t *domain.ExportTarget, password string) string {
	port := t.Port
	if port == 0 {
		port = 5432
	}
	sslMode := t.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		t.Host, port, t.Username, password, t.Database, sslMode,
	)
}

var postgresDialect = dialect{
	driver:      "postgres",
	quote:       `"`,
	placeholder: func(i int) string { return fmt.Sprintf("$%d", i) },
	textType:    "TEXT",
	keyType:     "TEXT",
	upsert: func(cols []string) string {
		return "ON CONFLICT (note_id, position) DO UPDATE SET " + assignList(cols, `"%[1]s" = EXCLUDED."%[1]s"`)
	},
}
