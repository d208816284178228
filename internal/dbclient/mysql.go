package dbclient

import (
	"fmt"

	"diagnote/internal/domain"

	_ "github.com/go-sql-driver/mysql"
)

// buildMySQLDSN constructs a MySQL DSN from an ExportTarget.
func buildMySQLDSN(t *domain.ExportTarget, password string) string {
	port := t.Port
	if port == 0 {
		port = 3306
	}
	// Format: user:password@tcp(host:port)/dbname?parseTime=true
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
		t.Username, password, t.Host, port, t.Database,
	)
	if t.SSLMode == "require" {
		dsn += "&tls=true"
	}
	return dsn
}

var mysqlDialect = dialect{
	driver:      "mysql",
	quote:       "`",
	placeholder: func(int) string { return "?" },
	textType:    "LONGTEXT",
	keyType:     "VARCHAR(64)",
	upsert: func(cols []string) string {
		return "ON DUPLICATE KEY UPDATE " + assignList(cols, "`%[1]s` = VALUES(`%[1]s`)")
	},
}
