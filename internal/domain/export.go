package domain

import "time"

// ExportDriver represents the type of database engine history is exported to.
type ExportDriver string

const (
	ExportDriverMySQL    ExportDriver = "mysql"
	ExportDriverPostgres ExportDriver = "postgres"
	ExportDriverMongoDB  ExportDriver = "mongodb"
	ExportDriverSQLite   ExportDriver = "sqlite"
)

// ExportTarget describes an external database that receives diagnosis
// history. The password lives in the SecretStore, never in this record.
type ExportTarget struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Driver    ExportDriver `json:"driver"`
	Host      string       `json:"host"`     // hostname, URI (mongodb) or file path (sqlite)
	Port      int          `json:"port"`     // 0 means driver default
	Database  string       `json:"database"` // db name or empty for sqlite
	Username  string       `json:"username"`
	SSLMode   string       `json:"sslMode"`
	Table     string       `json:"table"`    // table or collection name
	Schedule  string       `json:"schedule"` // cron expression, empty for manual only
	NoteID    string       `json:"noteId"`   // note exported by scheduled runs
	ExtraJSON string       `json:"extraJson"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// ExportRun is the outcome of one export execution.
type ExportRun struct {
	ID         string    `json:"id"`
	TargetID   string    `json:"targetId"`
	NoteID     string    `json:"noteId"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
	Status     string    `json:"status"` // "success" | "error"
	Rows       int       `json:"rows"`
	Error      string    `json:"error,omitempty"`
}

type ExportTargetStore interface {
	CreateTarget(t *ExportTarget) error
	GetTarget(id string) (*ExportTarget, error)
	ListTargets() ([]ExportTarget, error)
	UpdateTarget(t *ExportTarget) error
	DeleteTarget(id string) error
	RecordRun(r *ExportRun) error
	ListRuns(targetID string, limit int) ([]ExportRun, error)
}
