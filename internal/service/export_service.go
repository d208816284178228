package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"diagnote/internal/dbclient"
	"diagnote/internal/domain"
	"diagnote/internal/richtext"
	"diagnote/internal/secret"
)

// ─────────────────────────────────────────────────────────────
// Export Service: diagnosis history to external databases
// ─────────────────────────────────────────────────────────────

// ExportTargetInput is the service-layer DTO for creating/updating targets.
type ExportTargetInput struct {
	Name     string `json:"name"`
	Driver   string `json:"driver"`
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	Username string `json:"username"`
	Password string `json:"password"`
	SSLMode  string `json:"sslMode"`
	Table    string `json:"table"`
	Schedule string `json:"schedule"`
	NoteID   string `json:"noteId"`
}

// ExporterFactory opens an exporter for a target.
type ExporterFactory func(t *domain.ExportTarget, password string) (dbclient.Exporter, error)

// ExportService manages export targets, manual and scheduled runs.
type ExportService struct {
	store   domain.ExportTargetStore
	entries domain.HistoryEntryStore
	secrets secret.SecretStore
	emitter EventEmitter
	loc     *time.Location
	open    ExporterFactory
	running runGuard

	schedMu   sync.Mutex
	cronSched *cron.Cron
}

// NewExportService creates an ExportService that opens real database
// connections.
func NewExportService(
	store domain.ExportTargetStore,
	entries domain.HistoryEntryStore,
	secrets secret.SecretStore,
	emitter EventEmitter,
	loc *time.Location,
) *ExportService {
	if loc == nil {
		loc = time.UTC
	}
	return &ExportService{
		store:   store,
		entries: entries,
		secrets: secrets,
		emitter: emitter,
		loc:     loc,
		open:    dbclient.NewExporter,
	}
}

// SetExporterFactory replaces how exporters are opened.
func (s *ExportService) SetExporterFactory(f ExporterFactory) {
	s.open = f
}

// ── Targets ────────────────────────────────────────────────

func validateTarget(in ExportTargetInput) error {
	switch domain.ExportDriver(in.Driver) {
	case domain.ExportDriverMySQL, domain.ExportDriverPostgres, domain.ExportDriverMongoDB, domain.ExportDriverSQLite:
	default:
		return fmt.Errorf("unsupported driver: %q", in.Driver)
	}
	if strings.TrimSpace(in.Name) == "" {
		return fmt.Errorf("target name is required")
	}
	if in.Table != "" && !dbclient.ValidTableName(in.Table) {
		return fmt.Errorf("invalid table name %q", in.Table)
	}
	if in.Schedule != "" {
		if _, err := cron.ParseStandard(in.Schedule); err != nil {
			return fmt.Errorf("invalid schedule %q: %w", in.Schedule, err)
		}
		if in.NoteID == "" {
			return fmt.Errorf("scheduled targets need a note")
		}
	}
	return nil
}

func applyInput(t *domain.ExportTarget, in ExportTargetInput) {
	t.Name = strings.TrimSpace(in.Name)
	t.Driver = domain.ExportDriver(in.Driver)
	t.Host = in.Host
	t.Port = in.Port
	t.Database = in.Database
	t.Username = in.Username
	t.SSLMode = in.SSLMode
	t.Table = in.Table
	if t.Table == "" {
		t.Table = dbclient.DefaultTable
	}
	t.Schedule = strings.TrimSpace(in.Schedule)
	t.NoteID = in.NoteID
}

func (s *ExportService) CreateTarget(ctx context.Context, in ExportTargetInput) (*domain.ExportTarget, error) {
	if err := validateTarget(in); err != nil {
		return nil, err
	}
	t := &domain.ExportTarget{}
	applyInput(t, in)
	if err := s.store.CreateTarget(t); err != nil {
		return nil, fmt.Errorf("create export target: %w", err)
	}
	if in.Password != "" {
		if err := s.secrets.Set(secret.ExportPasswordKey(t.ID), []byte(in.Password)); err != nil {
			return nil, fmt.Errorf("store password: %w", err)
		}
	}
	s.RestartSchedules(ctx)
	return t, nil
}

// UpdateTarget changes a target. An empty password keeps the stored one.
func (s *ExportService) UpdateTarget(ctx context.Context, id string, in ExportTargetInput) error {
	if err := validateTarget(in); err != nil {
		return err
	}
	t, err := s.store.GetTarget(id)
	if err != nil {
		return err
	}
	applyInput(t, in)
	if err := s.store.UpdateTarget(t); err != nil {
		return fmt.Errorf("update export target: %w", err)
	}
	if in.Password != "" {
		if err := s.secrets.Set(secret.ExportPasswordKey(id), []byte(in.Password)); err != nil {
			return fmt.Errorf("store password: %w", err)
		}
	}
	s.RestartSchedules(ctx)
	return nil
}

func (s *ExportService) DeleteTarget(ctx context.Context, id string) error {
	if err := s.store.DeleteTarget(id); err != nil {
		return err
	}
	s.secrets.Delete(secret.ExportPasswordKey(id))
	s.RestartSchedules(ctx)
	return nil
}

func (s *ExportService) GetTarget(id string) (*domain.ExportTarget, error) {
	return s.store.GetTarget(id)
}

func (s *ExportService) ListTargets() ([]domain.ExportTarget, error) {
	return s.store.ListTargets()
}

// ListRuns returns the last 50 runs of a target.
func (s *ExportService) ListRuns(targetID string) ([]domain.ExportRun, error) {
	return s.store.ListRuns(targetID, 50)
}

func (s *ExportService) connect(t *domain.ExportTarget) (dbclient.Exporter, error) {
	pw, err := s.secrets.Get(secret.ExportPasswordKey(t.ID))
	if err != nil {
		return nil, fmt.Errorf("read password: %w", err)
	}
	return s.open(t, string(pw))
}

// TestTarget checks that the target is reachable.
func (s *ExportService) TestTarget(ctx context.Context, id string) error {
	t, err := s.store.GetTarget(id)
	if err != nil {
		return err
	}
	exp, err := s.connect(t)
	if err != nil {
		return err
	}
	defer exp.Close()
	return exp.TestConnection(ctx)
}

// ── Run ────────────────────────────────────────────────────

// Rows builds the export rows of a note's history.
func (s *ExportService) Rows(noteID string, now time.Time) ([]dbclient.ExportRow, error) {
	entries, err := s.entries.List(noteID)
	if err != nil {
		return nil, err
	}
	today := now.In(s.loc).Format("2006-01-02")
	rows := make([]dbclient.ExportRow, 0, len(entries))
	for _, e := range entries {
		editor, err := json.Marshal(e.Editor)
		if err != nil {
			return nil, fmt.Errorf("encode entry %d: %w", e.Position, err)
		}
		rows = append(rows, dbclient.ExportRow{
			NoteID:     noteID,
			Position:   e.Position,
			Label:      Label(today, e.Position),
			Date:       e.CreatedAt.In(s.loc).Format("2006-01-02"),
			Author:     e.Author,
			HTML:       e.HTML,
			PlainText:  richtext.PlainText(e.Editor),
			EditorJSON: string(editor),
			UpdatedAt:  e.UpdatedAt,
		})
	}
	return rows, nil
}

// Run exports the history of noteID (or the target's configured note when
// noteID is empty) to the target. Only one run per target at a time.
func (s *ExportService) Run(ctx context.Context, targetID, noteID string) (*domain.ExportRun, error) {
	if !s.running.TryLock(targetID) {
		return nil, fmt.Errorf("target %s: %w", targetID, ErrExportRunning)
	}
	defer s.running.Unlock(targetID)

	t, err := s.store.GetTarget(targetID)
	if err != nil {
		return nil, err
	}
	if noteID == "" {
		noteID = t.NoteID
	}
	if noteID == "" {
		return nil, fmt.Errorf("target %s: %w", targetID, ErrNoActiveNote)
	}

	runCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	defer cancel()

	run := &domain.ExportRun{TargetID: targetID, NoteID: noteID, StartedAt: time.Now()}
	written, runErr := s.write(runCtx, t, noteID)
	run.FinishedAt = time.Now()
	run.Rows = written
	run.Status = "success"
	if runErr != nil {
		run.Status = "error"
		run.Error = runErr.Error()
		log.Printf("[EXPORT] %s failed: %v", t.Name, runErr)
	} else {
		log.Printf("[EXPORT] %s: wrote %d row(s) of note %s", t.Name, written, noteID)
	}
	if err := s.store.RecordRun(run); err != nil {
		log.Printf("[EXPORT] record run: %v", err)
	}

	s.emitter.Emit(ctx, EventExportCompleted, run)
	return run, runErr
}

func (s *ExportService) write(ctx context.Context, t *domain.ExportTarget, noteID string) (int, error) {
	rows, err := s.Rows(noteID, time.Now())
	if err != nil {
		return 0, fmt.Errorf("read history: %w", err)
	}
	exp, err := s.connect(t)
	if err != nil {
		return 0, err
	}
	defer exp.Close()

	if len(rows) == 0 {
		return 0, exp.ClearNote(ctx, t.Table, noteID)
	}
	return exp.WriteEntries(ctx, t.Table, rows)
}

// ── Schedules ──────────────────────────────────────────────

// RestartSchedules rebuilds the cron scheduler from the stored targets.
func (s *ExportService) RestartSchedules(ctx context.Context) {
	s.schedMu.Lock()
	defer s.schedMu.Unlock()
	s.stopLocked()

	targets, err := s.store.ListTargets()
	if err != nil {
		log.Printf("[EXPORT] cron: list targets: %v", err)
		return
	}

	c := cron.New()
	n := 0
	for _, t := range targets {
		if t.Schedule == "" {
			continue
		}
		id, name := t.ID, t.Name
		if _, err := c.AddFunc(t.Schedule, func() {
			if _, err := s.Run(ctx, id, ""); err != nil && !errors.Is(err, ErrExportRunning) {
				log.Printf("[EXPORT] cron: %s failed: %v", name, err)
			}
		}); err != nil {
			log.Printf("[EXPORT] cron: invalid expression %q for %s: %v", t.Schedule, name, err)
			continue
		}
		n++
	}
	if n == 0 {
		return
	}
	c.Start()
	s.cronSched = c
	log.Printf("[EXPORT] cron: scheduled %d target(s)", n)
}

// Scheduled returns how many targets are on the cron schedule.
func (s *ExportService) Scheduled() int {
	s.schedMu.Lock()
	defer s.schedMu.Unlock()
	if s.cronSched == nil {
		return 0
	}
	return len(s.cronSched.Entries())
}

// WaitRunning blocks until running exports finish or ctx is done.
func (s *ExportService) WaitRunning(ctx context.Context) {
	s.running.WaitAll(ctx)
}

// Stop halts the scheduler.
func (s *ExportService) Stop() {
	s.schedMu.Lock()
	defer s.schedMu.Unlock()
	s.stopLocked()
}

func (s *ExportService) stopLocked() {
	if s.cronSched != nil {
		s.cronSched.Stop()
		s.cronSched = nil
	}
}
