package storage_test

import (
	"errors"
	"path/filepath"
	"testing"
	"time"

	"diagnote/internal/domain"
	"diagnote/internal/storage"
)

func setupDB(t *testing.T) *storage.DB {
	t.Helper()
	dir := t.TempDir()
	db, err := storage.New(filepath.Join(dir, "test.db"), filepath.Join(dir, "data"))
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func createNote(t *testing.T, s *storage.NoteStore, id string) *domain.Note {
	t.Helper()
	n := &domain.Note{ID: id, Title: "Note " + id, Patient: "P-" + id}
	if err := s.CreateNote(n); err != nil {
		t.Fatalf("create note: %v", err)
	}
	return n
}

func TestNew_MigrationsAreIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "test.db")
	for i := 0; i < 2; i++ {
		db, err := storage.New(path, dir)
		if err != nil {
			t.Fatalf("open #%d: %v", i, err)
		}
		db.Close()
	}
}

func TestNew_Pragmas(t *testing.T) {
	db := setupDB(t)
	var mode string
	if err := db.Conn().QueryRow(`PRAGMA journal_mode`).Scan(&mode); err != nil || mode != "wal" {
		t.Errorf("journal_mode = %q (%v), want wal", mode, err)
	}
	var timeout int
	if err := db.Conn().QueryRow(`PRAGMA busy_timeout`).Scan(&timeout); err != nil || timeout != 5000 {
		t.Errorf("busy_timeout = %d (%v), want 5000", timeout, err)
	}
}

func TestNoteStore_CRUD(t *testing.T) {
	db := setupDB(t)
	s := storage.NewNoteStore(db)

	createNote(t, s, "n1")
	createNote(t, s, "n2")

	got, err := s.GetNote("n1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Title != "Note n1" || got.Patient != "P-n1" {
		t.Errorf("got %+v", got)
	}

	if err := s.UpdateCanvas("n1", `{"objects":[]}`); err != nil {
		t.Fatalf("update canvas: %v", err)
	}
	got, _ = s.GetNote("n1")
	if got.CanvasJSON != `{"objects":[]}` {
		t.Errorf("canvas = %q", got.CanvasJSON)
	}

	got.Title = "Renamed"
	if err := s.UpdateNote(got); err != nil {
		t.Fatalf("update: %v", err)
	}
	notes, err := s.ListNotes()
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(notes) != 2 || notes[0].Title != "Renamed" {
		t.Errorf("list = %+v", notes)
	}

	if err := s.DeleteNote("n2"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetNote("n2"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("get deleted: err = %v, want ErrNotFound", err)
	}
	if err := s.UpdateCanvas("n2", "{}"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("update canvas of deleted: err = %v, want ErrNotFound", err)
	}
}

func TestHistoryEntryStore(t *testing.T) {
	db := setupDB(t)
	notes := storage.NewNoteStore(db)
	createNote(t, notes, "n1")
	createNote(t, notes, "n2")
	s := storage.NewHistoryEntryStore(db)

	for _, text := range []string{"A", "B"} {
		e := &domain.HistoryEntry{NoteID: "n1", Editor: domain.TextDoc(text), HTML: "<p>" + text + "</p>", Author: "sato"}
		if err := s.Append(e); err != nil {
			t.Fatalf("append %s: %v", text, err)
		}
	}
	other := &domain.HistoryEntry{NoteID: "n2", Editor: domain.TextDoc("other")}
	if err := s.Append(other); err != nil {
		t.Fatal(err)
	}
	if other.Position != 0 {
		t.Errorf("positions are per note, got %d", other.Position)
	}

	ok, err := s.Update(&domain.HistoryEntry{NoteID: "n1", Position: 0, Editor: domain.TextDoc("C"), HTML: "<p>C</p>"})
	if err != nil || !ok {
		t.Fatalf("update(0): ok=%v err=%v", ok, err)
	}
	ok, err = s.Update(&domain.HistoryEntry{NoteID: "n1", Position: 5, Editor: domain.TextDoc("D")})
	if err != nil || ok {
		t.Fatalf("update(5): ok=%v err=%v", ok, err)
	}

	entries, err := s.List("n1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("len = %d, want 2", len(entries))
	}
	if entries[0].HTML != "<p>C</p>" || entries[1].HTML != "<p>B</p>" {
		t.Errorf("entries = %q, %q", entries[0].HTML, entries[1].HTML)
	}
	if entries[1].Editor.Content[0].Content[0].Text != "B" {
		t.Errorf("editor document not round-tripped: %+v", entries[1].Editor)
	}
	if entries[1].Author != "sato" || entries[1].Position != 1 {
		t.Errorf("entry 1 = %+v", entries[1])
	}

	if err := s.Clear("n1"); err != nil {
		t.Fatal(err)
	}
	entries, _ = s.List("n1")
	if len(entries) != 0 {
		t.Errorf("after clear: %d entries", len(entries))
	}
	if rest, _ := s.List("n2"); len(rest) != 1 {
		t.Error("clear must only affect its own note")
	}

	// Positions restart after a clear.
	e := &domain.HistoryEntry{NoteID: "n1", Editor: domain.TextDoc("again")}
	if err := s.Append(e); err != nil || e.Position != 0 {
		t.Errorf("append after clear: pos=%d err=%v", e.Position, err)
	}
}

func TestExportStore(t *testing.T) {
	db := setupDB(t)
	s := storage.NewExportStore(db)

	target := &domain.ExportTarget{
		Name:     "warehouse",
		Driver:   domain.ExportDriverPostgres,
		Host:     "db.local",
		Port:     5432,
		Database: "clinic",
		Username: "etl",
		SSLMode:  "disable",
		Table:    "diagnosis_history",
		Schedule: "@hourly",
		NoteID:   "n1",
	}
	if err := s.CreateTarget(target); err != nil {
		t.Fatalf("create: %v", err)
	}
	if target.ID == "" || target.ExtraJSON != "{}" {
		t.Errorf("defaults not filled: %+v", target)
	}

	got, err := s.GetTarget(target.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Driver != domain.ExportDriverPostgres || got.Port != 5432 || got.Schedule != "@hourly" || got.Table != "diagnosis_history" {
		t.Errorf("got %+v", got)
	}

	got.Schedule = ""
	if err := s.UpdateTarget(got); err != nil {
		t.Fatal(err)
	}
	list, err := s.ListTargets()
	if err != nil || len(list) != 1 || list[0].Schedule != "" {
		t.Fatalf("list = %+v err=%v", list, err)
	}

	base := time.Now().Add(-time.Hour)
	for i, status := range []string{"success", "error", "success"} {
		run := &domain.ExportRun{
			TargetID:   target.ID,
			NoteID:     "n1",
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
			FinishedAt: base.Add(time.Duration(i)*time.Minute + time.Second),
			Status:     status,
			Rows:       i,
		}
		if err := s.RecordRun(run); err != nil {
			t.Fatalf("record run: %v", err)
		}
	}
	runs, err := s.ListRuns(target.ID, 2)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 2 || runs[0].Rows != 2 || runs[1].Status != "error" {
		t.Errorf("runs = %+v", runs)
	}

	if err := s.DeleteTarget(target.ID); err != nil {
		t.Fatal(err)
	}
	if _, err := s.GetTarget(target.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
	if runs, _ := s.ListRuns(target.ID, 10); len(runs) != 0 {
		t.Error("runs should be deleted with their target")
	}
}

func TestSettingsStore(t *testing.T) {
	s := storage.NewSettingsStore(setupDB(t))

	if _, ok, err := s.Get("window_width"); ok || err != nil {
		t.Fatalf("unset key: ok=%v err=%v", ok, err)
	}
	if err := s.Set("window_width", "1440"); err != nil {
		t.Fatal(err)
	}
	if err := s.Set("window_width", "1600"); err != nil {
		t.Fatal(err)
	}
	v, ok, err := s.Get("window_width")
	if err != nil || !ok || v != "1600" {
		t.Errorf("get = %q ok=%v err=%v", v, ok, err)
	}
}

func TestApprovalStore(t *testing.T) {
	s := storage.NewApprovalStore(setupDB(t))

	if err := s.Insert(domain.Approval{ID: "a1", Tool: "clear_history", Description: "Clear 3 entries"}); err != nil {
		t.Fatal(err)
	}
	s.Insert(domain.Approval{ID: "a2", Tool: "clear_history", Metadata: `{"noteId":"n1"}`})

	pending, err := s.ListPending()
	if err != nil || len(pending) != 2 {
		t.Fatalf("pending = %+v err=%v", pending, err)
	}
	if pending[0].Metadata != "{}" || pending[1].Metadata != `{"noteId":"n1"}` {
		t.Errorf("metadata = %q, %q", pending[0].Metadata, pending[1].Metadata)
	}

	ok, err := s.Resolve("a1", true)
	if err != nil || !ok {
		t.Fatalf("resolve: %v %v", ok, err)
	}
	if ok, _ := s.Resolve("a1", false); ok {
		t.Error("an approval can only be resolved once")
	}
	if status, _ := s.Status("a1"); status != domain.ApprovalApproved {
		t.Errorf("status = %q", status)
	}
	if pending, _ := s.ListPending(); len(pending) != 1 || pending[0].ID != "a2" {
		t.Errorf("pending after resolve = %+v", pending)
	}

	s.Delete("a1")
	if _, err := s.Status("a1"); !errors.Is(err, storage.ErrNotFound) {
		t.Errorf("status after delete: %v", err)
	}
}
