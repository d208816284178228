package service

import (
	"context"
	"fmt"
	"log"
	"strconv"
	"sync"
	"time"

	"diagnote/internal/domain"
	"diagnote/internal/history"
	"diagnote/internal/richtext"
)

// ─────────────────────────────────────────────────────────────
// History Service: diagnosis history of the open note
// ─────────────────────────────────────────────────────────────

// HistoryService keeps the history of the open note in a history.Store
// and mirrors every change to SQLite. Labels are "<today>_<n>" with today
// taken in the configured zone.
type HistoryService struct {
	entries domain.HistoryEntryStore
	emitter EventEmitter
	loc     *time.Location
	author  string
	now     func() time.Time

	mu     sync.Mutex
	noteID string
	store  *history.Store
	meta   []entryMeta
}

// entryMeta is what the store does not carry for each position.
type entryMeta struct {
	author    string
	updatedAt time.Time
}

// NewHistoryService creates a HistoryService. loc defaults to UTC.
func NewHistoryService(entries domain.HistoryEntryStore, emitter EventEmitter, loc *time.Location, author string) *HistoryService {
	if loc == nil {
		loc = time.UTC
	}
	return &HistoryService{
		entries: entries,
		emitter: emitter,
		loc:     loc,
		author:  author,
		now:     time.Now,
		store:   history.New(),
	}
}

// SetClock replaces the time source used for labels.
func (s *HistoryService) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Open loads the history of noteID.
func (s *HistoryService) Open(ctx context.Context, noteID string) ([]domain.DiagnosisHistory, error) {
	docs, meta, err := s.load(noteID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.noteID = noteID
	s.store.Reset(docs)
	s.meta = meta
	return s.listLocked(), nil
}

func (s *HistoryService) load(noteID string) ([]domain.Document, []entryMeta, error) {
	rows, err := s.entries.List(noteID)
	if err != nil {
		return nil, nil, fmt.Errorf("load history of %s: %w", noteID, err)
	}
	docs := make([]domain.Document, 0, len(rows))
	meta := make([]entryMeta, 0, len(rows))
	for _, r := range rows {
		docs = append(docs, r.Editor)
		meta = append(meta, entryMeta{author: r.Author, updatedAt: r.UpdatedAt})
	}
	return docs, meta, nil
}

// syncLocked re-reads the open note's rows. Every change made here is
// written through, so the rows are authoritative; they differ from the
// store only when another process (the standalone MCP server) edited the
// note.
func (s *HistoryService) syncLocked() error {
	if s.noteID == "" {
		return nil
	}
	docs, meta, err := s.load(s.noteID)
	if err != nil {
		return err
	}
	s.store.Reset(docs)
	s.meta = meta
	return nil
}

// Close forgets the open note.
func (s *HistoryService) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.noteID = ""
	s.store.Clear()
	s.meta = nil
}

// NoteID returns the open note, or "".
func (s *HistoryService) NoteID() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.noteID
}

// List returns the entries for display.
func (s *HistoryService) List() []domain.DiagnosisHistory {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.syncLocked(); err != nil {
		log.Printf("[HISTORY] %v", err)
	}
	return s.listLocked()
}

// Documents returns the raw editor documents.
func (s *HistoryService) Documents() []domain.Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.syncLocked(); err != nil {
		log.Printf("[HISTORY] %v", err)
	}
	return s.store.Entries()
}

func (s *HistoryService) listLocked() []domain.DiagnosisHistory {
	today := s.now().In(s.loc).Format("2006-01-02")
	docs := s.store.Entries()
	out := make([]domain.DiagnosisHistory, 0, len(docs))
	for i, doc := range docs {
		out = append(out, s.presentLocked(today, i, doc))
	}
	return out
}

func (s *HistoryService) presentLocked(today string, i int, doc domain.Document) domain.DiagnosisHistory {
	h := domain.DiagnosisHistory{
		Index:  i,
		Date:   today,
		Label:  Label(today, i),
		Editor: doc,
	}
	html, err := richtext.RenderHTML(doc)
	if err != nil {
		log.Printf("[HISTORY] render entry %d: %v", i, err)
	}
	h.HTML = html
	if i < len(s.meta) {
		h.Author = s.meta[i].author
		if !s.meta[i].updatedAt.IsZero() {
			h.UpdatedAt = s.meta[i].updatedAt.In(s.loc).Format(time.RFC3339)
		}
	}
	return h
}

// Label is the display name of the entry at index: "<today>_<index+1>".
func Label(today string, index int) string {
	return today + "_" + strconv.Itoa(index+1)
}

// Select announces the entry at index to the frontend. An out-of-range
// index is ignored.
func (s *HistoryService) Select(ctx context.Context, index int) bool {
	s.mu.Lock()
	if err := s.syncLocked(); err != nil {
		log.Printf("[HISTORY] %v", err)
	}
	doc, ok := s.store.At(index)
	var h domain.DiagnosisHistory
	if ok {
		h = s.presentLocked(s.now().In(s.loc).Format("2006-01-02"), index, doc)
	}
	s.mu.Unlock()

	if !ok {
		return false
	}
	s.emitter.Emit(ctx, EventHistorySelected, h)
	return true
}

// Push appends doc to the history of the open note.
func (s *HistoryService) Push(ctx context.Context, doc domain.Document) (*domain.DiagnosisHistory, error) {
	s.mu.Lock()
	if s.noteID == "" {
		s.mu.Unlock()
		return nil, ErrNoActiveNote
	}
	if err := s.syncLocked(); err != nil {
		s.mu.Unlock()
		return nil, err
	}
	html, _ := richtext.RenderHTML(doc)
	e := &domain.HistoryEntry{NoteID: s.noteID, Editor: doc, HTML: html, Author: s.author}
	if err := s.entries.Append(e); err != nil {
		s.mu.Unlock()
		return nil, fmt.Errorf("push history: %w", err)
	}
	s.store.Push(doc)
	s.meta = append(s.meta, entryMeta{author: e.Author, updatedAt: e.UpdatedAt})
	index := s.store.Len() - 1
	h := s.presentLocked(s.now().In(s.loc).Format("2006-01-02"), index, doc)
	list := s.listLocked()
	s.mu.Unlock()

	log.Printf("[HISTORY] pushed entry %d", index)
	s.emitter.Emit(ctx, EventHistoryChanged, list)
	return &h, nil
}

// Update replaces the entry at index. An index outside the history is
// ignored and reported as false.
func (s *HistoryService) Update(ctx context.Context, index int, doc domain.Document) (bool, error) {
	s.mu.Lock()
	if s.noteID == "" {
		s.mu.Unlock()
		return false, ErrNoActiveNote
	}
	if err := s.syncLocked(); err != nil {
		s.mu.Unlock()
		return false, err
	}
	if _, ok := s.store.At(index); !ok {
		s.mu.Unlock()
		return false, nil
	}
	html, _ := richtext.RenderHTML(doc)
	e := &domain.HistoryEntry{NoteID: s.noteID, Position: index, Editor: doc, HTML: html, Author: s.author}
	applied, err := s.entries.Update(e)
	if err != nil {
		s.mu.Unlock()
		return false, fmt.Errorf("update history: %w", err)
	}
	if !applied {
		s.mu.Unlock()
		return false, nil
	}
	s.store.Update(index, doc)
	if index < len(s.meta) {
		s.meta[index] = entryMeta{author: e.Author, updatedAt: e.UpdatedAt}
	}
	list := s.listLocked()
	s.mu.Unlock()

	s.emitter.Emit(ctx, EventHistoryChanged, list)
	return true, nil
}

// Clear removes every entry of the open note.
func (s *HistoryService) Clear(ctx context.Context) error {
	s.mu.Lock()
	if s.noteID == "" {
		s.mu.Unlock()
		return ErrNoActiveNote
	}
	if err := s.entries.Clear(s.noteID); err != nil {
		s.mu.Unlock()
		return fmt.Errorf("clear history: %w", err)
	}
	s.store.Clear()
	s.meta = nil
	s.mu.Unlock()

	log.Printf("[HISTORY] cleared")
	s.emitter.Emit(ctx, EventHistoryChanged, []domain.DiagnosisHistory{})
	return nil
}
