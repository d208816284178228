package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"diagnote/internal/domain"
)

// ─────────────────────────────────────────────────────────────
// Note Service: diagnostic notes
// ─────────────────────────────────────────────────────────────

// NoteService manages the list of notes.
type NoteService struct {
	store   domain.NoteStore
	emitter EventEmitter
}

// NewNoteService creates a NoteService.
func NewNoteService(store domain.NoteStore, emitter EventEmitter) *NoteService {
	return &NoteService{store: store, emitter: emitter}
}

func (s *NoteService) ListNotes() ([]domain.Note, error) {
	return s.store.ListNotes()
}

func (s *NoteService) GetNote(id string) (*domain.Note, error) {
	return s.store.GetNote(id)
}

func (s *NoteService) CreateNote(ctx context.Context, title, patient string) (*domain.Note, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled"
	}
	n := &domain.Note{
		ID:      uuid.New().String(),
		Title:   title,
		Patient: strings.TrimSpace(patient),
	}
	if err := s.store.CreateNote(n); err != nil {
		return nil, fmt.Errorf("create note: %w", err)
	}
	s.emitter.Emit(ctx, EventNotesChanged, nil)
	return n, nil
}

func (s *NoteService) RenameNote(ctx context.Context, id, title, patient string) error {
	n, err := s.store.GetNote(id)
	if err != nil {
		return err
	}
	n.Title = strings.TrimSpace(title)
	n.Patient = strings.TrimSpace(patient)
	if err := s.store.UpdateNote(n); err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	s.emitter.Emit(ctx, EventNotesChanged, nil)
	return nil
}

func (s *NoteService) DeleteNote(ctx context.Context, id string) error {
	if err := s.store.DeleteNote(id); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	s.emitter.Emit(ctx, EventNotesChanged, nil)
	return nil
}
