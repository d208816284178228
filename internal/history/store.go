// Package history keeps the ordered list of saved editor documents for the
// note being edited.
package history

import "diagnote/internal/domain"

// Store is an ordered, append-mostly list of editor documents. Entries are
// addressed by position only.
//
// A Store is not safe for concurrent use.
type Store struct {
	entries []domain.Document
}

// New creates a Store seeded with docs.
func New(docs ...domain.Document) *Store {
	s := &Store{}
	s.Reset(docs)
	return s
}

// Push appends doc. Duplicates are allowed.
func (s *Store) Push(doc domain.Document) {
	s.entries = append(s.entries, doc)
}

// Update replaces the entry at index. An index outside [0, Len) leaves the
// store unchanged; the result reports whether anything was replaced.
func (s *Store) Update(index int, doc domain.Document) bool {
	if index < 0 || index >= len(s.entries) {
		return false
	}
	s.entries[index] = doc
	return true
}

// Clear removes every entry.
func (s *Store) Clear() {
	s.entries = nil
}

// Reset replaces the whole sequence, used when a note is loaded.
func (s *Store) Reset(docs []domain.Document) {
	s.entries = append([]domain.Document(nil), docs...)
}

// Entries returns a copy of the sequence in insertion order.
func (s *Store) Entries() []domain.Document {
	return append([]domain.Document(nil), s.entries...)
}

func (s *Store) Len() int {
	return len(s.entries)
}

// At returns the entry at index.
func (s *Store) At(index int) (domain.Document, bool) {
	if index < 0 || index >= len(s.entries) {
		return domain.Document{}, false
	}
	return s.entries[index], true
}
