package history_test

import (
	"reflect"
	"testing"

	"diagnote/internal/domain"
	"diagnote/internal/history"
)

func texts(docs []domain.Document) []string {
	out := make([]string, 0, len(docs))
	for _, d := range docs {
		out = append(out, d.Content[0].Content[0].Text)
	}
	return out
}

func TestStore_Sequence(t *testing.T) {
	s := history.New()
	a, b, c, d := domain.TextDoc("A"), domain.TextDoc("B"), domain.TextDoc("C"), domain.TextDoc("D")

	s.Push(a)
	s.Push(b)
	if got := texts(s.Entries()); !reflect.DeepEqual(got, []string{"A", "B"}) {
		t.Fatalf("after push: %v", got)
	}

	if !s.Update(0, c) {
		t.Error("update(0) should apply")
	}
	if got := texts(s.Entries()); !reflect.DeepEqual(got, []string{"C", "B"}) {
		t.Fatalf("after update: %v", got)
	}

	if s.Update(5, d) {
		t.Error("update(5) should not apply")
	}
	if got := texts(s.Entries()); !reflect.DeepEqual(got, []string{"C", "B"}) {
		t.Fatalf("after out-of-range update: %v", got)
	}

	s.Clear()
	if s.Len() != 0 || len(s.Entries()) != 0 {
		t.Fatalf("after clear: %d entries", s.Len())
	}
}

func TestStore_UpdateOutOfRange(t *testing.T) {
	s := history.New(domain.TextDoc("only"))
	for _, idx := range []int{-1, 1, 100} {
		if s.Update(idx, domain.TextDoc("x")) {
			t.Errorf("Update(%d) applied", idx)
		}
	}
	if got := texts(s.Entries()); !reflect.DeepEqual(got, []string{"only"}) {
		t.Errorf("entries = %v", got)
	}

	empty := history.New()
	if empty.Update(0, domain.TextDoc("x")) || empty.Len() != 0 {
		t.Error("update on empty store must be a no-op")
	}
}

func TestStore_PushKeepsDuplicates(t *testing.T) {
	s := history.New()
	doc := domain.TextDoc("same")
	s.Push(doc)
	s.Push(doc)
	s.Push(domain.Document{})
	if s.Len() != 3 {
		t.Errorf("len = %d, want 3", s.Len())
	}
}

func TestStore_EntriesIsCopy(t *testing.T) {
	s := history.New(domain.TextDoc("A"))
	got := s.Entries()
	got[0] = domain.TextDoc("mutated")

	doc, ok := s.At(0)
	if !ok || doc.Content[0].Content[0].Text != "A" {
		t.Error("mutating Entries result changed the store")
	}
	if _, ok := s.At(1); ok {
		t.Error("At(1) should miss")
	}
}

func TestStore_Reset(t *testing.T) {
	s := history.New(domain.TextDoc("A"))
	s.Reset([]domain.Document{domain.TextDoc("X"), domain.TextDoc("Y")})
	if got := texts(s.Entries()); !reflect.DeepEqual(got, []string{"X", "Y"}) {
		t.Errorf("after reset: %v", got)
	}
}
