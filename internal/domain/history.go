package domain

import "time"

// DiagnosisHistory is one saved diagnosis as shown in the history list.
// Index is positional: it is the entry's place in the history sequence.
type DiagnosisHistory struct {
	Index     int      `json:"index"`
	Date      string   `json:"date"`
	Label     string   `json:"label"`
	Editor    Document `json:"editor"`
	HTML      string   `json:"html"`
	Author    string   `json:"author,omitempty"`
	UpdatedAt string   `json:"updatedAt,omitempty"`
}

// HistoryEntry is the persisted form of a history item for a note.
type HistoryEntry struct {
	NoteID    string    `json:"noteId"`
	Position  int       `json:"position"`
	Editor    Document  `json:"editor"`
	HTML      string    `json:"html"`
	Author    string    `json:"author"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type HistoryEntryStore interface {
	Append(e *HistoryEntry) error
	Update(e *HistoryEntry) (bool, error)
	Clear(noteID string) error
	List(noteID string) ([]HistoryEntry, error)
}
