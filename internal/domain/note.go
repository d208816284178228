package domain

import "time"

// Note is one diagnostic note: a canvas annotation layer plus its history.
type Note struct {
	ID         string    `json:"id"`
	Title      string    `json:"title"`
	Patient    string    `json:"patient"`
	CanvasJSON string    `json:"canvasJson"` // serialized canvas scene
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

type NoteStore interface {
	CreateNote(n *Note) error
	GetNote(id string) (*Note, error)
	ListNotes() ([]Note, error)
	UpdateNote(n *Note) error
	UpdateCanvas(id, canvasJSON string) error
	DeleteNote(id string) error
}

// NoteState is everything the frontend needs to open a note.
type NoteState struct {
	Note    Note               `json:"note"`
	History []DiagnosisHistory `json:"history"`
}
