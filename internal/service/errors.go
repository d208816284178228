package service

import "errors"

var (
	// ErrNoActiveNote is returned by operations that need an open note.
	ErrNoActiveNote = errors.New("no active note")
	// ErrExportRunning is returned when a target already has a run in progress.
	ErrExportRunning = errors.New("export already running")
	// ErrNoteSwitched is returned when another note was opened while an
	// operation was waiting.
	ErrNoteSwitched = errors.New("another note was opened")
)
