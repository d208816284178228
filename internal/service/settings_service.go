package service

import (
	"fmt"
	"strconv"
)

// ─────────────────────────────────────────────────────────────
// Settings: window size and last opened note
// ─────────────────────────────────────────────────────────────

// SettingsStore is the key/value persistence the settings use.
type SettingsStore interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
}

// WindowSize holds the saved window dimensions.
type WindowSize struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// SettingsService persists small UI settings between sessions.
type SettingsService struct {
	store SettingsStore
}

// NewSettingsService creates a SettingsService. A nil store yields
// defaults and rejects writes.
func NewSettingsService(store SettingsStore) *SettingsService {
	return &SettingsService{store: store}
}

const (
	settingWindowWidth  = "window_width"
	settingWindowHeight = "window_height"
	settingLastNote     = "last_note_id"
	defaultWindowWidth  = 1280
	defaultWindowHeight = 800
	minWindowWidth      = 800
	minWindowHeight     = 600
)

func (s *SettingsService) intSetting(key string, def int) int {
	v, ok, err := s.store.Get(key)
	if err != nil || !ok {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return n
}

// LoadWindowSize returns the saved window dimensions, or defaults when
// nothing usable is stored.
func (s *SettingsService) LoadWindowSize() WindowSize {
	if s.store == nil {
		return WindowSize{Width: defaultWindowWidth, Height: defaultWindowHeight}
	}
	w := s.intSetting(settingWindowWidth, defaultWindowWidth)
	h := s.intSetting(settingWindowHeight, defaultWindowHeight)
	if w < minWindowWidth {
		w = defaultWindowWidth
	}
	if h < minWindowHeight {
		h = defaultWindowHeight
	}
	return WindowSize{Width: w, Height: h}
}

// SaveWindowSize persists the current window dimensions.
func (s *SettingsService) SaveWindowSize(width, height int) error {
	if s.store == nil {
		return fmt.Errorf("settings: no store")
	}
	if err := s.store.Set(settingWindowWidth, strconv.Itoa(width)); err != nil {
		return err
	}
	return s.store.Set(settingWindowHeight, strconv.Itoa(height))
}

// LastNoteID returns the note open when the app last closed.
func (s *SettingsService) LastNoteID() string {
	if s.store == nil {
		return ""
	}
	v, _, _ := s.store.Get(settingLastNote)
	return v
}

// SaveLastNoteID remembers the open note.
func (s *SettingsService) SaveLastNoteID(id string) error {
	if s.store == nil {
		return fmt.Errorf("settings: no store")
	}
	return s.store.Set(settingLastNote, id)
}
