package editorbridge

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ChangeHandler receives the new content of the file watched for a
// history index.
type ChangeHandler func(index int, content string)

// Bridge watches files opened in the external editor. When the editor
// saves, the handler gets the file content so the history entry can be
// previewed and updated while editing.
type Bridge struct {
	watcher  *fsnotify.Watcher
	onChange ChangeHandler
	debounce time.Duration

	mu       sync.Mutex
	watching map[string]int // abs path -> history index
	last     map[string]string
	pending  map[string]*time.Timer
}

// New creates a Bridge. Writes to the same file within debounce are
// reported once; zero reports every write.
func New(onChange ChangeHandler, debounce time.Duration) (*Bridge, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	b := &Bridge{
		watcher:  w,
		onChange: onChange,
		debounce: debounce,
		watching: make(map[string]int),
		last:     make(map[string]string),
		pending:  make(map[string]*time.Timer),
	}
	go b.loop()
	return b, nil
}

// Watch reports changes of path as edits of the entry at index. A path
// already watched is re-keyed.
func (b *Bridge) Watch(index int, path string) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	content, _ := os.ReadFile(abs)

	b.mu.Lock()
	b.watching[abs] = index
	b.last[abs] = strings.TrimSpace(string(content))
	b.mu.Unlock()

	// Editors often replace the file on save, so the directory is watched.
	return b.watcher.Add(filepath.Dir(abs))
}

// Unwatch stops reporting changes for index.
func (b *Bridge) Unwatch(index int) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for path, i := range b.watching {
		if i != index {
			continue
		}
		delete(b.watching, path)
		delete(b.last, path)
		if t := b.pending[path]; t != nil {
			t.Stop()
			delete(b.pending, path)
		}
	}
}

// Watching returns the index watched for path.
func (b *Bridge) Watching(path string) (int, bool) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return 0, false
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.watching[abs]
	return i, ok
}

// Close stops the watcher.
func (b *Bridge) Close() error {
	b.mu.Lock()
	for p, t := range b.pending {
		t.Stop()
		delete(b.pending, p)
	}
	b.mu.Unlock()
	return b.watcher.Close()
}

func (b *Bridge) loop() {
	for {
		select {
		case ev, ok := <-b.watcher.Events:
			if !ok {
				return
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				b.schedule(ev.Name)
			}
		case err, ok := <-b.watcher.Errors:
			if !ok {
				return
			}
			log.Printf("[EDITOR] watcher error: %v", err)
		}
	}
}

func (b *Bridge) schedule(name string) {
	abs, _ := filepath.Abs(name)

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.watching[abs]; !ok {
		return
	}
	if b.debounce <= 0 {
		go b.fire(abs)
		return
	}
	if t := b.pending[abs]; t != nil {
		t.Reset(b.debounce)
		return
	}
	b.pending[abs] = time.AfterFunc(b.debounce, func() { b.fire(abs) })
}

// fire reads path and reports it when the content differs from what was
// last seen.
func (b *Bridge) fire(path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		log.Printf("[EDITOR] read %s: %v", path, err)
		return
	}
	content := strings.TrimSpace(string(data))

	b.mu.Lock()
	delete(b.pending, path)
	index, ok := b.watching[path]
	if !ok || b.last[path] == content {
		b.mu.Unlock()
		return
	}
	b.last[path] = content
	b.mu.Unlock()

	if b.onChange != nil {
		b.onChange(index, content)
	}
}
