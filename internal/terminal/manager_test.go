package terminal

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestEditorArgs(t *testing.T) {
	m := &Manager{editor: "/usr/bin/nvim", cursorFile: "/tmp/cur"}
	got := strings.Join(m.editorArgs("/tmp/a.txt", 12), " ")
	if !strings.HasPrefix(got, "+12 -c autocmd VimLeave") || !strings.HasSuffix(got, "/tmp/a.txt") {
		t.Errorf("vim args = %q", got)
	}
	if args := m.editorArgs("/tmp/a.txt", 0); args[0] != "-c" {
		t.Errorf("line 0 should not add +N: %v", args)
	}

	m.editor = "/usr/local/bin/hx"
	if args := m.editorArgs("/tmp/a.txt", 3); len(args) != 1 || args[0] != "/tmp/a.txt" {
		t.Errorf("non-vim args = %v", args)
	}
}

func TestResolveEditor_Absolute(t *testing.T) {
	if got := resolveEditor("/opt/custom/editor"); got != "/opt/custom/editor" {
		t.Errorf("resolveEditor = %q", got)
	}
	if got := resolveEditor("no-such-editor-xyz"); got != "no-such-editor-xyz" {
		t.Errorf("unresolvable editor = %q, want name unchanged", got)
	}
}

func TestManager_RunsEditorInPTY(t *testing.T) {
	sh := "/bin/sh"
	if _, err := os.Stat(sh); err != nil {
		t.Skip("no /bin/sh")
	}
	script := filepath.Join(t.TempDir(), "entry.txt")
	if err := os.WriteFile(script, []byte("echo diagnote-ready\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	var mu sync.Mutex
	var out bytes.Buffer
	exited := make(chan int, 1)
	m := New(Options{
		Editor:    sh,
		ShellPath: os.Getenv("PATH"),
		OnData: func(data []byte) {
			mu.Lock()
			out.Write(data)
			mu.Unlock()
		},
		OnExit: func(line int) { exited <- line },
	})

	if err := m.Resize(100, 30); err != nil {
		t.Fatal(err)
	}
	if err := m.OpenFile(script, 0); err != nil {
		t.Fatalf("OpenFile: %v", err)
	}

	select {
	case line := <-exited:
		if line != 0 {
			t.Errorf("exit line = %d, want 0", line)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("editor did not exit")
	}

	mu.Lock()
	defer mu.Unlock()
	if !strings.Contains(out.String(), "diagnote-ready") {
		t.Errorf("output = %q", out.String())
	}
	if m.IsRunning() {
		t.Error("session still running after exit")
	}
	if err := m.Write("x"); err == nil {
		t.Error("Write without a session should fail")
	}
}
