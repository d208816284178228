package terminal

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/creack/pty"
)

// Manager runs one external editor session in a PTY. Output is streamed
// to onData; onExit receives the cursor line when the editor reports one.
type Manager struct {
	mu      sync.Mutex
	ptmx    *os.File
	cmd     *exec.Cmd
	session int
	onData  func(data []byte)
	onExit  func(exitLine int)
	running bool
	editor  string

	cols, rows uint16
	cursorFile string
	shellPath  string
}

// Options configures a Manager.
type Options struct {
	Editor string // command name or path; "" means nvim
	OnData func(data []byte)
	OnExit func(exitLine int)
	// ShellPath overrides the PATH given to the editor. When empty the
	// user's login shell is asked once.
	ShellPath string
}

// New creates a Manager. No process is started until OpenFile.
func New(opts Options) *Manager {
	editor := opts.Editor
	if editor == "" {
		editor = "nvim"
	}
	shellPath := opts.ShellPath
	if shellPath == "" {
		shellPath = loginShellPath()
	}
	return &Manager{
		onData:     opts.OnData,
		onExit:     opts.OnExit,
		editor:     resolveEditor(editor),
		cols:       80,
		rows:       24,
		cursorFile: filepath.Join(os.TempDir(), "diagnote_editor_cursor"),
		shellPath:  shellPath,
	}
}

// Editor returns the resolved editor binary.
func (m *Manager) Editor() string {
	return m.editor
}

// resolveEditor finds the editor binary. GUI apps on macOS start with a
// minimal PATH, so common install locations are probed as well.
func resolveEditor(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	if p, err := exec.LookPath(name); err == nil {
		return p
	}
	candidates := []string{
		filepath.Join("/opt/homebrew/bin", name),
		filepath.Join("/usr/local/bin", name),
		filepath.Join("/run/current-system/sw/bin", name),
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates,
			filepath.Join(home, ".local/bin", name),
			filepath.Join(home, ".nix-profile/bin", name),
		)
	}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			return c
		}
	}
	return name
}

func loginShellPath() string {
	shell := os.Getenv("SHELL")
	if shell == "" {
		shell = "/bin/zsh"
	}
	out, err := exec.Command(shell, "-lc", "echo $PATH").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

// isVim reports whether the editor understands vim's +N and -c flags.
func isVim(editor string) bool {
	base := filepath.Base(editor)
	return base == "vim" || base == "nvim" || base == "vi"
}

// editorArgs builds the command line for opening path at line.
func (m *Manager) editorArgs(path string, line int) []string {
	if !isVim(m.editor) {
		return []string{path}
	}
	var args []string
	if line > 0 {
		args = append(args, "+"+strconv.Itoa(line))
	}
	return append(args,
		"-c", fmt.Sprintf("autocmd VimLeave * call writefile([line('.')], '%s')", m.cursorFile),
		path,
	)
}

func (m *Manager) environ() []string {
	env := os.Environ()
	if m.shellPath != "" {
		replaced := false
		for i, e := range env {
			if strings.HasPrefix(e, "PATH=") {
				env[i] = "PATH=" + m.shellPath
				replaced = true
				break
			}
		}
		if !replaced {
			env = append(env, "PATH="+m.shellPath)
		}
	}
	return append(env, "TERM=xterm-256color", "COLORTERM=truecolor")
}

// OpenFile starts the editor on path, closing any running session first.
// line <= 0 opens at the top.
func (m *Manager) OpenFile(path string, line int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		m.closeLocked()
	}
	os.Remove(m.cursorFile)

	cmd := exec.Command(m.editor, m.editorArgs(path, line)...)
	cmd.Env = m.environ()

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Cols: m.cols, Rows: m.rows})
	if err != nil {
		return fmt.Errorf("start pty: %w", err)
	}

	m.session++
	m.ptmx = ptmx
	m.cmd = cmd
	m.running = true
	go m.pump(ptmx, m.session)
	return nil
}

// pump forwards PTY output until the editor exits.
func (m *Manager) pump(ptmx *os.File, session int) {
	buf := make([]byte, 32*1024)
	for {
		n, err := ptmx.Read(buf)
		if n > 0 && m.onData != nil {
			data := make([]byte, n)
			copy(data, buf[:n])
			m.onData(data)
		}
		if err != nil {
			break
		}
	}

	exitLine := 0
	if data, err := os.ReadFile(m.cursorFile); err == nil {
		if line, err := strconv.Atoi(strings.TrimSpace(string(data))); err == nil {
			exitLine = line
		}
		os.Remove(m.cursorFile)
	}

	m.mu.Lock()
	current := m.session == session
	if current {
		m.running = false
	}
	m.mu.Unlock()

	// A replaced session must not report the new one as finished.
	if current && m.onExit != nil {
		m.onExit(exitLine)
	}
}

// Write sends keystrokes to the editor.
func (m *Manager) Write(data string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.running || m.ptmx == nil {
		return fmt.Errorf("no active terminal session")
	}
	_, err := io.WriteString(m.ptmx, data)
	return err
}

// Resize changes the PTY size. The size is remembered for the next
// session.
func (m *Manager) Resize(cols, rows uint16) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cols, m.rows = cols, rows
	if !m.running || m.ptmx == nil {
		return nil
	}
	return pty.Setsize(m.ptmx, &pty.Winsize{Cols: cols, Rows: rows})
}

// IsRunning reports whether an editor session is active.
func (m *Manager) IsRunning() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Close kills the current session.
func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closeLocked()
}

func (m *Manager) closeLocked() {
	if m.ptmx != nil {
		m.ptmx.Close()
		m.ptmx = nil
	}
	if m.cmd != nil && m.cmd.Process != nil {
		m.cmd.Process.Kill()
		m.cmd.Wait()
		m.cmd = nil
	}
	m.running = false
}
