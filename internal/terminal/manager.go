package terminal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"sync"
	"time"

	"github.com/charmbracelet/x/ansi"
	"github.com/creack/pty"
	"go.uber.org/zap"

	"github.com/five82/termnote/internal/session"
)

// Defaults applied to zero Options fields.
const (
	DefaultBufferSize = 256 * 1024
	DefaultCols       = 120
	DefaultRows       = 32
)

// ErrClosed is returned when writing to a terminal whose shell has exited.
var ErrClosed = errors.New("terminal is closed")

// Options configure the shells started by a Manager.
type Options struct {
	Shell      string
	WorkingDir string
	Cols       int
	Rows       int
	BufferSize int
	Env        []string
	// Mirror, when set, receives a copy of every terminal's output.
	Mirror io.Writer
	Logger *zap.Logger
}

// Manager starts PTY-backed shells and implements session.Host.
type Manager struct {
	opts Options
	log  *zap.Logger

	mu        sync.Mutex
	terminals []*Terminal
	focused   *Terminal
}

var _ session.Host = (*Manager)(nil)

// NewManager returns a manager with defaults filled in.
func NewManager(opts Options) *Manager {
	if opts.Shell == "" {
		opts.Shell = os.Getenv("SHELL")
		if opts.Shell == "" {
			opts.Shell = "/bin/sh"
		}
	}
	if opts.WorkingDir == "" {
		if home, err := os.UserHomeDir(); err == nil {
			opts.WorkingDir = home
		} else {
			opts.WorkingDir = os.TempDir()
		}
	}
	if opts.Cols <= 0 {
		opts.Cols = DefaultCols
	}
	if opts.Rows <= 0 {
		opts.Rows = DefaultRows
	}
	if opts.BufferSize <= 0 {
		opts.BufferSize = DefaultBufferSize
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Manager{opts: opts, log: opts.Logger.Named("terminal")}
}

// CreateTerminal starts the configured shell under a new PTY.
func (m *Manager) CreateTerminal(name string) (session.Terminal, error) {
	cmd := exec.Command(m.opts.Shell)
	cmd.Dir = m.opts.WorkingDir
	cmd.Env = append(os.Environ(), "TERM=xterm-256color")
	cmd.Env = append(cmd.Env, m.opts.Env...)

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{
		Rows: uint16(m.opts.Rows),
		Cols: uint16(m.opts.Cols),
	})
	if err != nil {
		return nil, fmt.Errorf("start pty: %w", err)
	}

	t := &Terminal{
		Name:       name,
		Shell:      m.opts.Shell,
		WorkingDir: m.opts.WorkingDir,
		StartedAt:  time.Now(),
		manager:    m,
		cmd:        cmd,
		ptmx:       ptmx,
		buf:        NewBuffer(m.opts.BufferSize),
		done:       make(chan struct{}),
		readDone:   make(chan struct{}),
	}

	m.mu.Lock()
	m.terminals = append(m.terminals, t)
	m.mu.Unlock()

	go t.readOutput()
	go t.monitor()

	m.log.Info("terminal started",
		zap.String("name", name),
		zap.String("shell", t.Shell),
		zap.Int("pid", cmd.Process.Pid),
	)
	return t, nil
}

// Focused returns the terminal most recently shown, if it is still open.
func (m *Manager) Focused() (*Terminal, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.focused, m.focused != nil
}

// Terminals returns the terminals that have not been disposed.
func (m *Manager) Terminals() []*Terminal {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*Terminal, len(m.terminals))
	copy(out, m.terminals)
	return out
}

// Resize changes the PTY size of every live terminal and of those started
// later.
func (m *Manager) Resize(cols, rows int) {
	if cols <= 0 || rows <= 0 {
		return
	}
	m.mu.Lock()
	m.opts.Cols, m.opts.Rows = cols, rows
	terminals := make([]*Terminal, len(m.terminals))
	copy(terminals, m.terminals)
	m.mu.Unlock()

	for _, t := range terminals {
		if err := t.resize(cols, rows); err != nil && !errors.Is(err, ErrClosed) {
			m.log.Debug("resize failed", zap.String("name", t.Name), zap.Error(err))
		}
	}
}

func (m *Manager) focus(t *Terminal) {
	m.mu.Lock()
	m.focused = t
	m.mu.Unlock()
}

func (m *Manager) forget(t *Terminal) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i, other := range m.terminals {
		if other == t {
			m.terminals = append(m.terminals[:i], m.terminals[i+1:]...)
			break
		}
	}
	if m.focused == t {
		m.focused = nil
	}
}

func (m *Manager) outputAppended(p []byte) {
	if m.opts.Mirror != nil {
		_, _ = m.opts.Mirror.Write(p)
	}
}

// Terminal is one shell process attached to a PTY.
type Terminal struct {
	Name       string
	Shell      string
	WorkingDir string
	StartedAt  time.Time

	manager *Manager
	cmd     *exec.Cmd
	ptmx    *os.File
	buf     *Buffer

	mu       sync.Mutex
	closed   bool
	exitErr  error
	done     chan struct{}
	readDone chan struct{}
}

// Show makes t the focused terminal.
func (t *Terminal) Show() {
	t.manager.focus(t)
}

// SendText writes text to the shell, followed by a carriage return when
// addNewLine is set.
func (t *Terminal) SendText(text string, addNewLine bool) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	if addNewLine {
		text += "\r"
	}
	if _, err := io.WriteString(t.ptmx, text); err != nil {
		return fmt.Errorf("write pty: %w", err)
	}
	return nil
}

// Dispose kills the shell and releases the PTY. It is safe to call more
// than once.
func (t *Terminal) Dispose() error {
	t.manager.forget(t)

	t.mu.Lock()
	if t.closed {
		t.mu.Unlock()
		return nil
	}
	t.closed = true
	var err error
	if t.cmd.Process != nil {
		if killErr := t.cmd.Process.Kill(); killErr != nil && !errors.Is(killErr, os.ErrProcessDone) {
			err = fmt.Errorf("kill shell: %w", killErr)
		}
	}
	t.mu.Unlock()

	<-t.done
	t.manager.log.Info("terminal disposed", zap.String("name", t.Name))
	return err
}

// Output returns the retained output tail, escape sequences included.
func (t *Terminal) Output() []byte {
	return t.buf.Bytes()
}

// PlainOutput returns the retained output with ANSI escape sequences removed.
func (t *Terminal) PlainOutput() string {
	return ansi.Strip(string(t.buf.Bytes()))
}

// Done is closed once the shell has exited.
func (t *Terminal) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the shell exits or ctx is done.
func (t *Terminal) Wait(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.done:
		t.mu.Lock()
		defer t.mu.Unlock()
		return t.exitErr
	}
}

// Closed reports whether the shell has exited or been disposed.
func (t *Terminal) Closed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

func (t *Terminal) resize(cols, rows int) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.closed {
		return ErrClosed
	}
	return pty.Setsize(t.ptmx, &pty.Winsize{Rows: uint16(rows), Cols: uint16(cols)})
}

func (t *Terminal) readOutput() {
	defer close(t.readDone)
	buf := make([]byte, 4096)
	for {
		n, err := t.ptmx.Read(buf)
		if n > 0 {
			_, _ = t.buf.Write(buf[:n])
			t.manager.outputAppended(buf[:n])
		}
		if err != nil {
			return
		}
	}
}

// drainTimeout bounds how long a finished shell's output is drained when a
// background process still holds the PTY open.
const drainTimeout = 500 * time.Millisecond

func (t *Terminal) monitor() {
	err := t.cmd.Wait()

	select {
	case <-t.readDone:
	case <-time.After(drainTimeout):
	}

	t.mu.Lock()
	t.closed = true
	t.exitErr = err
	_ = t.ptmx.Close()
	t.mu.Unlock()

	close(t.done)
	t.manager.log.Debug("shell exited", zap.String("name", t.Name), zap.Error(err))
}
