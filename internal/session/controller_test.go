package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTerminal struct {
	name     string
	shown    int
	sent     []string
	disposed int
	sendErr  error
}

func (t *fakeTerminal) Show() { t.shown++ }

func (t *fakeTerminal) SendText(text string, addNewLine bool) error {
	if t.sendErr != nil {
		return t.sendErr
	}
	if addNewLine {
		text += "\n"
	}
	t.sent = append(t.sent, text)
	return nil
}

func (t *fakeTerminal) Dispose() error {
	t.disposed++
	return nil
}

type fakeHost struct {
	mu        sync.Mutex
	created   []*fakeTerminal
	createErr error
}

func (h *fakeHost) CreateTerminal(name string) (Terminal, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.createErr != nil {
		return nil, h.createErr
	}
	term := &fakeTerminal{name: name}
	h.created = append(h.created, term)
	return term, nil
}

func TestController_OpenAndRunSendsCommand(t *testing.T) {
	host := &fakeHost{}
	c := NewController(host, nil)

	require.NoError(t, c.OpenAndRun("terminal-9", "git status"))

	require.Len(t, host.created, 1)
	term := host.created[0]
	assert.Equal(t, "termnote: git status", term.name)
	assert.Equal(t, 1, term.shown)
	assert.Equal(t, []string{"git status\n"}, term.sent)
	assert.True(t, c.Has("terminal-9"))
	assert.Equal(t, 1, c.Count())
}

func TestController_RerunReplacesSession(t *testing.T) {
	host := &fakeHost{}
	c := NewController(host, nil)

	require.NoError(t, c.OpenAndRun("a", "ls"))
	require.NoError(t, c.OpenAndRun("a", "ls"))

	require.Len(t, host.created, 2)
	assert.Equal(t, 1, host.created[0].disposed)
	assert.Zero(t, host.created[1].disposed)
	assert.Equal(t, 1, c.Count())

	live, ok := c.Terminal("a")
	require.True(t, ok)
	assert.Same(t, host.created[1], live)
}

func TestController_WhitespaceCommandOpensWithoutSending(t *testing.T) {
	host := &fakeHost{}
	c := NewController(host, nil)

	require.NoError(t, c.OpenAndRun("a", "   "))
	require.Len(t, host.created, 1)
	assert.Equal(t, 1, host.created[0].shown)
	assert.Empty(t, host.created[0].sent)
}

func TestController_LockedBlocksEverything(t *testing.T) {
	host := &fakeHost{}
	c := NewController(host, nil)
	require.NoError(t, c.OpenAndRun("a", "ls"))

	locked := true
	c.SetLockChecker(func() bool { return locked })

	err := c.OpenAndRun("a", "ls")
	require.ErrorIs(t, err, ErrLocked)
	require.ErrorIs(t, c.OpenAndRun("b", "pwd"), ErrLocked)
	assert.Len(t, host.created, 1)
	assert.Zero(t, host.created[0].disposed)
	assert.Equal(t, []string{"a"}, c.IDs())

	locked = false
	require.NoError(t, c.OpenAndRun("b", "pwd"))
	assert.Equal(t, []string{"a", "b"}, c.IDs())
}

func TestController_NilLockCheckerNeverLocks(t *testing.T) {
	c := NewController(&fakeHost{}, nil)
	c.SetLockChecker(nil)
	require.NoError(t, c.OpenAndRun("a", "ls"))
}

func TestController_CreateFailureRegistersNothing(t *testing.T) {
	boom := errors.New("no shell")
	host := &fakeHost{createErr: boom}
	c := NewController(host, nil)

	err := c.OpenAndRun("a", "ls")
	require.ErrorIs(t, err, boom)
	assert.False(t, c.Has("a"))
	assert.Zero(t, c.Count())
}

func TestController_SendFailureKeepsSession(t *testing.T) {
	host := &fakeHost{}
	c := NewController(host, nil)
	require.NoError(t, c.OpenAndRun("a", " "))
	host.created[0].sendErr = errors.New("closed")

	live, _ := c.Terminal("a")
	require.Error(t, live.SendText("ls", true))
	assert.True(t, c.Has("a"))
}

func TestController_DisposeAndDisposeAll(t *testing.T) {
	host := &fakeHost{}
	c := NewController(host, nil)
	for _, id := range []string{"a", "b", "c"} {
		require.NoError(t, c.OpenAndRun(id, "ls"))
	}

	c.Dispose("b")
	c.Dispose("missing")
	assert.Equal(t, []string{"a", "c"}, c.IDs())
	assert.Equal(t, 1, host.created[1].disposed)

	c.DisposeAll()
	assert.Zero(t, c.Count())
	for _, term := range host.created {
		assert.Equal(t, 1, term.disposed, term.name)
	}
}
