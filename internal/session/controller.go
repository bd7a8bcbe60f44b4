package session

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"go.uber.org/zap"
)

// ErrLocked is returned by OpenAndRun while the lock predicate reports true.
var ErrLocked = errors.New("terminal is locked, unlock to run commands")

// NamePrefix prefixes every terminal name created by the controller.
const NamePrefix = "termnote: "

// Terminal is one live shell session owned by the host.
type Terminal interface {
	Show()
	SendText(text string, addNewLine bool) error
	Dispose() error
}

// Host creates terminals.
type Host interface {
	CreateTerminal(name string) (Terminal, error)
}

// Controller maps entry ids to at most one live terminal each.
type Controller struct {
	host Host
	log  *zap.Logger

	mu       sync.Mutex
	sessions map[string]Terminal
	locked   func() bool
}

// NewController returns a controller creating terminals on host.
func NewController(host Host, logger *zap.Logger) *Controller {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Controller{
		host:     host,
		log:      logger.Named("session"),
		sessions: make(map[string]Terminal),
		locked:   func() bool { return false },
	}
}

// SetLockChecker replaces the lock predicate. A nil predicate never locks.
func (c *Controller) SetLockChecker(locked func() bool) {
	if locked == nil {
		locked = func() bool { return false }
	}
	c.mu.Lock()
	c.locked = locked
	c.mu.Unlock()
}

// OpenAndRun replaces any session for id with a fresh terminal, shows it and
// sends commandText. Whitespace-only text opens the terminal without sending
// anything.
func (c *Controller) OpenAndRun(id, commandText string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.locked() {
		c.log.Info("run blocked by lock", zap.String("id", id))
		return ErrLocked
	}

	if old, ok := c.sessions[id]; ok {
		delete(c.sessions, id)
		if err := old.Dispose(); err != nil {
			c.log.Warn("dispose previous session failed", zap.String("id", id), zap.Error(err))
		}
	}

	term, err := c.host.CreateTerminal(NamePrefix + commandText)
	if err != nil {
		return fmt.Errorf("create terminal: %w", err)
	}
	c.sessions[id] = term
	term.Show()

	if strings.TrimSpace(commandText) == "" {
		return nil
	}
	if err := term.SendText(commandText, true); err != nil {
		return fmt.Errorf("send command: %w", err)
	}
	c.log.Info("command sent", zap.String("id", id), zap.String("command", commandText))
	return nil
}

// Dispose tears down the session for id, if any.
func (c *Controller) Dispose(id string) {
	c.mu.Lock()
	term, ok := c.sessions[id]
	delete(c.sessions, id)
	c.mu.Unlock()

	if !ok {
		return
	}
	if err := term.Dispose(); err != nil {
		c.log.Warn("dispose session failed", zap.String("id", id), zap.Error(err))
	}
}

// DisposeAll tears down every session.
func (c *Controller) DisposeAll() {
	c.mu.Lock()
	sessions := c.sessions
	c.sessions = make(map[string]Terminal)
	c.mu.Unlock()

	for id, term := range sessions {
		if err := term.Dispose(); err != nil {
			c.log.Warn("dispose session failed", zap.String("id", id), zap.Error(err))
		}
	}
}

// Count returns the number of live sessions.
func (c *Controller) Count() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.sessions)
}

// Has reports whether id has a live session.
func (c *Controller) Has(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	_, ok := c.sessions[id]
	return ok
}

// IDs returns the ids with live sessions, sorted.
func (c *Controller) IDs() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	ids := make([]string, 0, len(c.sessions))
	for id := range c.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Terminal returns the live terminal for id.
func (c *Controller) Terminal(id string) (Terminal, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	term, ok := c.sessions[id]
	return term, ok
}
