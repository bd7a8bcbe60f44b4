package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/five82/termnote/internal/config"
	"github.com/five82/termnote/internal/notebook"
	"github.com/five82/termnote/internal/session"
	"github.com/five82/termnote/internal/state"
	"github.com/five82/termnote/internal/store"
	"github.com/five82/termnote/internal/terminal"
)

// Options configure a Notebook. Zero values are filled from Config.
type Options struct {
	Config config.Config
	// Store overrides the state file named by Config.StatePath.
	Store store.Store
	// Host overrides the PTY terminal manager.
	Host      session.Host
	Clipboard Clipboard
	Logger    *zap.Logger
	// Mirror receives a copy of all terminal output.
	Mirror io.Writer
	// PollEvery is the fallback reload interval used when the state file
	// cannot be watched.
	PollEvery time.Duration
}

// Notebook owns every component of a running termnote and exposes the
// user-facing commands.
type Notebook struct {
	cfg       config.Config
	log       *zap.Logger
	store     store.Store
	notifier  *state.Notifier
	registry  *notebook.Registry
	favorites *notebook.Favorites
	sessions  *session.Controller
	terminals *terminal.Manager
	clipboard Clipboard
	pollEvery time.Duration

	// reloadMu serializes reloads triggered by the watcher.
	reloadMu sync.Mutex
	lockMu   sync.Mutex
	locked   bool
}

// New builds a Notebook and loads persisted state.
func New(opts Options) (*Notebook, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	st := opts.Store
	if st == nil {
		file, err := store.NewFile(opts.Config.StatePath, log.Named("store"))
		if err != nil {
			return nil, fmt.Errorf("open state: %w", err)
		}
		st = file
	}

	nb := &Notebook{
		cfg:       opts.Config,
		log:       log,
		store:     st,
		notifier:  &state.Notifier{},
		clipboard: opts.Clipboard,
		pollEvery: opts.PollEvery,
	}
	if nb.clipboard == nil {
		nb.clipboard = SystemClipboard()
	}

	host := opts.Host
	if host == nil {
		nb.terminals = terminal.NewManager(terminal.Options{
			Shell:      opts.Config.Shell,
			WorkingDir: opts.Config.WorkingDir,
			Cols:       opts.Config.Cols,
			Rows:       opts.Config.Rows,
			BufferSize: opts.Config.OutputBufferBytes(),
			Mirror:     opts.Mirror,
			Logger:     log,
		})
		host = nb.terminals
	}

	nbOpts := notebook.Options{Store: st, Notifier: nb.notifier, Logger: log}
	nb.registry = notebook.NewRegistry(nbOpts)
	nb.favorites = notebook.NewFavorites(nbOpts)
	nb.registry.AttachFavorites(nb.favorites)

	nb.sessions = session.NewController(host, log)
	nb.sessions.SetLockChecker(nb.Locked)

	if err := nb.load(); err != nil {
		return nil, err
	}
	return nb, nil
}

func (nb *Notebook) load() error {
	if err := nb.registry.Load(); err != nil {
		return err
	}
	live := nb.registry.IDs()
	if err := nb.favorites.Load(func(id string) bool { return live[id] }); err != nil {
		return err
	}
	var locked bool
	_, err := nb.store.Get(store.KeyLocked, &locked)
	switch {
	case errors.Is(err, store.ErrCorrupt):
		nb.log.Warn("discarding unreadable lock flag", zap.Error(err))
		locked = false
		if err := nb.store.Set(store.KeyLocked, false); err != nil {
			return notebook.IOError("save lock", err)
		}
	case err != nil:
		return notebook.IOError("load lock", err)
	}
	nb.lockMu.Lock()
	nb.locked = locked
	nb.lockMu.Unlock()
	return nil
}

// Reload re-reads persisted state written by another process and announces
// it as an external change.
func (nb *Notebook) Reload() error {
	nb.reloadMu.Lock()
	defer nb.reloadMu.Unlock()
	if err := nb.load(); err != nil {
		nb.log.Warn("reload failed", zap.Error(err))
		return err
	}
	nb.notifier.Notify(state.KindExternal)
	return nil
}

// Watch reloads whenever another process changes the state file. It falls
// back to polling when the file cannot be watched and does nothing for
// stores that are not files.
func (nb *Notebook) Watch(ctx context.Context) {
	file, ok := nb.store.(*store.File)
	if !ok {
		return
	}
	err := file.Watch(ctx, func() { _ = nb.Reload() })
	if err == nil {
		return
	}
	nb.log.Warn("state watch unavailable, polling instead", zap.Error(err))
	StartPoller(ctx, nb, file.Path(), nb.pollEvery)
}

// Close disposes every terminal session.
func (nb *Notebook) Close() {
	nb.sessions.DisposeAll()
	nb.log.Info("notebook closed")
}

// Config returns the configuration the notebook was built with.
func (nb *Notebook) Config() config.Config { return nb.cfg }

// Notifier returns the change notifier.
func (nb *Notebook) Notifier() *state.Notifier { return nb.notifier }

// Tabs returns the registry entries in order.
func (nb *Notebook) Tabs() []notebook.Entry { return nb.registry.List() }

// Tab returns one entry.
func (nb *Notebook) Tab(id string) (notebook.Entry, bool) { return nb.registry.Get(id) }

// Favorites returns the favorites in order.
func (nb *Notebook) Favorites() []notebook.Favorite { return nb.favorites.List() }

// HasFavorites reports whether any favorite exists.
func (nb *Notebook) HasFavorites() bool { return nb.favorites.HasFavorites() }

// IsFavorite reports whether id is pinned.
func (nb *Notebook) IsFavorite(id string) bool { return nb.favorites.Contains(id) }

// Slots returns the quick-access slot bindings.
func (nb *Notebook) Slots() [notebook.SlotCount]notebook.Slot { return nb.favorites.Slots() }

// Sessions returns the session controller.
func (nb *Notebook) Sessions() *session.Controller { return nb.sessions }

// Terminals returns the PTY manager, or nil when a custom host is in use.
func (nb *Notebook) Terminals() *terminal.Manager { return nb.terminals }

// Locked reports whether running commands is blocked.
func (nb *Notebook) Locked() bool {
	nb.lockMu.Lock()
	defer nb.lockMu.Unlock()
	return nb.locked
}
