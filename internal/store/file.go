package store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/gofrs/flock"
	"go.uber.org/zap"
)

// File is a Store backed by a single JSON document on disk.
//
// Every write rewrites the document through a temp file and a rename while
// holding an exclusive lock on "<path>.lock", so a TUI and a concurrent CLI
// invocation never interleave partial writes.
type File struct {
	path string
	lock *flock.Flock
	log  *zap.Logger

	mu       sync.Mutex
	lastSave []byte
	// seen holds each key's compacted value as this File last read or wrote
	// it. A nil value means the key was absent.
	seen     map[string][]byte
	onChange func()
}

// NewFile opens (without creating) the state document at path.
func NewFile(path string, logger *zap.Logger) (*File, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("state path is required")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve state path: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(abs), 0o700); err != nil {
		return nil, fmt.Errorf("create state dir: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &File{
		path: abs,
		lock: flock.New(abs + ".lock"),
		log:  logger.With(zap.String("state_path", abs)),
		seen: make(map[string][]byte),
	}, nil
}

// Path returns the absolute path of the state document.
func (f *File) Path() string {
	return f.path
}

// Get implements Store.
func (f *File) Get(key string, v any) (bool, error) {
	if err := f.lock.RLock(); err != nil {
		return false, fmt.Errorf("lock state: %w", err)
	}
	defer func() { _ = f.lock.Unlock() }()

	doc, err := f.read()
	if err != nil {
		if errors.Is(err, ErrCorrupt) {
			f.remember(key, nil)
		}
		return false, err
	}
	raw, ok := doc[key]
	if !ok || len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		f.remember(key, nil)
		return false, nil
	}
	if err := json.Unmarshal(raw, v); err != nil {
		f.log.Warn("state decode failed", zap.String("key", key), zap.Error(err))
		f.remember(key, raw)
		return false, fmt.Errorf("%w: decode %s: %v", ErrCorrupt, key, err)
	}
	f.remember(key, raw)
	return true, nil
}

// Set implements Store. It fails with ErrConflict when another process
// changed key since this File last read or wrote it.
func (f *File) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return f.update(key, func(doc map[string]json.RawMessage) {
		doc[key] = raw
	})
}

// Delete implements Store.
func (f *File) Delete(key string) error {
	return f.update(key, func(doc map[string]json.RawMessage) {
		delete(doc, key)
	})
}

func (f *File) update(key string, mutate func(map[string]json.RawMessage)) error {
	if err := f.lock.Lock(); err != nil {
		return fmt.Errorf("lock state: %w", err)
	}
	defer func() { _ = f.lock.Unlock() }()

	external := false
	doc, err := f.read()
	switch {
	case errors.Is(err, ErrCorrupt):
		f.quarantine()
		doc = make(map[string]json.RawMessage)
	case err != nil:
		return err
	default:
		stale := f.staleKeys(doc)
		external = len(stale) > 0
		for _, k := range stale {
			if k == key {
				f.log.Warn("state write conflict", zap.String("key", key))
				f.changedExternally()
				return fmt.Errorf("%w: %s", ErrConflict, key)
			}
		}
	}

	mutate(doc)
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}
	if err := f.write(data); err != nil {
		f.log.Warn("state save failed", zap.Error(err))
		return err
	}
	f.mu.Lock()
	f.lastSave = data
	f.mu.Unlock()
	f.remember(key, doc[key])
	f.log.Debug("state save ok", zap.Int("bytes", len(data)))
	if external {
		f.changedExternally()
	}
	return nil
}

// staleKeys lists the keys whose value in doc differs from what this File
// last saw.
func (f *File) staleKeys(doc map[string]json.RawMessage) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var stale []string
	for k, prev := range f.seen {
		if !bytes.Equal(compact(doc[k]), prev) {
			stale = append(stale, k)
		}
	}
	return stale
}

func (f *File) remember(key string, raw []byte) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seen[key] = compact(raw)
}

// changedExternally hands a change made by another process to the Watch
// callback. It runs the callback on its own goroutine since callers may
// hold locks the callback needs.
func (f *File) changedExternally() {
	f.mu.Lock()
	onChange := f.onChange
	f.mu.Unlock()
	if onChange != nil {
		go onChange()
	}
}

// quarantine moves an unparseable document aside to "<path>.corrupt" so the
// next write starts from an empty document.
func (f *File) quarantine() {
	backup := f.path + ".corrupt"
	if err := os.Rename(f.path, backup); err != nil {
		f.log.Warn("state quarantine failed", zap.Error(err))
		return
	}
	f.log.Warn("unreadable state moved aside", zap.String("backup", backup))
}

func (f *File) read() (map[string]json.RawMessage, error) {
	doc := make(map[string]json.RawMessage)
	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return doc, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return doc, nil
	}
	if err := json.Unmarshal(data, &doc); err != nil {
		f.log.Warn("state parse failed", zap.Error(err))
		return nil, fmt.Errorf("%w: parse state: %v", ErrCorrupt, err)
	}
	return doc, nil
}

// compact returns raw without insignificant whitespace, or nil for an absent
// or null value.
func compact(raw []byte) []byte {
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return append([]byte(nil), raw...)
	}
	return buf.Bytes()
}

func (f *File) write(data []byte) error {
	dir := filepath.Dir(f.path)
	tmp, err := os.CreateTemp(dir, "state-*.json")
	if err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	cleanup := func() {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
	}
	if _, err := tmp.Write(data); err != nil {
		cleanup()
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		cleanup()
		return fmt.Errorf("sync state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("close state: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0o600); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("chmod state: %w", err)
	}
	if err := os.Rename(tmp.Name(), f.path); err != nil {
		_ = os.Remove(tmp.Name())
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

// Watch calls onChange whenever another process replaces the state
// document. Writes made through this File are ignored, except that a write
// which finds another process's change on disk reports it. Watch returns
// once the watcher is installed; it stops when ctx is done.
func (f *File) Watch(ctx context.Context, onChange func()) error {
	f.mu.Lock()
	f.onChange = onChange
	f.mu.Unlock()

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := watcher.Add(filepath.Dir(f.path)); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("watch state dir: %w", err)
	}
	context.AfterFunc(ctx, func() {
		f.mu.Lock()
		f.onChange = nil
		f.mu.Unlock()
	})

	go func() {
		defer func() { _ = watcher.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != f.path {
					continue
				}
				if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
					continue
				}
				if f.isOwnWrite() {
					continue
				}
				f.log.Debug("state changed externally", zap.String("op", event.Op.String()))
				onChange()
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				f.log.Warn("state watcher error", zap.Error(err))
			}
		}
	}()
	return nil
}

func (f *File) isOwnWrite() bool {
	data, err := os.ReadFile(f.path)
	if err != nil {
		return false
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lastSave != nil && bytes.Equal(data, f.lastSave)
}
