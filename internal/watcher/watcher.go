// Package watcher provides directory watching with fsnotify and debounced
// re-index callbacks.
package watcher

import (
	"context"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/lumenchat/lumen/internal/logger"
)

// DefaultDebounce is how long a file must stay quiet before it is
// re-indexed. Editors tend to fire several writes per save.
const DefaultDebounce = 400 * time.Millisecond

// Watcher watches directories and invokes callbacks on file changes.
// Change events are debounced per path; removals fire immediately and
// cancel any pending re-index for the same path.
type Watcher struct {
	roots      []string
	extensions []string
	onIndex    func(path string)
	onRemove   func(path string)
	debounce   time.Duration

	mu       sync.Mutex
	fsw      *fsnotify.Watcher
	pending  map[string]*time.Timer
	started  bool
	done     chan struct{}
	stopOnce sync.Once
}

// Config controls watcher construction.
type Config struct {
	// Roots are the directories to watch, recursively.
	Roots []string

	// Extensions filters which files trigger callbacks (empty = all).
	Extensions []string

	// Debounce overrides DefaultDebounce when positive.
	Debounce time.Duration

	// OnIndex is called with the path of a created or modified file.
	OnIndex func(path string)

	// OnRemove is called with the path of a removed file.
	OnRemove func(path string)
}

// New creates a watcher. Start must be called before events flow.
func New(cfg Config) *Watcher {
	debounce := cfg.Debounce
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	return &Watcher{
		roots:      cfg.Roots,
		extensions: cfg.Extensions,
		onIndex:    cfg.OnIndex,
		onRemove:   cfg.OnRemove,
		debounce:   debounce,
		pending:    make(map[string]*time.Timer),
		done:       make(chan struct{}),
	}
}

// Start begins watching. It runs until ctx is cancelled or Stop is called.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return nil
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.fsw = fsw
	w.started = true

	for _, root := range w.roots {
		if err := addTree(fsw, root); err != nil {
			fsw.Close()
			w.fsw = nil
			w.started = false
			w.mu.Unlock()
			return err
		}
	}
	w.mu.Unlock()

	logger.Debug("Watching %d roots", len(w.roots))
	go w.run(ctx, fsw)
	return nil
}

// run drains the event loop. It holds its own reference to the fsnotify
// watcher; Stop nils the struct field, so the loop must never read it.
func (w *Watcher) run(ctx context.Context, fsw *fsnotify.Watcher) {
	for {
		select {
		case <-ctx.Done():
			w.Stop()
			return
		case <-w.done:
			return
		case ev, ok := <-fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(ev)
		case err, ok := <-fsw.Errors:
			if !ok {
				return
			}
			if err != nil {
				logger.Warn("Watcher error: %v", err)
			}
		}
	}
}

func (w *Watcher) handleEvent(ev fsnotify.Event) {
	path := ev.Name

	switch {
	case ev.Op.Has(fsnotify.Create), ev.Op.Has(fsnotify.Write):
		info, err := os.Stat(path)
		if err == nil && info.IsDir() {
			// A directory moved in or created under a watched root.
			w.watchNewDirectory(path)
			return
		}
		if w.matchExtension(path) {
			w.scheduleIndex(path)
		}
	case ev.Op.Has(fsnotify.Remove), ev.Op.Has(fsnotify.Rename):
		w.cancelPending(path)
		if w.matchExtension(path) && w.onRemove != nil {
			logger.Debug("Watcher removing %s", path)
			w.onRemove(path)
		}
	}
}

// watchNewDirectory adds a created directory tree to the watch list and
// indexes the files already inside it.
func (w *Watcher) watchNewDirectory(dir string) {
	w.mu.Lock()
	fsw := w.fsw
	w.mu.Unlock()
	if fsw == nil {
		return
	}

	if err := addTree(fsw, dir); err != nil {
		logger.Warn("Failed to watch new directory %s: %v", dir, err)
		return
	}

	filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		if w.matchExtension(path) {
			w.scheduleIndex(path)
		}
		return nil
	})
}

// scheduleIndex arms (or re-arms) the debounce timer for a path.
func (w *Watcher) scheduleIndex(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if t, ok := w.pending[path]; ok {
		t.Stop()
	}
	w.pending[path] = time.AfterFunc(w.debounce, func() {
		w.mu.Lock()
		delete(w.pending, path)
		w.mu.Unlock()

		logger.Debug("Watcher indexing %s", path)
		if w.onIndex != nil {
			w.onIndex(path)
		}
	})
}

func (w *Watcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if t, ok := w.pending[path]; ok {
		t.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) matchExtension(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	for _, e := range w.extensions {
		if strings.TrimPrefix(strings.ToLower(e), ".") == ext {
			return true
		}
	}
	return false
}

// Roots returns a copy of the watched root directories.
func (w *Watcher) Roots() []string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return append([]string(nil), w.roots...)
}

// Stop stops the watcher, cancels pending debounce timers, and releases
// resources. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.started || w.fsw == nil {
		w.mu.Unlock()
		return
	}
	for path, t := range w.pending {
		t.Stop()
		delete(w.pending, path)
	}
	w.fsw.Close()
	w.fsw = nil
	w.started = false
	w.mu.Unlock()

	w.stopOnce.Do(func() { close(w.done) })
}

// addTree registers a directory and all of its subdirectories.
func addTree(fsw *fsnotify.Watcher, root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return fsw.Add(path)
		}
		return nil
	})
}
