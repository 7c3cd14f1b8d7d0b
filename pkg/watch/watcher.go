// Package watch regenerates declarations when override, extras or
// modification files change on disk.
package watch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce groups bursts of editor writes into one regeneration.
const DefaultDebounce = 300 * time.Millisecond

// Invalidator drops cached state for one changed file.
type Invalidator interface {
	Invalidate(file string)
}

// RegenerateFunc rebuilds the output after a batch of changes. changed is
// sorted.
type RegenerateFunc func(ctx context.Context, changed []string) error

// Options configures a Watcher.
type Options struct {
	// Debounce is the quiet period after the last event before
	// regenerating. Zero uses DefaultDebounce.
	Debounce time.Duration

	// Extensions selects the files that trigger a regeneration. Nil
	// defaults to .ts, .yaml and .yml.
	Extensions []string

	// IgnorePatterns are matched against the base name of every path.
	IgnorePatterns []string
}

// Watcher watches directory trees and single files. Events are batched:
// every changed path is passed to the Invalidator at once, and the
// RegenerateFunc runs after the debounce window closes. Regenerations
// never overlap.
type Watcher struct {
	watcher     *fsnotify.Watcher
	invalidator Invalidator
	regenerate  RegenerateFunc
	logger      *slog.Logger
	options     Options

	// roots are watched recursively; files are watched through their
	// parent directory.
	roots []string
	files map[string]bool

	pendingMu sync.Mutex
	pending   map[string]bool
	timer     *time.Timer

	runMu sync.Mutex
	runs  int

	ctx      context.Context
	stopChan chan struct{}
	done     chan struct{}
	started  bool
	stopped  bool
	mu       sync.Mutex
}

// New creates a Watcher. inv may be nil.
func New(inv Invalidator, regenerate RegenerateFunc, opts Options, logger *slog.Logger) (*Watcher, error) {
	if regenerate == nil {
		return nil, fmt.Errorf("watch: regenerate func is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}

	if opts.Debounce <= 0 {
		opts.Debounce = DefaultDebounce
	}
	if opts.Extensions == nil {
		opts.Extensions = []string{".ts", ".yaml", ".yml"}
	}

	return &Watcher{
		watcher:     fsw,
		invalidator: inv,
		regenerate:  regenerate,
		logger:      logger,
		options:     opts,
		files:       make(map[string]bool),
		pending:     make(map[string]bool),
		stopChan:    make(chan struct{}),
		done:        make(chan struct{}),
	}, nil
}

// Start watches paths and begins processing events in the background.
// Directories are watched recursively, including ones created later.
// Missing paths are skipped with a warning. ctx is passed to every
// regeneration; cancelling it stops the watcher.
func (w *Watcher) Start(ctx context.Context, paths ...string) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return fmt.Errorf("watcher already stopped")
	}
	if w.started {
		return fmt.Errorf("watcher already started")
	}

	for _, p := range paths {
		if p == "" {
			continue
		}
		abs, err := filepath.Abs(p)
		if err != nil {
			return fmt.Errorf("resolve %s: %w", p, err)
		}
		info, err := os.Stat(abs)
		if err != nil {
			w.logger.Warn("not watching missing path", "path", abs)
			continue
		}

		if info.IsDir() {
			w.roots = append(w.roots, abs)
			if err := w.addTree(abs); err != nil {
				return err
			}
			continue
		}

		w.files[abs] = true
		if err := w.watcher.Add(filepath.Dir(abs)); err != nil {
			return fmt.Errorf("watch %s: %w", abs, err)
		}
	}

	w.ctx = ctx
	w.started = true
	w.logger.Info("file watcher started", "roots", len(w.roots), "files", len(w.files))

	go w.eventLoop()
	return nil
}

// Stop stops the watcher and cancels any pending regeneration. It waits
// for a running regeneration to finish. Safe to call multiple times.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return nil
	}
	w.stopped = true
	started := w.started
	close(w.stopChan)
	w.mu.Unlock()

	w.pendingMu.Lock()
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pending = make(map[string]bool)
	w.pendingMu.Unlock()

	err := w.watcher.Close()
	if started {
		<-w.done
	}

	w.runMu.Lock()
	defer w.runMu.Unlock()
	w.logger.Info("file watcher stopped")
	return err
}

func (w *Watcher) eventLoop() {
	defer close(w.done)
	for {
		select {
		case <-w.stopChan:
			return

		case <-w.ctx.Done():
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("file watcher error", "error", err)
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := event.Name
	if w.shouldIgnore(path) {
		return
	}

	if event.Op&fsnotify.Create == fsnotify.Create && w.underRoot(path) {
		if info, err := os.Stat(path); err == nil && info.IsDir() {
			if err := w.addTree(path); err != nil {
				w.logger.Warn("failed to watch new directory", "path", path, "error", err)
			}
			return
		}
	}

	if !w.relevant(path) {
		return
	}

	w.logger.Debug("file event", "op", event.Op.String(), "file", path)
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Remove|fsnotify.Rename) != 0 {
		w.schedule(path)
	}
}

// schedule records path and restarts the debounce timer.
func (w *Watcher) schedule(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

	w.pending[path] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.options.Debounce, w.flush)
}

// flush takes the pending batch, invalidates it and regenerates.
func (w *Watcher) flush() {
	w.pendingMu.Lock()
	changed := make([]string, 0, len(w.pending))
	for p := range w.pending {
		changed = append(changed, p)
	}
	w.pending = make(map[string]bool)
	w.timer = nil
	w.pendingMu.Unlock()

	if len(changed) == 0 {
		return
	}
	sort.Strings(changed)

	w.runMu.Lock()
	defer w.runMu.Unlock()

	select {
	case <-w.stopChan:
		return
	default:
	}

	if w.invalidator != nil {
		for _, p := range changed {
			w.invalidator.Invalidate(p)
		}
	}

	start := time.Now()
	if err := w.regenerate(w.ctx, changed); err != nil {
		w.logger.Error("regeneration failed", "changed", len(changed), "error", err)
	} else {
		w.logger.Info("regenerated", "changed", len(changed), "duration", time.Since(start))
	}
	w.runs++
}

func (w *Watcher) addTree(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.shouldIgnore(path) {
			return filepath.SkipDir
		}
		if err := w.watcher.Add(path); err != nil {
			w.logger.Warn("failed to watch directory", "path", path, "error", err)
		}
		return nil
	})
}

// relevant reports whether a changed path should trigger a regeneration.
func (w *Watcher) relevant(path string) bool {
	if w.files[path] {
		return true
	}
	if !w.underRoot(path) {
		return false
	}
	ext := strings.ToLower(filepath.Ext(path))
	return slices.Contains(w.options.Extensions, ext)
}

func (w *Watcher) underRoot(path string) bool {
	for _, root := range w.roots {
		if path == root || strings.HasPrefix(path, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

func (w *Watcher) shouldIgnore(path string) bool {
	base := filepath.Base(path)
	for _, pattern := range w.options.IgnorePatterns {
		if matched, _ := filepath.Match(pattern, base); matched {
			return true
		}
	}
	switch base {
	case ".git", "node_modules":
		return true
	}
	// editor swap and backup files
	return strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp")
}

// Stats returns watcher statistics.
func (w *Watcher) Stats() Stats {
	w.pendingMu.Lock()
	pending := len(w.pending)
	w.pendingMu.Unlock()

	w.runMu.Lock()
	runs := w.runs
	w.runMu.Unlock()

	w.mu.Lock()
	running := w.started && !w.stopped
	w.mu.Unlock()

	return Stats{Pending: pending, Runs: runs, IsRunning: running}
}

// Stats contains watcher statistics.
type Stats struct {
	Pending   int
	Runs      int
	IsRunning bool
}
