package store

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/spektr-org/notetrack/internal/logging"
)

const (
	defaultWatchDebounce = 750 * time.Millisecond
	watchBuffer          = 64
)

// Op is the kind of change a watcher reports.
type Op int

const (
	OpModified Op = iota + 1
	OpCreated
	OpDeleted
)

func (o Op) String() string {
	switch o {
	case OpModified:
		return "modified"
	case OpCreated:
		return "created"
	case OpDeleted:
		return "deleted"
	default:
		return "unknown"
	}
}

// Event is a debounced change to a document. Path is store-relative.
type Event struct {
	Op   Op
	Path string
}

// Watcher reports document changes below a notes root. Bursts of events for
// the same path collapse into one Event after the debounce window.
type Watcher struct {
	root     string
	debounce time.Duration
	exts     map[string]bool
	logger   logging.Logger

	mu       sync.Mutex
	seq      uint64
	pending  map[string]*pendingChange
	watcher  *fsnotify.Watcher
	out      chan Event
	stopped  bool
	stopCh   chan struct{}
	stopOnce sync.Once
	sending  sync.WaitGroup // emits blocked on a full Events channel
}

type pendingChange struct {
	op    Op
	seq   uint64
	timer *time.Timer
}

// WatcherOption customizes a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets the quiet period before an event is emitted.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithWatchLogger sets the logger for watcher diagnostics.
func WithWatchLogger(logger logging.Logger) WatcherOption {
	return func(w *Watcher) {
		w.logger = logging.OrNop(logger)
	}
}

// WithWatchExtensions sets which file extensions produce events (default ".md").
func WithWatchExtensions(exts ...string) WatcherOption {
	return func(w *Watcher) {
		if len(exts) == 0 {
			return
		}
		w.exts = make(map[string]bool, len(exts))
		for _, ext := range exts {
			ext = strings.ToLower(ext)
			if !strings.HasPrefix(ext, ".") {
				ext = "." + ext
			}
			w.exts[ext] = true
		}
	}
}

// NewWatcher constructs a watcher for the notes directory at root.
func NewWatcher(root string, opts ...WatcherOption) (*Watcher, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, fmt.Errorf("watch root required")
	}
	if abs, err := filepath.Abs(root); err == nil {
		root = abs
	}
	w := &Watcher{
		root:     filepath.Clean(root),
		debounce: defaultWatchDebounce,
		exts:     map[string]bool{markdownExt: true},
		logger:   logging.OrNop(nil),
		pending:  make(map[string]*pendingChange),
		out:      make(chan Event, watchBuffer),
		stopCh:   make(chan struct{}),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Events returns the channel of debounced changes. It is closed by Stop.
func (w *Watcher) Events() <-chan Event {
	return w.out
}

// Start watches root and every folder below it. Cancelling ctx stops the
// watcher.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return fmt.Errorf("watcher stopped")
	}
	if w.watcher != nil {
		w.mu.Unlock()
		return nil
	}
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		w.mu.Unlock()
		return err
	}
	w.watcher = fsWatcher
	w.mu.Unlock()

	if err := w.addTree(fsWatcher, w.root); err != nil {
		w.Stop()
		return err
	}

	go w.watchLoop(fsWatcher)
	if ctx != nil {
		go func() {
			select {
			case <-ctx.Done():
				w.Stop()
			case <-w.stopCh:
			}
		}()
	}
	w.logger.Info("👀 watching %s", w.root)
	return nil
}

// Stop terminates the watcher and closes the Events channel. Changes still
// waiting for a reader are discarded.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stopCh)
		w.mu.Lock()
		w.stopped = true
		for p, change := range w.pending {
			change.timer.Stop()
			delete(w.pending, p)
		}
		if w.watcher != nil {
			_ = w.watcher.Close()
			w.watcher = nil
		}
		w.mu.Unlock()

		w.sending.Wait()
		close(w.out)
	})
}

func (w *Watcher) addTree(fsWatcher *fsnotify.Watcher, dir string) error {
	return filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			if p == dir {
				return err
			}
			w.logger.Warn("⚠️ watch: skipping %s: %v", p, err)
			return nil
		}
		if !d.IsDir() {
			return nil
		}
		if p != dir && strings.HasPrefix(d.Name(), ".") {
			return filepath.SkipDir
		}
		if err := fsWatcher.Add(p); err != nil {
			return fmt.Errorf("watch %s: %w", p, err)
		}
		return nil
	})
}

func (w *Watcher) watchLoop(fsWatcher *fsnotify.Watcher) {
	for {
		select {
		case <-w.stopCh:
			return
		case event, ok := <-fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(fsWatcher, event)
		case err, ok := <-fsWatcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("⚠️ watch error: %v", err)
		}
	}
}

func (w *Watcher) handleEvent(fsWatcher *fsnotify.Watcher, event fsnotify.Event) {
	if event.Name == "" {
		return
	}
	name := filepath.Clean(event.Name)

	if event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(name); err == nil && info.IsDir() {
			if err := w.addTree(fsWatcher, name); err != nil {
				w.logger.Warn("⚠️ watch: %v", err)
			}
			return
		}
	}
	if !w.exts[strings.ToLower(filepath.Ext(name))] {
		return
	}

	var op Op
	switch {
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		op = OpDeleted
	case event.Op.Has(fsnotify.Create):
		op = OpCreated
	case event.Op.Has(fsnotify.Write):
		op = OpModified
	default:
		return
	}

	rel, err := filepath.Rel(w.root, name)
	if err != nil || strings.HasPrefix(rel, "..") {
		return
	}
	w.schedule(CleanPath(filepath.ToSlash(rel)), op)
}

func (w *Watcher) schedule(p string, op Op) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.stopped {
		return
	}
	w.seq++
	seq := w.seq
	fire := func() { w.emit(p, seq) }
	if change, ok := w.pending[p]; ok {
		change.timer.Stop()
		change.op = mergeOps(change.op, op)
		change.seq = seq
		change.timer = time.AfterFunc(w.debounce, fire)
		return
	}
	w.pending[p] = &pendingChange{
		op:    op,
		seq:   seq,
		timer: time.AfterFunc(w.debounce, fire),
	}
}

// mergeOps folds a new change into a pending one: a file created then
// written is still new, and the latest delete or create wins otherwise.
func mergeOps(prev, next Op) Op {
	if prev == OpCreated && next == OpModified {
		return OpCreated
	}
	return next
}

// emit delivers a settled change. When the Events channel is full it waits
// for the reader instead of dropping the change; Stop releases it.
func (w *Watcher) emit(p string, seq uint64) {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	change, ok := w.pending[p]
	if !ok || change.seq != seq {
		w.mu.Unlock()
		return
	}
	delete(w.pending, p)
	ev := Event{Op: change.op, Path: p}
	w.sending.Add(1)
	w.mu.Unlock()
	defer w.sending.Done()

	select {
	case w.out <- ev:
		return
	default:
	}
	w.logger.Debug("⏳ watch: event buffer full, waiting to deliver %s %s", ev.Op, ev.Path)
	select {
	case w.out <- ev:
	case <-w.stopCh:
		w.logger.Warn("⚠️ watch: stopped before delivering %s %s", ev.Op, ev.Path)
	}
}
