// Package registry keeps the display registry: which render target shows
// which tracker config from which document, so every display can be
// recomputed when the notes change.
package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/notetrack/engine"
	"github.com/spektr-org/notetrack/internal/logging"
	"github.com/spektr-org/notetrack/store"
	"github.com/spektr-org/notetrack/tracker"
)

// ErrClosed is returned by operations on a closed registry.
var ErrClosed = errors.New("registry closed")

const defaultConcurrency = 4

// Executor computes one tracker. *engine.Engine implements it.
type Executor interface {
	Execute(ctx context.Context, cfg tracker.Config, currentPath string) (*engine.TrackerData, error)
}

// Invalidator drops cached content for a document. *store.FS implements it.
type Invalidator interface {
	Invalidate(path string)
}

// Update is one computed (or failed) display.
type Update struct {
	Target     string
	Config     tracker.Config
	SourcePath string
	Data       *engine.TrackerData
	Err        error
}

// Sink receives updates. It may be called from several goroutines at once;
// the last call for a target is the current display.
type Sink func(Update)

type entry struct {
	config     tracker.Config
	sourcePath string
}

// Registry maps render targets to their last-used config and document.
type Registry struct {
	exec        Executor
	sink        Sink
	logger      logging.Logger
	invalidator Invalidator
	concurrency int

	mu      sync.Mutex
	entries map[string]entry
	closed  bool
}

// Option customizes a Registry.
type Option func(*Registry)

// WithLogger sets the registry logger.
func WithLogger(logger logging.Logger) Option {
	return func(r *Registry) {
		r.logger = logging.OrNop(logger)
	}
}

// WithInvalidator drops cached documents named by change events before the
// displays are recomputed.
func WithInvalidator(inv Invalidator) Option {
	return func(r *Registry) {
		r.invalidator = inv
	}
}

// WithConcurrency caps how many displays Refresh recomputes at once.
func WithConcurrency(n int) Option {
	return func(r *Registry) {
		if n > 0 {
			r.concurrency = n
		}
	}
}

// New creates a registry computing with exec and publishing to sink.
func New(exec Executor, sink Sink, opts ...Option) *Registry {
	if sink == nil {
		sink = func(Update) {}
	}
	r := &Registry{
		exec:        exec,
		sink:        sink,
		logger:      logging.Nop(),
		concurrency: defaultConcurrency,
		entries:     make(map[string]entry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Render registers target (replacing any previous registration), computes it
// and publishes the result.
func (r *Registry) Render(ctx context.Context, target string, cfg tracker.Config, sourcePath string) (*engine.TrackerData, error) {
	e := entry{config: cfg, sourcePath: store.CleanPath(sourcePath)}

	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return nil, ErrClosed
	}
	r.entries[target] = e
	r.mu.Unlock()

	u := r.compute(ctx, target, e)
	return u.Data, u.Err
}

// Refresh recomputes every registered display.
func (r *Registry) Refresh(ctx context.Context) error {
	snapshot, err := r.snapshot()
	if err != nil {
		return err
	}
	if len(snapshot) == 0 {
		return nil
	}

	targets := make([]string, 0, len(snapshot))
	for target := range snapshot {
		targets = append(targets, target)
	}
	sort.Strings(targets)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.concurrency)
	for _, target := range targets {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			r.compute(gctx, target, snapshot[target])
			return nil
		})
	}
	return g.Wait()
}

// HandleEvent reacts to a document change. A deleted document drops the
// displays it hosted; every remaining display is recomputed.
func (r *Registry) HandleEvent(ctx context.Context, ev store.Event) error {
	p := store.CleanPath(ev.Path)
	if r.invalidator != nil {
		r.invalidator.Invalidate(p)
	}
	if ev.Op == store.OpDeleted {
		r.mu.Lock()
		for target, e := range r.entries {
			if e.sourcePath == p {
				delete(r.entries, target)
				r.logger.Info("🗑️ registry: %s removed with %s", target, p)
			}
		}
		r.mu.Unlock()
	}
	r.logger.Debug("🔄 registry: %s %s, refreshing %d displays", ev.Op, p, r.Len())
	return r.Refresh(ctx)
}

// Run handles events until ctx is done or events is closed.
func (r *Registry) Run(ctx context.Context, events <-chan store.Event) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-events:
			if !ok {
				return nil
			}
			if err := r.HandleEvent(ctx, ev); err != nil {
				if errors.Is(err, ErrClosed) {
					return nil
				}
				return err
			}
		}
	}
}

// Unregister forgets target.
func (r *Registry) Unregister(target string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.entries, target)
}

// Len returns the number of registered displays.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.entries)
}

// Targets returns the registered targets in sorted order.
func (r *Registry) Targets() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	targets := make([]string, 0, len(r.entries))
	for t := range r.entries {
		targets = append(targets, t)
	}
	sort.Strings(targets)
	return targets
}

// Close clears the registry. Later Render and Refresh calls fail with
// ErrClosed.
func (r *Registry) Close() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.closed = true
	clear(r.entries)
}

func (r *Registry) snapshot() (map[string]entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.closed {
		return nil, ErrClosed
	}
	out := make(map[string]entry, len(r.entries))
	for k, v := range r.entries {
		out[k] = v
	}
	return out, nil
}

func (r *Registry) compute(ctx context.Context, target string, e entry) Update {
	data, err := r.exec.Execute(ctx, e.config, e.sourcePath)
	if err != nil {
		err = fmt.Errorf("render %s: %w", target, err)
		r.logger.Warn("⚠️ registry: %v", err)
	}
	u := Update{Target: target, Config: e.config, SourcePath: e.sourcePath, Data: data, Err: err}
	r.sink(u)
	return u
}
