package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/notetrack/registry"
	"github.com/spektr-org/notetrack/render"
	"github.com/spektr-org/notetrack/store"
	"github.com/spektr-org/notetrack/tracker"
)

// ============================================================================
// WATCH — Live trackers, recomputed when notes change
// ============================================================================

func newWatchCommand(a *app) *cobra.Command {
	var metricsAddr string
	cmd := &cobra.Command{
		Use:   "watch <note.md>",
		Short: "Keep the trackers of a note up to date as notes change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			doc, err := a.loadDocument(args[0], false)
			if err != nil {
				return err
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}

			reg := prometheus.NewRegistry()
			eng := a.newEngine(st, reg)
			p := &printer{w: cmd.OutOrStdout()}
			displays := registry.New(eng, p.update,
				registry.WithLogger(a.logger.With("registry")),
				registry.WithInvalidator(st),
				registry.WithConcurrency(a.settings.Concurrency),
			)
			defer displays.Close()

			if metricsAddr != "" {
				srv := serveMetrics(metricsAddr, reg, a)
				defer shutdown(srv)
			}

			w, err := store.NewWatcher(a.settings.Root,
				store.WithDebounce(a.settings.WatchDebounce),
				store.WithWatchLogger(a.logger.With("watch")),
				store.WithWatchExtensions(a.extensions...),
			)
			if err != nil {
				return err
			}
			if err := w.Start(ctx); err != nil {
				return err
			}
			defer w.Stop()

			s := newSession(a, doc, st, displays, p)
			if err := s.load(ctx); err != nil {
				return err
			}
			a.logger.Info("👀 watching %s (%d trackers, root %s)", doc.path, displays.Len(), a.settings.Root)

			err = s.run(ctx, w.Events())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address, e.g. :9090")
	return cmd
}

// session keeps the registry in sync with the blocks of the watched note.
type session struct {
	app      *app
	doc      document
	store    *store.FS
	registry *registry.Registry
	printer  *printer
	targets  []string
}

func newSession(a *app, doc document, st *store.FS, displays *registry.Registry, p *printer) *session {
	return &session{app: a, doc: doc, store: st, registry: displays, printer: p}
}

// run reloads the note when it changes and hands every other change to the
// registry, until ctx is done or events is closed.
func (s *session) run(ctx context.Context, events <-chan store.Event) error {
	forward := make(chan store.Event)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return s.registry.Run(gctx, forward)
	})
	g.Go(func() error {
		defer close(forward)
		for {
			select {
			case <-gctx.Done():
				return gctx.Err()
			case ev, ok := <-events:
				if !ok {
					return nil
				}
				if ev.Path == s.doc.path && ev.Op != store.OpDeleted {
					s.reload(gctx)
					continue
				}
				if ev.Path == s.doc.path {
					s.app.logger.Warn("⚠️ %s was deleted; waiting for it to come back", s.doc.path)
				}
				select {
				case forward <- ev:
				case <-gctx.Done():
					return gctx.Err()
				}
			}
		}
	})
	return g.Wait()
}

func (s *session) reload(ctx context.Context) {
	s.store.Invalidate(s.doc.path)
	if err := s.load(ctx); err != nil {
		if !errors.Is(err, registry.ErrClosed) {
			s.app.logger.Warn("⚠️ reload %s: %v", s.doc.path, err)
		}
		return
	}
	s.app.logger.Debug("🔄 %s reloaded: %s", s.doc.path, strings.Join(s.registry.Targets(), ", "))
}

// load re-reads the watched note and replaces its registered trackers.
func (s *session) load(ctx context.Context) error {
	content, err := s.store.Read(ctx, s.doc.path)
	if err != nil {
		return fmt.Errorf("read %s: %w", s.doc.path, err)
	}
	s.doc.blocks = tracker.ExtractBlocks(content)

	for _, target := range s.targets {
		s.registry.Unregister(target)
	}
	s.targets = s.targets[:0]

	for i, text := range s.doc.blocks {
		block := tracker.ParseBlock(text, tracker.WithDefaultPeriod(s.app.settings.Period()))
		for _, widget := range block.Widgets {
			target := render.TargetID(s.doc.blockID(i), widget.Index)
			if !widget.OK() {
				s.printer.print(render.NewErrorView(target, "", widget.Err))
				continue
			}
			s.targets = append(s.targets, target)
			if _, err := s.registry.Render(ctx, target, widget.Config, s.doc.path); errors.Is(err, registry.ErrClosed) {
				return err
			}
		}
	}
	return nil
}

// printer writes one timestamped line per update.
type printer struct {
	mu sync.Mutex
	w  io.Writer
}

func (p *printer) update(u registry.Update) {
	if u.Err != nil {
		p.print(render.NewErrorView(u.Target, render.LabelFor(u.Config), u.Err))
		return
	}
	p.print(render.NewView(u.Target, u.Config, u.Data))
}

func (p *printer) print(v render.View) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintf(p.w, "%s %s %s\n", color.HiBlackString(time.Now().Format("15:04:05")), v.Target, render.Line(v))
}

// ── metrics endpoint ──

func serveMetrics(addr string, reg *prometheus.Registry, a *app) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		a.logger.Info("📈 metrics on %s/metrics", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.logger.Error("metrics server: %v", err)
		}
	}()
	return srv
}

func shutdown(srv *http.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
}
