package engine

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/spektr-org/notetrack/store"
	"github.com/spektr-org/notetrack/tracker"
)

// ============================================================================
// EXECUTOR — Tracker orchestration
// ============================================================================
// Entry point: Engine.Execute(ctx, cfg, currentPath)
//
// Single document (current-file, file:):
//   read → table or pattern scan → TrackerData{FilesScanned: 1}
//
// Folder (folder:):
//   1. List documents, apply the period filter
//   2. Sort by filename, read concurrently (results kept in filename order)
//   3. One value per file → time series, streak dates, overall aggregate
//   4. Goal: static goal, else the first table goal in filename order
//
// Missing documents and folders produce an empty result, not an error.
// ============================================================================

// ErrNoCurrentFile is returned when a current-file tracker is executed
// without a document path.
var ErrNoCurrentFile = errors.New("current-file source needs a document path")

// Engine computes TrackerData from configs and a document store.
// It holds no per-call state and is safe for concurrent use.
type Engine struct {
	store store.Store
	cfg   *config
}

// New creates an engine reading documents from s.
//
// Options:
//   - WithLogger(logger): diagnostics for warnings and scans
//   - WithClock(now): time source for periods and streaks
//   - WithWeekStart(day): first day of the weekly period (default Monday)
//   - WithConcurrency(n): folder reads in flight (default 8)
//   - WithMetrics(m): Prometheus scan metrics
func New(s store.Store, opts ...Option) *Engine {
	return &Engine{store: s, cfg: applyOptions(opts)}
}

// Execute computes one tracker. currentPath is the document holding the
// tracker block; it is only consulted for current-file sources.
func (e *Engine) Execute(ctx context.Context, cfg tracker.Config, currentPath string) (*TrackerData, error) {
	start := time.Now()
	sc := e.newScanner(cfg)

	var (
		data *TrackerData
		err  error
	)
	if cfg.Source.IsSingleDocument() {
		data, err = e.executeDocument(ctx, cfg, sc, currentPath)
	} else {
		data, err = e.executeFolder(ctx, cfg, sc)
	}
	if err != nil {
		return nil, err
	}

	e.cfg.Metrics.ObserveScan(cfg.Mode().String(), cfg.Source.Kind.String(), data.FilesScanned, time.Since(start))
	e.cfg.Logger.Debug("🔧 notetrack: %s %s tracker on %s → count=%g files=%d streak=%d",
		cfg.Type, cfg.Mode(), cfg.Source, data.Count, data.FilesScanned, data.Streak)
	return data, nil
}

// ── single document ─────────────────────────────────────────────────────────

func (e *Engine) executeDocument(ctx context.Context, cfg tracker.Config, sc *scanner, currentPath string) (*TrackerData, error) {
	path := cfg.Source.Path
	if cfg.Source.Kind == tracker.SourceCurrentFile {
		path = currentPath
	}
	if path == "" {
		return nil, ErrNoCurrentFile
	}

	content, err := e.store.Read(ctx, path)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.cfg.Logger.Warn("⚠️ notetrack: document %s not found, rendering empty tracker", path)
			return emptyResult(cfg), nil
		}
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	scan := sc.scan(content)
	data := emptyResult(cfg)
	data.FilesScanned = 1
	data.Count = scan.value
	if data.Goal == nil {
		data.Goal = scan.goal
	}
	if sc.numeric {
		data.NumericSum = floatPtr(Sum(scan.values))
	}
	return data, nil
}

// ── folder ──────────────────────────────────────────────────────────────────

func (e *Engine) executeFolder(ctx context.Context, cfg tracker.Config, sc *scanner) (*TrackerData, error) {
	folder := cfg.Source.Path
	entries, err := e.store.List(ctx, folder)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			e.cfg.Logger.Warn("⚠️ notetrack: folder %s not found, rendering empty tracker", folder)
			return emptyResult(cfg), nil
		}
		return nil, fmt.Errorf("list %s: %w", folder, err)
	}

	now := e.cfg.Now()
	entries = FilterFilesByPeriod(entries, cfg.Period, now, e.cfg.WeekStart)
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].Basename != entries[j].Basename {
			return entries[i].Basename < entries[j].Basename
		}
		return entries[i].Path < entries[j].Path
	})

	scans, err := e.scanAll(ctx, entries, sc)
	if err != nil {
		return nil, err
	}

	data := emptyResult(cfg)
	data.FilesScanned = len(entries)

	perFile := make([]float64, len(entries))
	var (
		streakDates []time.Time
		numericSum  float64
	)
	for i, entry := range entries {
		scan := scans[i]
		perFile[i] = scan.value
		numericSum += Sum(scan.values)
		if data.Goal == nil && scan.goal != nil {
			data.Goal = scan.goal
		}

		date, ok := ExtractDateFromFilename(entry.Basename, now.Location())
		if !ok {
			continue
		}
		data.TimeSeries = append(data.TimeSeries, TimePoint{Date: date, Value: scan.value})
		data.DateRange.extend(date)
		if scan.value > 0 {
			streakDates = append(streakDates, date)
		}
	}

	data.Count = Aggregate(perFile, cfg.Aggregate)
	data.Streak = CalculateStreak(streakDates, now)
	if sc.numeric {
		data.NumericSum = floatPtr(numericSum)
	}
	return data, nil
}

// scanAll reads and scans entries concurrently. Results are indexed like
// entries. An unreadable document contributes a zero scan.
func (e *Engine) scanAll(ctx context.Context, entries []store.Entry, sc *scanner) ([]docScan, error) {
	scans := make([]docScan, len(entries))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.cfg.Concurrency)

	for i, entry := range entries {
		g.Go(func() error {
			content, err := e.store.Read(gctx, entry.Path)
			if err != nil {
				if ctxErr := gctx.Err(); ctxErr != nil {
					return ctxErr
				}
				e.cfg.Metrics.IncReadFailure()
				e.cfg.Logger.Warn("⚠️ notetrack: skipping unreadable %s: %v", entry.Path, err)
				return nil
			}
			scans[i] = sc.scan(content)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("scan folder: %w", err)
	}
	return scans, nil
}

// ── scanning ────────────────────────────────────────────────────────────────

// docScan is the contribution of one document.
type docScan struct {
	value  float64   // match count, or the aggregate of table values
	values []float64 // raw table values
	goal   *float64  // table goal column sum
}

// scanner applies one config to document text. Patterns are compiled once
// per Execute.
type scanner struct {
	cfg     tracker.Config
	query   TableQuery
	matcher *patternMatcher // nil for an invalid regex: every document counts 0
	numeric bool
}

func (e *Engine) newScanner(cfg tracker.Config) *scanner {
	sc := &scanner{cfg: cfg}
	if cfg.Mode() == tracker.ModeTable {
		sc.query = QueryFromConfig(cfg)
		sc.numeric = cfg.Value == tracker.ValueNumeric
		return sc
	}
	m, err := compilePattern(cfg.Pattern, cfg.UseRegex)
	if err != nil {
		e.cfg.Metrics.IncPatternError()
		e.cfg.Logger.Warn("⚠️ notetrack: %v, counting 0 matches", err)
		return sc
	}
	sc.matcher = m
	return sc
}

func (sc *scanner) scan(content string) docScan {
	if sc.cfg.Mode() == tracker.ModeTable {
		res := ExtractTable(content, sc.query)
		return docScan{
			value:  Aggregate(res.Values, sc.cfg.Aggregate),
			values: res.Values,
			goal:   res.Goal,
		}
	}
	return docScan{value: float64(sc.matcher.count(content))}
}

// ── results ─────────────────────────────────────────────────────────────────

// emptyResult is the zero-state result, keeping a static goal.
func emptyResult(cfg tracker.Config) *TrackerData {
	data := &TrackerData{TimeSeries: []TimePoint{}}
	if cfg.Goal != nil {
		data.Goal = floatPtr(float64(*cfg.Goal))
	}
	return data
}

func (r *DateRange) extend(t time.Time) {
	if r.Start == nil || t.Before(*r.Start) {
		start := t
		r.Start = &start
	}
	if r.End == nil || t.After(*r.End) {
		end := t
		r.End = &end
	}
}
