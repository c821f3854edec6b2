package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/fatih/color"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/spektr-org/notetrack"
	"github.com/spektr-org/notetrack/engine"
	"github.com/spektr-org/notetrack/internal/logging"
	"github.com/spektr-org/notetrack/render"
	"github.com/spektr-org/notetrack/settings"
	"github.com/spektr-org/notetrack/store"
	"github.com/spektr-org/notetrack/tracker"
)

// ============================================================================
// NOTETRACK CLI — Trackers over a folder of markdown notes
// ============================================================================

var errInvalidBlocks = errors.New("tracker blocks have errors")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCommand().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// app holds state shared by every command once flags are parsed.
type app struct {
	configPath string
	extensions []string
	settings   settings.Settings
	logger     *logging.StdLogger
}

func newRootCommand() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:   "notetrack",
		Short: "Habit and progress trackers computed from markdown notes",
		Long: `notetrack reads ` + "```tracker" + ` blocks from markdown notes, scans the tables
and patterns they point at, and prints counters, progress bars, streaks and
time series.

Examples:
  notetrack render Daily/2026-10-19.md
  notetrack render dashboard.md --format csv --out trackers.csv
  notetrack validate dashboard.md
  notetrack watch dashboard.md --metrics-addr :9090`,
		Version:      notetrack.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			s, err := settings.Load(a.configPath, cmd.Flags())
			if err != nil {
				return err
			}
			a.settings = s
			a.logger = logging.New(cmd.ErrOrStderr(), "", s.Level())
			return nil
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configPath, "config", "", "settings file (YAML)")
	pf.String("root", ".", "notes root folder")
	pf.String("period", "", "default period for trackers without one (daily, weekly, monthly, yearly, all-time)")
	pf.String("log-level", "info", "log level (debug, info, warn, error)")
	pf.StringSliceVar(&a.extensions, "ext", []string{"md"}, "note file extensions to scan and watch")

	root.AddCommand(
		newRenderCommand(a),
		newValidateCommand(a),
		newExamplesCommand(),
		newWatchCommand(a),
		newSettingsCommand(a),
	)
	return root
}

// ============================================================================
// RENDER
// ============================================================================

type outputFlags struct {
	format string
	out    string
	series bool
}

func (o *outputFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&o.format, "format", "text", "output format: text, json, pretty, csv")
	cmd.Flags().StringVar(&o.out, "out", "", "write output to file instead of stdout")
	cmd.Flags().BoolVar(&o.series, "series", false, "csv: write time series points instead of the summary table")
}

func newRenderCommand(a *app) *cobra.Command {
	var (
		out     outputFlags
		rawText bool
	)
	cmd := &cobra.Command{
		Use:   "render <note.md>",
		Short: "Compute every tracker block in a note",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.loadDocument(args[0], rawText)
			if err != nil {
				return err
			}
			st, err := a.openStore()
			if err != nil {
				return err
			}
			eng := a.newEngine(st, nil)

			var views []render.View
			for i, text := range doc.blocks {
				block := tracker.ParseBlock(text, tracker.WithDefaultPeriod(a.settings.Period()))
				views = append(views, render.ViewsFromBlock(doc.blockID(i), block, func(cfg tracker.Config) (*engine.TrackerData, error) {
					return eng.Execute(cmd.Context(), cfg, doc.path)
				})...)
			}
			if len(views) == 0 {
				a.logger.Warn("⚠️ no tracker blocks in %s", args[0])
			}

			return withOutput(cmd.OutOrStdout(), out.out, func(w io.Writer) error {
				return writeViews(w, views, out)
			})
		},
	}
	out.register(cmd)
	cmd.Flags().BoolVar(&rawText, "block", false, "treat the file as one raw tracker block instead of a note")
	return cmd
}

func writeViews(w io.Writer, views []render.View, out outputFlags) error {
	switch out.format {
	case "json":
		return render.JSON(w, views, false)
	case "pretty":
		return render.JSON(w, views, true)
	case "csv":
		if out.series {
			return render.TimeSeriesCSV(w, views)
		}
		return render.CSV(w, views)
	case "text":
		return render.Text(w, views)
	default:
		return fmt.Errorf("unknown format %q", out.format)
	}
}

// ============================================================================
// VALIDATE
// ============================================================================

func newValidateCommand(a *app) *cobra.Command {
	var rawText bool
	cmd := &cobra.Command{
		Use:   "validate <file>",
		Short: "Parse and validate tracker blocks without scanning notes",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := a.loadDocument(args[0], rawText)
			if err != nil {
				return err
			}

			w := cmd.OutOrStdout()
			failed := 0
			for i, text := range doc.blocks {
				block := tracker.ParseBlock(text, tracker.WithDefaultPeriod(a.settings.Period()))
				if !block.Defaults.IsEmpty() {
					fmt.Fprintf(w, "  %s %s\n", doc.blockID(i), describeDefaults(block.Defaults))
				}
				for _, widget := range block.Widgets {
					target := render.TargetID(doc.blockID(i), widget.Index)
					if widget.OK() {
						cfg := widget.Config
						fmt.Fprintf(w, "%s %s %s (%s, %s)", color.GreenString("✓"), target,
							render.LabelFor(cfg), cfg.Mode(), cfg.Source)
						if cfg.HasGoal() {
							fmt.Fprintf(w, " goal %d", *cfg.Goal)
						}
						fmt.Fprintln(w)
						continue
					}
					failed++
					fmt.Fprintf(w, "%s %s\n", color.RedString("✗"), target)
					if err := render.Text(w, []render.View{render.NewErrorView(target, "", widget.Err)}); err != nil {
						return err
					}
				}
			}
			if failed > 0 {
				return fmt.Errorf("%w: %d invalid", errInvalidBlocks, failed)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&rawText, "block", false, "treat the file as one raw tracker block instead of a note")
	return cmd
}

// ============================================================================
// EXAMPLES & SETTINGS
// ============================================================================

func newExamplesCommand() *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "examples",
		Short: "Print documented tracker snippets",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			w := cmd.OutOrStdout()
			examples := tracker.Examples()
			if format == "json" {
				return render.JSON(w, examples, true)
			}
			for _, ex := range examples {
				fmt.Fprintf(w, "## %s\n%s\n\n```%s\n%s\n```\n\n", ex.Name, ex.Description, tracker.BlockLanguage, ex.Snippet)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&format, "format", "markdown", "output format: markdown, json")
	return cmd
}

func newSettingsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "settings",
		Short: "Print the effective settings as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			out, err := a.settings.YAML()
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(out)
			return err
		},
	}
}

// ============================================================================
// HELPERS
// ============================================================================

// describeDefaults lists the shared settings of a multi-tracker block.
func describeDefaults(d tracker.BlockConfig) string {
	var parts []string
	if d.Source != "" {
		parts = append(parts, "source="+d.Source)
	}
	if d.TableTag != "" {
		parts = append(parts, "tableTag="+d.TableTag)
	}
	if d.Layout != "" {
		parts = append(parts, "layout="+d.Layout)
	}
	if d.GridColumns > 0 {
		parts = append(parts, fmt.Sprintf("gridColumns=%d", d.GridColumns))
	}
	return "shares " + strings.Join(parts, " ")
}

// document is an input file split into tracker blocks.
type document struct {
	path   string // store-relative; the current file of its trackers
	blocks []string
}

func (d document) blockID(i int) string {
	if len(d.blocks) == 1 {
		return d.path
	}
	return fmt.Sprintf("%s:%d", d.path, i+1)
}

func (a *app) loadDocument(file string, rawText bool) (document, error) {
	data, err := os.ReadFile(file)
	if err != nil {
		return document{}, fmt.Errorf("read %s: %w", file, err)
	}
	rel, err := a.relativePath(file)
	if err != nil {
		return document{}, err
	}

	doc := document{path: rel}
	if rawText {
		doc.blocks = []string{string(data)}
	} else {
		doc.blocks = tracker.ExtractBlocks(string(data))
	}
	return doc, nil
}

// relativePath maps a file on disk to its store path below the notes root.
func (a *app) relativePath(file string) (string, error) {
	absRoot, err := filepath.Abs(a.settings.Root)
	if err != nil {
		return "", err
	}
	absFile, err := filepath.Abs(file)
	if err != nil {
		return "", err
	}
	rel, err := filepath.Rel(absRoot, absFile)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%s is outside the notes root %s", file, a.settings.Root)
	}
	return store.CleanPath(filepath.ToSlash(rel)), nil
}

func (a *app) openStore() (*store.FS, error) {
	return store.NewOSFS(a.settings.Root,
		store.WithCacheSize(a.settings.CacheSize),
		store.WithExtensions(a.extensions...),
		store.WithLogger(a.logger.With("store")),
	)
}

func (a *app) newEngine(st store.Store, reg prometheus.Registerer) *engine.Engine {
	opts := []engine.Option{
		engine.WithLogger(a.logger.With("engine")),
		engine.WithWeekStart(a.settings.Weekday()),
		engine.WithConcurrency(a.settings.Concurrency),
	}
	if reg != nil {
		opts = append(opts, engine.WithMetrics(engine.MustNewMetrics(reg)))
	}
	return engine.New(st, opts...)
}

// withOutput runs write against stdout, or against path when set.
func withOutput(stdout io.Writer, path string, write func(io.Writer) error) error {
	if path == "" {
		return write(stdout)
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create output file: %w", err)
	}
	if err := write(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
