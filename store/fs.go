package store

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/spf13/afero"

	"github.com/spektr-org/notetrack/internal/logging"
)

const (
	defaultCacheSize = 256
	markdownExt      = ".md"
)

// cachedDoc is a document body plus the modification version it was read at.
type cachedDoc struct {
	content string
	modTime time.Time
	size    int64
}

// FS is a Store over an afero filesystem holding markdown notes.
// Reads are served from an LRU cache while the file's modification time and
// size are unchanged.
type FS struct {
	fs     afero.Fs
	exts   map[string]bool
	cache  *lru.Cache[string, cachedDoc]
	logger logging.Logger
}

// FSOption customizes an FS.
type FSOption func(*fsOptions)

type fsOptions struct {
	cacheSize  int
	extensions []string
	logger     logging.Logger
}

// WithCacheSize sets the number of cached documents. Zero disables caching.
func WithCacheSize(n int) FSOption {
	return func(o *fsOptions) {
		if n >= 0 {
			o.cacheSize = n
		}
	}
}

// WithExtensions sets which file extensions List reports (default ".md").
func WithExtensions(exts ...string) FSOption {
	return func(o *fsOptions) {
		if len(exts) > 0 {
			o.extensions = exts
		}
	}
}

// WithLogger sets the store logger.
func WithLogger(logger logging.Logger) FSOption {
	return func(o *fsOptions) {
		o.logger = logger
	}
}

// NewFS wraps an afero filesystem. Paths given to Read and List are relative
// to the filesystem root.
func NewFS(fsys afero.Fs, opts ...FSOption) (*FS, error) {
	if fsys == nil {
		return nil, fmt.Errorf("filesystem required")
	}
	o := fsOptions{cacheSize: defaultCacheSize, extensions: []string{markdownExt}}
	for _, opt := range opts {
		opt(&o)
	}

	s := &FS{
		fs:     fsys,
		exts:   make(map[string]bool, len(o.extensions)),
		logger: logging.OrNop(o.logger),
	}
	for _, ext := range o.extensions {
		ext = strings.ToLower(ext)
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		s.exts[ext] = true
	}
	if o.cacheSize > 0 {
		cache, err := lru.New[string, cachedDoc](o.cacheSize)
		if err != nil {
			return nil, fmt.Errorf("create content cache: %w", err)
		}
		s.cache = cache
	}
	return s, nil
}

// NewOSFS opens the notes directory at root on the local disk. A relative
// root is resolved against the working directory.
func NewOSFS(root string, opts ...FSOption) (*FS, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		root = "."
	}
	root, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve notes root: %w", err)
	}
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("open notes root: %w", err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("notes root %s is not a directory", root)
	}
	return NewFS(afero.NewBasePathFs(afero.NewOsFs(), root), opts...)
}

// Read returns the document body. A path without an extension falls back to
// the markdown file of the same name.
func (s *FS) Read(ctx context.Context, p string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	p = CleanPath(p)
	if p == "" {
		return "", fmt.Errorf("read document: empty path: %w", ErrNotFound)
	}

	info, err := s.fs.Stat(p)
	if isNotExist(err) && path.Ext(p) == "" {
		p += markdownExt
		info, err = s.fs.Stat(p)
	}
	if err != nil {
		if isNotExist(err) {
			return "", fmt.Errorf("read document %s: %w", p, ErrNotFound)
		}
		return "", fmt.Errorf("stat document %s: %w", p, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("read document %s: is a folder: %w", p, ErrNotFound)
	}

	if s.cache != nil {
		if doc, ok := s.cache.Get(p); ok && doc.modTime.Equal(info.ModTime()) && doc.size == info.Size() {
			return doc.content, nil
		}
	}

	data, err := afero.ReadFile(s.fs, p)
	if err != nil {
		if isNotExist(err) {
			return "", fmt.Errorf("read document %s: %w", p, ErrNotFound)
		}
		return "", fmt.Errorf("read document %s: %w", p, err)
	}
	content := string(data)
	if s.cache != nil {
		s.cache.Add(p, cachedDoc{content: content, modTime: info.ModTime(), size: info.Size()})
	}
	return content, nil
}

// List returns every document below folder (recursively), sorted by path.
func (s *FS) List(ctx context.Context, folder string) ([]Entry, error) {
	folder = CleanPath(folder)
	root := folder
	if root == "" {
		root = "."
	}

	info, err := s.fs.Stat(root)
	if err != nil {
		if isNotExist(err) {
			return nil, fmt.Errorf("list folder %s: %w", folder, ErrNotFound)
		}
		return nil, fmt.Errorf("list folder %s: %w", folder, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("list folder %s: not a folder: %w", folder, ErrNotFound)
	}

	var entries []Entry
	err = afero.Walk(s.fs, root, func(p string, info fs.FileInfo, err error) error {
		if err != nil {
			s.logger.Warn("⚠️ store: skipping %s: %v", p, err)
			return nil
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		if info.IsDir() {
			return nil
		}
		if !s.exts[strings.ToLower(filepath.Ext(p))] {
			return nil
		}
		entries = append(entries, NewEntry(filepath.ToSlash(p)))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list folder %s: %w", folder, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}

// Invalidate drops a cached document. Watchers call this on change events;
// stale entries are also detected by modification time on the next read.
func (s *FS) Invalidate(p string) {
	if s.cache == nil {
		return
	}
	s.cache.Remove(CleanPath(p))
}

func isNotExist(err error) bool {
	return err != nil && (errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err))
}
