// Package store exposes the document collection the tracker engine reads:
// a small Store contract, an afero-backed markdown implementation with a
// content cache, and an fsnotify watcher for change notifications.
package store

import (
	"context"
	"errors"
	"path"
	"strings"
)

// ErrNotFound is returned when a document or folder does not exist.
var ErrNotFound = errors.New("not found")

// Entry is a listed document.
// Path is store-relative with forward slashes; Basename is the file name
// without its extension.
type Entry struct {
	Path     string `json:"path"`
	Basename string `json:"basename"`
}

// NewEntry derives an Entry from a store-relative path.
func NewEntry(p string) Entry {
	p = CleanPath(p)
	base := path.Base(p)
	return Entry{
		Path:     p,
		Basename: strings.TrimSuffix(base, path.Ext(base)),
	}
}

// Store reads documents by path and lists the documents below a folder.
type Store interface {
	Read(ctx context.Context, path string) (string, error)
	List(ctx context.Context, folder string) ([]Entry, error)
}

// CleanPath normalizes a store-relative path: forward slashes, no leading
// slash, no dot segments.
func CleanPath(p string) string {
	p = strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	p = path.Clean("/" + p)
	return strings.TrimPrefix(p, "/")
}
