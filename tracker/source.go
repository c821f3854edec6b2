package tracker

import (
	"encoding/json"
	"fmt"
	"strings"
)

// SourceKind discriminates the Source sum type.
type SourceKind int

const (
	SourceCurrentFile SourceKind = iota + 1
	SourceFile
	SourceFolder
)

func (k SourceKind) String() string {
	switch k {
	case SourceCurrentFile:
		return "current-file"
	case SourceFile:
		return "file"
	case SourceFolder:
		return "folder"
	default:
		return "unknown"
	}
}

const (
	currentFileLiteral = "current-file"
	filePrefix         = "file:"
	folderPrefix       = "folder:"
)

// Source addresses the documents a tracker reads.
// Path is empty for SourceCurrentFile.
type Source struct {
	Kind SourceKind
	Path string
}

// CurrentFile returns the current-file source.
func CurrentFile() Source { return Source{Kind: SourceCurrentFile} }

// File returns a single-document source.
func File(path string) Source { return Source{Kind: SourceFile, Path: path} }

// Folder returns a folder source.
func Folder(path string) Source { return Source{Kind: SourceFolder, Path: path} }

// ParseSource parses `current-file`, `file:<path>` or `folder:<path>`.
// This is the only place source strings are interpreted.
func ParseSource(raw string) (Source, error) {
	raw = strings.TrimSpace(raw)
	switch {
	case raw == currentFileLiteral:
		return CurrentFile(), nil
	case strings.HasPrefix(raw, folderPrefix):
		if path := strings.TrimSpace(raw[len(folderPrefix):]); path != "" {
			return Folder(path), nil
		}
	case strings.HasPrefix(raw, filePrefix):
		if path := strings.TrimSpace(raw[len(filePrefix):]); path != "" {
			return File(path), nil
		}
	}
	return Source{}, newConfigError(ErrInvalidSource, fieldSource,
		fmt.Sprintf("invalid source %q", raw))
}

// IsSingleDocument returns true for current-file and file: sources.
func (s Source) IsSingleDocument() bool {
	return s.Kind == SourceCurrentFile || s.Kind == SourceFile
}

func (s Source) String() string {
	switch s.Kind {
	case SourceCurrentFile:
		return currentFileLiteral
	case SourceFile:
		return filePrefix + s.Path
	case SourceFolder:
		return folderPrefix + s.Path
	default:
		return ""
	}
}

// MarshalJSON encodes the source in its block-text grammar.
func (s Source) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

// UnmarshalJSON decodes a source written in block-text grammar.
func (s *Source) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseSource(raw)
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}
