// Package filepick tracks the file a user selects for submission.
//
// Only one pick may be outstanding at a time. Starting a new pick supersedes
// any earlier pending one, and a resolved pick replaces whatever file was
// selected before it.
package filepick

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"unicode/utf8"

	"github.com/google/uuid"
)

// DefaultLimit caps the size of a picked file
const DefaultLimit int64 = 1 << 20

var (
	ErrNoFileSelected = errors.New("no file selected")
	ErrStalePick      = errors.New("file pick was superseded")
	ErrTooLarge       = errors.New("file is too large")
	ErrNotText        = errors.New("file is not valid UTF-8 text")
)

// File is a selected file read as text
type File struct {
	Name    string
	Content string
}

// Size returns the file size in bytes
func (f File) Size() int {
	return len(f.Content)
}

// Slot holds the current selection and the outstanding pick, if any.
// It is not safe for concurrent use; callers own it from one goroutine.
type Slot struct {
	pending  string
	selected *File
}

// Begin starts a new pick and returns its token
func (s *Slot) Begin() string {
	s.pending = uuid.NewString()
	return s.pending
}

// Pending returns the token of the outstanding pick, or ""
func (s *Slot) Pending() string {
	return s.pending
}

// Resolve completes the pick identified by token with f
func (s *Slot) Resolve(token string, f File) error {
	if token == "" || token != s.pending {
		return ErrStalePick
	}
	s.pending = ""
	s.selected = &f
	return nil
}

// Cancel fails the pick identified by token. The previous selection is kept.
func (s *Slot) Cancel(token string) error {
	if token == "" || token != s.pending {
		return ErrStalePick
	}
	s.pending = ""
	return ErrNoFileSelected
}

// Selected returns the selected file
func (s *Slot) Selected() (File, bool) {
	if s.selected == nil {
		return File{}, false
	}
	return *s.selected, true
}

// Clear drops the selection and any outstanding pick
func (s *Slot) Clear() {
	s.pending = ""
	s.selected = nil
}

// ReadText reads r as UTF-8 text. A limit <= 0 uses DefaultLimit.
func ReadText(r io.Reader, name string, limit int64) (File, error) {
	if r == nil || name == "" {
		return File{}, ErrNoFileSelected
	}
	if limit <= 0 {
		limit = DefaultLimit
	}

	data, err := io.ReadAll(io.LimitReader(r, limit+1))
	if err != nil {
		return File{}, fmt.Errorf("failed to read %s: %w", name, err)
	}
	if int64(len(data)) > limit {
		return File{}, fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, name, limit)
	}
	if !utf8.Valid(data) {
		return File{}, fmt.Errorf("%w: %s", ErrNotText, name)
	}

	return File{Name: name, Content: string(data)}, nil
}

// CheckSize rejects a size over limit. A limit <= 0 uses DefaultLimit.
func CheckSize(name string, size, limit int64) error {
	if limit <= 0 {
		limit = DefaultLimit
	}
	if size > limit {
		return fmt.Errorf("%w: %s exceeds %d bytes", ErrTooLarge, name, limit)
	}
	return nil
}

// FromUpload validates content the browser already read as text
func FromUpload(name, content string, limit int64) (File, error) {
	if name == "" {
		return File{}, ErrNoFileSelected
	}
	if err := CheckSize(name, int64(len(content)), limit); err != nil {
		return File{}, err
	}
	if !utf8.ValidString(content) {
		return File{}, fmt.Errorf("%w: %s", ErrNotText, name)
	}
	return File{Name: filepath.Base(name), Content: content}, nil
}

// ReadPath reads a local file as text
func ReadPath(path string, limit int64) (File, error) {
	if path == "" {
		return File{}, ErrNoFileSelected
	}
	f, err := os.Open(path)
	if err != nil {
		return File{}, fmt.Errorf("failed to open file: %w", err)
	}
	defer f.Close()
	return ReadText(f, filepath.Base(path), limit)
}
