package tagspace

import (
	"errors"
	"fmt"
)

var (
	// ErrEntryNotFound is returned for an id with no live row.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrEntryExists is returned when a live row already occupies a location.
	ErrEntryExists = errors.New("entry already exists")
)

// UnknownSourceError reports a virtual path whose first segment is not a
// registered source.
type UnknownSourceError struct {
	Name string
}

func (e *UnknownSourceError) Error() string {
	return fmt.Sprintf("unknown source %q", e.Name)
}

// StatError reports an entry that could not be stat'ed during a walk.
type StatError struct {
	Path string
	Err  error
}

func (e *StatError) Error() string { return fmt.Sprintf("stat %s: %v", e.Path, e.Err) }
func (e *StatError) Unwrap() error { return e.Err }

// ReadError reports a file that could not be read while hashing.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string { return fmt.Sprintf("read %s: %v", e.Path, e.Err) }
func (e *ReadError) Unwrap() error { return e.Err }

// SourceLineError reports a malformed line in a sources list. Line is 1-based.
type SourceLineError struct {
	Line   int
	Text   string
	Reason string
}

func (e *SourceLineError) Error() string {
	return fmt.Sprintf("sources line %d (%q): %s", e.Line, e.Text, e.Reason)
}
