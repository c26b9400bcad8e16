package tagspace

import (
	"io"
	"io/fs"
	"time"
)

// FileStat is the lstat view of one filesystem entry.
type FileStat struct {
	Name  string
	Size  int64
	Mtime float64 // unix seconds
	Dev   int64
	Ino   int64
	IsDir bool
	Mode  fs.FileMode
}

// IsRegular reports whether the entry is a plain file.
func (s *FileStat) IsRegular() bool {
	return s.Mode.IsRegular()
}

// UnixSeconds converts t to fractional unix seconds, the index's time unit.
func UnixSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

// FilesystemManager abstracts filesystem access so the pipeline can run
// against an in-memory tree in tests.
type FilesystemManager interface {
	// Stat returns lstat information; symlinks are reported, not followed.
	Stat(realPath string) (*FileStat, error)

	// ReadDir returns the entry names of a directory in sorted order.
	ReadDir(realPath string) ([]string, error)

	// Open opens a regular file for reading.
	Open(realPath string) (io.ReadCloser, error)

	// IsIgnored reports whether relPath, relative to a source root and
	// slash-separated, matches a configured ignore pattern.
	IsIgnored(relPath string, isDir bool) bool
}
