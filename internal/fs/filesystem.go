// Package fs is the real-filesystem side of the index.
package fs

import (
	"fmt"
	"io"
	"os"

	"tagspace/internal/tagspace"
)

// OSFilesystemManager implements tagspace.FilesystemManager on the os package.
type OSFilesystemManager struct {
	ignore *IgnoreMatcher
}

// NewOSFilesystemManager creates a manager that skips entries matching the
// given gitignore-style patterns.
func NewOSFilesystemManager(ignorePatterns []string) *OSFilesystemManager {
	return &OSFilesystemManager{ignore: NewIgnoreMatcher(ignorePatterns)}
}

// Stat returns lstat data; a symlink is described, not followed.
func (m *OSFilesystemManager) Stat(realPath string) (*tagspace.FileStat, error) {
	info, err := os.Lstat(realPath)
	if err != nil {
		return nil, err
	}
	dev, ino := statIdentity(info)
	return &tagspace.FileStat{
		Name:  info.Name(),
		Size:  info.Size(),
		Mtime: tagspace.UnixSeconds(info.ModTime()),
		Dev:   dev,
		Ino:   ino,
		IsDir: info.IsDir(),
		Mode:  info.Mode(),
	}, nil
}

// ReadDir returns the names in a directory sorted by name.
func (m *OSFilesystemManager) ReadDir(realPath string) ([]string, error) {
	entries, err := os.ReadDir(realPath)
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

func (m *OSFilesystemManager) Open(realPath string) (io.ReadCloser, error) {
	f, err := os.Open(realPath)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	if !info.Mode().IsRegular() {
		f.Close()
		return nil, fmt.Errorf("not a regular file: %s", realPath)
	}
	return f, nil
}

func (m *OSFilesystemManager) IsIgnored(relPath string, isDir bool) bool {
	return m.ignore.Match(relPath, isDir)
}

var _ tagspace.FilesystemManager = (*OSFilesystemManager)(nil)
