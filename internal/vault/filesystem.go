package vault

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"tagspace/internal/tagspace"
)

// ErrSnapshotNotFound is returned by GetSnapshot for a host with no snapshot.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// FileSystemVault stores snapshots under a directory, typically a mounted
// backup disk:
//
//	<root>/
//	  snapshots/
//	    <hostID>.db       (latest snapshot)
//	    <hostID>.version  (its version)
type FileSystemVault struct {
	name         string
	root         string
	snapshotsDir string
}

// NewFileSystemVault creates the vault layout under root if needed.
func NewFileSystemVault(name, root string) (*FileSystemVault, error) {
	snapshotsDir := filepath.Join(root, "snapshots")
	if err := os.MkdirAll(snapshotsDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create snapshots directory: %w", err)
	}
	return &FileSystemVault{name: name, root: root, snapshotsDir: snapshotsDir}, nil
}

// PutSnapshot writes the snapshot before its version, so a reader never sees
// a version newer than the data.
func (v *FileSystemVault) PutSnapshot(hostID string, r io.Reader, size int64, version int64) error {
	if err := writeFileAtomic(v.snapshotPath(hostID), r, size); err != nil {
		return err
	}
	versionData := strconv.FormatInt(version, 10)
	return writeFileAtomic(v.versionPath(hostID), strings.NewReader(versionData), int64(len(versionData)))
}

func (v *FileSystemVault) GetSnapshot(hostID string, w io.Writer) error {
	f, err := os.Open(v.snapshotPath(hostID))
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("no snapshot for host %s: %w", hostID, ErrSnapshotNotFound)
	}
	if err != nil {
		return fmt.Errorf("failed to open snapshot: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(w, f); err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	return nil
}

// GetSnapshotVersion returns 0 if no version file exists.
func (v *FileSystemVault) GetSnapshotVersion(hostID string) (int64, error) {
	data, err := os.ReadFile(v.versionPath(hostID))
	if errors.Is(err, fs.ErrNotExist) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("reading version file: %w", err)
	}

	version, err := strconv.ParseInt(strings.TrimSpace(string(data)), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing version: %w", err)
	}
	return version, nil
}

// ValidateSetup checks that the vault directories exist.
func (v *FileSystemVault) ValidateSetup() error {
	for _, dir := range []string{v.root, v.snapshotsDir} {
		info, err := os.Stat(dir)
		if err != nil {
			return fmt.Errorf("vault directory not accessible: %w", err)
		}
		if !info.IsDir() {
			return fmt.Errorf("vault path is not a directory: %s", dir)
		}
	}
	return nil
}

func (v *FileSystemVault) snapshotPath(hostID string) string {
	return filepath.Join(v.snapshotsDir, hostID+".db")
}

func (v *FileSystemVault) versionPath(hostID string) string {
	return filepath.Join(v.snapshotsDir, hostID+".version")
}

// writeFileAtomic writes r to a temp file next to destPath and renames it
// into place once the size checks out.
func writeFileAtomic(destPath string, r io.Reader, expectedSize int64) error {
	tmpFile, err := os.CreateTemp(filepath.Dir(destPath), ".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()

	success := false
	defer func() {
		if !success {
			os.Remove(tmpPath)
		}
	}()

	written, err := io.Copy(tmpFile, r)
	if err != nil {
		tmpFile.Close()
		return fmt.Errorf("failed to write data: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}
	if written != expectedSize {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", expectedSize, written)
	}

	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file: %w", err)
	}
	success = true
	return nil
}

var _ tagspace.Vault = (*FileSystemVault)(nil)
