package tagspace

import "io"

// Vault stores off-host snapshots of the index database, one per host.
// Every snapshot carries a version (the highest operation id it contains)
// so a host can tell whether its local index is behind.
type Vault interface {
	// PutSnapshot replaces the host's snapshot. size is the number of bytes
	// that will be read from r.
	PutSnapshot(hostID string, r io.Reader, size int64, version int64) error

	// GetSnapshot writes the host's snapshot to w.
	GetSnapshot(hostID string, w io.Writer) error

	// GetSnapshotVersion returns 0 when the host has no snapshot.
	GetSnapshotVersion(hostID string) (int64, error)

	ValidateSetup() error
}
