package vault

import (
	"bytes"
	"fmt"
	"io"
	"sync"

	"tagspace/internal/tagspace"
)

// MemoryVault keeps snapshots in memory. Safe for concurrent use.
type MemoryVault struct {
	name      string
	mu        sync.RWMutex
	snapshots map[string][]byte // hostID -> snapshot
	versions  map[string]int64  // hostID -> version
}

func NewMemoryVault(name string) *MemoryVault {
	return &MemoryVault{
		name:      name,
		snapshots: make(map[string][]byte),
		versions:  make(map[string]int64),
	}
}

func (m *MemoryVault) PutSnapshot(hostID string, r io.Reader, size int64, version int64) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	if int64(len(data)) != size {
		return fmt.Errorf("size mismatch: expected %d bytes, got %d", size, len(data))
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[hostID] = data
	m.versions[hostID] = version
	return nil
}

func (m *MemoryVault) GetSnapshot(hostID string, w io.Writer) error {
	m.mu.RLock()
	data, ok := m.snapshots[hostID]
	m.mu.RUnlock()
	if !ok {
		return fmt.Errorf("no snapshot for host %s: %w", hostID, ErrSnapshotNotFound)
	}

	if _, err := io.Copy(w, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write snapshot: %w", err)
	}
	return nil
}

func (m *MemoryVault) GetSnapshotVersion(hostID string) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.versions[hostID], nil
}

func (m *MemoryVault) ValidateSetup() error {
	return nil
}

var _ tagspace.Vault = (*MemoryVault)(nil)
