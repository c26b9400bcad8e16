package vault

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"tagspace/internal/tagspace"
)

// vaultImpls returns a fresh instance of every local vault implementation.
func vaultImpls(t *testing.T) map[string]tagspace.Vault {
	t.Helper()
	fsVault, err := NewFileSystemVault("test-fs", t.TempDir())
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}
	return map[string]tagspace.Vault{
		"memory":     NewMemoryVault("test-memory"),
		"filesystem": fsVault,
	}
}

func TestVault_SnapshotRoundTrip(t *testing.T) {
	for name, v := range vaultImpls(t) {
		t.Run(name, func(t *testing.T) {
			data := "sqlite snapshot bytes"
			if err := v.PutSnapshot("host-a", strings.NewReader(data), int64(len(data)), 7); err != nil {
				t.Fatalf("PutSnapshot() error = %v", err)
			}

			var buf bytes.Buffer
			if err := v.GetSnapshot("host-a", &buf); err != nil {
				t.Fatalf("GetSnapshot() error = %v", err)
			}
			if buf.String() != data {
				t.Errorf("GetSnapshot() = %q, want %q", buf.String(), data)
			}

			version, err := v.GetSnapshotVersion("host-a")
			if err != nil {
				t.Fatalf("GetSnapshotVersion() error = %v", err)
			}
			if version != 7 {
				t.Errorf("GetSnapshotVersion() = %d, want 7", version)
			}
		})
	}
}

func TestVault_SnapshotOverwrite(t *testing.T) {
	for name, v := range vaultImpls(t) {
		t.Run(name, func(t *testing.T) {
			for i, data := range []string{"first", "second snapshot"} {
				if err := v.PutSnapshot("host-a", strings.NewReader(data), int64(len(data)), int64(i+1)); err != nil {
					t.Fatalf("PutSnapshot() error = %v", err)
				}
			}

			var buf bytes.Buffer
			if err := v.GetSnapshot("host-a", &buf); err != nil {
				t.Fatalf("GetSnapshot() error = %v", err)
			}
			if buf.String() != "second snapshot" {
				t.Errorf("GetSnapshot() = %q, want latest snapshot", buf.String())
			}
			if version, _ := v.GetSnapshotVersion("host-a"); version != 2 {
				t.Errorf("GetSnapshotVersion() = %d, want 2", version)
			}
		})
	}
}

func TestVault_MissingSnapshot(t *testing.T) {
	for name, v := range vaultImpls(t) {
		t.Run(name, func(t *testing.T) {
			version, err := v.GetSnapshotVersion("nobody")
			if err != nil {
				t.Fatalf("GetSnapshotVersion() error = %v", err)
			}
			if version != 0 {
				t.Errorf("GetSnapshotVersion() = %d, want 0", version)
			}

			err = v.GetSnapshot("nobody", &bytes.Buffer{})
			if !errors.Is(err, ErrSnapshotNotFound) {
				t.Errorf("GetSnapshot() error = %v, want ErrSnapshotNotFound", err)
			}
		})
	}
}

func TestVault_SizeMismatch(t *testing.T) {
	for name, v := range vaultImpls(t) {
		t.Run(name, func(t *testing.T) {
			if err := v.PutSnapshot("host-a", strings.NewReader("short"), 100, 1); err == nil {
				t.Fatal("PutSnapshot() succeeded with wrong size")
			}
			if version, _ := v.GetSnapshotVersion("host-a"); version != 0 {
				t.Errorf("version recorded for a failed upload: %d", version)
			}
		})
	}
}

func TestVault_HostsAreSeparate(t *testing.T) {
	for name, v := range vaultImpls(t) {
		t.Run(name, func(t *testing.T) {
			if err := v.PutSnapshot("host-a", strings.NewReader("a"), 1, 3); err != nil {
				t.Fatalf("PutSnapshot() error = %v", err)
			}
			if version, _ := v.GetSnapshotVersion("host-b"); version != 0 {
				t.Errorf("host-b version = %d, want 0", version)
			}
		})
	}
}

func TestFileSystemVault_ValidateSetup(t *testing.T) {
	root := t.TempDir()
	v, err := NewFileSystemVault("test", root)
	if err != nil {
		t.Fatalf("NewFileSystemVault() error = %v", err)
	}
	if err := v.ValidateSetup(); err != nil {
		t.Errorf("ValidateSetup() error = %v", err)
	}

	v.root = root + "/missing"
	if err := v.ValidateSetup(); err == nil {
		t.Error("ValidateSetup() succeeded for a missing root")
	}
}
