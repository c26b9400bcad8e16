package testutil

import "tagspace/internal/vault"

// NewTestVault creates an in-memory snapshot vault.
func NewTestVault() *vault.MemoryVault {
	return vault.NewMemoryVault("test-vault")
}
