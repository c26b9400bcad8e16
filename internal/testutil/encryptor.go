package testutil

import (
	"tagspace/internal/encryption"
	"tagspace/internal/tagspace"
)

// NewTestEncryptor returns a keyless encryptor that frames data instead of
// sealing it.
func NewTestEncryptor() tagspace.Encryptor {
	return encryption.NewTestEncryptor()
}
