package encryption

import (
	"fmt"

	"tagspace/internal/config"
	"tagspace/internal/tagspace"
)

// Encryption types accepted in config. An empty type means age.
const (
	TypeAge  = "age"
	TypeTest = "test"
)

// NewEncryptorFromConfig returns the snapshot sealer named by cfg.Type.
// Age needs both key paths up front, since a snapshot sealed without a
// readable private key could never be restored.
func NewEncryptorFromConfig(cfg config.EncryptionConfig) (tagspace.Encryptor, error) {
	switch cfg.Type {
	case TypeAge, "":
		if cfg.PublicKeyPath == "" || cfg.PrivateKeyPath == "" {
			return nil, fmt.Errorf("age encryption needs public_key_path and private_key_path")
		}
		return NewAgeEncryptor(cfg), nil
	case TypeTest:
		return NewTestEncryptor(), nil
	}
	return nil, fmt.Errorf("unknown encryption type: %q", cfg.Type)
}
