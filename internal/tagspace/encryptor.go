package tagspace

import "io"

// Encryptor seals index snapshots before they leave the host. Sealing needs
// only the public key; opening needs the passphrase-protected private key.
type Encryptor interface {
	// Setup generates the key pair, protecting the private key with passphrase.
	Setup(passphrase string) error

	Encrypt(r io.Reader, w io.Writer) error

	// Unlock returns a DecryptionContext, or an error for a wrong passphrase.
	Unlock(passphrase string) (DecryptionContext, error)

	IsConfigured() bool
}

// DecryptionContext holds an unlocked private key in memory only.
type DecryptionContext interface {
	Decrypt(r io.Reader, w io.Writer) error
}
