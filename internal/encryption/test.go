package encryption

import (
	"bytes"
	"fmt"
	"io"

	"tagspace/internal/tagspace"
)

// testMagic marks data "sealed" by TestEncryptor.
var testMagic = []byte("TSPLAIN1")

// TestEncryptor frames data with a fixed marker instead of encrypting it.
// It is deterministic and needs no keys, for tests and the "test" config type.
type TestEncryptor struct {
	passphrase string
}

var _ tagspace.Encryptor = (*TestEncryptor)(nil)

func NewTestEncryptor() *TestEncryptor {
	return &TestEncryptor{}
}

// Setup remembers passphrase; Unlock then rejects any other.
func (e *TestEncryptor) Setup(passphrase string) error {
	e.passphrase = passphrase
	return nil
}

func (e *TestEncryptor) Encrypt(r io.Reader, w io.Writer) error {
	if _, err := w.Write(testMagic); err != nil {
		return fmt.Errorf("writing marker: %w", err)
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}

func (e *TestEncryptor) Unlock(passphrase string) (tagspace.DecryptionContext, error) {
	if e.passphrase != "" && passphrase != e.passphrase {
		return nil, ErrWrongPassphrase
	}
	return testDecryptor{}, nil
}

func (e *TestEncryptor) IsConfigured() bool {
	return true
}

type testDecryptor struct{}

func (testDecryptor) Decrypt(r io.Reader, w io.Writer) error {
	magic := make([]byte, len(testMagic))
	if _, err := io.ReadFull(r, magic); err != nil {
		return fmt.Errorf("reading marker: %w", err)
	}
	if !bytes.Equal(magic, testMagic) {
		return fmt.Errorf("data was not sealed by the test encryptor")
	}
	if _, err := io.Copy(w, r); err != nil {
		return fmt.Errorf("copying data: %w", err)
	}
	return nil
}
