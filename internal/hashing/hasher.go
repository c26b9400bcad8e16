// Package hashing computes SHA-256 content digests for the index.
package hashing

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"

	"tagspace/internal/tagspace"
)

// SHA256Hasher streams files through SHA-256, reporting bytes as it goes.
// A file whose stat changes while it is being read is rejected so a torn
// digest never reaches the index.
type SHA256Hasher struct {
	fsmgr tagspace.FilesystemManager
}

var _ tagspace.Hasher = (*SHA256Hasher)(nil)

func NewSHA256Hasher(fsmgr tagspace.FilesystemManager) *SHA256Hasher {
	return &SHA256Hasher{fsmgr: fsmgr}
}

// Hash returns the lowercase hex digest of the file at realPath.
func (h *SHA256Hasher) Hash(ctx context.Context, realPath string, expect *tagspace.FileStat, progress func(int64)) (string, error) {
	r, err := h.fsmgr.Open(realPath)
	if err != nil {
		return "", fmt.Errorf("opening file: %w", err)
	}

	sum := sha256.New()
	_, err = io.Copy(sum, &progressReader{ctx: ctx, r: r, progress: progress})
	r.Close()
	if err != nil {
		return "", fmt.Errorf("reading file: %w", err)
	}

	if expect != nil {
		after, err := h.fsmgr.Stat(realPath)
		if err != nil {
			return "", fmt.Errorf("re-stat file: %w", err)
		}
		if err := validateStatUnchanged(expect, after); err != nil {
			return "", fmt.Errorf("file changed while hashing: %w", err)
		}
	}

	return hex.EncodeToString(sum.Sum(nil)), nil
}

// progressReader reports bytes read and stops once ctx is cancelled.
type progressReader struct {
	ctx      context.Context
	r        io.Reader
	progress func(int64)
}

func (p *progressReader) Read(b []byte) (int, error) {
	if err := p.ctx.Err(); err != nil {
		return 0, err
	}
	n, err := p.r.Read(b)
	if n > 0 && p.progress != nil {
		p.progress(int64(n))
	}
	return n, err
}

func validateStatUnchanged(before, after *tagspace.FileStat) error {
	if before.Size != after.Size {
		return fmt.Errorf("size changed: %d -> %d", before.Size, after.Size)
	}
	if before.Mtime != after.Mtime {
		return fmt.Errorf("mtime changed: %v -> %v", before.Mtime, after.Mtime)
	}
	if before.Dev != after.Dev || before.Ino != after.Ino {
		return fmt.Errorf("identity changed: %d:%d -> %d:%d", before.Dev, before.Ino, after.Dev, after.Ino)
	}
	return nil
}
