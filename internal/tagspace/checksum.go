package tagspace

import (
	"context"
	"fmt"

	"tagspace/internal/database/sqlc"
)

// cachedChecksum consults the checksum cache without hashing. A hit is
// touched so its last_used reflects this pass.
func (s *IndexService) cachedChecksum(ctx context.Context, store IndexStore, realPath string, st *FileStat) (string, error) {
	row, err := store.FindChecksum(ctx, sqlc.LookupChecksumParams{
		Size:  st.Size,
		Mtime: st.Mtime,
		Path:  realPath,
		Dev:   st.Dev,
		Ino:   st.Ino,
	})
	if err != nil {
		return "", fmt.Errorf("looking up checksum: %w", err)
	}
	if row == nil {
		return "", nil
	}
	if err := store.TouchChecksum(ctx, row.ID, UnixSeconds(s.clock.Now())); err != nil {
		return "", fmt.Errorf("touching checksum: %w", err)
	}
	return row.Checksum, nil
}

func (s *IndexService) storeChecksum(ctx context.Context, store IndexStore, realPath string, st *FileStat, digest string) error {
	err := store.InsertChecksum(ctx, sqlc.InsertChecksumParams{
		Path:     realPath,
		Size:     st.Size,
		Mtime:    st.Mtime,
		Dev:      st.Dev,
		Ino:      st.Ino,
		Checksum: digest,
		LastUsed: UnixSeconds(s.clock.Now()),
	})
	if err != nil {
		return fmt.Errorf("storing checksum: %w", err)
	}
	return nil
}

// Compute returns the digest of a file, hashing only on a cache miss.
func (s *IndexService) Compute(ctx context.Context, realPath string) (string, error) {
	st, err := s.fsmgr.Stat(realPath)
	if err != nil {
		return "", &StatError{Path: realPath, Err: err}
	}
	if !st.IsRegular() {
		return "", fmt.Errorf("not a regular file: %s", realPath)
	}

	digest, err := s.cachedChecksum(ctx, s.database, realPath, st)
	if err != nil || digest != "" {
		return digest, err
	}

	digest, err = s.hasher.Hash(ctx, realPath, st, nil)
	if err != nil {
		return "", &ReadError{Path: realPath, Err: err}
	}
	if err := s.storeChecksum(ctx, s.database, realPath, st, digest); err != nil {
		return "", err
	}
	return digest, nil
}
