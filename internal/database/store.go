package database

import (
	"context"
	"database/sql"
	"fmt"

	"tagspace/internal/database/sqlc"
	"tagspace/internal/tagspace"
)

// store implements tagspace.IndexStore on a set of queries, bound either to
// the connection or to a transaction.
type store struct {
	q *sqlc.Queries
}

var _ tagspace.IndexStore = (*store)(nil)

// File index

func (s *store) FindFileByID(ctx context.Context, id int64) (*sqlc.File, error) {
	f, err := one(s.q.GetFileByID(ctx, id))
	if err != nil {
		return nil, fmt.Errorf("finding file by id: %w", err)
	}
	return f, nil
}

func (s *store) FindFileByPathName(ctx context.Context, path, name string) (*sqlc.File, error) {
	f, err := one(s.q.GetFileByPathName(ctx, sqlc.GetFileByPathNameParams{Path: path, Name: name}))
	if err != nil {
		return nil, fmt.Errorf("finding file by path: %w", err)
	}
	return f, nil
}

func (s *store) FindLiveFileByPathName(ctx context.Context, path, name string) (*sqlc.File, error) {
	f, err := one(s.q.GetLiveFileByPathName(ctx, sqlc.GetLiveFileByPathNameParams{Path: path, Name: name}))
	if err != nil {
		return nil, fmt.Errorf("finding live file by path: %w", err)
	}
	return f, nil
}

func (s *store) FindFileByDeviceInode(ctx context.Context, dev, ino int64, isDir bool, epoch int64) (*sqlc.File, error) {
	f, err := one(s.q.GetFileByDeviceInode(ctx, sqlc.GetFileByDeviceInodeParams{
		Dev:   dev,
		Ino:   ino,
		IsDir: isDir,
		Epoch: sql.NullInt64{Int64: epoch, Valid: true},
	}))
	if err != nil {
		return nil, fmt.Errorf("finding file by device/inode: %w", err)
	}
	return f, nil
}

func (s *store) FindFileBySizeAndChecksum(ctx context.Context, size int64, checksum string, taggedOnly bool, epoch int64) (*sqlc.File, error) {
	f, err := one(s.q.GetFileBySizeAndChecksum(ctx, sqlc.GetFileBySizeAndChecksumParams{
		Size:       size,
		Checksum:   sql.NullString{String: checksum, Valid: true},
		TaggedOnly: taggedOnly,
		Epoch:      sql.NullInt64{Int64: epoch, Valid: true},
	}))
	if err != nil {
		return nil, fmt.Errorf("finding file by checksum: %w", err)
	}
	return f, nil
}

func (s *store) ListFilesBySize(ctx context.Context, size int64, taggedOnly bool) ([]*sqlc.File, error) {
	files, err := s.q.ListFilesBySize(ctx, sqlc.ListFilesBySizeParams{Size: size, TaggedOnly: taggedOnly})
	if err != nil {
		return nil, fmt.Errorf("listing files by size: %w", err)
	}
	return pointers(files), nil
}

func (s *store) InsertFile(ctx context.Context, arg sqlc.InsertFileParams) (*sqlc.File, error) {
	f, err := s.q.InsertFile(ctx, arg)
	if err != nil {
		return nil, fmt.Errorf("inserting file: %w", err)
	}
	return &f, nil
}

func (s *store) ReviveFile(ctx context.Context, arg sqlc.ReviveFileParams) error {
	if err := s.q.ReviveFile(ctx, arg); err != nil {
		return fmt.Errorf("reviving file: %w", err)
	}
	return nil
}

func (s *store) UpdateFileLocation(ctx context.Context, id int64, path, name string) error {
	err := s.q.UpdateFileLocation(ctx, sqlc.UpdateFileLocationParams{Path: path, Name: name, ID: id})
	if err != nil {
		return fmt.Errorf("updating file location: %w", err)
	}
	return nil
}

func (s *store) UpdateFileChecksum(ctx context.Context, id int64, checksum string) error {
	err := s.q.UpdateFileChecksum(ctx, sqlc.UpdateFileChecksumParams{
		Checksum: sql.NullString{String: checksum, Valid: checksum != ""},
		ID:       id,
	})
	if err != nil {
		return fmt.Errorf("updating file checksum: %w", err)
	}
	return nil
}

func (s *store) UpdateFileTags(ctx context.Context, id int64, tags string) error {
	if err := s.q.UpdateFileTags(ctx, sqlc.UpdateFileTagsParams{Tags: tags, ID: id}); err != nil {
		return fmt.Errorf("updating file tags: %w", err)
	}
	return nil
}

func (s *store) TombstoneLiveFiles(ctx context.Context, deleteTime float64, epoch int64) (int64, error) {
	n, err := s.q.TombstoneLiveFiles(ctx, sqlc.TombstoneLiveFilesParams{
		DeleteTime:     sql.NullFloat64{Float64: deleteTime, Valid: true},
		TombstoneEpoch: sql.NullInt64{Int64: epoch, Valid: true},
	})
	if err != nil {
		return 0, fmt.Errorf("tombstoning live files: %w", err)
	}
	return n, nil
}

func (s *store) CountTombstoned(ctx context.Context, epoch int64) (int64, error) {
	n, err := s.q.CountTombstonedInEpoch(ctx, sql.NullInt64{Int64: epoch, Valid: true})
	if err != nil {
		return 0, fmt.Errorf("counting tombstoned files: %w", err)
	}
	return n, nil
}

func (s *store) ListLiveFiles(ctx context.Context, path string, recursive bool) ([]*sqlc.File, error) {
	var files []sqlc.File
	var err error
	if recursive {
		files, err = s.q.ListLiveFilesUnder(ctx, path)
	} else {
		files, err = s.q.ListLiveFilesInPath(ctx, path)
	}
	if err != nil {
		return nil, fmt.Errorf("listing live files: %w", err)
	}
	return pointers(files), nil
}

func (s *store) MoveLiveFilePrefix(ctx context.Context, oldPrefix, newPrefix string) (int64, error) {
	n, err := s.q.MoveLiveFilePrefix(ctx, sqlc.MoveLiveFilePrefixParams{OldPrefix: oldPrefix, NewPrefix: newPrefix})
	if err != nil {
		return 0, fmt.Errorf("moving file prefix: %w", err)
	}
	return n, nil
}

// Checksum cache

func (s *store) FindChecksum(ctx context.Context, arg sqlc.LookupChecksumParams) (*sqlc.Checksum, error) {
	c, err := one(s.q.LookupChecksum(ctx, arg))
	if err != nil {
		return nil, fmt.Errorf("looking up checksum: %w", err)
	}
	return c, nil
}

func (s *store) TouchChecksum(ctx context.Context, id int64, lastUsed float64) error {
	if err := s.q.TouchChecksum(ctx, sqlc.TouchChecksumParams{LastUsed: lastUsed, ID: id}); err != nil {
		return fmt.Errorf("touching checksum: %w", err)
	}
	return nil
}

func (s *store) InsertChecksum(ctx context.Context, arg sqlc.InsertChecksumParams) error {
	if _, err := s.q.InsertChecksum(ctx, arg); err != nil {
		return fmt.Errorf("inserting checksum: %w", err)
	}
	return nil
}

// Sources

func (s *store) ListSources(ctx context.Context) ([]*sqlc.Source, error) {
	sources, err := s.q.ListSources(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}
	return pointers(sources), nil
}

func (s *store) FindSource(ctx context.Context, name string) (*sqlc.Source, error) {
	src, err := one(s.q.GetSource(ctx, name))
	if err != nil {
		return nil, fmt.Errorf("finding source: %w", err)
	}
	return src, nil
}

func (s *store) DeleteAllSources(ctx context.Context) error {
	if err := s.q.DeleteAllSources(ctx); err != nil {
		return fmt.Errorf("deleting sources: %w", err)
	}
	return nil
}

func (s *store) InsertSource(ctx context.Context, name, path string) error {
	if err := s.q.InsertSource(ctx, sqlc.InsertSourceParams{Name: name, Path: path}); err != nil {
		return fmt.Errorf("inserting source: %w", err)
	}
	return nil
}

// Tag labels

func (s *store) ListTagInfo(ctx context.Context) ([]*sqlc.ListTagInfoRow, error) {
	rows, err := s.q.ListTagInfo(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing tags: %w", err)
	}
	return pointers(rows), nil
}

func (s *store) FindCategory(ctx context.Context, name string) (*sqlc.Category, error) {
	c, err := one(s.q.GetCategoryByName(ctx, name))
	if err != nil {
		return nil, fmt.Errorf("finding category: %w", err)
	}
	return c, nil
}
