package tagspace

import (
	"context"
	"time"

	"tagspace/internal/database/sqlc"
)

// IndexStore holds the index operations that may run inside a transaction.
// Finders return nil, nil when nothing matches.
type IndexStore interface {
	// File index

	FindFileByID(ctx context.Context, id int64) (*sqlc.File, error)

	// FindFileByPathName prefers the live row, then the most recent one.
	FindFileByPathName(ctx context.Context, path, name string) (*sqlc.File, error)

	FindLiveFileByPathName(ctx context.Context, path, name string) (*sqlc.File, error)

	// FindFileByDeviceInode prefers rows tombstoned by epoch, then live rows,
	// then older tombstones.
	FindFileByDeviceInode(ctx context.Context, dev, ino int64, isDir bool, epoch int64) (*sqlc.File, error)

	// FindFileBySizeAndChecksum uses the same preference as FindFileByDeviceInode.
	// With taggedOnly, rows without tags are left out.
	FindFileBySizeAndChecksum(ctx context.Context, size int64, checksum string, taggedOnly bool, epoch int64) (*sqlc.File, error)

	// ListFilesBySize returns regular-file rows of the given size, live or not.
	// With taggedOnly, rows without tags are left out.
	ListFilesBySize(ctx context.Context, size int64, taggedOnly bool) ([]*sqlc.File, error)

	InsertFile(ctx context.Context, arg sqlc.InsertFileParams) (*sqlc.File, error)

	// ReviveFile rewrites a row's location and stat and clears its tombstone.
	ReviveFile(ctx context.Context, arg sqlc.ReviveFileParams) error

	UpdateFileLocation(ctx context.Context, id int64, path, name string) error
	UpdateFileChecksum(ctx context.Context, id int64, checksum string) error
	UpdateFileTags(ctx context.Context, id int64, tags string) error

	// TombstoneLiveFiles stamps every live row with deleteTime and epoch.
	TombstoneLiveFiles(ctx context.Context, deleteTime float64, epoch int64) (int64, error)

	// CountTombstoned counts rows still carrying the tombstone of epoch.
	CountTombstoned(ctx context.Context, epoch int64) (int64, error)

	// ListLiveFiles returns live rows at path, or at and below it when
	// recursive, ordered by path then name.
	ListLiveFiles(ctx context.Context, path string, recursive bool) ([]*sqlc.File, error)

	// MoveLiveFilePrefix rewrites the path of every live row at or below oldPrefix.
	MoveLiveFilePrefix(ctx context.Context, oldPrefix, newPrefix string) (int64, error)

	// Checksum cache

	FindChecksum(ctx context.Context, arg sqlc.LookupChecksumParams) (*sqlc.Checksum, error)
	TouchChecksum(ctx context.Context, id int64, lastUsed float64) error
	InsertChecksum(ctx context.Context, arg sqlc.InsertChecksumParams) error

	// Sources

	ListSources(ctx context.Context) ([]*sqlc.Source, error)
	FindSource(ctx context.Context, name string) (*sqlc.Source, error)
	DeleteAllSources(ctx context.Context) error
	InsertSource(ctx context.Context, name, path string) error

	// Tag labels (read-only)

	ListTagInfo(ctx context.Context) ([]*sqlc.ListTagInfoRow, error)
	FindCategory(ctx context.Context, name string) (*sqlc.Category, error)
}

// Database is the persistent index. Methods called on Database directly run
// outside any transaction and must not be used while an InTx callback is
// running: the connection is single and shared.
type Database interface {
	IndexStore

	// InTx runs fn in one transaction, committing when fn returns nil.
	InTx(ctx context.Context, fn func(IndexStore) error) error

	// Scan passes

	// BeginScanPass records a running pass and returns its epoch.
	BeginScanPass(ctx context.Context, passID string, full bool, startedAt time.Time) (int64, error)
	FinishScanPass(ctx context.Context, arg sqlc.FinishScanPassParams) error
	ListScanPasses(ctx context.Context, limit int) ([]*sqlc.ScanPass, error)

	// Operation history

	CreateOperation(ctx context.Context, operation, parameters string, startedAt time.Time) (int64, error)
	FinishOperation(ctx context.Context, id int64, status string, finishedAt time.Time) error
	ListOperations(ctx context.Context, limit int) ([]*sqlc.Operation, error)
	MaxOperationID(ctx context.Context) (int64, error)

	// CheckMigrations verifies the schema is current.
	CheckMigrations() error

	// BackupTo writes a consistent copy of the index to destPath.
	BackupTo(destPath string) error

	Close() error
}
