package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"tagspace/internal/database/migrations"
	"tagspace/internal/database/sqlc"
	"tagspace/internal/tagspace"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

// SQLiteDatabase implements tagspace.Database on a single SQLite connection.
type SQLiteDatabase struct {
	store
	db      *sql.DB
	queries *sqlc.Queries
	path    string
}

// NewSQLiteDatabase opens the index at path (or ":memory:") and applies any
// pending migrations.
func NewSQLiteDatabase(path string) (*SQLiteDatabase, error) {
	db, err := OpenConnection(path)
	if err != nil {
		return nil, err
	}
	if err := migrations.MigrateUp(db); err != nil {
		db.Close()
		return nil, err
	}
	return newSQLiteDatabase(db, path), nil
}

// NewSQLiteDatabaseFromDB wraps an existing connection. The caller is
// responsible for configuring and migrating it.
func NewSQLiteDatabaseFromDB(db *sql.DB) *SQLiteDatabase {
	return newSQLiteDatabase(db, "")
}

func newSQLiteDatabase(db *sql.DB, path string) *SQLiteDatabase {
	q := sqlc.New(db)
	return &SQLiteDatabase{
		store:   store{q: q},
		db:      db,
		queries: q,
		path:    path,
	}
}

// OpenConnection opens a SQLite connection with the PRAGMAs the index relies
// on. The pool is limited to one connection: PRAGMAs are per connection and
// an in-memory database exists only on the connection that created it.
func OpenConnection(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
		"PRAGMA synchronous = NORMAL",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to apply %q: %w", p, err)
		}
	}
	return db, nil
}

// InTx runs fn in a transaction, committing when it returns nil.
func (s *SQLiteDatabase) InTx(ctx context.Context, fn func(tagspace.IndexStore) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&store{q: s.queries.WithTx(tx)}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing transaction: %w", err)
	}
	return nil
}

// Scan passes

func (s *SQLiteDatabase) BeginScanPass(ctx context.Context, passID string, full bool, startedAt time.Time) (int64, error) {
	id, err := s.queries.InsertScanPass(ctx, sqlc.InsertScanPassParams{
		PassID:    passID,
		FullScan:  full,
		StartedAt: startedAt,
	})
	if err != nil {
		return 0, fmt.Errorf("creating scan pass: %w", err)
	}
	return id, nil
}

func (s *SQLiteDatabase) FinishScanPass(ctx context.Context, arg sqlc.FinishScanPassParams) error {
	if err := s.queries.FinishScanPass(ctx, arg); err != nil {
		return fmt.Errorf("finishing scan pass: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListScanPasses(ctx context.Context, limit int) ([]*sqlc.ScanPass, error) {
	passes, err := s.queries.GetScanPasses(ctx, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("listing scan passes: %w", err)
	}
	return pointers(passes), nil
}

// Operation history

func (s *SQLiteDatabase) CreateOperation(ctx context.Context, operation, parameters string, startedAt time.Time) (int64, error) {
	id, err := s.queries.InsertOperation(ctx, sqlc.InsertOperationParams{
		Operation:  operation,
		Parameters: parameters,
		StartedAt:  startedAt,
	})
	if err != nil {
		return 0, fmt.Errorf("creating operation: %w", err)
	}
	return id, nil
}

func (s *SQLiteDatabase) FinishOperation(ctx context.Context, id int64, status string, finishedAt time.Time) error {
	err := s.queries.UpdateOperationFinished(ctx, sqlc.UpdateOperationFinishedParams{
		FinishedAt: sql.NullTime{Time: finishedAt, Valid: true},
		Status:     status,
		ID:         id,
	})
	if err != nil {
		return fmt.Errorf("finishing operation: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) ListOperations(ctx context.Context, limit int) ([]*sqlc.Operation, error) {
	ops, err := s.queries.GetOperations(ctx, sqlLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("listing operations: %w", err)
	}
	return pointers(ops), nil
}

func (s *SQLiteDatabase) MaxOperationID(ctx context.Context) (int64, error) {
	id, err := s.queries.GetMaxOperationID(ctx)
	if err != nil {
		return 0, fmt.Errorf("getting max operation ID: %w", err)
	}
	return id, nil
}

// Tag labels. The index only reads these; they are written by whoever
// curates the label set.

func (s *SQLiteDatabase) CreateCategory(ctx context.Context, name, color string) (*sqlc.Category, error) {
	c, err := s.queries.InsertCategory(ctx, sqlc.InsertCategoryParams{Name: name, Color: color})
	if err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}
	return &c, nil
}

func (s *SQLiteDatabase) CreateTag(ctx context.Context, categoryID int64, name, color string) (*sqlc.Tag, error) {
	t, err := s.queries.InsertTag(ctx, sqlc.InsertTagParams{CategoryID: categoryID, Name: name, Color: color})
	if err != nil {
		return nil, fmt.Errorf("creating tag: %w", err)
	}
	return &t, nil
}

// Path returns the database file path (or ":memory:").
func (s *SQLiteDatabase) Path() string {
	return s.path
}

// CheckMigrations verifies the database schema is up-to-date.
func (s *SQLiteDatabase) CheckMigrations() error {
	return migrations.CheckDBMigrationStatus(s.db)
}

// BackupTo writes a consistent copy of the database to destPath using VACUUM INTO.
// destPath must not exist.
func (s *SQLiteDatabase) BackupTo(destPath string) error {
	if _, err := s.db.Exec("VACUUM INTO ?", destPath); err != nil {
		return fmt.Errorf("backing up database: %w", err)
	}
	return nil
}

func (s *SQLiteDatabase) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// sqlLimit maps "no limit" (zero or less) onto SQLite's LIMIT -1.
func sqlLimit(limit int) int64 {
	if limit <= 0 {
		return -1
	}
	return int64(limit)
}

func pointers[T any](rows []T) []*T {
	out := make([]*T, len(rows))
	for i := range rows {
		out[i] = &rows[i]
	}
	return out
}

// one converts a single-row query result, mapping no rows to nil.
func one[T any](row T, err error) (*T, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

var _ tagspace.Database = (*SQLiteDatabase)(nil)
