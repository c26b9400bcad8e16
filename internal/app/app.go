package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"tagspace/internal/config"
	"tagspace/internal/database"
	"tagspace/internal/database/sqlc"
	"tagspace/internal/encryption"
	"tagspace/internal/fs"
	"tagspace/internal/hashing"
	"tagspace/internal/tagspace"
	"tagspace/internal/vault"
)

// ErrIndexBehind is returned when the vault holds a snapshot newer than the
// local index.
var ErrIndexBehind = errors.New("local index is behind the vault snapshot")

// IgnoreFileName is the file under the base directory holding extra
// gitignore-style scan patterns, one per line.
const IgnoreFileName = "ignore"

// TagspaceApp is the application layer between the CLI and IndexService.
// It constructs all dependencies from config, records the running command
// and, on Close, snapshots the index to the vault if the command changed it.
type TagspaceApp struct {
	cfg       *config.Config
	db        tagspace.Database
	vault     tagspace.Vault // nil without a configured vault
	encryptor tagspace.Encryptor
	service   *tagspace.IndexService
	clock     tagspace.Clock
	logger    *slog.Logger
	logCloser io.Closer
	op        *Operation
}

// NewTagspaceApp creates a fully wired TagspaceApp from the given config.
// operation names the CLI command being run (e.g. "UpdateIndex", "SetTags").
// The caller must call Close when done.
func NewTagspaceApp(ctx context.Context, cfg *config.Config, operation string) (*TagspaceApp, error) {
	logger, logCloser, err := newLogger(cfg.LogDir, cfg.LogLevel, uuid.NewString())
	if err != nil {
		return nil, fmt.Errorf("creating logger: %w", err)
	}

	a, err := newTagspaceApp(ctx, cfg, operation, logger)
	if err != nil {
		logger.Error("startup failed", "operation", operation, "error", err)
		logCloser.Close()
		return nil, err
	}
	a.logCloser = logCloser
	return a, nil
}

func newTagspaceApp(ctx context.Context, cfg *config.Config, operation string, logger *slog.Logger) (*TagspaceApp, error) {
	var v tagspace.Vault
	if len(cfg.Vaults) > 0 {
		var err error
		v, err = vault.NewVaultFromConfig(ctx, cfg.Vaults[0])
		if err != nil {
			return nil, fmt.Errorf("creating vault: %w", err)
		}
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return nil, fmt.Errorf("creating encryptor: %w", err)
	}

	db, err := database.NewDatabaseFromConfig(cfg.Database, cfg.HostID)
	if err != nil {
		return nil, fmt.Errorf("creating database: %w", err)
	}

	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return nil, fmt.Errorf("database schema out of date: %w", err)
	}

	if cfg.Snapshot.Enabled && v != nil {
		if err := checkSnapshotVersion(ctx, db, v, cfg.HostID); err != nil {
			db.Close()
			return nil, err
		}
	}

	patterns, err := ignorePatterns(cfg)
	if err != nil {
		db.Close()
		return nil, err
	}
	fsmgr := fs.NewOSFilesystemManager(patterns)
	clock := tagspace.RealClock{}
	svc := tagspace.NewIndexService(db, fsmgr, hashing.NewSHA256Hasher(fsmgr), &slogAdapter{l: logger}, clock, tagspace.UUIDGenerator{})
	if cfg.Scan.HashWorkers > 0 {
		svc.SetHashWorkers(cfg.Scan.HashWorkers)
	}

	return &TagspaceApp{
		cfg:       cfg,
		db:        db,
		vault:     v,
		encryptor: enc,
		service:   svc,
		clock:     clock,
		logger:    logger,
		op:        NewOperation(operation, ""),
	}, nil
}

// ignorePatterns returns the configured scan.ignore patterns followed by
// the lines of BaseDir/ignore, so the file can re-include with "!".
func ignorePatterns(cfg *config.Config) ([]string, error) {
	lines, err := fs.ParseIgnoreFile(filepath.Join(cfg.BaseDir, IgnoreFileName))
	if err != nil {
		return nil, err
	}
	return append(append([]string{}, cfg.Scan.Ignore...), lines...), nil
}

// checkSnapshotVersion refuses a local index older than the host's snapshot.
func checkSnapshotVersion(ctx context.Context, db tagspace.Database, v tagspace.Vault, hostID string) error {
	remote, err := v.GetSnapshotVersion(hostID)
	if err != nil {
		return fmt.Errorf("checking remote snapshot version: %w", err)
	}
	local, err := db.MaxOperationID(ctx)
	if err != nil {
		return fmt.Errorf("checking local index version: %w", err)
	}
	if remote > local {
		return fmt.Errorf("%w (local=%d, remote=%d): run 'tagspace snapshot pull'", ErrIndexBehind, local, remote)
	}
	return nil
}

// persistOperation records the running command in the index, giving it an
// id. Only commands that change the index call it.
func (a *TagspaceApp) persistOperation(ctx context.Context, params ...string) error {
	if a.op.Persisted() {
		return nil
	}
	a.op.Parameters = strings.Join(params, " ")
	id, err := a.db.CreateOperation(ctx, a.op.Operation, a.op.Parameters, a.clock.Now())
	if err != nil {
		return fmt.Errorf("persisting operation: %w", err)
	}
	a.op.ID = id
	a.logger.Info("operation started", "id", id, "operation", a.op.Operation, "parameters", a.op.Parameters)
	return nil
}

// Fail marks the running command as failed when err is non-nil.
func (a *TagspaceApp) Fail(err error) {
	a.op.Fail(err)
}

// ListFiles lists live entries under a virtual path.
func (a *TagspaceApp) ListFiles(ctx context.Context, path, expr string, recursive bool, limit int) ([]*tagspace.Entry, error) {
	return a.service.ListFiles(ctx, path, expr, recursive, limit)
}

func (a *TagspaceApp) SetTags(ctx context.Context, id int64, tags []string) error {
	if err := a.persistOperation(ctx, strconv.FormatInt(id, 10), strings.Join(tags, " ")); err != nil {
		return err
	}
	err := a.service.SetTags(ctx, id, tags)
	a.op.Fail(err)
	return err
}

func (a *TagspaceApp) ChangeTags(ctx context.Context, id int64, adds, removes []string) error {
	params := []string{strconv.FormatInt(id, 10)}
	for _, t := range adds {
		params = append(params, "+"+t)
	}
	for _, t := range removes {
		params = append(params, "-"+t)
	}
	if err := a.persistOperation(ctx, params...); err != nil {
		return err
	}
	err := a.service.ChangeTags(ctx, id, adds, removes)
	a.op.Fail(err)
	return err
}

// Translate maps a virtual path to a real one.
func (a *TagspaceApp) Translate(ctx context.Context, virtualPath string) (string, error) {
	return a.service.Translate(ctx, virtualPath)
}

// Checksum returns the content digest of a real file, reusing the checksum
// cache when the file is unchanged.
func (a *TagspaceApp) Checksum(ctx context.Context, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("resolving %s: %w", path, err)
	}
	return a.service.Compute(ctx, abs)
}

func (a *TagspaceApp) ListSources(ctx context.Context) ([]*sqlc.Source, error) {
	return a.service.ListSources(ctx)
}

// ReplaceSources swaps the registered sources for the given definition lines.
func (a *TagspaceApp) ReplaceSources(ctx context.Context, lines []string) error {
	if err := a.persistOperation(ctx, strconv.Itoa(len(lines))+" lines"); err != nil {
		return err
	}
	err := a.service.ReplaceSources(ctx, lines)
	a.op.Fail(err)
	return err
}

// UpdateIndex runs one scan pass, reporting to progress when it is non-nil.
func (a *TagspaceApp) UpdateIndex(ctx context.Context, full bool, progress tagspace.Progress) (*tagspace.ScanStats, error) {
	params := "incremental"
	if full {
		params = "full"
	}
	if err := a.persistOperation(ctx, params); err != nil {
		return nil, err
	}
	a.service.SetProgress(progress)
	stats, err := a.service.UpdateIndex(ctx, full)
	a.op.Fail(err)
	return stats, err
}

// MoveEntry renames or relocates an entry within the index. An empty
// newName keeps the entry's current name.
func (a *TagspaceApp) MoveEntry(ctx context.Context, id int64, newPath, newName string) (*tagspace.Entry, error) {
	if newName == "" {
		e, err := a.service.GetEntry(ctx, id)
		if err != nil {
			return nil, err
		}
		newName = e.Name
	}
	if err := a.persistOperation(ctx, strconv.FormatInt(id, 10), newPath, newName); err != nil {
		return nil, err
	}
	e, err := a.service.MoveEntry(ctx, id, newPath, newName)
	a.op.Fail(err)
	return e, err
}

// GetHistory returns the most recent operations.
func (a *TagspaceApp) GetHistory(ctx context.Context, limit int) ([]*sqlc.Operation, error) {
	return a.service.GetHistory(ctx, limit)
}

// GetScanPasses returns the most recent scan passes.
func (a *TagspaceApp) GetScanPasses(ctx context.Context, limit int) ([]*sqlc.ScanPass, error) {
	return a.service.GetScanPasses(ctx, limit)
}

// TagRenderer returns a renderer loaded with the index's tag colors.
func (a *TagspaceApp) TagRenderer(ctx context.Context, enabled bool) (*TagRenderer, error) {
	if !enabled {
		return NewTagRenderer(nil, "", a.logger, false), nil
	}
	colors, def, err := a.service.TagColors(ctx)
	if err != nil {
		return nil, err
	}
	return NewTagRenderer(colors, def, a.logger, true), nil
}

// PushSnapshot uploads the index to the vault now, versioned by the newest
// operation it contains.
func (a *TagspaceApp) PushSnapshot(ctx context.Context) (int64, error) {
	if a.vault == nil {
		return 0, fmt.Errorf("no vault configured")
	}
	version, err := a.db.MaxOperationID(ctx)
	if err != nil {
		return 0, err
	}

	dir, err := os.MkdirTemp("", "tagspace-snapshot-*")
	if err != nil {
		return 0, fmt.Errorf("creating temp dir for snapshot: %w", err)
	}
	defer os.RemoveAll(dir)

	path := filepath.Join(dir, "index.db")
	if err := a.db.BackupTo(path); err != nil {
		return 0, err
	}
	if err := a.uploadSnapshot(path, version); err != nil {
		return 0, err
	}
	return version, nil
}

// Close finalizes the operation and closes all resources.
// For persisted operations: finishes the operation record, snapshots the
// index and uploads it when snapshots are enabled.
// For read-only commands: just closes the database.
func (a *TagspaceApp) Close() error {
	var errs []error
	ctx := context.Background()

	var snapshotDir, snapshotPath string
	if a.op.Persisted() {
		if err := a.db.FinishOperation(ctx, a.op.ID, a.op.Status, a.clock.Now()); err != nil {
			errs = append(errs, fmt.Errorf("finishing operation: %w", err))
		}

		if a.cfg.Snapshot.Enabled && a.vault != nil {
			dir, err := os.MkdirTemp("", "tagspace-snapshot-*")
			if err != nil {
				errs = append(errs, fmt.Errorf("creating temp dir for snapshot: %w", err))
			} else {
				snapshotDir = dir
				snapshotPath = filepath.Join(dir, "index.db")
				if err := a.db.BackupTo(snapshotPath); err != nil {
					errs = append(errs, err)
					snapshotPath = ""
				}
			}
		}
	}

	if err := a.db.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing database: %w", err))
	}

	if snapshotPath != "" {
		if err := a.uploadSnapshot(snapshotPath, a.op.ID); err != nil {
			errs = append(errs, err)
		}
	}
	if snapshotDir != "" {
		os.RemoveAll(snapshotDir)
	}

	if len(errs) > 0 {
		a.logger.Error("close failed", "operation", a.op.Operation, "error", errors.Join(errs...))
	}
	if a.logCloser != nil {
		a.logCloser.Close()
	}
	return errors.Join(errs...)
}

// uploadSnapshot sends the database copy at path to the vault, sealing it
// first when configured to.
func (a *TagspaceApp) uploadSnapshot(path string, version int64) error {
	if a.cfg.Snapshot.Encrypt {
		sealed := path + ".age"
		if err := a.sealFile(path, sealed); err != nil {
			return err
		}
		path = sealed
	}

	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening snapshot for upload: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return fmt.Errorf("stat snapshot: %w", err)
	}

	if err := a.vault.PutSnapshot(a.cfg.HostID, f, info.Size(), version); err != nil {
		return fmt.Errorf("uploading snapshot to vault: %w", err)
	}
	a.logger.Info("snapshot uploaded", "version", version, "size", info.Size(), "encrypted", a.cfg.Snapshot.Encrypt)
	return nil
}

func (a *TagspaceApp) sealFile(src, dst string) error {
	if !a.encryptor.IsConfigured() {
		return fmt.Errorf("snapshot encryption enabled but no keys configured: run 'tagspace config keys init'")
	}
	in, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("opening snapshot: %w", err)
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return fmt.Errorf("creating sealed snapshot: %w", err)
	}
	if err := a.encryptor.Encrypt(in, out); err != nil {
		out.Close()
		return fmt.Errorf("encrypting snapshot: %w", err)
	}
	return out.Close()
}

// InitKeys generates the snapshot key pair named in cfg.
func InitKeys(cfg *config.Config, passphrase string) error {
	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	return enc.Setup(passphrase)
}

// RestoreSnapshot replaces the local sqlite index with the host's snapshot
// from the first vault and returns the snapshot's version. passphrase is
// only used when snapshots are encrypted.
func RestoreSnapshot(ctx context.Context, cfg *config.Config, passphrase string) (int64, error) {
	if cfg.Database.Type != "sqlite" {
		return 0, fmt.Errorf("snapshot restore needs a sqlite database, not %q", cfg.Database.Type)
	}
	if len(cfg.Vaults) == 0 {
		return 0, fmt.Errorf("no vault configured")
	}
	v, err := vault.NewVaultFromConfig(ctx, cfg.Vaults[0])
	if err != nil {
		return 0, fmt.Errorf("creating vault: %w", err)
	}

	version, err := v.GetSnapshotVersion(cfg.HostID)
	if err != nil {
		return 0, fmt.Errorf("checking remote snapshot version: %w", err)
	}
	if version == 0 {
		return 0, fmt.Errorf("host %s: %w", cfg.HostID, vault.ErrSnapshotNotFound)
	}

	if err := os.MkdirAll(cfg.Database.DataDir, 0o755); err != nil {
		return 0, fmt.Errorf("creating data dir: %w", err)
	}
	// The download lands next to the index so the final rename stays on one filesystem.
	dir, err := os.MkdirTemp(cfg.Database.DataDir, ".restore-*")
	if err != nil {
		return 0, fmt.Errorf("creating restore dir: %w", err)
	}
	defer os.RemoveAll(dir)

	restored := filepath.Join(dir, "index.db")
	if err := downloadSnapshot(v, cfg, passphrase, restored); err != nil {
		return 0, err
	}

	db, err := database.NewSQLiteDatabase(restored)
	if err != nil {
		return 0, fmt.Errorf("opening restored snapshot: %w", err)
	}
	if err := db.CheckMigrations(); err != nil {
		db.Close()
		return 0, fmt.Errorf("restored snapshot schema: %w", err)
	}
	if err := db.Close(); err != nil {
		return 0, fmt.Errorf("closing restored snapshot: %w", err)
	}

	dest := database.SQLitePath(cfg.Database, cfg.HostID)
	for _, suffix := range []string{"-wal", "-shm"} {
		if err := os.Remove(dest + suffix); err != nil && !errors.Is(err, os.ErrNotExist) {
			return 0, fmt.Errorf("removing stale %s file: %w", suffix, err)
		}
	}
	if err := os.Rename(restored, dest); err != nil {
		return 0, fmt.Errorf("installing restored index: %w", err)
	}
	return version, nil
}

func downloadSnapshot(v tagspace.Vault, cfg *config.Config, passphrase, dest string) error {
	raw := dest
	if cfg.Snapshot.Encrypt {
		raw = dest + ".age"
	}

	f, err := os.Create(raw)
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}
	if err := v.GetSnapshot(cfg.HostID, f); err != nil {
		f.Close()
		return fmt.Errorf("downloading snapshot: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}
	if !cfg.Snapshot.Encrypt {
		return nil
	}

	enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
	if err != nil {
		return fmt.Errorf("creating encryptor: %w", err)
	}
	dc, err := enc.Unlock(passphrase)
	if err != nil {
		return fmt.Errorf("unlocking snapshot key: %w", err)
	}

	in, err := os.Open(raw)
	if err != nil {
		return fmt.Errorf("opening sealed snapshot: %w", err)
	}
	defer in.Close()
	out, err := os.Create(dest)
	if err != nil {
		return fmt.Errorf("creating snapshot file: %w", err)
	}
	if err := dc.Decrypt(in, out); err != nil {
		out.Close()
		return fmt.Errorf("decrypting snapshot: %w", err)
	}
	return out.Close()
}
