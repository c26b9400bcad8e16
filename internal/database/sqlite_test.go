package database

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"tagspace/internal/database/sqlc"
	"tagspace/internal/tagspace"
)

// newTestDB creates a migrated in-memory database.
func newTestDB(t *testing.T) *SQLiteDatabase {
	t.Helper()

	db, err := NewSQLiteDatabase(":memory:")
	if err != nil {
		t.Fatalf("failed to create database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func insertFile(t *testing.T, db *SQLiteDatabase, arg sqlc.InsertFileParams) *sqlc.File {
	t.Helper()
	f, err := db.InsertFile(context.Background(), arg)
	if err != nil {
		t.Fatalf("InsertFile() error = %v", err)
	}
	return f
}

func tombstone(t *testing.T, db *SQLiteDatabase, epoch int64) {
	t.Helper()
	if _, err := db.TombstoneLiveFiles(context.Background(), 100, epoch); err != nil {
		t.Fatalf("TombstoneLiveFiles() error = %v", err)
	}
}

func TestSQLiteDatabase_FindFileByPathName(t *testing.T) {
	ctx := context.Background()

	t.Run("returns nil when not found", func(t *testing.T) {
		db := newTestDB(t)
		f, err := db.FindFileByPathName(ctx, "src", "missing")
		if err != nil {
			t.Fatalf("FindFileByPathName() error = %v", err)
		}
		if f != nil {
			t.Errorf("FindFileByPathName() = %v, want nil", f)
		}
	})

	t.Run("prefers live row over newer tombstone", func(t *testing.T) {
		db := newTestDB(t)
		live := insertFile(t, db, sqlc.InsertFileParams{Path: "src", Name: "a"})
		newer := insertFile(t, db, sqlc.InsertFileParams{Path: "src", Name: "b"})
		tombstone(t, db, 1)
		if err := db.ReviveFile(ctx, sqlc.ReviveFileParams{Path: "src", Name: "a", ID: live.ID}); err != nil {
			t.Fatal(err)
		}
		if err := db.UpdateFileLocation(ctx, newer.ID, "src", "a"); err != nil {
			t.Fatal(err)
		}

		got, err := db.FindFileByPathName(ctx, "src", "a")
		if err != nil {
			t.Fatalf("FindFileByPathName() error = %v", err)
		}
		if got.ID != live.ID {
			t.Errorf("FindFileByPathName() id = %d, want live row %d", got.ID, live.ID)
		}
	})

	t.Run("falls back to most recent tombstone", func(t *testing.T) {
		db := newTestDB(t)
		insertFile(t, db, sqlc.InsertFileParams{Path: "src", Name: "a"})
		tombstone(t, db, 1)
		second := insertFile(t, db, sqlc.InsertFileParams{Path: "src", Name: "a"})
		tombstone(t, db, 2)

		got, err := db.FindFileByPathName(ctx, "src", "a")
		if err != nil {
			t.Fatalf("FindFileByPathName() error = %v", err)
		}
		if got.ID != second.ID {
			t.Errorf("FindFileByPathName() id = %d, want %d", got.ID, second.ID)
		}
	})
}

func TestSQLiteDatabase_FindFileByDeviceInode(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	insertFile(t, db, sqlc.InsertFileParams{Path: "src", Name: "old", Dev: 1, Ino: 9})
	tombstone(t, db, 1)
	current := insertFile(t, db, sqlc.InsertFileParams{Path: "src", Name: "cur", Dev: 1, Ino: 9})
	tombstone(t, db, 2)
	live := insertFile(t, db, sqlc.InsertFileParams{Path: "src", Name: "live", Dev: 1, Ino: 9})

	tests := []struct {
		name  string
		epoch int64
		isDir bool
		want  int64
	}{
		{"current epoch tombstone first", 2, false, current.ID},
		{"live before older tombstones", 3, false, live.ID},
		{"kind must match", 2, true, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := db.FindFileByDeviceInode(ctx, 1, 9, tt.isDir, tt.epoch)
			if err != nil {
				t.Fatalf("FindFileByDeviceInode() error = %v", err)
			}
			var id int64
			if got != nil {
				id = got.ID
			}
			if id != tt.want {
				t.Errorf("FindFileByDeviceInode() id = %d, want %d", id, tt.want)
			}
		})
	}
}

func TestSQLiteDatabase_FindFileBySizeAndChecksum(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	sum := sql.NullString{String: "abc", Valid: true}
	insertFile(t, db, sqlc.InsertFileParams{Path: "src", Name: "dir", Size: 3, Checksum: sum, IsDir: true})
	f := insertFile(t, db, sqlc.InsertFileParams{Path: "src", Name: "f", Size: 3, Checksum: sum})

	got, err := db.FindFileBySizeAndChecksum(ctx, 3, "abc", false, 1)
	if err != nil {
		t.Fatalf("FindFileBySizeAndChecksum() error = %v", err)
	}
	if got == nil || got.ID != f.ID {
		t.Errorf("FindFileBySizeAndChecksum() = %v, want file row %d", got, f.ID)
	}

	got, err = db.FindFileBySizeAndChecksum(ctx, 4, "abc", false, 1)
	if err != nil {
		t.Fatalf("FindFileBySizeAndChecksum() error = %v", err)
	}
	if got != nil {
		t.Errorf("FindFileBySizeAndChecksum() with other size = %v, want nil", got)
	}

	got, err = db.FindFileBySizeAndChecksum(ctx, 3, "abc", true, 1)
	if err != nil {
		t.Fatalf("FindFileBySizeAndChecksum() error = %v", err)
	}
	if got != nil {
		t.Errorf("FindFileBySizeAndChecksum() tagged only = %v, want nil", got)
	}

	tagged := insertFile(t, db, sqlc.InsertFileParams{Path: "src", Name: "g", Size: 3, Checksum: sum, Tags: "beach"})
	got, err = db.FindFileBySizeAndChecksum(ctx, 3, "abc", true, 1)
	if err != nil {
		t.Fatalf("FindFileBySizeAndChecksum() error = %v", err)
	}
	if got == nil || got.ID != tagged.ID {
		t.Errorf("FindFileBySizeAndChecksum() tagged only = %v, want file row %d", got, tagged.ID)
	}
}

func TestSQLiteDatabase_ListFilesBySize(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	insertFile(t, db, sqlc.InsertFileParams{Path: "src", Name: "plain", Size: 10})
	insertFile(t, db, sqlc.InsertFileParams{Path: "src", Name: "tagged", Size: 10, Tags: "x"})
	insertFile(t, db, sqlc.InsertFileParams{Path: "src", Name: "other", Size: 11, Tags: "x"})

	all, err := db.ListFilesBySize(ctx, 10, false)
	if err != nil {
		t.Fatalf("ListFilesBySize() error = %v", err)
	}
	if len(all) != 2 {
		t.Errorf("ListFilesBySize(all) = %d rows, want 2", len(all))
	}

	tagged, err := db.ListFilesBySize(ctx, 10, true)
	if err != nil {
		t.Fatalf("ListFilesBySize() error = %v", err)
	}
	if len(tagged) != 1 || tagged[0].Name != "tagged" {
		t.Errorf("ListFilesBySize(tagged) = %v, want only tagged", tagged)
	}
}

func TestSQLiteDatabase_ListLiveFiles(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	for _, f := range []sqlc.InsertFileParams{
		{Path: "", Name: "a", IsDir: true},
		{Path: "", Name: "ab", IsDir: true},
		{Path: "a", Name: "x"},
		{Path: "a/sub", Name: "y"},
		{Path: "ab", Name: "z"},
	} {
		insertFile(t, db, f)
	}

	names := func(rows []*sqlc.File) []string {
		var out []string
		for _, r := range rows {
			out = append(out, tagspace.JoinVirtual(r.Path, r.Name))
		}
		return out
	}

	tests := []struct {
		name      string
		path      string
		recursive bool
		want      []string
	}{
		{"top level", "", false, []string{"a", "ab"}},
		{"everything", "", true, []string{"a", "ab", "a/x", "a/sub/y", "ab/z"}},
		{"recursive stops at segment boundary", "a", true, []string{"a/x", "a/sub/y"}},
		{"direct children only", "a", false, []string{"a/x"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := db.ListLiveFiles(ctx, tt.path, tt.recursive)
			if err != nil {
				t.Fatalf("ListLiveFiles() error = %v", err)
			}
			got := names(rows)
			if len(got) != len(tt.want) {
				t.Fatalf("ListLiveFiles() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ListLiveFiles()[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestSQLiteDatabase_MoveLiveFilePrefix(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	insertFile(t, db, sqlc.InsertFileParams{Path: "src/a", Name: "x"})
	insertFile(t, db, sqlc.InsertFileParams{Path: "src/a/deep", Name: "y"})
	sibling := insertFile(t, db, sqlc.InsertFileParams{Path: "src/ab", Name: "z"})

	n, err := db.MoveLiveFilePrefix(ctx, "src/a", "src/b")
	if err != nil {
		t.Fatalf("MoveLiveFilePrefix() error = %v", err)
	}
	if n != 2 {
		t.Errorf("MoveLiveFilePrefix() moved %d rows, want 2", n)
	}

	moved, err := db.FindLiveFileByPathName(ctx, "src/b/deep", "y")
	if err != nil || moved == nil {
		t.Fatalf("FindLiveFileByPathName(src/b/deep, y) = %v, %v", moved, err)
	}
	got, err := db.FindFileByID(ctx, sibling.ID)
	if err != nil {
		t.Fatal(err)
	}
	if got.Path != "src/ab" {
		t.Errorf("sibling path = %q, want unchanged src/ab", got.Path)
	}
}

func TestSQLiteDatabase_Checksums(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	err := db.InsertChecksum(ctx, sqlc.InsertChecksumParams{
		Path: "/data/a", Size: 5, Mtime: 1.5, Dev: 7, Ino: 8, Checksum: "h1", LastUsed: 1,
	})
	if err != nil {
		t.Fatalf("InsertChecksum() error = %v", err)
	}

	tests := []struct {
		name string
		arg  sqlc.LookupChecksumParams
		want string
	}{
		{"same path", sqlc.LookupChecksumParams{Size: 5, Mtime: 1.5, Path: "/data/a"}, "h1"},
		{"same identity elsewhere", sqlc.LookupChecksumParams{Size: 5, Mtime: 1.5, Path: "/data/b", Dev: 7, Ino: 8}, "h1"},
		{"zero identity never matches by inode", sqlc.LookupChecksumParams{Size: 5, Mtime: 1.5, Path: "/data/b"}, ""},
		{"mtime differs", sqlc.LookupChecksumParams{Size: 5, Mtime: 2, Path: "/data/a"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := db.FindChecksum(ctx, tt.arg)
			if err != nil {
				t.Fatalf("FindChecksum() error = %v", err)
			}
			var got string
			if c != nil {
				got = c.Checksum
			}
			if got != tt.want {
				t.Errorf("FindChecksum() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestSQLiteDatabase_InTx(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	boom := errors.New("boom")
	err := db.InTx(ctx, func(tx tagspace.IndexStore) error {
		if err := tx.InsertSource(ctx, "src", "/data"); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("InTx() error = %v, want boom", err)
	}

	src, err := db.FindSource(ctx, "src")
	if err != nil {
		t.Fatal(err)
	}
	if src != nil {
		t.Error("InTx() committed despite error")
	}

	err = db.InTx(ctx, func(tx tagspace.IndexStore) error {
		return tx.InsertSource(ctx, "src", "/data")
	})
	if err != nil {
		t.Fatalf("InTx() error = %v", err)
	}
	if src, _ := db.FindSource(ctx, "src"); src == nil || src.Path != "/data" {
		t.Errorf("FindSource() = %v, want committed source", src)
	}
}

func TestSQLiteDatabase_Operations(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	maxID, err := db.MaxOperationID(ctx)
	if err != nil {
		t.Fatalf("MaxOperationID() error = %v", err)
	}
	if maxID != 0 {
		t.Errorf("MaxOperationID() = %d, want 0", maxID)
	}

	start := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	id, err := db.CreateOperation(ctx, "update", "--full", start)
	if err != nil {
		t.Fatalf("CreateOperation() error = %v", err)
	}
	if err := db.FinishOperation(ctx, id, "success", start.Add(time.Minute)); err != nil {
		t.Fatalf("FinishOperation() error = %v", err)
	}
	if _, err := db.CreateOperation(ctx, "tag set", "1 a", start); err != nil {
		t.Fatal(err)
	}

	ops, err := db.ListOperations(ctx, 0)
	if err != nil {
		t.Fatalf("ListOperations() error = %v", err)
	}
	if len(ops) != 2 {
		t.Fatalf("ListOperations() = %d, want 2", len(ops))
	}
	if ops[0].Operation != "tag set" || ops[1].Status != "success" {
		t.Errorf("ListOperations() = %+v, %+v; want newest first", ops[0], ops[1])
	}
	if !ops[1].FinishedAt.Valid {
		t.Error("finished operation has no finished_at")
	}

	limited, err := db.ListOperations(ctx, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(limited) != 1 {
		t.Errorf("ListOperations(1) = %d rows, want 1", len(limited))
	}
}

func TestSQLiteDatabase_ScanPasses(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	epoch, err := db.BeginScanPass(ctx, "pass-1", true, time.Now())
	if err != nil {
		t.Fatalf("BeginScanPass() error = %v", err)
	}
	err = db.FinishScanPass(ctx, sqlc.FinishScanPassParams{
		FinishedAt: sql.NullTime{Time: time.Now(), Valid: true},
		Status:     "success",
		Observed:   4,
		Deleted:    1,
		ID:         epoch,
	})
	if err != nil {
		t.Fatalf("FinishScanPass() error = %v", err)
	}

	passes, err := db.ListScanPasses(ctx, 10)
	if err != nil {
		t.Fatalf("ListScanPasses() error = %v", err)
	}
	if len(passes) != 1 {
		t.Fatalf("ListScanPasses() = %d, want 1", len(passes))
	}
	p := passes[0]
	if p.PassID != "pass-1" || !p.FullScan || p.Status != "success" || p.Observed != 4 || p.Deleted != 1 {
		t.Errorf("ListScanPasses()[0] = %+v", p)
	}
}

func TestSQLiteDatabase_TagInfo(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)

	cat, err := db.CreateCategory(ctx, "color", "#ff0000|#000000")
	if err != nil {
		t.Fatalf("CreateCategory() error = %v", err)
	}
	if _, err := db.CreateTag(ctx, cat.ID, "red", ""); err != nil {
		t.Fatalf("CreateTag() error = %v", err)
	}

	infos, err := db.ListTagInfo(ctx)
	if err != nil {
		t.Fatalf("ListTagInfo() error = %v", err)
	}
	if len(infos) != 1 || infos[0].CategoryName != "color" || infos[0].CategoryColor != "#ff0000|#000000" {
		t.Errorf("ListTagInfo() = %+v", infos)
	}

	def, err := db.FindCategory(ctx, "")
	if err != nil || def == nil {
		t.Fatalf("FindCategory(\"\") = %v, %v", def, err)
	}
}

func TestSQLiteDatabase_BackupTo(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	insertFile(t, db, sqlc.InsertFileParams{Path: "", Name: "src", IsDir: true})

	dest := filepath.Join(t.TempDir(), "copy.db")
	if err := db.BackupTo(dest); err != nil {
		t.Fatalf("BackupTo() error = %v", err)
	}

	copyDB, err := NewSQLiteDatabase(dest)
	if err != nil {
		t.Fatalf("opening backup: %v", err)
	}
	defer copyDB.Close()

	f, err := copyDB.FindLiveFileByPathName(ctx, "", "src")
	if err != nil || f == nil {
		t.Errorf("backup is missing row: %v, %v", f, err)
	}
}
