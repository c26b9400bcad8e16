package migrations

import (
	"database/sql"
	"errors"
	"testing"

	_ "github.com/mattn/go-sqlite3"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestMigrateUp_CreatesIndexTables(t *testing.T) {
	db := openTestDB(t)

	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	for _, table := range []string{"source", "file", "checksum", "category", "tag", "scan_pass", "operation"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s was not created: %v", table, err)
		}
	}
}

func TestMigrateUp_SeedsDefaultCategory(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	var color string
	if err := db.QueryRow("SELECT color FROM category WHERE name = ''").Scan(&color); err != nil {
		t.Fatalf("default category missing: %v", err)
	}
	if color != "#c0c0c0|#ffffff" {
		t.Errorf("default category color = %q, want %q", color, "#c0c0c0|#ffffff")
	}
}

func TestMigrateUp_LivePathNameIsUnique(t *testing.T) {
	db := openTestDB(t)
	if err := MigrateUp(db); err != nil {
		t.Fatalf("MigrateUp() error = %v", err)
	}

	if _, err := db.Exec("INSERT INTO file (path, name) VALUES ('src', 'a.txt')"); err != nil {
		t.Fatalf("first insert error = %v", err)
	}
	if _, err := db.Exec("INSERT INTO file (path, name) VALUES ('src', 'a.txt')"); err == nil {
		t.Error("second live insert succeeded, want unique constraint violation")
	}

	// A tombstoned row may share path and name with a live one.
	if _, err := db.Exec("INSERT INTO file (path, name, delete_time) VALUES ('src', 'a.txt', 1.5)"); err != nil {
		t.Errorf("tombstoned insert error = %v", err)
	}
}

func TestCheckDBMigrationStatus(t *testing.T) {
	t.Run("fresh database needs migration", func(t *testing.T) {
		db := openTestDB(t)
		err := CheckDBMigrationStatus(db)
		if !errors.Is(err, ErrNeedsMigration) {
			t.Errorf("CheckDBMigrationStatus() error = %v, want ErrNeedsMigration", err)
		}
	})

	t.Run("migrated database is current", func(t *testing.T) {
		db := openTestDB(t)
		if err := MigrateUp(db); err != nil {
			t.Fatalf("MigrateUp() error = %v", err)
		}
		if err := CheckDBMigrationStatus(db); err != nil {
			t.Errorf("CheckDBMigrationStatus() error = %v", err)
		}
	})

	t.Run("migrate up is idempotent", func(t *testing.T) {
		db := openTestDB(t)
		if err := MigrateUp(db); err != nil {
			t.Fatalf("first MigrateUp() error = %v", err)
		}
		if err := MigrateUp(db); err != nil {
			t.Fatalf("second MigrateUp() error = %v", err)
		}
		if err := CheckDBMigrationStatus(db); err != nil {
			t.Errorf("CheckDBMigrationStatus() error = %v", err)
		}
	})
}

func TestLatestVersion(t *testing.T) {
	v, err := LatestVersion()
	if err != nil {
		t.Fatalf("LatestVersion() error = %v", err)
	}
	if v != 1 {
		t.Errorf("LatestVersion() = %d, want 1", v)
	}
}
