package migration

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/mindbloom/migrations"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func testMigrations() fstest.MapFS {
	return fstest.MapFS{
		"001_init.sql":        {Data: []byte("CREATE TABLE a (id INTEGER PRIMARY KEY);")},
		"002_add_b.sql":       {Data: []byte("CREATE TABLE b (id INTEGER PRIMARY KEY);")},
		"README.md":           {Data: []byte("ignored")},
		"nested/003_skip.sql": {Data: []byte("ignored")},
	}
}

func TestGetCurrentVersionFreshDB(t *testing.T) {
	r := NewRunner(setupTestDB(t), testMigrations(), SQLite)
	v, err := r.GetCurrentVersion(context.Background())
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if v != 0 {
		t.Errorf("expected version 0 for fresh database, got %d", v)
	}
}

func TestReadMigrationFiles(t *testing.T) {
	r := NewRunner(nil, testMigrations(), SQLite)
	ms, err := r.ReadMigrationFiles()
	if err != nil {
		t.Fatalf("ReadMigrationFiles failed: %v", err)
	}
	if len(ms) != 2 {
		t.Fatalf("expected 2 migrations, got %d", len(ms))
	}
	if ms[0].Version != 1 || ms[0].Name != "init" {
		t.Errorf("unexpected first migration: %+v", ms[0])
	}
	if ms[1].Version != 2 || ms[1].Name != "add_b" {
		t.Errorf("unexpected second migration: %+v", ms[1])
	}
}

func TestReadMigrationFilesErrors(t *testing.T) {
	tests := []struct {
		name  string
		files fstest.MapFS
		want  string
	}{
		{
			name:  "missing separator",
			files: fstest.MapFS{"001.sql": {Data: []byte("")}},
			want:  "invalid migration filename",
		},
		{
			name:  "non-numeric version",
			files: fstest.MapFS{"abc_init.sql": {Data: []byte("")}},
			want:  "invalid version number",
		},
		{
			name:  "zero version",
			files: fstest.MapFS{"000_init.sql": {Data: []byte("")}},
			want:  "at least 1",
		},
		{
			name: "duplicate version",
			files: fstest.MapFS{
				"001_a.sql":  {Data: []byte("")},
				"0001_b.sql": {Data: []byte("")},
			},
			want: "duplicate migration version 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewRunner(nil, tt.files, SQLite).ReadMigrationFiles()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}

func TestApplyMigrations(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	r := NewRunner(db, testMigrations(), SQLite)

	var logs []string
	n, err := r.ApplyMigrations(ctx, func(s string) { logs = append(logs, s) })
	if err != nil {
		t.Fatalf("ApplyMigrations failed: %v", err)
	}
	if n != 2 {
		t.Errorf("expected 2 migrations applied, got %d", n)
	}
	if len(logs) == 0 {
		t.Error("expected progress messages")
	}

	v, err := r.GetCurrentVersion(ctx)
	if err != nil {
		t.Fatalf("GetCurrentVersion failed: %v", err)
	}
	if v != 2 {
		t.Errorf("expected version 2, got %d", v)
	}

	// Second run is a no-op
	n, err = r.ApplyMigrations(ctx, nil)
	if err != nil {
		t.Fatalf("second ApplyMigrations failed: %v", err)
	}
	if n != 0 {
		t.Errorf("expected 0 migrations on second run, got %d", n)
	}
}

func TestApplyMigrationsRollsBackFailure(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	files := fstest.MapFS{
		"001_init.sql":   {Data: []byte("CREATE TABLE a (id INTEGER PRIMARY KEY);")},
		"002_broken.sql": {Data: []byte("CREATE TABLE oops (")},
	}
	r := NewRunner(db, files, SQLite)

	n, err := r.ApplyMigrations(ctx, nil)
	if err == nil {
		t.Fatal("expected error from broken migration")
	}
	if n != 1 {
		t.Errorf("expected 1 applied before failure, got %d", n)
	}
	v, _ := r.GetCurrentVersion(ctx)
	if v != 1 {
		t.Errorf("expected version to stay at 1, got %d", v)
	}
}

func TestValidateVersionRejectsNewerSchema(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	r := NewRunner(db, testMigrations(), SQLite)

	if err := r.EnsureSchemaVersionTable(ctx); err != nil {
		t.Fatalf("EnsureSchemaVersionTable failed: %v", err)
	}
	if _, err := db.Exec("INSERT INTO schema_version (version) VALUES (99)"); err != nil {
		t.Fatalf("failed to seed version: %v", err)
	}

	if err := r.ValidateVersion(ctx); err == nil || !strings.Contains(err.Error(), "newer than supported") {
		t.Errorf("expected newer schema error, got %v", err)
	}
	if _, err := r.ApplyMigrations(ctx, nil); err == nil {
		t.Error("ApplyMigrations should refuse a newer schema")
	}
}

func TestEmbeddedSQLiteMigrationsApply(t *testing.T) {
	ctx := context.Background()
	sub, err := fs.Sub(migrations.FS, "sqlite")
	if err != nil {
		t.Fatalf("fs.Sub failed: %v", err)
	}
	db := setupTestDB(t)
	r := NewRunner(db, sub, SQLite)
	if _, err := r.ApplyMigrations(ctx, nil); err != nil {
		t.Fatalf("embedded migrations failed: %v", err)
	}

	for _, table := range []string{"journal_entries", "mood_entries"} {
		var name string
		err := db.QueryRow("SELECT name FROM sqlite_master WHERE type='table' AND name=?", table).Scan(&name)
		if err != nil {
			t.Errorf("table %s missing: %v", table, err)
		}
	}
}

func TestEmbeddedMigrationVersionsMatch(t *testing.T) {
	latest := map[string]int{}
	for _, dir := range []string{"sqlite", "postgres"} {
		sub, err := fs.Sub(migrations.FS, dir)
		if err != nil {
			t.Fatalf("fs.Sub(%s) failed: %v", dir, err)
		}
		v, err := NewRunner(nil, sub, SQLite).GetLatestVersion()
		if err != nil {
			t.Fatalf("GetLatestVersion(%s) failed: %v", dir, err)
		}
		latest[dir] = v
	}
	if latest["sqlite"] != latest["postgres"] {
		t.Errorf("sqlite and postgres migrations diverge: %v", latest)
	}
}
