package backup

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"
	"time"

	_ "modernc.org/sqlite"

	"github.com/julianstephens/mindbloom/internal/models"
	"github.com/julianstephens/mindbloom/internal/storage"
	"github.com/julianstephens/mindbloom/internal/storage/sqlite"
)

// tickClock advances one second per call so every backup gets its own name.
func tickClock() func() time.Time {
	t := time.Date(2024, 3, 10, 8, 0, 0, 0, time.Local)
	return func() time.Time {
		t = t.Add(time.Second)
		return t
	}
}

func setupTestDB(t *testing.T) string {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "mindbloom.db")
	store := sqlite.NewStore(dbPath)
	if err := store.Init(); err != nil {
		t.Fatalf("failed to init database: %v", err)
	}
	defer store.Close()

	if _, err := store.InsertJournalEntry(context.Background(), models.JournalEntry{
		Username: "alice", Title: "first", Content: "kept in the backup", Mood: models.JournalMoodCalm,
		Tags: []string{"daily-thoughts"}, CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("failed to insert entry: %v", err)
	}
	return dbPath
}

func countEntries(t *testing.T, dbPath string) int {
	t.Helper()
	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("failed to load %s: %v", dbPath, err)
	}
	defer store.Close()
	entries, err := store.QueryJournalEntries(context.Background(), storage.JournalQuery{Owner: "alice"})
	if err != nil {
		t.Fatalf("failed to query %s: %v", dbPath, err)
	}
	return len(entries)
}

func TestCreate(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, WithClock(tickClock()))

	info, err := mgr.Create(context.Background())
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if filepath.Dir(info.Path) != mgr.Dir() {
		t.Errorf("backup written outside backup dir: %s", info.Path)
	}
	if info.Name() != "mindbloom-20240310-080001.db" {
		t.Errorf("unexpected backup name %s", info.Name())
	}
	if info.Size == 0 {
		t.Error("backup size is 0")
	}
	if got := countEntries(t, info.Path); got != 1 {
		t.Errorf("expected 1 entry in backup, got %d", got)
	}
}

func TestCreateWithoutDatabase(t *testing.T) {
	mgr := NewManager(filepath.Join(t.TempDir(), "missing.db"))
	if _, err := mgr.Create(context.Background()); err == nil {
		t.Error("expected error when backing up non-existent database")
	}
}

func TestRotation(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, WithClock(tickClock()), WithRetention(3))
	ctx := context.Background()

	var created []Info
	for i := 0; i < 5; i++ {
		info, err := mgr.Create(ctx)
		if err != nil {
			t.Fatalf("Create #%d failed: %v", i, err)
		}
		created = append(created, info)
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 3 {
		t.Fatalf("expected 3 backups after rotation, got %d", len(backups))
	}
	for i, want := range []Info{created[4], created[3], created[2]} {
		if backups[i].Path != want.Path {
			t.Errorf("backup %d = %s, want %s", i, backups[i].Name(), want.Name())
		}
	}
	if _, err := os.Stat(created[0].Path); !os.IsNotExist(err) {
		t.Error("oldest backup was not removed")
	}
}

func TestSameSecondBackupsGetCounters(t *testing.T) {
	dbPath := setupTestDB(t)
	fixed := time.Date(2024, 3, 10, 8, 0, 0, 0, time.Local)
	mgr := NewManager(dbPath, WithClock(func() time.Time { return fixed }))
	ctx := context.Background()

	want := []string{
		"mindbloom-20240310-080000.db",
		"mindbloom-20240310-080000-1.db",
		"mindbloom-20240310-080000-2.db",
	}
	for i, name := range want {
		info, err := mgr.Create(ctx)
		if err != nil {
			t.Fatalf("Create #%d failed: %v", i, err)
		}
		if info.Name() != name {
			t.Errorf("backup %d named %s, want %s", i, info.Name(), name)
		}
	}

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 3 || backups[0].Name() != want[2] || backups[2].Name() != want[0] {
		t.Errorf("unexpected order: %v", backups)
	}
}

func TestListIgnoresUnrelatedFiles(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, WithClock(tickClock()))

	backups, err := mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 0 {
		t.Errorf("expected no backups before the directory exists, got %d", len(backups))
	}

	if _, err := mgr.Create(context.Background()); err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	for _, name := range []string{"notes.txt", "mindbloom-latest.db", "mindbloom-20240310-0800.db", "other-20240310-080000.db"} {
		if err := os.WriteFile(filepath.Join(mgr.Dir(), name), []byte("x"), 0600); err != nil {
			t.Fatalf("failed to write %s: %v", name, err)
		}
	}

	backups, err = mgr.List()
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(backups) != 1 {
		t.Errorf("expected 1 backup, got %d", len(backups))
	}
}

func TestRestore(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, WithClock(tickClock()))
	ctx := context.Background()

	original, err := mgr.Create(ctx)
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	store := sqlite.NewStore(dbPath)
	if err := store.Load(); err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if _, err := store.InsertJournalEntry(ctx, models.JournalEntry{
		Username: "alice", Title: "second", Content: "written after the backup", Mood: models.JournalMoodSad,
		CreatedAt: time.Now(), UpdatedAt: time.Now(),
	}); err != nil {
		t.Fatalf("insert failed: %v", err)
	}
	store.Close()

	if got := countEntries(t, dbPath); got != 2 {
		t.Fatalf("expected 2 entries before restore, got %d", got)
	}

	safety, err := mgr.Restore(ctx, original.Path)
	if err != nil {
		t.Fatalf("Restore failed: %v", err)
	}

	if got := countEntries(t, dbPath); got != 1 {
		t.Errorf("expected 1 entry after restore, got %d", got)
	}
	if safety.Path == "" {
		t.Fatal("expected a safety copy of the replaced database")
	}
	if got := countEntries(t, safety.Path); got != 2 {
		t.Errorf("expected safety copy to hold 2 entries, got %d", got)
	}
	if _, err := os.Stat(dbPath + ".restore.tmp"); !os.IsNotExist(err) {
		t.Error("temporary restore file left behind")
	}
}

func TestRestoreRejectsInvalidSources(t *testing.T) {
	dbPath := setupTestDB(t)
	mgr := NewManager(dbPath, WithClock(tickClock()))
	ctx := context.Background()
	dir := t.TempDir()

	garbage := filepath.Join(dir, "garbage.db")
	if err := os.WriteFile(garbage, []byte("not a valid sqlite database"), 0600); err != nil {
		t.Fatalf("failed to write garbage file: %v", err)
	}

	foreign := filepath.Join(dir, "foreign.db")
	db, err := sql.Open("sqlite", foreign)
	if err != nil {
		t.Fatalf("failed to create foreign db: %v", err)
	}
	if _, err := db.Exec("CREATE TABLE tasks (id TEXT PRIMARY KEY)"); err != nil {
		t.Fatalf("failed to create table: %v", err)
	}
	db.Close()

	tests := []struct {
		name string
		path string
	}{
		{"missing file", filepath.Join(dir, "nope.db")},
		{"not sqlite", garbage},
		{"wrong schema", foreign},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := mgr.Restore(ctx, tt.path); err == nil {
				t.Error("expected restore to fail")
			}
		})
	}

	if got := countEntries(t, dbPath); got != 1 {
		t.Errorf("database changed by rejected restores: %d entries", got)
	}
}

func TestResolve(t *testing.T) {
	mgr := NewManager("/data/mindbloom.db")

	if got := mgr.Resolve("mindbloom-20240310-080000.db"); got != filepath.Join("/data", "backups", "mindbloom-20240310-080000.db") {
		t.Errorf("Resolve(name) = %s", got)
	}
	if got := mgr.Resolve("/tmp/copy.db"); got != "/tmp/copy.db" {
		t.Errorf("Resolve(path) = %s", got)
	}
}
