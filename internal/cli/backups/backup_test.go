package backups

import (
	"bytes"
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/julianstephens/mindbloom/internal/backup"
	"github.com/julianstephens/mindbloom/internal/cli"
	"github.com/julianstephens/mindbloom/internal/models"
	"github.com/julianstephens/mindbloom/internal/storage/sqlite"
	"github.com/julianstephens/mindbloom/internal/storage/supabase"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupContext(t *testing.T, stdin string) (*cli.Context, *bytes.Buffer, *sqlite.Store) {
	t.Helper()
	store := sqlite.NewStore(filepath.Join(t.TempDir(), "mindbloom.db"))
	require.NoError(t, store.Init())
	t.Cleanup(func() { _ = store.Close() })

	out := &bytes.Buffer{}
	ctx := cli.NewContext(store, cli.Options{
		User:     "alice",
		Location: time.UTC,
		Out:      out,
		In:       strings.NewReader(stdin),
	})
	return ctx, out, store
}

func TestCreateAndList(t *testing.T) {
	ctx, out, _ := setupContext(t, "")

	require.NoError(t, (&BackupListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "No backups found.")

	out.Reset()
	require.NoError(t, (&BackupCreateCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "✓ Backup created: mindbloom-")

	out.Reset()
	require.NoError(t, (&BackupListCmd{}).Run(ctx))
	assert.Contains(t, out.String(), "Available backups (1 total")
}

func TestRestore(t *testing.T) {
	bg := context.Background()
	ctx, out, store := setupContext(t, "y\n")

	_, err := ctx.Journal.Create(bg, "alice", models.NewJournalEntry{Content: "before"})
	require.NoError(t, err)

	mgr := backup.NewManager(store.GetConfigPath())
	snap, err := mgr.Create(bg)
	require.NoError(t, err)

	_, err = ctx.Journal.Create(bg, "alice", models.NewJournalEntry{Content: "after"})
	require.NoError(t, err)

	require.NoError(t, (&BackupRestoreCmd{BackupFile: snap.Name()}).Run(ctx))
	assert.Contains(t, out.String(), "✓ Database restored successfully!")
	assert.Contains(t, out.String(), "Previous database saved as")

	require.NoError(t, store.Load())
	entries, err := ctx.Journal.List(bg, "alice")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "before", entries[0].Content)
}

func TestRestoreCancelled(t *testing.T) {
	bg := context.Background()
	ctx, out, store := setupContext(t, "n\n")

	snap, err := backup.NewManager(store.GetConfigPath()).Create(bg)
	require.NoError(t, err)

	require.NoError(t, (&BackupRestoreCmd{BackupFile: snap.Path}).Run(ctx))
	assert.Contains(t, out.String(), "Restore cancelled.")
}

func TestRestoreMissingFile(t *testing.T) {
	ctx, _, _ := setupContext(t, "y\n")
	err := (&BackupRestoreCmd{BackupFile: "mindbloom-20000101-000000.db"}).Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "backup file not found")
}

func TestRemoteStoresHaveNoBackups(t *testing.T) {
	store := supabase.NewStore(supabase.Config{URL: "https://example.supabase.co", APIKey: "anon-key"})
	ctx := cli.NewContext(store, cli.Options{Out: &bytes.Buffer{}})

	err := (&BackupCreateCmd{}).Run(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only available for local SQLite databases")
}
