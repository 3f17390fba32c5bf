package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/alecthomas/kong"
	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"

	"github.com/julianstephens/mindbloom/internal/cli"
	"github.com/julianstephens/mindbloom/internal/cli/backups"
	"github.com/julianstephens/mindbloom/internal/cli/journals"
	"github.com/julianstephens/mindbloom/internal/cli/moods"
	"github.com/julianstephens/mindbloom/internal/cli/system"
	"github.com/julianstephens/mindbloom/internal/constants"
	"github.com/julianstephens/mindbloom/internal/errors"
	"github.com/julianstephens/mindbloom/internal/logger"
	"github.com/julianstephens/mindbloom/internal/storage"
	"github.com/julianstephens/mindbloom/internal/utils"
)

var CLI struct {
	Version        kong.VersionFlag
	Store          string  `help:"SQLite path, PostgreSQL connection string, Supabase project URL, or 'keyring'. PostgreSQL credentials must NOT be embedded; use the keyring or .pgpass." env:"MINDBLOOM_STORE" default:"${default_store}"`
	APIKey         string  `name:"api-key" help:"Supabase anon key for URL stores." env:"SUPABASE_ANON_KEY"`
	User           string  `short:"u" help:"Owner of the records to read and write." env:"MINDBLOOM_USER"`
	Timezone       string  `help:"IANA timezone that decides the calendar day." env:"MINDBLOOM_TZ"`
	TrendThreshold float64 `help:"Average change between window halves that counts as a trend." default:"${default_threshold}"`
	Debug          bool    `help:"Enable debug logging to stderr."`

	Init      system.InitCmd      `cmd:"" help:"Initialize mindbloom storage."`
	Migrate   system.MigrateCmd   `cmd:"" help:"Run database migrations."`
	Doctor    system.DoctorCmd    `cmd:"" help:"Run health checks and diagnostics."`
	Validate  system.ValidateCmd  `cmd:"" help:"Check journal and mood entries for conflicts."`
	DebugCmds system.DebugCmd     `cmd:"" name:"debug" help:"Debug commands for troubleshooting."`
	Tui       system.TuiCmd       `cmd:"" help:"Launch the interactive TUI." default:"1"`
	Journal   journals.JournalCmd `cmd:"" help:"Write and browse journal entries."`
	Mood      moods.MoodCmd       `cmd:"" help:"Log moods and view analytics."`
	Backup    backups.BackupCmd   `cmd:"" help:"Manage local database backups."`
	Keyring   system.KeyringCmd   `cmd:"" help:"Manage credentials in the OS keyring."`
}

// commands that manage loading themselves or never touch the store
var skipLoad = map[string]bool{
	"init":    true,
	"doctor":  true,
	"keyring": true,
}

func main() {
	// a missing .env is fine
	_ = godotenv.Load()

	ctx := kong.Parse(&CLI,
		kong.Name(constants.AppName),
		kong.Description("Private journaling and mood tracking"),
		kong.UsageOnError(),
		kong.ConfigureHelp(kong.HelpOptions{
			Compact:             true,
			NoExpandSubcommands: true,
		}),
		kong.Vars{
			"version":           constants.Version,
			"default_store":     constants.DefaultConfigPath,
			"default_threshold": strconv.FormatFloat(constants.DefaultTrendThreshold, 'f', -1, 64),
		},
	)

	command := strings.Fields(ctx.Command())[0]

	var store storage.Provider
	if command != "keyring" {
		var err error
		store, err = cli.OpenStore(CLI.Store, CLI.APIKey)
		if err != nil {
			errors.Fatal(err)
		}
	}

	if err := logger.Init(logger.Config{Debug: CLI.Debug, ConfigDir: configDir(store)}); err != nil {
		errors.Fatalf("failed to initialize logger: %v", err)
	}

	loc, err := utils.LoadLocation(CLI.Timezone)
	if err != nil {
		errors.Fatalf("invalid timezone %q: %v", CLI.Timezone, err)
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	appCtx := cli.NewContext(store, cli.Options{
		User:           CLI.User,
		Location:       loc,
		TrendThreshold: CLI.TrendThreshold,
		Interactive:    isatty.IsTerminal(os.Stdin.Fd()),
		Ctx:            runCtx,
	})

	if !skipLoad[command] {
		if err := store.Load(); err != nil {
			exit(stop, err)
		}
	}

	err = ctx.Run(appCtx)
	if store != nil {
		if cerr := store.Close(); cerr != nil {
			logger.Warn("Failed to close store", "error", cerr)
		}
	}
	exit(stop, err)
}

// exit releases the signal context before errors.Fatal, since os.Exit skips deferred calls.
func exit(stop context.CancelFunc, err error) {
	stop()
	errors.Fatal(err)
}

// configDir keeps logs next to a local database, or in the default config directory otherwise.
func configDir(store storage.Provider) string {
	if store != nil && cli.Classify(store.GetConfigPath()) == cli.KindSQLite {
		return filepath.Dir(store.GetConfigPath())
	}
	dir, err := cli.ExpandPath(filepath.Dir(constants.DefaultConfigPath))
	if err != nil {
		return os.TempDir()
	}
	return dir
}
