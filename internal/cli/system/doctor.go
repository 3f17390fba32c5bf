package system

import (
	"errors"
	"fmt"
	"time"

	"github.com/julianstephens/mindbloom/internal/backup"
	"github.com/julianstephens/mindbloom/internal/cli"
	"github.com/julianstephens/mindbloom/internal/keyring"
	"github.com/julianstephens/mindbloom/internal/storage"
	"github.com/julianstephens/mindbloom/internal/validation"
)

type DoctorCmd struct{}

// check is one diagnostic. Warnings are reported but never fail the run.
type check struct {
	name    string
	warn    bool
	needsDB bool
	run     func(ctx *cli.Context) error
}

var checks = []check{
	{name: "Database reachable", run: checkDBReachable},
	{name: "Schema version", needsDB: true, run: checkSchemaVersion},
	{name: "Migrations complete", needsDB: true, run: checkMigrationsComplete},
	{name: "Backups present", warn: true, run: checkBackupsPresent},
	{name: "Data validation", needsDB: true, run: checkValidation},
	{name: "Clock/timezone", run: checkClockTimezone},
	{name: "OS keyring", warn: true, run: checkKeyring},
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	ctx.Println("Running diagnostics...")
	ctx.Println()

	hasError := false
	dbReachable := false

	for i, c := range checks {
		if c.needsDB && !dbReachable {
			ctx.Printf("⊘ %s: SKIPPED (database not reachable)\n", c.name)
			continue
		}

		err := c.run(ctx)
		switch {
		case err == nil:
			ctx.Printf("✓ %s: OK\n", c.name)
			if i == 0 {
				dbReachable = true
			}
		case c.warn:
			ctx.Printf("⚠ %s: WARNING\n", c.name)
			ctx.Printf("   %v\n", err)
		default:
			ctx.Printf("❌ %s: FAIL\n", c.name)
			ctx.Printf("   Error: %v\n", err)
			hasError = true
		}
	}

	ctx.Println()
	if hasError {
		ctx.Println("Diagnostics completed with errors.")
		return fmt.Errorf("one or more health checks failed")
	}

	ctx.Println("All diagnostics passed!")
	return nil
}

func checkDBReachable(ctx *cli.Context) error {
	if err := ctx.Store.Load(); err != nil {
		return fmt.Errorf("failed to load database: %w", err)
	}
	if owner, err := ctx.Owner(); err == nil {
		if _, _, err := ctx.Moods.GetForDate(ctx.Ctx(), owner, ""); err != nil {
			return fmt.Errorf("failed to query database: %w", err)
		}
	}
	return nil
}

func schemaVersions(ctx *cli.Context) (current, latest int, managed bool, err error) {
	m, ok := ctx.Store.(storage.Migrator)
	if !ok {
		return 0, 0, false, nil
	}
	current, latest, err = m.SchemaVersion(ctx.Ctx())
	if err != nil {
		return 0, 0, true, fmt.Errorf("failed to get schema version: %w", err)
	}
	return current, latest, true, nil
}

func checkSchemaVersion(ctx *cli.Context) error {
	current, latest, _, err := schemaVersions(ctx)
	if err != nil {
		return err
	}
	if current > latest {
		return fmt.Errorf("database schema version (%d) is newer than supported version (%d)", current, latest)
	}
	return nil
}

func checkMigrationsComplete(ctx *cli.Context) error {
	current, latest, _, err := schemaVersions(ctx)
	if err != nil {
		return err
	}
	if current < latest {
		return fmt.Errorf("migrations incomplete: current version %d, latest version %d - run 'mindbloom migrate'", current, latest)
	}
	return nil
}

func checkBackupsPresent(ctx *cli.Context) error {
	path, ok := ctx.SQLitePath()
	if !ok {
		return errors.New("backups are only managed for local SQLite databases")
	}
	backups, err := backup.NewManager(path).List()
	if err != nil {
		return fmt.Errorf("failed to list backups: %w", err)
	}
	if len(backups) == 0 {
		return fmt.Errorf("no backups found - consider creating one with 'mindbloom backup create'")
	}
	return nil
}

func checkValidation(ctx *cli.Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		ctx.Println("   Note: no user configured, skipping record checks")
		return nil
	}
	result, err := validateOwner(ctx, owner)
	if err != nil {
		return err
	}
	if result.HasConflicts() {
		return fmt.Errorf("%d conflict(s) found - run 'mindbloom validate' for details", len(result.Conflicts))
	}
	return nil
}

func checkClockTimezone(ctx *cli.Context) error {
	now := ctx.Now()

	if now.Year() < 2020 || now.Year() > 2100 {
		return fmt.Errorf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}

	local := now.In(ctx.Location)
	if _, offset := local.Zone(); offset == 0 && ctx.Location == time.UTC {
		ctx.Println("   Note: timezone is UTC")
	}
	return nil
}

func checkKeyring(ctx *cli.Context) error {
	if !keyring.IsAvailable() {
		return errors.New("OS keyring is not available; pass connection strings with --store instead")
	}
	return nil
}

// validateOwner runs the integrity checks over every record the owner can see.
func validateOwner(ctx *cli.Context, owner string) (validation.ValidationResult, error) {
	journalEntries, err := ctx.Journal.List(ctx.Ctx(), owner)
	if err != nil {
		return validation.ValidationResult{}, fmt.Errorf("failed to load journal entries: %w", err)
	}
	moodEntries, err := ctx.Moods.GetAll(ctx.Ctx(), owner)
	if err != nil {
		return validation.ValidationResult{}, fmt.Errorf("failed to load mood entries: %w", err)
	}

	v := validation.New()
	result := v.ValidateJournalEntries(journalEntries)
	result.Merge(v.ValidateMoodEntries(moodEntries))
	return result, nil
}
