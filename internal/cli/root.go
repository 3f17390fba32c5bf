package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/julianstephens/mindbloom/internal/analytics"
	"github.com/julianstephens/mindbloom/internal/backup"
	"github.com/julianstephens/mindbloom/internal/journal"
	"github.com/julianstephens/mindbloom/internal/logger"
	"github.com/julianstephens/mindbloom/internal/mood"
	"github.com/julianstephens/mindbloom/internal/storage"
	"github.com/julianstephens/mindbloom/internal/storage/sqlite"
)

// Context is handed to every command's Run method.
type Context struct {
	Store    storage.Provider
	Journal  *journal.Repository
	Moods    *mood.Repository
	User     string
	Location *time.Location
	Engine   analytics.Engine
	Now      func() time.Time

	Out io.Writer
	In  io.Reader
	// Interactive allows commands to open prompts for missing arguments.
	Interactive bool

	ctx context.Context
}

// Options configures NewContext. Zero values fall back to the process defaults.
type Options struct {
	User           string
	Location       *time.Location
	TrendThreshold float64
	Now            func() time.Time
	Out            io.Writer
	In             io.Reader
	Interactive    bool
	Ctx            context.Context
}

func NewContext(store storage.Provider, opts Options) *Context {
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	if opts.In == nil {
		opts.In = os.Stdin
	}
	if opts.Ctx == nil {
		opts.Ctx = context.Background()
	}

	engineOpts := analytics.DefaultOptions()
	if opts.TrendThreshold > 0 {
		engineOpts.TrendThreshold = opts.TrendThreshold
	}
	engine := analytics.NewEngine(engineOpts)

	return &Context{
		Store: store,
		Journal: journal.NewRepository(store,
			journal.WithClock(opts.Now),
			journal.WithLocation(opts.Location),
		),
		Moods: mood.NewRepository(store,
			mood.WithClock(opts.Now),
			mood.WithLocation(opts.Location),
			mood.WithEngine(engine),
		),
		User:        opts.User,
		Location:    opts.Location,
		Engine:      engine,
		Now:         opts.Now,
		Out:         opts.Out,
		In:          opts.In,
		Interactive: opts.Interactive,
		ctx:         opts.Ctx,
	}
}

// Ctx returns the context commands pass to repository calls.
func (c *Context) Ctx() context.Context {
	return c.ctx
}

// Owner returns the configured identity or explains how to set one.
func (c *Context) Owner() (string, error) {
	user := strings.TrimSpace(c.User)
	if user == "" {
		return "", fmt.Errorf("no user configured; pass --user or set MINDBLOOM_USER")
	}
	return user, nil
}

func (c *Context) Printf(format string, args ...any) {
	fmt.Fprintf(c.Out, format, args...)
}

func (c *Context) Println(args ...any) {
	fmt.Fprintln(c.Out, args...)
}

// Confirm asks a yes/no question on In. Anything but y/yes is a no.
func (c *Context) Confirm(question string) (bool, error) {
	c.Printf("%s [y/N]: ", question)
	response, err := bufio.NewReader(c.In).ReadString('\n')
	if err != nil && err != io.EOF {
		return false, err
	}
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes", nil
}

// SQLitePath returns the database file when the store is the local SQLite store.
func (c *Context) SQLitePath() (string, bool) {
	if s, ok := c.Store.(*sqlite.Store); ok {
		return s.GetConfigPath(), true
	}
	return "", false
}

// PerformAutomaticBackup snapshots a local database and only logs failures.
func (c *Context) PerformAutomaticBackup() {
	path, ok := c.SQLitePath()
	if !ok {
		return
	}
	if _, err := backup.NewManager(path).Create(c.ctx); err != nil {
		logger.Warn("Automatic backup failed", "error", err)
	}
}
