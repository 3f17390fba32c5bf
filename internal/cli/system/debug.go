package system

import (
	"github.com/julianstephens/mindbloom/internal/cli"
)

type DebugCmd struct {
	DBPath      DebugDBPathCmd      `cmd:"" name:"db-path" help:"Show the store location."`
	DumpJournal DebugDumpJournalCmd `cmd:"" help:"Dump journal entries as JSON."`
	DumpMood    DebugDumpMoodCmd    `cmd:"" help:"Dump mood entries as JSON."`
}

type DebugDBPathCmd struct{}

func (cmd *DebugDBPathCmd) Run(ctx *cli.Context) error {
	return cli.WriteJSON(ctx.Out, map[string]string{
		"path": ctx.Store.GetConfigPath(),
		"kind": string(cli.Classify(ctx.Store.GetConfigPath())),
	})
}

type DebugDumpJournalCmd struct {
	ID string `arg:"" optional:"" help:"Dump a single entry instead of all of them."`
}

func (cmd *DebugDumpJournalCmd) Run(ctx *cli.Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}
	if cmd.ID != "" {
		entry, err := ctx.Journal.Get(ctx.Ctx(), cmd.ID, owner)
		if err != nil {
			return err
		}
		return cli.WriteJSON(ctx.Out, entry)
	}
	entries, err := ctx.Journal.List(ctx.Ctx(), owner)
	if err != nil {
		return err
	}
	return cli.WriteJSON(ctx.Out, entries)
}

type DebugDumpMoodCmd struct {
	Date string `arg:"" optional:"" help:"Dump the sample for one date (YYYY-MM-DD or 'today')."`
}

func (cmd *DebugDumpMoodCmd) Run(ctx *cli.Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}
	if cmd.Date == "" {
		entries, err := ctx.Moods.GetAll(ctx.Ctx(), owner)
		if err != nil {
			return err
		}
		return cli.WriteJSON(ctx.Out, entries)
	}

	date := cmd.Date
	if date == "today" {
		date = ctx.Moods.Today()
	}
	entry, found, err := ctx.Moods.GetForDate(ctx.Ctx(), owner, date)
	if err != nil {
		return err
	}
	if !found {
		return cli.WriteJSON(ctx.Out, nil)
	}
	return cli.WriteJSON(ctx.Out, entry)
}
