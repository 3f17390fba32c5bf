package journals

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/mindbloom/internal/cli"
	"github.com/julianstephens/mindbloom/internal/journal"
	"github.com/julianstephens/mindbloom/internal/models"
)

type JournalCmd struct {
	Write  WriteCmd  `cmd:"" help:"Write a new journal entry."`
	List   ListCmd   `cmd:"" help:"List journal entries, newest first." default:"1"`
	Show   ShowCmd   `cmd:"" help:"Show one journal entry."`
	Edit   EditCmd   `cmd:"" help:"Edit a journal entry."`
	Delete DeleteCmd `cmd:"" help:"Delete a journal entry."`
	Search SearchCmd `cmd:"" help:"Search titles and content."`
	Filter FilterCmd `cmd:"" help:"List entries with a given mood."`
}

type WriteCmd struct {
	Content string `arg:"" optional:"" help:"Entry text. Prompted for when omitted."`
	Title   string `help:"Entry title. Defaults to today's date." short:"t"`
	Mood    string `help:"One of happy, calm, anxious, sad, energetic, reflective, grateful." short:"m"`
	Tags    string `help:"Comma-separated tags."`
	JSON    bool   `help:"Print the stored entry as JSON."`
}

func (c *WriteCmd) Run(ctx *cli.Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}

	in := models.NewJournalEntry{
		Title:   c.Title,
		Content: c.Content,
		Mood:    models.JournalMood(c.Mood),
	}
	tags := c.Tags

	if strings.TrimSpace(in.Content) == "" {
		if !ctx.Interactive {
			return fmt.Errorf("entry content is required")
		}
		if err := promptEntry(&in, &tags); err != nil {
			return fmt.Errorf("interactive form error: %w", err)
		}
	}
	in.Tags = journal.ParseTags(tags)

	entry, err := ctx.Journal.Create(ctx.Ctx(), owner, in)
	if err != nil {
		return err
	}
	if c.JSON {
		return cli.WriteJSON(ctx.Out, entry)
	}
	ctx.Printf("✓ Saved %q (%s)\n", entry.Title, entry.ID)
	return nil
}

func promptEntry(in *models.NewJournalEntry, tags *string) error {
	if in.Mood == "" {
		in.Mood = models.JournalMoodReflective
	}
	moods := make([]huh.Option[models.JournalMood], 0, len(models.JournalMoods))
	for _, m := range models.JournalMoods {
		moods = append(moods, huh.NewOption(string(m), m))
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("leave blank to use today's date").
				Value(&in.Title),
			huh.NewText().
				Title("What's on your mind?").
				Value(&in.Content).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("content cannot be empty")
					}
					return nil
				}),
			huh.NewSelect[models.JournalMood]().
				Title("Mood").
				Options(moods...).
				Value(&in.Mood),
			huh.NewInput().
				Title("Tags").
				Description("Comma separated").
				Value(tags),
		),
	)
	return form.Run()
}

type ListCmd struct {
	Limit int  `help:"Show at most this many entries (0 for all)." default:"20"`
	JSON  bool `help:"Print entries as JSON."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}
	entries, err := ctx.Journal.List(ctx.Ctx(), owner)
	if err != nil {
		return err
	}
	return printEntries(ctx, entries, c.Limit, c.JSON, "No journal entries yet. Write one with 'mindbloom journal write'.")
}

type ShowCmd struct {
	ID   string `arg:"" help:"Entry id or unique id prefix."`
	JSON bool   `help:"Print the entry as JSON."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}
	id, err := resolveID(ctx, owner, c.ID)
	if err != nil {
		return err
	}
	entry, err := ctx.Journal.Get(ctx.Ctx(), id, owner)
	if err != nil {
		return err
	}
	if c.JSON {
		return cli.WriteJSON(ctx.Out, entry)
	}
	ctx.Printf("%s", cli.JournalDetail(entry, ctx.Location))
	return nil
}

type EditCmd struct {
	ID      string `arg:"" help:"Entry id or unique id prefix."`
	Title   string `help:"New title." short:"t"`
	Content string `help:"New content." short:"c"`
	Mood    string `help:"New mood." short:"m"`
	Tags    string `help:"Replace tags with this comma-separated list."`
}

func (c *EditCmd) Run(ctx *cli.Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}
	id, err := resolveID(ctx, owner, c.ID)
	if err != nil {
		return err
	}

	var patch models.JournalPatch
	if c.Title != "" {
		patch.Title = &c.Title
	}
	if c.Content != "" {
		patch.Content = &c.Content
	}
	if c.Mood != "" {
		m := models.JournalMood(c.Mood)
		patch.Mood = &m
	}
	if c.Tags != "" {
		tags := journal.ParseTags(c.Tags)
		patch.Tags = &tags
	}
	if patch.Empty() {
		return fmt.Errorf("nothing to change; pass --title, --content, --mood or --tags")
	}

	entry, err := ctx.Journal.Update(ctx.Ctx(), id, owner, patch)
	if err != nil {
		return err
	}
	ctx.Printf("✓ Updated %q\n", entry.Title)
	return nil
}

type DeleteCmd struct {
	ID  string `arg:"" help:"Entry id or unique id prefix."`
	Yes bool   `help:"Skip the confirmation prompt." short:"y"`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}
	id, err := resolveID(ctx, owner, c.ID)
	if err != nil {
		return err
	}

	if !c.Yes {
		ok, err := ctx.Confirm(fmt.Sprintf("Delete journal entry %s?", cli.ShortID(id)))
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}

	deleted, err := ctx.Journal.Delete(ctx.Ctx(), id, owner)
	if err != nil {
		return err
	}
	if !deleted {
		ctx.Println("Nothing to delete.")
		return nil
	}
	ctx.Println("✓ Journal entry deleted")
	return nil
}

type SearchCmd struct {
	Term  string `arg:"" optional:"" help:"Text to look for. Blank lists everything."`
	Limit int    `help:"Show at most this many entries (0 for all)." default:"0"`
	JSON  bool   `help:"Print entries as JSON."`
}

func (c *SearchCmd) Run(ctx *cli.Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}
	entries, err := ctx.Journal.Search(ctx.Ctx(), owner, c.Term)
	if err != nil {
		return err
	}
	return printEntries(ctx, entries, c.Limit, c.JSON, fmt.Sprintf("No entries match %q.", c.Term))
}

type FilterCmd struct {
	Mood string `arg:"" help:"Journal mood to filter by."`
	JSON bool   `help:"Print entries as JSON."`
}

func (c *FilterCmd) Run(ctx *cli.Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}
	entries, err := ctx.Journal.FilterByMood(ctx.Ctx(), owner, models.JournalMood(c.Mood))
	if err != nil {
		return err
	}
	return printEntries(ctx, entries, 0, c.JSON, fmt.Sprintf("No %s entries.", c.Mood))
}

func printEntries(ctx *cli.Context, entries []models.JournalEntry, limit int, asJSON bool, empty string) error {
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	if asJSON {
		return cli.WriteJSON(ctx.Out, entries)
	}
	if len(entries) == 0 {
		ctx.Println(empty)
		return nil
	}
	for _, e := range entries {
		ctx.Println(cli.JournalLine(e, ctx.Location))
	}
	return nil
}

// resolveID expands an id prefix as printed by list into the full id.
func resolveID(ctx *cli.Context, owner, idOrPrefix string) (string, error) {
	idOrPrefix = strings.TrimSpace(idOrPrefix)
	if idOrPrefix == "" {
		return "", fmt.Errorf("entry id is required")
	}
	entries, err := ctx.Journal.List(ctx.Ctx(), owner)
	if err != nil {
		return "", err
	}

	var matches []string
	for _, e := range entries {
		if e.ID == idOrPrefix {
			return e.ID, nil
		}
		if strings.HasPrefix(e.ID, idOrPrefix) {
			matches = append(matches, e.ID)
		}
	}
	switch len(matches) {
	case 0:
		// let the repository report it as not found
		return idOrPrefix, nil
	case 1:
		return matches[0], nil
	default:
		return "", fmt.Errorf("id prefix %q is ambiguous (%d entries)", idOrPrefix, len(matches))
	}
}
