package moods

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/mindbloom/internal/analytics"
	"github.com/julianstephens/mindbloom/internal/cli"
	"github.com/julianstephens/mindbloom/internal/constants"
	"github.com/julianstephens/mindbloom/internal/models"
	"github.com/julianstephens/mindbloom/internal/utils"
)

type MoodCmd struct {
	Log    LogCmd    `cmd:"" help:"Log today's mood (or another day's)."`
	Show   ShowCmd   `cmd:"" help:"Show the mood logged for a day." default:"1"`
	Range  RangeCmd  `cmd:"" help:"List moods between two dates, inclusive."`
	List   ListCmd   `cmd:"" help:"List every logged mood, newest first."`
	Delete DeleteCmd `cmd:"" help:"Delete the mood logged for a day."`
	Stats  StatsCmd  `cmd:"" help:"Summarize recent moods."`
	Week   WeekCmd   `cmd:"" help:"Summarize the last seven days."`
	Streak StreakCmd `cmd:"" help:"Show how many consecutive days have a mood logged."`
}

// resolveDate accepts "", "today", "yesterday" or a YYYY-MM-DD date.
func resolveDate(ctx *cli.Context, date string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(date)) {
	case "", "today":
		return ctx.Moods.Today(), nil
	case "yesterday":
		return utils.AddDays(ctx.Moods.Today(), -1)
	default:
		return date, nil
	}
}

type LogCmd struct {
	Mood  string `arg:"" optional:"" help:"Mood id (ecstatic, happy, content, sad, depressed, anxious, energetic, calm). Prompted for when omitted."`
	Date  string `help:"Day to log (YYYY-MM-DD, today, yesterday)." default:"today"`
	Notes string `help:"Optional notes." short:"n"`
	JSON  bool   `help:"Print the stored entry as JSON."`
}

func (c *LogCmd) Run(ctx *cli.Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}
	date, err := resolveDate(ctx, c.Date)
	if err != nil {
		return err
	}

	moodID, notes := c.Mood, c.Notes
	if moodID == "" {
		if !ctx.Interactive {
			return fmt.Errorf("mood is required")
		}
		if err := promptMood(date, &moodID, &notes); err != nil {
			return fmt.Errorf("interactive form error: %w", err)
		}
	}

	in := models.MoodInput{MoodID: strings.ToLower(moodID)}
	if notes != "" {
		in.Notes = &notes
	}
	entry, err := ctx.Moods.UpsertForDate(ctx.Ctx(), owner, date, in)
	if err != nil {
		return err
	}
	if c.JSON {
		return cli.WriteJSON(ctx.Out, entry)
	}
	ctx.Printf("✓ Logged %s\n", cli.MoodLine(entry))
	return nil
}

func promptMood(date string, moodID, notes *string) error {
	opts := make([]huh.Option[string], 0, len(models.Moods))
	for _, m := range models.Moods {
		opts = append(opts, huh.NewOption(fmt.Sprintf("%s %s", m.Emoji, m.Name), m.ID))
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewSelect[string]().
				Title(fmt.Sprintf("How are you feeling on %s?", date)).
				Options(opts...).
				Value(moodID),
			huh.NewInput().
				Title("Notes").
				Placeholder("optional").
				Value(notes),
		),
	)
	return form.Run()
}

type ShowCmd struct {
	Date string `arg:"" optional:"" help:"Day to show (YYYY-MM-DD, today, yesterday)." default:"today"`
	JSON bool   `help:"Print the entry as JSON."`
}

func (c *ShowCmd) Run(ctx *cli.Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}
	date, err := resolveDate(ctx, c.Date)
	if err != nil {
		return err
	}
	entry, found, err := ctx.Moods.GetForDate(ctx.Ctx(), owner, date)
	if err != nil {
		return err
	}
	if !found {
		if c.JSON {
			return cli.WriteJSON(ctx.Out, nil)
		}
		ctx.Printf("No mood logged for %s.\n", date)
		return nil
	}
	if c.JSON {
		return cli.WriteJSON(ctx.Out, entry)
	}
	ctx.Println(cli.MoodLine(entry))
	return nil
}

type RangeCmd struct {
	Start string `arg:"" help:"First day (YYYY-MM-DD)."`
	End   string `arg:"" optional:"" help:"Last day, inclusive. Defaults to today." default:"today"`
	JSON  bool   `help:"Print entries as JSON."`
}

func (c *RangeCmd) Run(ctx *cli.Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}
	start, err := resolveDate(ctx, c.Start)
	if err != nil {
		return err
	}
	end, err := resolveDate(ctx, c.End)
	if err != nil {
		return err
	}
	entries, err := ctx.Moods.GetRange(ctx.Ctx(), owner, start, end)
	if err != nil {
		return err
	}
	return printEntries(ctx, entries, c.JSON, fmt.Sprintf("No moods logged between %s and %s.", start, end))
}

type ListCmd struct {
	Limit int  `help:"Show at most this many entries (0 for all)." default:"0"`
	JSON  bool `help:"Print entries as JSON."`
}

func (c *ListCmd) Run(ctx *cli.Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}
	entries, err := ctx.Moods.GetAll(ctx.Ctx(), owner)
	if err != nil {
		return err
	}
	if c.Limit > 0 && len(entries) > c.Limit {
		entries = entries[:c.Limit]
	}
	return printEntries(ctx, entries, c.JSON, "No moods logged yet. Log one with 'mindbloom mood log'.")
}

type DeleteCmd struct {
	Date string `arg:"" help:"Day whose mood to delete (YYYY-MM-DD, today, yesterday)."`
	Yes  bool   `help:"Skip the confirmation prompt." short:"y"`
}

func (c *DeleteCmd) Run(ctx *cli.Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}
	date, err := resolveDate(ctx, c.Date)
	if err != nil {
		return err
	}
	entry, found, err := ctx.Moods.GetForDate(ctx.Ctx(), owner, date)
	if err != nil {
		return err
	}
	if !found {
		ctx.Printf("No mood logged for %s.\n", date)
		return nil
	}

	if !c.Yes {
		ok, err := ctx.Confirm(fmt.Sprintf("Delete %s?", cli.MoodLine(entry)))
		if err != nil {
			return err
		}
		if !ok {
			ctx.Println("Delete cancelled.")
			return nil
		}
	}

	if _, err := ctx.Moods.Delete(ctx.Ctx(), entry.ID, owner); err != nil {
		return err
	}
	ctx.Printf("✓ Deleted mood for %s\n", date)
	return nil
}

type StatsCmd struct {
	Days         int  `help:"Window size in days ending today." default:"30"`
	Distribution bool `help:"Also show how often each mood was logged."`
	Weekly       bool `help:"Also show per-week averages over all history."`
	JSON         bool `help:"Print the summary as JSON."`
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}
	days := c.Days
	if days <= 0 {
		days = constants.DefaultStatsDays
	}
	summary, err := ctx.Moods.Stats(ctx.Ctx(), owner, days)
	if err != nil {
		return err
	}
	if c.JSON {
		return cli.WriteJSON(ctx.Out, summary)
	}

	ctx.Printf("%s", cli.SummaryBlock(fmt.Sprintf("Last %d days", days), summary))

	if c.Distribution && summary.TotalEntries > 0 {
		ctx.Println()
		ctx.Println(cli.TitleStyle.Render("Distribution"))
		for _, mc := range analytics.Distribution(summary.Entries) {
			m, _ := models.LookupMood(mc.MoodID)
			ctx.Printf("  %s %-10s %s %d\n", m.Emoji, m.Name, strings.Repeat("■", mc.Count), mc.Count)
		}
	}

	if c.Weekly {
		weeks, err := ctx.Moods.WeeklyAverages(ctx.Ctx(), owner)
		if err != nil {
			return err
		}
		ctx.Println()
		ctx.Println(cli.TitleStyle.Render("Weekly averages"))
		if len(weeks) == 0 {
			ctx.Println(cli.MutedStyle.Render("  No history yet."))
		}
		for _, w := range weeks {
			ctx.Printf("  week of %s  %.1f  (%d)\n", w.WeekStart, w.Average, w.Count)
		}
	}
	return nil
}

type WeekCmd struct {
	JSON bool `help:"Print the summary as JSON."`
}

func (c *WeekCmd) Run(ctx *cli.Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}
	summary, err := ctx.Moods.Week(ctx.Ctx(), owner)
	if err != nil {
		return err
	}
	if c.JSON {
		return cli.WriteJSON(ctx.Out, summary)
	}

	ctx.Printf("%s", cli.SummaryBlock("This week", summary))
	if summary.TotalEntries > 0 {
		ctx.Println()
		for _, e := range summary.Entries {
			ctx.Println("  " + cli.MoodLine(e))
		}
	}
	return nil
}

type StreakCmd struct{}

func (c *StreakCmd) Run(ctx *cli.Context) error {
	owner, err := ctx.Owner()
	if err != nil {
		return err
	}
	n, err := ctx.Moods.Streak(ctx.Ctx(), owner)
	if err != nil {
		return err
	}
	switch n {
	case 0:
		ctx.Println("No streak yet. Log today's mood to start one.")
	case 1:
		ctx.Println("🔥 1 day streak")
	default:
		ctx.Printf("🔥 %d day streak\n", n)
	}
	return nil
}

func printEntries(ctx *cli.Context, entries []models.MoodEntry, asJSON bool, empty string) error {
	if asJSON {
		return cli.WriteJSON(ctx.Out, entries)
	}
	if len(entries) == 0 {
		ctx.Println(empty)
		return nil
	}
	for _, e := range entries {
		ctx.Println(cli.MoodLine(e))
	}
	return nil
}
