package habits

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/tally/internal/cli"
	"github.com/julianstephens/tally/internal/constants"
	apperrors "github.com/julianstephens/tally/internal/errors"
	"github.com/julianstephens/tally/internal/models"
	"github.com/julianstephens/tally/internal/projection"
	"github.com/julianstephens/tally/internal/render"
	"github.com/julianstephens/tally/internal/utils"
)

type HabitCmd struct {
	List     HabitListCmd     `cmd:"" default:"1" help:"List habits."`
	Show     HabitShowCmd     `cmd:"" help:"Show one habit."`
	Add      HabitAddCmd      `cmd:"" help:"Add a new habit."`
	Edit     HabitEditCmd     `cmd:"" help:"Edit a habit."`
	Archive  HabitArchiveCmd  `cmd:"" help:"Archive a habit."`
	Restore  HabitRestoreCmd  `cmd:"" help:"Restore an archived habit."`
	Delete   HabitDeleteCmd   `cmd:"" help:"Delete a habit permanently."`
	Toggle   HabitToggleCmd   `cmd:"" help:"Toggle a habit's completion for a day."`
	Today    HabitTodayCmd    `cmd:"" help:"Show today's checklist."`
	Week     HabitWeekCmd     `cmd:"" help:"Show the last seven days."`
	Calendar HabitCalendarCmd `cmd:"" help:"Show a month calendar."`
	Day      HabitDayCmd      `cmd:"" help:"Show every habit's state on one day."`
}

type HabitListCmd struct {
	Filter string `help:"Filter: all, completed-today, not-completed, active, archived." default:"all"`
	Sort   string `help:"Sort by: name, current-streak, created." default:"name"`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	if err := ctx.SyncHabits(); err != nil {
		return err
	}
	today := ctx.Habits.Today()
	habits := projection.Apply(ctx.Habits.Habits(), projection.ParseFilter(c.Filter), projection.ParseSortKey(c.Sort), today)
	ctx.Println(render.HabitTable(habits, today))
	return nil
}

type HabitShowCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	if err := ctx.SyncHabits(); err != nil {
		return err
	}
	h, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}
	ctx.Println(render.Habit(h, ctx.Habits.Today()))
	return nil
}

type HabitAddCmd struct {
	Name        string `arg:"" optional:"" help:"Habit name. Omit to fill in a form."`
	Description string `short:"d" help:"Optional description."`
	Color       string `short:"c" help:"Hex color, e.g. #10b981." default:"${default_color}"`
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	def := models.HabitDefinition{Name: c.Name, Description: c.Description, Color: c.Color}
	if strings.TrimSpace(c.Name) == "" {
		if err := habitForm(&def); err != nil {
			return err
		}
	}

	h, err := ctx.Habits.CreateHabit(ctx.Ctx, def)
	if err != nil {
		return err
	}
	ctx.SaveHabits()
	ctx.Printf("✓ Added habit: %s (ID: %s)\n", h.Name, h.ID)
	return nil
}

// habitForm fills def interactively.
func habitForm(def *models.HabitDefinition) error {
	colors := make([]huh.Option[string], 0, len(constants.HabitColors))
	for _, hex := range constants.HabitColors {
		colors = append(colors, huh.NewOption(render.Swatch(hex)+" "+hex, hex))
	}
	if def.Color == "" {
		def.Color = constants.DefaultHabitColor
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				CharLimit(constants.MaxHabitNameLen).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("Habit name is required")
					}
					return nil
				}).
				Value(&def.Name),
			huh.NewText().
				Title("Description").
				CharLimit(constants.MaxHabitDescriptionLen).
				Value(&def.Description),
			huh.NewSelect[string]().
				Title("Color").
				Options(colors...).
				Value(&def.Color),
		),
	)
	if err := form.Run(); err != nil {
		if errors.Is(err, huh.ErrUserAborted) {
			return apperrors.ErrCancelled
		}
		return err
	}
	return nil
}

type HabitEditCmd struct {
	Habit       string  `arg:"" help:"Habit id or name."`
	Name        *string `help:"New name."`
	Description *string `short:"d" help:"New description."`
	Color       *string `short:"c" help:"New hex color."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	if err := ctx.SyncHabits(); err != nil {
		return err
	}
	h, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	def := models.HabitDefinition{Name: h.Name, Description: h.Description, Color: h.Color}
	if c.Name == nil && c.Description == nil && c.Color == nil {
		if err := habitForm(&def); err != nil {
			return err
		}
	}
	if c.Name != nil {
		def.Name = *c.Name
	}
	if c.Description != nil {
		def.Description = *c.Description
	}
	if c.Color != nil {
		def.Color = *c.Color
	}

	updated, err := ctx.Habits.EditHabit(ctx.Ctx, h.ID, def)
	if err != nil {
		return err
	}
	ctx.SaveHabits()
	ctx.Printf("✓ Updated habit: %s\n", updated.Name)
	return nil
}

type HabitArchiveCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
}

func (c *HabitArchiveCmd) Run(ctx *cli.Context) error {
	return setActive(ctx, c.Habit, false)
}

type HabitRestoreCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
}

func (c *HabitRestoreCmd) Run(ctx *cli.Context) error {
	return setActive(ctx, c.Habit, true)
}

func setActive(ctx *cli.Context, ref string, active bool) error {
	if err := ctx.SyncHabits(); err != nil {
		return err
	}
	h, err := ctx.ResolveHabit(ref)
	if err != nil {
		return err
	}
	if h.IsActive == active {
		ctx.Printf("Habit %s is already %s\n", h.Name, activeLabel(active))
		return nil
	}
	if _, err := ctx.Habits.SetActive(ctx.Ctx, h.ID, active); err != nil {
		return err
	}
	ctx.SaveHabits()
	ctx.Printf("✓ Habit %s is now %s\n", h.Name, activeLabel(active))
	return nil
}

func activeLabel(active bool) string {
	if active {
		return "active"
	}
	return "archived"
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	if err := ctx.SyncHabits(); err != nil {
		return err
	}
	h, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	ok, err := ctx.Confirm.Confirm(ctx.Ctx, fmt.Sprintf("Delete %q and all of its history?", h.Name))
	if err != nil {
		return err
	}
	if !ok {
		return apperrors.ErrCancelled
	}

	if err := ctx.Habits.DeleteHabit(ctx.Ctx, h.ID); err != nil {
		return err
	}
	ctx.SaveHabits()
	ctx.Printf("Deleted habit: %s (ID: %s)\n", h.Name, h.ID)
	return nil
}

type HabitToggleCmd struct {
	Habit string `arg:"" help:"Habit id or name."`
	Date  string `help:"Day to toggle (YYYY-MM-DD). Defaults to today."`
}

func (c *HabitToggleCmd) Run(ctx *cli.Context) error {
	if err := ctx.SyncHabits(); err != nil {
		return err
	}
	h, err := ctx.ResolveHabit(c.Habit)
	if err != nil {
		return err
	}

	day := ctx.Habits.Today()
	if c.Date != "" {
		d, err := utils.ParseDay(c.Date, ctx.Clock.Time().Location())
		if err != nil {
			return err
		}
		day = utils.DayKey(d)
	}

	completed, err := ctx.Habits.ToggleCompletion(ctx.Ctx, h.ID, day)
	if err != nil {
		return err
	}
	ctx.SaveHabits()

	if completed {
		ctx.Printf("✓ %s done for %s", h.Name, day)
	} else {
		ctx.Printf("○ %s not done for %s", h.Name, day)
	}
	if updated, ok := ctx.Habits.Habit(h.ID); ok && updated.CurrentStreak > 0 {
		ctx.Printf(" (streak %d)", updated.CurrentStreak)
	}
	ctx.Println()
	return nil
}

type HabitTodayCmd struct{}

func (c *HabitTodayCmd) Run(ctx *cli.Context) error {
	if err := ctx.SyncHabits(); err != nil {
		return err
	}
	ctx.Println(render.TitleStyle.Render("Today, " + ctx.Habits.Today()))
	ctx.Println(render.Checklist(ctx.Habits.TodaysChecklist()))
	return nil
}

type HabitWeekCmd struct {
	Date  string `help:"Last day of the week shown (YYYY-MM-DD). Defaults to today."`
	Limit int    `help:"Maximum number of habits shown." default:"${weekly_rows}"`
}

func (c *HabitWeekCmd) Run(ctx *cli.Context) error {
	if err := ctx.SyncHabits(); err != nil {
		return err
	}
	ref := ctx.Clock.Time()
	if c.Date != "" {
		d, err := utils.ParseDay(c.Date, ref.Location())
		if err != nil {
			return err
		}
		ref = d
	}
	ctx.Println(render.WeekGrid(projection.WeeklyGrid(ctx.Habits.Habits(), ref, c.Limit)))
	return nil
}

type HabitCalendarCmd struct {
	Month string `arg:"" optional:"" help:"Month to show (YYYY-MM). Defaults to this month."`
}

func (c *HabitCalendarCmd) Run(ctx *cli.Context) error {
	ym := projection.MonthOf(ctx.Clock.Time())
	if c.Month != "" {
		parsed, err := ParseMonth(c.Month)
		if err != nil {
			return err
		}
		ym = parsed
	}
	if err := ctx.SyncHabits(); err != nil {
		return err
	}
	ctx.Println(render.Calendar(projection.MonthGrid(ym, ctx.Habits.Habits(), ctx.Habits.Today())))
	return nil
}

// ParseMonth reads a YYYY-MM month.
func ParseMonth(s string) (projection.YearMonth, error) {
	t, err := time.Parse("2006-01", strings.TrimSpace(s))
	if err != nil {
		return projection.YearMonth{}, fmt.Errorf("invalid month %q (expected YYYY-MM)", s)
	}
	return projection.MonthOf(t), nil
}

type HabitDayCmd struct {
	Date string `arg:"" optional:"" help:"Day to show (YYYY-MM-DD). Defaults to today."`
}

func (c *HabitDayCmd) Run(ctx *cli.Context) error {
	day := ""
	if c.Date != "" {
		d, err := utils.ParseDay(c.Date, ctx.Clock.Time().Location())
		if err != nil {
			return err
		}
		day = utils.DayKey(d)
	}
	if err := ctx.SyncHabits(); err != nil {
		return err
	}
	if day == "" {
		day = ctx.Habits.Today()
	}
	ctx.Println(render.DayDetail(day, projection.DayDetail(ctx.Habits.Habits(), day)))
	return nil
}
