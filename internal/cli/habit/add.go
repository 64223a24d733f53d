package habit

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/streakline/internal/cadence"
	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/habits"
)

type HabitCmd struct {
	Add       HabitAddCmd       `cmd:"" help:"Add a new habit."`
	List      HabitListCmd      `cmd:"" help:"List habits with their streaks."`
	Show      HabitShowCmd      `cmd:"" help:"Show a habit and its streak."`
	Edit      HabitEditCmd      `cmd:"" help:"Edit a habit."`
	Archive   HabitArchiveCmd   `cmd:"" help:"Archive a habit."`
	Unarchive HabitUnarchiveCmd `cmd:"" help:"Restore an archived habit."`
	Delete    HabitDeleteCmd    `cmd:"" help:"Delete a habit and its history."`
}

type HabitAddCmd struct {
	Name        string `arg:"" optional:"" help:"Habit name."`
	Frequency   string `short:"f" help:"Cadence (daily|weekly|custom)." enum:"daily,weekly,custom" default:"daily"`
	Days        string `short:"d" help:"Comma-separated weekdays for weekly habits (e.g. mon,wed,fri)."`
	Interval    int    `short:"i" help:"Days between completions for custom habits."`
	Target      int    `short:"t" help:"Target value per completion." default:"1"`
	Unit        string `short:"u" help:"Unit of the target value (e.g. pages)."`
	Description string `help:"Longer description."`
	Color       string `help:"Display color as #RRGGBB."`
	Icon        string `help:"Display icon."`
	Reminder    string `help:"Reminder time (HH:MM). Enables reminders."`
	Interactive bool   `short:"I" help:"Fill in the habit with an interactive form."`
	JSON        bool   `help:"Print the created habit as JSON."`
}

func (c *HabitAddCmd) Validate() error {
	if !c.Interactive && strings.TrimSpace(c.Name) == "" {
		return errors.New("habit name is required (or use --interactive)")
	}
	return nil
}

func (c *HabitAddCmd) Run(ctx *cli.Context) error {
	if c.Interactive {
		if err := c.prompt(); err != nil {
			return err
		}
	}

	cad, err := cli.ParseCadence(c.Frequency, c.Days, c.Interval)
	if err != nil {
		return err
	}

	h, err := ctx.Service.CreateHabit(ctx.RunContext(), ctx.UserID, habits.HabitInput{
		Name:            c.Name,
		Description:     c.Description,
		Icon:            c.Icon,
		Color:           c.Color,
		Unit:            c.Unit,
		Cadence:         cad,
		TargetValue:     c.Target,
		ReminderEnabled: c.Reminder != "",
		ReminderTime:    c.Reminder,
	})
	if err != nil {
		return err
	}

	if c.JSON {
		return ctx.JSON(h)
	}
	ctx.Success("Added habit %q (%s)", h.Name, cadence.Describe(h.Cadence))
	ctx.Println(cli.MutedStyle.Render("ID: " + h.ID))
	return nil
}

// prompt fills the command's fields from an interactive form, keeping any
// values already given as flags as defaults.
func (c *HabitAddCmd) prompt() error {
	target := strconv.Itoa(c.Target)
	interval := ""
	if c.Interval > 0 {
		interval = strconv.Itoa(c.Interval)
	}

	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Name").
				Value(&c.Name).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return errors.New("name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Description").
				Value(&c.Description),
			huh.NewSelect[string]().
				Title("Cadence").
				Options(
					huh.NewOption("Every day", string(cadence.KindDaily)),
					huh.NewOption("Specific weekdays", string(cadence.KindWeekly)),
					huh.NewOption("Every N days", string(cadence.KindCustom)),
				).
				Value(&c.Frequency),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("Weekdays").
				Description("For weekly habits, e.g. mon,wed,fri").
				Value(&c.Days).
				Validate(func(s string) error {
					if c.Frequency != string(cadence.KindWeekly) {
						return nil
					}
					set, err := cadence.ParseWeekdays(s)
					if err != nil {
						return err
					}
					return cadence.Validate(cadence.Weekly{Days: set})
				}),
			huh.NewInput().
				Title("Interval (days)").
				Description("For 'Every N days' habits").
				Value(&interval).
				Validate(func(s string) error {
					if c.Frequency != string(cadence.KindCustom) {
						return nil
					}
					i, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || i < 1 {
						return fmt.Errorf("interval must be a positive number of days")
					}
					return nil
				}),
			huh.NewInput().
				Title("Target value").
				Value(&target).
				Validate(func(s string) error {
					i, err := strconv.Atoi(strings.TrimSpace(s))
					if err != nil || i < 1 {
						return fmt.Errorf("target must be a positive number")
					}
					return nil
				}),
			huh.NewInput().
				Title("Unit").
				Value(&c.Unit),
		),
	)
	if err := form.Run(); err != nil {
		return err
	}

	c.Target, _ = strconv.Atoi(strings.TrimSpace(target))
	c.Interval = 0
	c.Days = strings.TrimSpace(c.Days)
	switch cadence.Kind(c.Frequency) {
	case cadence.KindCustom:
		c.Interval, _ = strconv.Atoi(strings.TrimSpace(interval))
		c.Days = ""
	case cadence.KindDaily:
		c.Days = ""
	}
	return nil
}
