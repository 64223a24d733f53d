package habit

import (
	"github.com/julianstephens/streakline/internal/cadence"
	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/habits"
)

// HabitEditCmd changes only the flags that are given. Changing the cadence
// recomputes the streak.
type HabitEditCmd struct {
	Habit       string  `arg:"" help:"Habit ID or name."`
	Name        *string `help:"New name."`
	Frequency   *string `short:"f" help:"New cadence (daily|weekly|custom)."`
	Days        string  `short:"d" help:"Weekdays for a weekly cadence."`
	Interval    int     `short:"i" help:"Interval for a custom cadence."`
	Target      *int    `short:"t" help:"New target value."`
	Unit        *string `short:"u" help:"New unit."`
	Description *string `help:"New description."`
	Color       *string `help:"New color (#RRGGBB)."`
	Icon        *string `help:"New icon."`
	Reminder    *string `help:"New reminder time (HH:MM). Empty disables reminders."`
}

func (c *HabitEditCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Service.ResolveHabit(ctx.RunContext(), ctx.UserID, c.Habit)
	if err != nil {
		return err
	}

	patch := habits.HabitPatch{
		Name:        c.Name,
		Description: c.Description,
		Icon:        c.Icon,
		Color:       c.Color,
		Unit:        c.Unit,
		TargetValue: c.Target,
	}
	if c.Frequency != nil {
		if patch.Cadence, err = cli.ParseCadence(*c.Frequency, c.Days, c.Interval); err != nil {
			return err
		}
	}
	if c.Reminder != nil {
		enabled := *c.Reminder != ""
		patch.ReminderEnabled = &enabled
		patch.ReminderTime = c.Reminder
	}

	updated, err := ctx.Service.UpdateHabit(ctx.RunContext(), ctx.UserID, h.ID, patch)
	if err != nil {
		return err
	}
	ctx.Success("Updated habit %q (%s)", updated.Name, cadence.Describe(updated.Cadence))
	return nil
}
