package tracking

import (
	"errors"
	"fmt"

	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/constants"
	apperrors "github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/habits"
)

type LogCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
	Date  string `help:"Date in YYYY-MM-DD format (default: today)."`
	Value *int   `short:"v" help:"Completed value (default: 1)."`
	Notes string `short:"n" help:"Optional note for this entry."`
}

func (c *LogCmd) Run(ctx *cli.Context) error {
	date, err := cli.ParseOptionalDate(c.Date)
	if err != nil {
		return err
	}
	h, err := ctx.Service.ResolveHabit(ctx.RunContext(), ctx.UserID, c.Habit)
	if err != nil {
		return err
	}

	saved, err := ctx.Service.LogCompletion(ctx.RunContext(), habits.LogCompletionInput{
		HabitID: h.ID,
		UserID:  ctx.UserID,
		Date:    date,
		Value:   c.Value,
		Notes:   c.Notes,
	})
	if errors.Is(err, apperrors.ErrFutureDate) {
		return fmt.Errorf("cannot log %q for a future date: %w", h.Name, err)
	}
	if err != nil {
		return err
	}

	rec, err := ctx.Service.GetStreak(ctx.RunContext(), h.ID, ctx.UserID)
	if err != nil {
		return err
	}
	ctx.Success("Logged %q for %s (current streak: %d)", h.Name, saved.Date.Format(constants.DateFormat), rec.CurrentStreak)
	return nil
}

type UnlogCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
	Date  string `help:"Date in YYYY-MM-DD format." required:""`
}

func (c *UnlogCmd) Run(ctx *cli.Context) error {
	date, err := cli.ParseOptionalDate(c.Date)
	if err != nil {
		return err
	}
	if date == nil {
		return apperrors.Validationf("--date is required")
	}
	h, err := ctx.Service.ResolveHabit(ctx.RunContext(), ctx.UserID, c.Habit)
	if err != nil {
		return err
	}

	_, err = ctx.Service.RemoveCompletion(ctx.RunContext(), h.ID, ctx.UserID, *date)
	if errors.Is(err, apperrors.ErrNotFound) {
		return fmt.Errorf("%q has no completion on %s: %w", h.Name, date.Format(constants.DateFormat), err)
	}
	if err != nil {
		return err
	}

	rec, err := ctx.Service.GetStreak(ctx.RunContext(), h.ID, ctx.UserID)
	if err != nil {
		return err
	}
	ctx.Success("Removed %q for %s (current streak: %d)", h.Name, date.Format(constants.DateFormat), rec.CurrentStreak)
	return nil
}
