package tracking

import (
	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/models"
)

// StreakCmd shows the stored streak. The current streak is as of the last
// change to the habit; --refresh recomputes it against today.
type StreakCmd struct {
	Habit   string `arg:"" help:"Habit ID or name."`
	Refresh bool   `short:"r" help:"Recompute the streak against today's date."`
	JSON    bool   `help:"Print the streak record as JSON."`
}

func (c *StreakCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Service.ResolveHabit(ctx.RunContext(), ctx.UserID, c.Habit)
	if err != nil {
		return err
	}

	var rec models.StreakRecord
	if c.Refresh {
		rec, err = ctx.Service.RecomputeStreak(ctx.RunContext(), ctx.UserID, h.ID)
	} else {
		rec, err = ctx.Service.GetStreak(ctx.RunContext(), h.ID, ctx.UserID)
	}
	if err != nil {
		return err
	}

	if c.JSON {
		return ctx.JSON(rec)
	}
	ctx.Println(cli.TitleStyle.Render(h.Name))
	ctx.Println(cli.StreakDetails(rec))
	return nil
}
