package habit

import (
	"fmt"

	"github.com/charmbracelet/huh"

	"github.com/julianstephens/streakline/internal/cli"
)

type HabitArchiveCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
}

func (c *HabitArchiveCmd) Run(ctx *cli.Context) error {
	return setArchived(ctx, c.Habit, true)
}

type HabitUnarchiveCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
}

func (c *HabitUnarchiveCmd) Run(ctx *cli.Context) error {
	return setArchived(ctx, c.Habit, false)
}

func setArchived(ctx *cli.Context, ref string, archived bool) error {
	h, err := ctx.Service.ResolveHabit(ctx.RunContext(), ctx.UserID, ref)
	if err != nil {
		return err
	}
	if _, err := ctx.Service.ArchiveHabit(ctx.RunContext(), ctx.UserID, h.ID, archived); err != nil {
		return err
	}
	if archived {
		ctx.Success("Archived habit %q", h.Name)
	} else {
		ctx.Success("Restored habit %q", h.Name)
	}
	return nil
}

type HabitDeleteCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
	Yes   bool   `short:"y" help:"Do not ask for confirmation."`
}

func (c *HabitDeleteCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Service.ResolveHabit(ctx.RunContext(), ctx.UserID, c.Habit)
	if err != nil {
		return err
	}

	if !c.Yes {
		confirmed := false
		err := huh.NewConfirm().
			Title(fmt.Sprintf("Delete %q and all of its history?", h.Name)).
			Affirmative("Delete").
			Negative("Cancel").
			Value(&confirmed).
			Run()
		if err != nil {
			return err
		}
		if !confirmed {
			ctx.Println("Cancelled.")
			return nil
		}
	}

	if err := ctx.Service.DeleteHabit(ctx.RunContext(), ctx.UserID, h.ID); err != nil {
		return err
	}
	ctx.Success("Deleted habit %q", h.Name)
	return nil
}
