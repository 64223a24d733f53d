package habit

import (
	"fmt"

	"github.com/julianstephens/streakline/internal/cadence"
	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/habits"
	"github.com/julianstephens/streakline/internal/storage"
)

type HabitListCmd struct {
	Archived  bool   `short:"a" help:"Include archived habits."`
	Frequency string `short:"f" help:"Only list habits with this cadence (daily|weekly|custom)."`
	Sort      string `help:"Sort field (name|createdAt|currentStreak)."`
	Order     string `help:"Sort order (asc|desc)."`
	Page      int    `help:"Page number." default:"1"`
	Limit     int    `help:"Habits per page (max 100)." default:"20"`
	JSON      bool   `help:"Print the page as JSON."`
}

func (c *HabitListCmd) Run(ctx *cli.Context) error {
	page, err := ctx.Service.ListHabits(ctx.RunContext(), ctx.UserID, habits.HabitFilter{
		Frequency:       cadence.Kind(c.Frequency),
		IncludeArchived: c.Archived,
		Page:            c.Page,
		Limit:           c.Limit,
		SortBy:          storage.SortField(c.Sort),
		SortOrder:       storage.SortOrder(c.Order),
	})
	if err != nil {
		return err
	}

	if c.JSON {
		return ctx.JSON(page)
	}
	if len(page.Habits) == 0 {
		ctx.Println("No habits found.")
		return nil
	}

	ctx.Println(cli.HabitTable(page.Habits))
	p := page.Pagination
	if p.TotalPages > 1 {
		ctx.Println(cli.MutedStyle.Render(fmt.Sprintf("Page %d of %d (%d habits)", p.Page, p.TotalPages, p.Total)))
	}
	return nil
}

type HabitShowCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
	JSON  bool   `help:"Print the habit and streak as JSON."`
}

func (c *HabitShowCmd) Run(ctx *cli.Context) error {
	h, err := ctx.Service.ResolveHabit(ctx.RunContext(), ctx.UserID, c.Habit)
	if err != nil {
		return err
	}
	rec, err := ctx.Service.GetStreak(ctx.RunContext(), h.ID, ctx.UserID)
	if err != nil {
		return err
	}

	if c.JSON {
		return ctx.JSON(struct {
			Habit  any `json:"habit"`
			Streak any `json:"streak"`
		}{h, rec})
	}
	ctx.Println(cli.TitleStyle.Render(h.Name))
	ctx.Println(cli.HabitDetails(h))
	ctx.Println()
	ctx.Println(cli.StreakDetails(rec))
	return nil
}
