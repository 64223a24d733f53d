package tracking

import (
	"github.com/julianstephens/streakline/internal/cli"
)

type HistoryCmd struct {
	Habit string `arg:"" help:"Habit ID or name."`
	From  string `help:"First date to include (YYYY-MM-DD)."`
	To    string `help:"Last date to include (YYYY-MM-DD)."`
	JSON  bool   `help:"Print the logs as JSON."`
}

func (c *HistoryCmd) Run(ctx *cli.Context) error {
	from, err := cli.ParseOptionalDate(c.From)
	if err != nil {
		return err
	}
	to, err := cli.ParseOptionalDate(c.To)
	if err != nil {
		return err
	}
	h, err := ctx.Service.ResolveHabit(ctx.RunContext(), ctx.UserID, c.Habit)
	if err != nil {
		return err
	}

	logs, err := ctx.Service.History(ctx.RunContext(), h.ID, ctx.UserID, from, to)
	if err != nil {
		return err
	}

	if c.JSON {
		return ctx.JSON(logs)
	}
	if len(logs) == 0 {
		ctx.Printf("No completions recorded for %q.\n", h.Name)
		return nil
	}
	ctx.Println(cli.TitleStyle.Render(h.Name))
	ctx.Println(cli.LogTable(logs, h.Unit))
	return nil
}
