package tracking

import (
	"fmt"
	"strconv"

	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/habits"
)

type StatsCmd struct {
	Period string `short:"p" help:"Window for completion counts (week|month|quarter|year|all)." enum:"week,month,quarter,year,all" default:"month"`
	From   string `help:"Start of a custom window (YYYY-MM-DD). Requires --to."`
	To     string `help:"End of a custom window (YYYY-MM-DD). Requires --from."`
	JSON   bool   `help:"Print the statistics as JSON."`
}

func (c *StatsCmd) Validate() error {
	if (c.From == "") != (c.To == "") {
		return fmt.Errorf("--from and --to must be given together")
	}
	return nil
}

func (c *StatsCmd) Run(ctx *cli.Context) error {
	from, err := cli.ParseOptionalDate(c.From)
	if err != nil {
		return err
	}
	to, err := cli.ParseOptionalDate(c.To)
	if err != nil {
		return err
	}

	stats, err := ctx.Service.Stats(ctx.RunContext(), ctx.UserID, habits.StatsQuery{
		Period: habits.StatsPeriod(c.Period),
		Start:  from,
		End:    to,
	})
	if err != nil {
		return err
	}

	if c.JSON {
		return ctx.JSON(stats)
	}

	window := string(stats.Period)
	if from != nil {
		window = "custom"
	}
	ctx.Println(cli.TitleStyle.Render("Habit statistics"))
	ctx.Println(cli.Fields(
		"Habits", fmt.Sprintf("%d (%d active)", stats.Habits.Total, stats.Habits.Active),
		"Cadences", fmt.Sprintf("%d daily, %d weekly, %d custom", stats.Habits.Daily, stats.Habits.Weekly, stats.Habits.Custom),
		"Window", fmt.Sprintf("%s (%s to %s)", window, stats.Start.Format(constants.DateFormat), stats.End.Format(constants.DateFormat)),
		"Completions", strconv.Itoa(stats.Completions),
	))

	if len(stats.TopStreaks) > 0 {
		ctx.Println()
		ctx.Println(cli.TitleStyle.Render("Top streaks"))
		ctx.Println(cli.HabitTable(stats.TopStreaks))
	}
	return nil
}
