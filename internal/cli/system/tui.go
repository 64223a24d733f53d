package system

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/streakline/internal/cli"
	"github.com/julianstephens/streakline/internal/tui"
)

type TuiCmd struct{}

func (c *TuiCmd) Run(ctx *cli.Context) error {
	p := tea.NewProgram(tui.New(ctx.Service, ctx.UserID), tea.WithAltScreen(), tea.WithContext(ctx.RunContext()))
	_, err := p.Run()
	return err
}
