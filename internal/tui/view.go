package tui

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/julianstephens/streakline/internal/constants"
)

func (m Model) View() string {
	header := titleStyle.Render(fmt.Sprintf("streakline · %s", m.today.Format(constants.DateFormat)))

	var body string
	if len(m.habits) == 0 {
		body = mutedStyle.Render("No habits yet. Add one with 'streakline habit add NAME'.")
	} else {
		body = m.table.View()
	}

	var status string
	switch {
	case m.err != nil:
		status = dangerStyle.Render("Error: " + m.err.Error())
	case m.status != "":
		status = statusStyle.Render("✓ " + m.status)
	}

	return docStyle.Render(lipgloss.JoinVertical(
		lipgloss.Left,
		header,
		"",
		body,
		status,
		m.help.View(m.keys),
	))
}
