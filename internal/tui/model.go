// Package tui is the streakline dashboard: the user's habits with their
// streaks, marking today's completion with a single key.
package tui

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/julianstephens/streakline/internal/cadence"
	"github.com/julianstephens/streakline/internal/constants"
	"github.com/julianstephens/streakline/internal/habits"
	"github.com/julianstephens/streakline/internal/models"
	"github.com/julianstephens/streakline/internal/storage"
)

// Backend is the part of the habit service the dashboard drives.
type Backend interface {
	ListHabits(ctx context.Context, userID string, f habits.HabitFilter) (habits.HabitPage, error)
	LogCompletion(ctx context.Context, in habits.LogCompletionInput) (models.CompletionLog, error)
	RemoveCompletion(ctx context.Context, habitID, userID string, date time.Time) (models.CompletionLog, error)
	RecomputeStreak(ctx context.Context, userID, habitID string) (models.StreakRecord, error)
	ArchiveHabit(ctx context.Context, userID, habitID string, archived bool) (models.Habit, error)
	Today() time.Time
}

type habitsLoadedMsg struct {
	habits []models.HabitWithStreak
	err    error
}

type mutationDoneMsg struct {
	status string
	err    error
}

type Model struct {
	backend Backend
	userID  string
	keys    KeyMap
	help    help.Model
	table   table.Model
	habits  []models.HabitWithStreak
	today   time.Time
	status  string
	err     error
	width   int
	height  int
}

func New(backend Backend, userID string) Model {
	t := table.New(
		table.WithColumns(columns(80)),
		table.WithFocused(true),
		table.WithHeight(10),
	)
	t.SetStyles(tableStyles())

	return Model{
		backend: backend,
		userID:  userID,
		keys:    DefaultKeyMap(),
		help:    help.New(),
		table:   t,
		today:   backend.Today(),
	}
}

func columns(width int) []table.Column {
	name := width - 4*10 - 20
	if name < 16 {
		name = 16
	}
	return []table.Column{
		{Title: "", Width: 2},
		{Title: "Habit", Width: name},
		{Title: "Cadence", Width: 18},
		{Title: "Current", Width: 8},
		{Title: "Longest", Width: 8},
		{Title: "Last done", Width: 10},
	}
}

func (m Model) Init() tea.Cmd {
	return m.loadHabits()
}

func (m Model) loadHabits() tea.Cmd {
	return func() tea.Msg {
		var all []models.HabitWithStreak
		for page := 1; ; page++ {
			p, err := m.backend.ListHabits(context.Background(), m.userID, habits.HabitFilter{
				Page:      page,
				Limit:     constants.MaxPageLimit,
				SortBy:    storage.SortByName,
				SortOrder: storage.SortAsc,
			})
			if err != nil {
				return habitsLoadedMsg{err: err}
			}
			all = append(all, p.Habits...)
			if page >= p.Pagination.TotalPages {
				return habitsLoadedMsg{habits: all}
			}
		}
	}
}

// mutate runs fn off the update loop and reports its outcome.
func (m Model) mutate(status string, fn func(ctx context.Context) error) tea.Cmd {
	return func() tea.Msg {
		if err := fn(context.Background()); err != nil {
			return mutationDoneMsg{err: err}
		}
		return mutationDoneMsg{status: status}
	}
}

func (m Model) selected() (models.HabitWithStreak, bool) {
	i := m.table.Cursor()
	if i < 0 || i >= len(m.habits) {
		return models.HabitWithStreak{}, false
	}
	return m.habits[i], true
}

// doneToday reports whether h was completed on the dashboard's date.
func (m Model) doneToday(h models.HabitWithStreak) bool {
	return h.LastCompleted != nil && h.LastCompleted.Equal(m.today)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.help.Width = msg.Width
		m.table.SetColumns(columns(msg.Width - 4))
		if h := msg.Height - 8; h > 3 {
			m.table.SetHeight(h)
		}
		return m, nil

	case habitsLoadedMsg:
		if msg.err != nil {
			m.err = msg.err
			return m, nil
		}
		m.habits = msg.habits
		m.table.SetRows(m.rows())
		if m.table.Cursor() >= len(m.habits) && len(m.habits) > 0 {
			m.table.SetCursor(len(m.habits) - 1)
		}
		return m, nil

	case mutationDoneMsg:
		m.err = msg.err
		m.status = msg.status
		m.today = m.backend.Today()
		return m, m.loadHabits()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	h, ok := m.selected()
	switch {
	case !ok:
	case key.Matches(msg, m.keys.Toggle):
		today := m.today
		if m.doneToday(h) {
			return m, m.mutate(fmt.Sprintf("Unmarked %q", h.Name), func(ctx context.Context) error {
				_, err := m.backend.RemoveCompletion(ctx, h.ID, m.userID, today)
				return err
			})
		}
		return m, m.mutate(fmt.Sprintf("Marked %q done", h.Name), func(ctx context.Context) error {
			_, err := m.backend.LogCompletion(ctx, habits.LogCompletionInput{HabitID: h.ID, UserID: m.userID, Date: &today})
			return err
		})
	case key.Matches(msg, m.keys.Refresh):
		return m, m.mutate(fmt.Sprintf("Recomputed %q", h.Name), func(ctx context.Context) error {
			_, err := m.backend.RecomputeStreak(ctx, m.userID, h.ID)
			return err
		})
	case key.Matches(msg, m.keys.Archive):
		return m, m.mutate(fmt.Sprintf("Archived %q", h.Name), func(ctx context.Context) error {
			_, err := m.backend.ArchiveHabit(ctx, m.userID, h.ID, true)
			return err
		})
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m Model) rows() []table.Row {
	rows := make([]table.Row, len(m.habits))
	for i, h := range m.habits {
		mark := "○"
		if m.doneToday(h) {
			mark = "✓"
		}
		last := "-"
		if h.LastCompleted != nil {
			last = h.LastCompleted.Format(constants.DateFormat)
		}
		rows[i] = table.Row{
			mark,
			h.Name,
			cadence.Describe(h.Cadence),
			strconv.Itoa(h.CurrentStreak),
			strconv.Itoa(h.LongestStreak),
			last,
		}
	}
	return rows
}
