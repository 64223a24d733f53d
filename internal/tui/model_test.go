package tui

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/streakline/internal/cadence"
	"github.com/julianstephens/streakline/internal/habits"
	"github.com/julianstephens/streakline/internal/models"
)

var today = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

type fakeBackend struct {
	mu       sync.Mutex
	habits   []models.HabitWithStreak
	logged   []string
	removed  []string
	refresh  []string
	archived []string
}

func (f *fakeBackend) ListHabits(_ context.Context, _ string, _ habits.HabitFilter) (habits.HabitPage, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	list := append([]models.HabitWithStreak(nil), f.habits...)
	return habits.HabitPage{Habits: list, Pagination: habits.Pagination{Page: 1, Limit: 100, Total: len(list), TotalPages: 1}}, nil
}

func (f *fakeBackend) LogCompletion(_ context.Context, in habits.LogCompletionInput) (models.CompletionLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.logged = append(f.logged, in.HabitID)
	for i := range f.habits {
		if f.habits[i].ID == in.HabitID {
			d := *in.Date
			f.habits[i].LastCompleted = &d
			f.habits[i].CurrentStreak++
		}
	}
	return models.CompletionLog{HabitID: in.HabitID, Date: *in.Date}, nil
}

func (f *fakeBackend) RemoveCompletion(_ context.Context, habitID, _ string, date time.Time) (models.CompletionLog, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, habitID)
	return models.CompletionLog{HabitID: habitID, Date: date}, nil
}

func (f *fakeBackend) RecomputeStreak(_ context.Context, _, habitID string) (models.StreakRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refresh = append(f.refresh, habitID)
	return models.StreakRecord{HabitID: habitID}, nil
}

func (f *fakeBackend) ArchiveHabit(_ context.Context, _, habitID string, _ bool) (models.Habit, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.archived = append(f.archived, habitID)
	return models.Habit{ID: habitID}, nil
}

func (f *fakeBackend) Today() time.Time { return today }

func newFake() *fakeBackend {
	yesterday := today.AddDate(0, 0, -1)
	return &fakeBackend{habits: []models.HabitWithStreak{
		{Habit: models.Habit{ID: "h1", Name: "Read", Cadence: cadence.Daily{}}, CurrentStreak: 2, LongestStreak: 4, LastCompleted: &yesterday},
		{Habit: models.Habit{ID: "h2", Name: "Run", Cadence: cadence.Weekly{Days: cadence.NewWeekdaySet(time.Monday)}}, CurrentStreak: 1, LongestStreak: 1, LastCompleted: &today},
	}}
}

// drive runs cmd and feeds each resulting message back into the model until
// no command is left.
func drive(t *testing.T, m tea.Model, cmd tea.Cmd) tea.Model {
	t.Helper()
	for i := 0; cmd != nil && i < 10; i++ {
		msg := cmd()
		if msg == nil {
			return m
		}
		m, cmd = m.Update(msg)
	}
	return m
}

func loaded(t *testing.T, f *fakeBackend) Model {
	t.Helper()
	m := New(f, "alice")
	out := drive(t, m, m.Init())
	return out.(Model)
}

func TestModelLoadsHabits(t *testing.T) {
	m := loaded(t, newFake())

	require.Len(t, m.habits, 2)
	rows := m.rows()
	assert.Equal(t, "○", rows[0][0])
	assert.Equal(t, "Read", rows[0][1])
	assert.Equal(t, "✓", rows[1][0])
	assert.Equal(t, "weekly on Mon", rows[1][2])

	view := m.View()
	assert.Contains(t, view, "2026-10-19")
	assert.Contains(t, view, "Read")
}

func TestToggleMarksAndUnmarksToday(t *testing.T) {
	f := newFake()
	m := loaded(t, f)

	out, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = drive(t, out, cmd).(Model)
	assert.Equal(t, []string{"h1"}, f.logged)
	assert.Contains(t, m.status, `Marked "Read" done`)
	assert.Equal(t, "✓", m.rows()[0][0])

	out, cmd = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	drive(t, out, cmd)
	assert.Equal(t, []string{"h1"}, f.removed)
}

func TestRefreshAndArchiveUseSelectedHabit(t *testing.T) {
	f := newFake()
	m := loaded(t, f)

	out, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = out.(Model)

	out, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("r")})
	m = drive(t, out, cmd).(Model)
	assert.Equal(t, []string{"h2"}, f.refresh)

	out, cmd = m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("x")})
	drive(t, out, cmd)
	assert.Equal(t, []string{"h2"}, f.archived)
}

func TestEmptyDashboard(t *testing.T) {
	m := loaded(t, &fakeBackend{})

	out, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.True(t, strings.Contains(out.View(), "No habits yet"))
}

func TestQuit(t *testing.T) {
	m := loaded(t, newFake())
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	require.NotNil(t, cmd)
	assert.IsType(t, tea.QuitMsg{}, cmd())
}
