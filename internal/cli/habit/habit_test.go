package habit

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/julianstephens/streakline/internal/cadence"
	"github.com/julianstephens/streakline/internal/cli/clitest"
	apperrors "github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/habits"
	"github.com/julianstephens/streakline/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestHabitAddCmd(t *testing.T) {
	ctx, out := clitest.NewContext(t)

	cmd := &HabitAddCmd{Name: "Gym", Frequency: "weekly", Days: "mon,wed,fri", Target: 1, Color: "#10B981"}
	require.NoError(t, cmd.Validate())
	require.NoError(t, cmd.Run(ctx))
	assert.Contains(t, out.String(), `Added habit "Gym" (weekly on Mon,Wed,Fri)`)

	h, err := ctx.Service.ResolveHabit(ctx.RunContext(), ctx.UserID, "gym")
	require.NoError(t, err)
	assert.Equal(t, cadence.Weekly{Days: cadence.NewWeekdaySet(time.Monday, time.Wednesday, time.Friday)}, h.Cadence)
	assert.Equal(t, "#10B981", h.Color)
}

func TestHabitAddCmdValidation(t *testing.T) {
	ctx, _ := clitest.NewContext(t)

	assert.Error(t, (&HabitAddCmd{}).Validate())
	assert.NoError(t, (&HabitAddCmd{Interactive: true}).Validate())

	err := (&HabitAddCmd{Name: "Gym", Frequency: "weekly", Target: 1}).Run(ctx)
	assert.ErrorIs(t, err, apperrors.ErrInvalidCadence)

	err = (&HabitAddCmd{Name: "Read", Frequency: "daily", Target: 1, Reminder: "25:00"}).Run(ctx)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestHabitAddCmdJSON(t *testing.T) {
	ctx, out := clitest.NewContext(t)

	require.NoError(t, (&HabitAddCmd{Name: "Stretch", Frequency: "custom", Interval: 2, Target: 1, JSON: true}).Run(ctx))

	var got models.Habit
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, "Stretch", got.Name)
	assert.Equal(t, "tester", got.UserID)
}

func TestHabitListCmd(t *testing.T) {
	ctx, out := clitest.NewContext(t)

	require.NoError(t, (&HabitListCmd{Page: 1, Limit: 20}).Run(ctx))
	assert.Contains(t, out.String(), "No habits found.")

	require.NoError(t, (&HabitAddCmd{Name: "Read", Frequency: "daily", Target: 1}).Run(ctx))
	require.NoError(t, (&HabitAddCmd{Name: "Walk", Frequency: "daily", Target: 1}).Run(ctx))
	require.NoError(t, (&HabitArchiveCmd{Habit: "Walk"}).Run(ctx))

	out.Reset()
	require.NoError(t, (&HabitListCmd{Page: 1, Limit: 20}).Run(ctx))
	assert.Contains(t, out.String(), "Read")
	assert.NotContains(t, out.String(), "Walk")

	out.Reset()
	require.NoError(t, (&HabitListCmd{Archived: true, Sort: "name", Order: "asc", Page: 1, Limit: 20, JSON: true}).Run(ctx))
	var page habits.HabitPage
	require.NoError(t, json.Unmarshal(out.Bytes(), &page))
	require.Len(t, page.Habits, 2)
	assert.Equal(t, "Read", page.Habits[0].Name)
	assert.Equal(t, "Walk", page.Habits[1].Name)
	assert.True(t, page.Habits[1].IsArchived)

	err := (&HabitListCmd{Page: 1, Limit: 500}).Run(ctx)
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestHabitShowCmd(t *testing.T) {
	ctx, out := clitest.NewContext(t)
	require.NoError(t, (&HabitAddCmd{Name: "Read", Frequency: "daily", Target: 20, Unit: "pages"}).Run(ctx))

	out.Reset()
	require.NoError(t, (&HabitShowCmd{Habit: "Read"}).Run(ctx))
	assert.Contains(t, out.String(), "20 pages")
	assert.Contains(t, out.String(), "Current streak")

	err := (&HabitShowCmd{Habit: "Nope"}).Run(ctx)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestHabitEditCmd(t *testing.T) {
	ctx, out := clitest.NewContext(t)
	require.NoError(t, (&HabitAddCmd{Name: "Read", Frequency: "daily", Target: 1}).Run(ctx))

	out.Reset()
	err := (&HabitEditCmd{Habit: "Read", Name: ptr("Read books"), Frequency: ptr("custom"), Interval: 2, Reminder: ptr("07:30")}).Run(ctx)
	require.NoError(t, err)
	assert.Contains(t, out.String(), `Updated habit "Read books" (every 2 days)`)

	h, err := ctx.Service.ResolveHabit(ctx.RunContext(), ctx.UserID, "Read books")
	require.NoError(t, err)
	assert.Equal(t, cadence.Custom{IntervalDays: 2}, h.Cadence)
	assert.True(t, h.ReminderEnabled)
	assert.Equal(t, "07:30", h.ReminderTime)

	require.NoError(t, (&HabitEditCmd{Habit: h.ID, Reminder: ptr("")}).Run(ctx))
	h, err = ctx.Service.GetHabit(ctx.RunContext(), ctx.UserID, h.ID)
	require.NoError(t, err)
	assert.False(t, h.ReminderEnabled)
}

func TestHabitArchiveAndDelete(t *testing.T) {
	ctx, out := clitest.NewContext(t)
	require.NoError(t, (&HabitAddCmd{Name: "Read", Frequency: "daily", Target: 1}).Run(ctx))

	require.NoError(t, (&HabitArchiveCmd{Habit: "Read"}).Run(ctx))
	require.NoError(t, (&HabitUnarchiveCmd{Habit: "Read"}).Run(ctx))
	assert.Contains(t, out.String(), `Restored habit "Read"`)

	require.NoError(t, (&HabitDeleteCmd{Habit: "Read", Yes: true}).Run(ctx))
	assert.Contains(t, out.String(), `Deleted habit "Read"`)

	_, err := ctx.Service.ResolveHabit(ctx.RunContext(), ctx.UserID, "Read")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}
