package sqldb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/streakline/internal/cadence"
	apperrors "github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/models"
	"github.com/julianstephens/streakline/internal/storage"
)

const habitColumns = `h.id, h.user_id, h.name, h.description, h.icon, h.color, h.unit,
	h.frequency, h.weekly_days, h.custom_interval_days, h.target_value,
	h.reminder_enabled, h.reminder_time, h.is_archived, h.archived_at,
	h.created_at, h.updated_at`

const streakSummaryColumns = `COALESCE(s.current_streak, 0), COALESCE(s.longest_streak, 0),
	s.last_completed_date, COALESCE(s.total_completions, 0)`

// scanHabit reads habitColumns followed by any extra destinations.
func scanHabit(row rowScanner, extra ...any) (models.Habit, error) {
	var (
		h                  models.Habit
		kind               string
		days, interval     int64
		archivedAt         = &timeValue{}
		createdAt, updated = &timeValue{}, &timeValue{}
	)
	dest := []any{
		&h.ID, &h.UserID, &h.Name, &h.Description, &h.Icon, &h.Color, &h.Unit,
		&kind, &days, &interval, &h.TargetValue,
		&h.ReminderEnabled, &h.ReminderTime, &h.IsArchived, archivedAt,
		createdAt, updated,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return models.Habit{}, err
	}

	c, err := cadence.New(cadence.Kind(kind), cadence.WeekdaySet(days), int(interval))
	if err != nil {
		return models.Habit{}, fmt.Errorf("habit %s has a corrupt cadence: %w", h.ID, err)
	}
	h.Cadence = c
	h.ArchivedAt = archivedAt.Ptr()
	h.CreatedAt = createdAt.Time
	h.UpdatedAt = updated.Time
	return h, nil
}

func scanHabitWithStreak(row rowScanner) (models.HabitWithStreak, error) {
	var hs models.HabitWithStreak
	last := dateValue()
	h, err := scanHabit(row, &hs.CurrentStreak, &hs.LongestStreak, last, &hs.TotalCompletions)
	if err != nil {
		return models.HabitWithStreak{}, err
	}
	hs.Habit = h
	hs.LastCompleted = last.Ptr()
	return hs, nil
}

// habitArgs returns the column values written for h, in insert order.
func habitArgs(h models.Habit) []any {
	kind, days, interval := cadence.Encode(h.Cadence)
	return []any{
		h.ID, h.UserID, h.Name, h.Description, h.Icon, h.Color, h.Unit,
		string(kind), int64(days), interval, h.TargetValue,
		h.ReminderEnabled, h.ReminderTime, h.IsArchived, nullTimeArg(h.ArchivedAt),
		timeArg(h.CreatedAt), timeArg(h.UpdatedAt),
	}
}

func notFound(err error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return apperrors.ErrNotFound
	}
	return err
}

func (d *DB) GetHabit(ctx context.Context, userID, habitID string) (models.Habit, error) {
	row := d.queryRow(ctx, `SELECT `+habitColumns+` FROM habits h WHERE h.id = ? AND h.user_id = ?`, habitID, userID)
	h, err := scanHabit(row)
	if err != nil {
		return models.Habit{}, notFound(err)
	}
	return h, nil
}

func (d *DB) FindHabitsByName(ctx context.Context, userID, name string) ([]models.Habit, error) {
	rows, err := d.query(ctx, `SELECT `+habitColumns+` FROM habits h
		WHERE h.user_id = ? AND LOWER(h.name) = LOWER(?)
		ORDER BY h.created_at`, userID, name)
	if err != nil {
		return nil, fmt.Errorf("failed to find habits: %w", err)
	}
	defer rows.Close()

	var habits []models.Habit
	for rows.Next() {
		h, err := scanHabit(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, h)
	}
	return habits, rows.Err()
}

func (d *DB) ListHabits(ctx context.Context, userID string, filter storage.HabitFilter) ([]models.HabitWithStreak, int, error) {
	where := []string{"h.user_id = ?"}
	args := []any{userID}
	if filter.Frequency != "" {
		where = append(where, "h.frequency = ?")
		args = append(args, string(filter.Frequency))
	}
	if filter.Archived != nil {
		where = append(where, "h.is_archived = ?")
		args = append(args, *filter.Archived)
	}
	whereSQL := strings.Join(where, " AND ")

	var total int
	if err := d.queryRow(ctx, `SELECT COUNT(*) FROM habits h WHERE `+whereSQL, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count habits: %w", err)
	}

	query := `SELECT ` + habitColumns + `, ` + streakSummaryColumns + `
		FROM habits h LEFT JOIN habit_streaks s ON s.habit_id = h.id
		WHERE ` + whereSQL + `
		ORDER BY ` + orderBy(filter) + `
		LIMIT ? OFFSET ?`
	rows, err := d.query(ctx, query, append(args, filter.Limit, filter.Offset)...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list habits: %w", err)
	}
	defer rows.Close()

	habits, err := collectHabitsWithStreak(rows)
	if err != nil {
		return nil, 0, err
	}
	return habits, total, nil
}

func collectHabitsWithStreak(rows *sql.Rows) ([]models.HabitWithStreak, error) {
	habits := []models.HabitWithStreak{}
	for rows.Next() {
		hs, err := scanHabitWithStreak(rows)
		if err != nil {
			return nil, err
		}
		habits = append(habits, hs)
	}
	return habits, rows.Err()
}

// orderBy maps a filter onto a fixed ORDER BY clause. Only whitelisted
// columns reach the query text.
func orderBy(filter storage.HabitFilter) string {
	col := "h.created_at"
	switch filter.SortBy {
	case storage.SortByName:
		col = "h.name"
	case storage.SortByCurrentStreak:
		col = "COALESCE(s.current_streak, 0)"
	}
	dir := "DESC"
	if filter.SortOrder == storage.SortAsc {
		dir = "ASC"
	}
	return col + " " + dir + ", h.id " + dir
}

func (d *DB) SetArchived(ctx context.Context, userID, habitID string, archivedAt *time.Time) (models.Habit, error) {
	now := time.Now()
	res, err := d.exec(ctx, `
		UPDATE habits SET is_archived = ?, archived_at = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		archivedAt != nil, nullTimeArg(archivedAt), timeArg(now), habitID, userID)
	if err != nil {
		return models.Habit{}, fmt.Errorf("failed to update habit: %w", err)
	}
	if n, err := res.RowsAffected(); err != nil {
		return models.Habit{}, err
	} else if n == 0 {
		return models.Habit{}, apperrors.ErrNotFound
	}
	return d.GetHabit(ctx, userID, habitID)
}

// DeleteHabit removes the habit; its logs and streak record go with it
// through ON DELETE CASCADE.
func (d *DB) DeleteHabit(ctx context.Context, userID, habitID string) error {
	res, err := d.exec(ctx, `DELETE FROM habits WHERE id = ? AND user_id = ?`, habitID, userID)
	if err != nil {
		return fmt.Errorf("failed to delete habit: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
