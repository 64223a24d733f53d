package sqldb

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/julianstephens/streakline/internal/cadence"
	apperrors "github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/models"
)

// Tx is the storage.Tx implementation. Inside a transaction every statement
// must go through tx; touching the pool would deadlock a single-connection
// SQLite database.
type Tx struct {
	tx      *sql.Tx
	dialect Dialect
}

const logColumns = `id, habit_id, user_id, completed_date, completed_value, notes, created_at, updated_at`

func (t *Tx) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return t.tx.QueryRowContext(ctx, t.dialect.Rebind(query), args...)
}

func (t *Tx) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return t.tx.ExecContext(ctx, t.dialect.Rebind(query), args...)
}

func (t *Tx) LockHabit(ctx context.Context, userID, habitID string) (models.Habit, error) {
	row := t.queryRow(ctx, `SELECT `+habitColumns+` FROM habits h WHERE h.id = ? AND h.user_id = ?`+t.dialect.LockClause(), habitID, userID)
	h, err := scanHabit(row)
	if err != nil {
		return models.Habit{}, notFound(err)
	}
	return h, nil
}

func (t *Tx) InsertHabit(ctx context.Context, h models.Habit) error {
	_, err := t.exec(ctx, `
		INSERT INTO habits (id, user_id, name, description, icon, color, unit,
			frequency, weekly_days, custom_interval_days, target_value,
			reminder_enabled, reminder_time, is_archived, archived_at,
			created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`, habitArgs(h)...)
	if err != nil {
		return fmt.Errorf("failed to insert habit: %w", err)
	}
	return nil
}

func (t *Tx) UpdateHabit(ctx context.Context, h models.Habit) error {
	kind, days, interval := cadence.Encode(h.Cadence)
	res, err := t.exec(ctx, `
		UPDATE habits SET name = ?, description = ?, icon = ?, color = ?, unit = ?,
			frequency = ?, weekly_days = ?, custom_interval_days = ?, target_value = ?,
			reminder_enabled = ?, reminder_time = ?, updated_at = ?
		WHERE id = ? AND user_id = ?`,
		h.Name, h.Description, h.Icon, h.Color, h.Unit,
		string(kind), int64(days), interval, h.TargetValue,
		h.ReminderEnabled, h.ReminderTime, timeArg(h.UpdatedAt),
		h.ID, h.UserID)
	if err != nil {
		return fmt.Errorf("failed to update habit: %w", err)
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

func scanLog(row rowScanner) (models.CompletionLog, error) {
	var l models.CompletionLog
	date, created, updated := dateValue(), &timeValue{}, &timeValue{}
	if err := row.Scan(&l.ID, &l.HabitID, &l.UserID, date, &l.Value, &l.Notes, created, updated); err != nil {
		return models.CompletionLog{}, err
	}
	l.Date = date.Time
	l.CreatedAt = created.Time
	l.UpdatedAt = updated.Time
	return l, nil
}

func (t *Tx) UpsertCompletion(ctx context.Context, log models.CompletionLog, today time.Time) (models.CompletionLog, error) {
	if cadence.Day(log.Date).After(cadence.Day(today)) {
		return models.CompletionLog{}, apperrors.ErrFutureDate
	}
	row := t.queryRow(ctx, `
		INSERT INTO habit_logs (`+logColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (habit_id, completed_date) DO UPDATE SET
			completed_value = excluded.completed_value,
			notes = excluded.notes,
			updated_at = excluded.updated_at
		RETURNING `+logColumns,
		log.ID, log.HabitID, log.UserID, dateArg(log.Date), log.Value, log.Notes,
		timeArg(log.CreatedAt), timeArg(log.UpdatedAt))
	saved, err := scanLog(row)
	if err != nil {
		return models.CompletionLog{}, fmt.Errorf("failed to upsert completion: %w", err)
	}
	return saved, nil
}

func (t *Tx) DeleteCompletion(ctx context.Context, habitID string, date time.Time) (models.CompletionLog, error) {
	row := t.queryRow(ctx, `
		DELETE FROM habit_logs WHERE habit_id = ? AND completed_date = ?
		RETURNING `+logColumns, habitID, dateArg(date))
	removed, err := scanLog(row)
	if err != nil {
		return models.CompletionLog{}, notFound(err)
	}
	return removed, nil
}

func (t *Tx) ListCompletionDates(ctx context.Context, habitID string) ([]time.Time, error) {
	rows, err := t.tx.QueryContext(ctx, t.dialect.Rebind(`
		SELECT completed_date FROM habit_logs
		WHERE habit_id = ? ORDER BY completed_date DESC`), habitID)
	if err != nil {
		return nil, fmt.Errorf("failed to list completion dates: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		d := dateValue()
		if err := rows.Scan(d); err != nil {
			return nil, err
		}
		dates = append(dates, d.Time)
	}
	return dates, rows.Err()
}

func (t *Tx) SaveStreak(ctx context.Context, rec models.StreakRecord) error {
	_, err := t.exec(ctx, `
		INSERT INTO habit_streaks (habit_id, current_streak, current_streak_start_date,
			longest_streak, longest_streak_start_date, longest_streak_end_date,
			last_completed_date, total_completions, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (habit_id) DO UPDATE SET
			current_streak = excluded.current_streak,
			current_streak_start_date = excluded.current_streak_start_date,
			longest_streak = excluded.longest_streak,
			longest_streak_start_date = excluded.longest_streak_start_date,
			longest_streak_end_date = excluded.longest_streak_end_date,
			last_completed_date = excluded.last_completed_date,
			total_completions = excluded.total_completions,
			updated_at = excluded.updated_at`,
		rec.HabitID, rec.CurrentStreak, nullDateArg(rec.CurrentStreakStart),
		rec.LongestStreak, nullDateArg(rec.LongestStreakStart), nullDateArg(rec.LongestStreakEnd),
		nullDateArg(rec.LastCompleted), rec.TotalCompletions, timeArg(rec.UpdatedAt))
	if err != nil {
		return fmt.Errorf("failed to save streak: %w", err)
	}
	return nil
}
