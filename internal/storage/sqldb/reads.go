package sqldb

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/streakline/internal/models"
	"github.com/julianstephens/streakline/internal/storage"
)

// GetStreak returns the stored record, or zeros when the habit has never been
// recomputed.
func (d *DB) GetStreak(ctx context.Context, userID, habitID string) (models.StreakRecord, error) {
	var rec models.StreakRecord
	curStart, longStart, longEnd, last := dateValue(), dateValue(), dateValue(), dateValue()
	updated := &timeValue{}
	err := d.queryRow(ctx, `
		SELECT h.id, COALESCE(s.current_streak, 0), s.current_streak_start_date,
			COALESCE(s.longest_streak, 0), s.longest_streak_start_date, s.longest_streak_end_date,
			s.last_completed_date, COALESCE(s.total_completions, 0), s.updated_at
		FROM habits h LEFT JOIN habit_streaks s ON s.habit_id = h.id
		WHERE h.id = ? AND h.user_id = ?`, habitID, userID).
		Scan(&rec.HabitID, &rec.CurrentStreak, curStart, &rec.LongestStreak, longStart, longEnd,
			last, &rec.TotalCompletions, updated)
	if err != nil {
		return models.StreakRecord{}, notFound(err)
	}
	rec.CurrentStreakStart = curStart.Ptr()
	rec.LongestStreakStart = longStart.Ptr()
	rec.LongestStreakEnd = longEnd.Ptr()
	rec.LastCompleted = last.Ptr()
	rec.UpdatedAt = updated.Time
	return rec, nil
}

func (d *DB) ListCompletions(ctx context.Context, habitID string, r storage.LogRange) ([]models.CompletionLog, error) {
	query := `SELECT ` + logColumns + ` FROM habit_logs WHERE habit_id = ?`
	args := []any{habitID}
	if r.Start != nil {
		query += ` AND completed_date >= ?`
		args = append(args, dateArg(*r.Start))
	}
	if r.End != nil {
		query += ` AND completed_date <= ?`
		args = append(args, dateArg(*r.End))
	}
	query += ` ORDER BY completed_date DESC`

	rows, err := d.query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list completions: %w", err)
	}
	defer rows.Close()

	logs := []models.CompletionLog{}
	for rows.Next() {
		l, err := scanLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}

func (d *DB) CountHabits(ctx context.Context, userID string) (storage.HabitCounts, error) {
	var c storage.HabitCounts
	err := d.queryRow(ctx, `
		SELECT COUNT(*),
			COALESCE(SUM(CASE WHEN is_archived THEN 0 ELSE 1 END), 0),
			COALESCE(SUM(CASE WHEN frequency = 'daily' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN frequency = 'weekly' THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN frequency = 'custom' THEN 1 ELSE 0 END), 0)
		FROM habits WHERE user_id = ?`, userID).
		Scan(&c.Total, &c.Active, &c.Daily, &c.Weekly, &c.Custom)
	if err != nil {
		return storage.HabitCounts{}, fmt.Errorf("failed to count habits: %w", err)
	}
	return c, nil
}

func (d *DB) CountCompletions(ctx context.Context, userID string, start, end time.Time) (int, error) {
	var n int
	err := d.queryRow(ctx, `
		SELECT COUNT(*) FROM habit_logs
		WHERE user_id = ? AND completed_date >= ? AND completed_date <= ?`,
		userID, dateArg(start), dateArg(end)).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("failed to count completions: %w", err)
	}
	return n, nil
}

// TopStreaks returns the user's active habits with the longest current streaks.
func (d *DB) TopStreaks(ctx context.Context, userID string, limit int) ([]models.HabitWithStreak, error) {
	rows, err := d.query(ctx, `
		SELECT `+habitColumns+`, `+streakSummaryColumns+`
		FROM habits h JOIN habit_streaks s ON s.habit_id = h.id
		WHERE h.user_id = ? AND h.is_archived = ?
		ORDER BY s.current_streak DESC, h.name ASC
		LIMIT ?`, userID, false, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list top streaks: %w", err)
	}
	defer rows.Close()
	return collectHabitsWithStreak(rows)
}
