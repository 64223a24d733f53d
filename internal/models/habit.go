package models

import (
	"time"

	"github.com/julianstephens/streakline/internal/cadence"
)

// Habit is a recurring commitment owned by one user.
type Habit struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Icon            string          `json:"icon,omitempty"`
	Color           string          `json:"color,omitempty"` // #RRGGBB
	Unit            string          `json:"unit,omitempty"`
	Cadence         cadence.Cadence `json:"-"`
	TargetValue     int             `json:"target_value"`
	ReminderEnabled bool            `json:"reminder_enabled"`
	ReminderTime    string          `json:"reminder_time,omitempty"` // HH:MM or HH:MM:SS
	IsArchived      bool            `json:"is_archived"`
	ArchivedAt      *time.Time      `json:"archived_at,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// CompletionLog records a habit being done on one calendar date. There is at
// most one per (HabitID, Date).
type CompletionLog struct {
	ID        string    `json:"id"`
	HabitID   string    `json:"habit_id"`
	UserID    string    `json:"user_id"`
	Date      time.Time `json:"completed_date"` // midnight UTC of the calendar date
	Value     int       `json:"completed_value"`
	Notes     string    `json:"notes,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// StreakRecord caches the streak state derived from a habit's cadence and its
// full completion log. It is never the source of truth.
type StreakRecord struct {
	HabitID            string     `json:"habit_id"`
	CurrentStreak      int        `json:"current_streak"`
	CurrentStreakStart *time.Time `json:"current_streak_start_date"`
	LongestStreak      int        `json:"longest_streak"`
	LongestStreakStart *time.Time `json:"longest_streak_start_date"`
	LongestStreakEnd   *time.Time `json:"longest_streak_end_date"`
	LastCompleted      *time.Time `json:"last_completed_date"`
	TotalCompletions   int        `json:"total_completions"`
	UpdatedAt          time.Time  `json:"updated_at"`
}

// SameStreak reports whether two records hold the same derived values,
// ignoring UpdatedAt.
func (r StreakRecord) SameStreak(o StreakRecord) bool {
	return r.HabitID == o.HabitID &&
		r.CurrentStreak == o.CurrentStreak &&
		r.LongestStreak == o.LongestStreak &&
		r.TotalCompletions == o.TotalCompletions &&
		sameDate(r.CurrentStreakStart, o.CurrentStreakStart) &&
		sameDate(r.LongestStreakStart, o.LongestStreakStart) &&
		sameDate(r.LongestStreakEnd, o.LongestStreakEnd) &&
		sameDate(r.LastCompleted, o.LastCompleted)
}

func sameDate(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return a.Equal(*b)
}

// HabitWithStreak is a habit joined with its streak summary for listings.
type HabitWithStreak struct {
	Habit
	CurrentStreak    int        `json:"current_streak"`
	LongestStreak    int        `json:"longest_streak"`
	LastCompleted    *time.Time `json:"last_completed_date"`
	TotalCompletions int        `json:"total_completions"`
}
