package storage

import (
	"context"
	"time"

	"github.com/julianstephens/streakline/internal/cadence"
	"github.com/julianstephens/streakline/internal/models"
)

// Provider is the durable store behind the habit service. Read methods run
// outside any mutation lock; every write to habits, logs or streaks goes
// through WithTx.
type Provider interface {
	// Lifecycle
	Init(ctx context.Context) error
	Load(ctx context.Context) error
	Close() error
	Ping(ctx context.Context) error
	// Migrate applies pending schema migrations and returns how many ran.
	Migrate(ctx context.Context, logFn func(string)) (int, error)

	// WithTx runs fn in one transaction. The transaction commits when fn
	// returns nil and rolls back otherwise. Serialization failures are
	// reported as errors.ErrConcurrencyConflict.
	WithTx(ctx context.Context, fn func(Tx) error) error

	// Habits
	GetHabit(ctx context.Context, userID, habitID string) (models.Habit, error)
	// FindHabitsByName matches names case-insensitively.
	FindHabitsByName(ctx context.Context, userID, name string) ([]models.Habit, error)
	ListHabits(ctx context.Context, userID string, filter HabitFilter) ([]models.HabitWithStreak, int, error)
	SetArchived(ctx context.Context, userID, habitID string, archivedAt *time.Time) (models.Habit, error)
	DeleteHabit(ctx context.Context, userID, habitID string) error

	// Streaks and history
	GetStreak(ctx context.Context, userID, habitID string) (models.StreakRecord, error)
	ListCompletions(ctx context.Context, habitID string, r LogRange) ([]models.CompletionLog, error)

	// Stats
	CountHabits(ctx context.Context, userID string) (HabitCounts, error)
	CountCompletions(ctx context.Context, userID string, start, end time.Time) (int, error)
	TopStreaks(ctx context.Context, userID string, limit int) ([]models.HabitWithStreak, error)

	// Utils
	GetConfigPath() string
	MigrationStatus(ctx context.Context) (current, latest int, err error)
}

// Tx is the write surface available inside Provider.WithTx.
type Tx interface {
	// LockHabit loads the habit owned by userID and holds it exclusively
	// until the transaction ends.
	LockHabit(ctx context.Context, userID, habitID string) (models.Habit, error)
	InsertHabit(ctx context.Context, h models.Habit) error
	UpdateHabit(ctx context.Context, h models.Habit) error

	// UpsertCompletion inserts the log or overwrites value and notes of the
	// existing log for the same date. Dates after today are rejected with
	// errors.ErrFutureDate.
	UpsertCompletion(ctx context.Context, log models.CompletionLog, today time.Time) (models.CompletionLog, error)
	// DeleteCompletion removes and returns the log for the date, or fails
	// with errors.ErrNotFound.
	DeleteCompletion(ctx context.Context, habitID string, date time.Time) (models.CompletionLog, error)
	// ListCompletionDates returns every completion date, most recent first.
	ListCompletionDates(ctx context.Context, habitID string) ([]time.Time, error)

	SaveStreak(ctx context.Context, rec models.StreakRecord) error
}

// SortField names the columns habit listings can be ordered by.
type SortField string

const (
	SortByName          SortField = "name"
	SortByCreatedAt     SortField = "createdAt"
	SortByCurrentStreak SortField = "currentStreak"
)

type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// HabitFilter narrows and pages a habit listing.
type HabitFilter struct {
	Frequency cadence.Kind // empty matches every cadence
	Archived  *bool        // nil matches both
	SortBy    SortField
	SortOrder SortOrder
	Limit     int
	Offset    int
}

// LogRange optionally bounds a history query, both ends inclusive.
type LogRange struct {
	Start *time.Time
	End   *time.Time
}

// HabitCounts summarises a user's habits.
type HabitCounts struct {
	Total  int
	Active int
	Daily  int
	Weekly int
	Custom int
}
