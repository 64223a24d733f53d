package streak

import (
	"context"
	"fmt"
	"time"

	"github.com/julianstephens/streakline/internal/logger"
	"github.com/julianstephens/streakline/internal/metrics"
	"github.com/julianstephens/streakline/internal/models"
)

// Tx is the slice of a store transaction the engine needs.
type Tx interface {
	// ListCompletionDates returns every completion date for the habit, most recent first.
	ListCompletionDates(ctx context.Context, habitID string) ([]time.Time, error)
	// SaveStreak overwrites the habit's streak record.
	SaveStreak(ctx context.Context, rec models.StreakRecord) error
}

// Engine recomputes and persists streak records inside a caller's transaction.
type Engine struct {
	metrics *metrics.Metrics
}

func NewEngine(m *metrics.Metrics) *Engine {
	return &Engine{metrics: m}
}

// Recompute reads the habit's full history through tx, derives a fresh record
// and overwrites the stored one. If the read fails nothing is written.
func (e *Engine) Recompute(ctx context.Context, tx Tx, habit models.Habit, today time.Time) (models.StreakRecord, error) {
	started := time.Now()

	dates, err := tx.ListCompletionDates(ctx, habit.ID)
	if err != nil {
		return models.StreakRecord{}, fmt.Errorf("failed to read completion history for habit %s: %w", habit.ID, err)
	}

	rec := Compute(habit.Cadence, dates, today)
	rec.HabitID = habit.ID
	rec.UpdatedAt = time.Now().UTC()

	if err := tx.SaveStreak(ctx, rec); err != nil {
		return models.StreakRecord{}, fmt.Errorf("failed to save streak for habit %s: %w", habit.ID, err)
	}

	elapsed := time.Since(started)
	e.metrics.ObserveRecompute(elapsed)
	logger.Debug("Recomputed streak",
		"habit", habit.ID,
		"completions", rec.TotalCompletions,
		"current", rec.CurrentStreak,
		"longest", rec.LongestStreak,
		"elapsed", elapsed)

	return rec, nil
}
