package habits

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/streakline/internal/cadence"
	"github.com/julianstephens/streakline/internal/constants"
	apperrors "github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/logger"
	"github.com/julianstephens/streakline/internal/metrics"
	"github.com/julianstephens/streakline/internal/models"
	"github.com/julianstephens/streakline/internal/storage"
)

// LogCompletionInput marks a habit done. Date defaults to today and Value to 1.
type LogCompletionInput struct {
	HabitID string
	UserID  string
	Date    *time.Time
	Value   *int
	Notes   string
}

// LogCompletion records (or overwrites) the completion for a date and
// recomputes the streak in the same transaction. Logging the same date twice
// leaves a single log.
func (s *Service) LogCompletion(ctx context.Context, in LogCompletionInput) (models.CompletionLog, error) {
	value := constants.DefaultLogValue
	if in.Value != nil {
		value = *in.Value
	}
	if err := validateCompletion(value, in.Notes); err != nil {
		s.metrics.ObserveMutation(opLog, outcome(err))
		return models.CompletionLog{}, err
	}

	today := s.Today()
	date := today
	if in.Date != nil {
		date = cadence.Day(*in.Date)
	}
	if date.After(today) {
		s.metrics.ObserveMutation(opLog, metrics.OutcomeRejected)
		return models.CompletionLog{}, apperrors.ErrFutureDate
	}

	var saved models.CompletionLog
	err := s.mutate(ctx, opLog, in.HabitID, func(ctx context.Context, tx storage.Tx) error {
		habit, err := tx.LockHabit(ctx, in.UserID, in.HabitID)
		if err != nil {
			return err
		}
		now := s.now().UTC()
		saved, err = tx.UpsertCompletion(ctx, models.CompletionLog{
			ID:        uuid.NewString(),
			HabitID:   habit.ID,
			UserID:    in.UserID,
			Date:      date,
			Value:     value,
			Notes:     in.Notes,
			CreatedAt: now,
			UpdatedAt: now,
		}, today)
		if err != nil {
			return err
		}
		_, err = s.engine.Recompute(ctx, tx, habit, today)
		return err
	})
	if err != nil {
		return models.CompletionLog{}, err
	}

	logger.Info("Logged completion", "habit", in.HabitID, "user", in.UserID, "date", date.Format(constants.DateFormat), "value", value)
	return saved, nil
}

// RemoveCompletion deletes the log for date and recomputes the streak.
func (s *Service) RemoveCompletion(ctx context.Context, habitID, userID string, date time.Time) (models.CompletionLog, error) {
	day := cadence.Day(date)
	today := s.Today()

	var removed models.CompletionLog
	err := s.mutate(ctx, opUnlog, habitID, func(ctx context.Context, tx storage.Tx) error {
		habit, err := tx.LockHabit(ctx, userID, habitID)
		if err != nil {
			return err
		}
		removed, err = tx.DeleteCompletion(ctx, habit.ID, day)
		if err != nil {
			return err
		}
		_, err = s.engine.Recompute(ctx, tx, habit, today)
		return err
	})
	if err != nil {
		return models.CompletionLog{}, err
	}

	logger.Info("Removed completion", "habit", habitID, "user", userID, "date", day.Format(constants.DateFormat))
	return removed, nil
}

// RecomputeStreak rebuilds the stored record against today's date. Stored
// current streaks are relative to the day of the last mutation, so this
// refreshes a record that has gone stale.
func (s *Service) RecomputeStreak(ctx context.Context, userID, habitID string) (models.StreakRecord, error) {
	var rec models.StreakRecord
	err := s.mutate(ctx, opRecompute, habitID, func(ctx context.Context, tx storage.Tx) error {
		habit, err := tx.LockHabit(ctx, userID, habitID)
		if err != nil {
			return err
		}
		rec, err = s.engine.Recompute(ctx, tx, habit, s.Today())
		return err
	})
	if err != nil {
		return models.StreakRecord{}, err
	}
	return rec, nil
}

// mutate runs fn in a store transaction under the habit lock.
func (s *Service) mutate(ctx context.Context, op, habitID string, fn func(context.Context, storage.Tx) error) error {
	return s.withLock(ctx, op, habitID, func(ctx context.Context) error {
		return s.store.WithTx(ctx, func(tx storage.Tx) error {
			return fn(ctx, tx)
		})
	})
}

// withLock runs fn while holding the habit lock, retrying the whole attempt on
// ErrConcurrencyConflict. On success the cached streak for the habit is
// dropped.
func (s *Service) withLock(ctx context.Context, op, habitID string, fn func(context.Context) error) error {
	for attempt := 0; ; attempt++ {
		err := s.attempt(ctx, habitID, fn)
		if err == nil {
			s.cache.Invalidate(habitID)
			s.metrics.ObserveMutation(op, metrics.OutcomeOK)
			return nil
		}

		if !apperrors.IsRetryable(err) || attempt >= s.retries || ctx.Err() != nil {
			s.metrics.ObserveMutation(op, outcome(err))
			if apperrors.IsRetryable(err) {
				logger.Warn("Habit mutation gave up after conflicts", "op", op, "habit", habitID, "attempts", attempt+1, "error", err)
			}
			return err
		}

		s.metrics.ObserveRetry(op)
		logger.Debug("Retrying habit mutation", "op", op, "habit", habitID, "attempt", attempt+1, "error", err)
		select {
		case <-time.After(constants.RetryBackoff * time.Duration(attempt+1)):
		case <-ctx.Done():
			s.metrics.ObserveMutation(op, outcome(ctx.Err()))
			return ctx.Err()
		}
	}
}

// attempt bounds one try, lock wait included, by the transaction timeout.
func (s *Service) attempt(ctx context.Context, habitID string, fn func(context.Context) error) error {
	ctx, cancel := context.WithTimeout(ctx, s.txTimeout)
	defer cancel()

	started := time.Now()
	release, err := s.locker.Lock(ctx, habitID)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return err
		}
		return fmt.Errorf("%w: waiting for habit %s: %v", apperrors.ErrConcurrencyConflict, habitID, err)
	}
	defer release()
	s.metrics.ObserveLockWait(time.Since(started))

	return fn(ctx)
}

func outcome(err error) string {
	switch {
	case err == nil:
		return metrics.OutcomeOK
	case apperrors.IsRetryable(err):
		return metrics.OutcomeConflict
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidCadence),
		errors.Is(err, apperrors.ErrFutureDate),
		errors.Is(err, apperrors.ErrNotFound):
		return metrics.OutcomeRejected
	default:
		return metrics.OutcomeError
	}
}
