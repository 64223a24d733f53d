package habits

import (
	"context"
	"time"

	"github.com/julianstephens/streakline/internal/cadence"
	"github.com/julianstephens/streakline/internal/constants"
	apperrors "github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/models"
	"github.com/julianstephens/streakline/internal/storage"
)

// GetStreak returns the stored streak record, zeros if it was never computed.
// Reads never wait on the mutation lock.
func (s *Service) GetStreak(ctx context.Context, habitID, userID string) (models.StreakRecord, error) {
	return s.cache.Get(ctx, userID, habitID, func(ctx context.Context) (models.StreakRecord, error) {
		return s.store.GetStreak(ctx, userID, habitID)
	})
}

// History lists a habit's completion logs, most recent first, optionally
// bounded by inclusive start and end dates.
func (s *Service) History(ctx context.Context, habitID, userID string, start, end *time.Time) ([]models.CompletionLog, error) {
	if start != nil && end != nil && cadence.Day(*start).After(cadence.Day(*end)) {
		return nil, apperrors.Validationf("start date %s is after end date %s",
			start.Format(constants.DateFormat), end.Format(constants.DateFormat))
	}
	if _, err := s.store.GetHabit(ctx, userID, habitID); err != nil {
		return nil, err
	}
	return s.store.ListCompletions(ctx, habitID, storage.LogRange{Start: start, End: end})
}
