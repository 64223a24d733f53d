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

type StatsPeriod string

const (
	PeriodWeek    StatsPeriod = "week"
	PeriodMonth   StatsPeriod = "month"
	PeriodQuarter StatsPeriod = "quarter"
	PeriodYear    StatsPeriod = "year"
	PeriodAll     StatsPeriod = "all"
)

// StatsQuery picks the completion window. Start and End, when both set,
// override Period. Period defaults to month.
type StatsQuery struct {
	Period StatsPeriod
	Start  *time.Time
	End    *time.Time
}

type Stats struct {
	Period      StatsPeriod              `json:"period"`
	Start       time.Time                `json:"start"`
	End         time.Time                `json:"end"`
	Habits      storage.HabitCounts      `json:"habits"`
	Completions int                      `json:"completions"`
	TopStreaks  []models.HabitWithStreak `json:"top_streaks"`
}

// epoch is the lower bound of the "all" window.
var epoch = time.Date(1970, 1, 1, 0, 0, 0, 0, time.UTC)

func (s *Service) Stats(ctx context.Context, userID string, q StatsQuery) (Stats, error) {
	if q.Period == "" {
		q.Period = PeriodMonth
	}
	start, end, err := s.statsWindow(q)
	if err != nil {
		return Stats{}, err
	}

	counts, err := s.store.CountHabits(ctx, userID)
	if err != nil {
		return Stats{}, err
	}
	completions, err := s.store.CountCompletions(ctx, userID, start, end)
	if err != nil {
		return Stats{}, err
	}
	top, err := s.store.TopStreaks(ctx, userID, constants.TopStreaksLimit)
	if err != nil {
		return Stats{}, err
	}

	return Stats{
		Period:      q.Period,
		Start:       start,
		End:         end,
		Habits:      counts,
		Completions: completions,
		TopStreaks:  top,
	}, nil
}

func (s *Service) statsWindow(q StatsQuery) (time.Time, time.Time, error) {
	today := s.Today()
	if q.Start != nil && q.End != nil {
		start, end := cadence.Day(*q.Start), cadence.Day(*q.End)
		if start.After(end) {
			return time.Time{}, time.Time{}, apperrors.Validationf("start date %s is after end date %s",
				start.Format(constants.DateFormat), end.Format(constants.DateFormat))
		}
		return start, end, nil
	}

	switch q.Period {
	case PeriodWeek:
		return today.AddDate(0, 0, -7), today, nil
	case PeriodMonth:
		return today.AddDate(0, -1, 0), today, nil
	case PeriodQuarter:
		return today.AddDate(0, -3, 0), today, nil
	case PeriodYear:
		return today.AddDate(-1, 0, 0), today, nil
	case PeriodAll:
		return epoch, today, nil
	default:
		return time.Time{}, time.Time{}, apperrors.Validationf("period must be one of week, month, quarter, year, all; got %q", q.Period)
	}
}
