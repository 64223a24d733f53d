package habits

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/julianstephens/streakline/internal/cadence"
	"github.com/julianstephens/streakline/internal/constants"
	apperrors "github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/logger"
	"github.com/julianstephens/streakline/internal/models"
	"github.com/julianstephens/streakline/internal/storage"
)

// Mutation operation names, used for metrics and logs.
const (
	opCreate    = "create_habit"
	opUpdate    = "update_habit"
	opDelete    = "delete_habit"
	opLog       = "log_completion"
	opUnlog     = "remove_completion"
	opRecompute = "recompute"
)

// HabitInput describes a new habit. A zero TargetValue means the default.
type HabitInput struct {
	Name            string
	Description     string
	Icon            string
	Color           string
	Unit            string
	Cadence         cadence.Cadence
	TargetValue     int
	ReminderEnabled bool
	ReminderTime    string
}

// HabitPatch holds optional changes to a habit. Nil fields are left alone.
type HabitPatch struct {
	Name            *string
	Description     *string
	Icon            *string
	Color           *string
	Unit            *string
	Cadence         cadence.Cadence
	TargetValue     *int
	ReminderEnabled *bool
	ReminderTime    *string
}

// HabitFilter narrows ListHabits. Archived habits are hidden unless Archived
// is set or IncludeArchived is true.
type HabitFilter struct {
	Frequency       cadence.Kind
	Archived        *bool
	IncludeArchived bool
	Page            int
	Limit           int
	SortBy          storage.SortField
	SortOrder       storage.SortOrder
}

type Pagination struct {
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	Total      int `json:"total"`
	TotalPages int `json:"total_pages"`
}

type HabitPage struct {
	Habits     []models.HabitWithStreak `json:"habits"`
	Pagination Pagination               `json:"pagination"`
}

// CreateHabit validates in and stores the habit together with its zero
// streak record.
func (s *Service) CreateHabit(ctx context.Context, userID string, in HabitInput) (models.Habit, error) {
	now := s.now().UTC()
	h := models.Habit{
		ID:              uuid.NewString(),
		UserID:          userID,
		Name:            strings.TrimSpace(in.Name),
		Description:     in.Description,
		Icon:            in.Icon,
		Color:           in.Color,
		Unit:            in.Unit,
		Cadence:         in.Cadence,
		TargetValue:     in.TargetValue,
		ReminderEnabled: in.ReminderEnabled,
		ReminderTime:    in.ReminderTime,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
	if h.Cadence == nil {
		h.Cadence = cadence.Daily{}
	}
	if h.TargetValue == 0 {
		h.TargetValue = constants.DefaultTargetValue
	}
	if err := validateHabit(h); err != nil {
		s.metrics.ObserveMutation(opCreate, outcome(err))
		return models.Habit{}, err
	}

	err := s.mutate(ctx, opCreate, h.ID, func(ctx context.Context, tx storage.Tx) error {
		if err := tx.InsertHabit(ctx, h); err != nil {
			return err
		}
		return tx.SaveStreak(ctx, models.StreakRecord{HabitID: h.ID, UpdatedAt: now})
	})
	if err != nil {
		return models.Habit{}, err
	}

	logger.Info("Created habit", "habit", h.ID, "user", userID, "cadence", cadence.Describe(h.Cadence))
	return h, nil
}

func (s *Service) GetHabit(ctx context.Context, userID, habitID string) (models.Habit, error) {
	return s.store.GetHabit(ctx, userID, habitID)
}

// ResolveHabit finds a habit by ID or, failing that, by exact name.
func (s *Service) ResolveHabit(ctx context.Context, userID, ref string) (models.Habit, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return models.Habit{}, apperrors.Validationf("habit ID or name is required")
	}
	if _, err := uuid.Parse(ref); err == nil {
		return s.store.GetHabit(ctx, userID, ref)
	}

	matches, err := s.store.FindHabitsByName(ctx, userID, ref)
	if err != nil {
		return models.Habit{}, err
	}
	switch len(matches) {
	case 0:
		return models.Habit{}, apperrors.ErrNotFound
	case 1:
		return matches[0], nil
	default:
		return models.Habit{}, apperrors.Validationf("%d habits are named %q, use the habit ID instead", len(matches), ref)
	}
}

func (s *Service) ListHabits(ctx context.Context, userID string, f HabitFilter) (HabitPage, error) {
	if f.Page == 0 {
		f.Page = 1
	}
	if f.Limit == 0 {
		f.Limit = constants.DefaultPageLimit
	}
	if f.Page < 1 {
		return HabitPage{}, apperrors.Validationf("page must be positive, got %d", f.Page)
	}
	if f.Limit < 1 || f.Limit > constants.MaxPageLimit {
		return HabitPage{}, apperrors.Validationf("limit must be between 1 and %d, got %d", constants.MaxPageLimit, f.Limit)
	}
	switch f.Frequency {
	case "", cadence.KindDaily, cadence.KindWeekly, cadence.KindCustom:
	default:
		return HabitPage{}, apperrors.Validationf("unknown frequency %q", f.Frequency)
	}
	switch f.SortBy {
	case "", storage.SortByName, storage.SortByCreatedAt, storage.SortByCurrentStreak:
	default:
		return HabitPage{}, apperrors.Validationf("cannot sort by %q", f.SortBy)
	}
	switch f.SortOrder {
	case "", storage.SortAsc, storage.SortDesc:
	default:
		return HabitPage{}, apperrors.Validationf("sort order must be asc or desc, got %q", f.SortOrder)
	}

	archived := f.Archived
	if archived == nil && !f.IncludeArchived {
		active := false
		archived = &active
	}
	if f.IncludeArchived {
		archived = nil
	}

	habits, total, err := s.store.ListHabits(ctx, userID, storage.HabitFilter{
		Frequency: f.Frequency,
		Archived:  archived,
		SortBy:    f.SortBy,
		SortOrder: f.SortOrder,
		Limit:     f.Limit,
		Offset:    (f.Page - 1) * f.Limit,
	})
	if err != nil {
		return HabitPage{}, err
	}

	return HabitPage{
		Habits: habits,
		Pagination: Pagination{
			Page:       f.Page,
			Limit:      f.Limit,
			Total:      total,
			TotalPages: (total + f.Limit - 1) / f.Limit,
		},
	}, nil
}

// UpdateHabit applies patch under the habit lock. A cadence change
// recomputes the streak in the same transaction.
func (s *Service) UpdateHabit(ctx context.Context, userID, habitID string, patch HabitPatch) (models.Habit, error) {
	var updated models.Habit
	err := s.mutate(ctx, opUpdate, habitID, func(ctx context.Context, tx storage.Tx) error {
		h, err := tx.LockHabit(ctx, userID, habitID)
		if err != nil {
			return err
		}
		cadenceChanged := applyPatch(&h, patch)
		h.UpdatedAt = s.now().UTC()
		if err := validateHabit(h); err != nil {
			return err
		}
		if err := tx.UpdateHabit(ctx, h); err != nil {
			return err
		}
		if cadenceChanged {
			if _, err := s.engine.Recompute(ctx, tx, h, s.Today()); err != nil {
				return err
			}
		}
		updated = h
		return nil
	})
	if err != nil {
		return models.Habit{}, err
	}
	logger.Info("Updated habit", "habit", habitID, "user", userID)
	return updated, nil
}

// applyPatch copies the set fields of p onto h and reports whether the
// cadence changed.
func applyPatch(h *models.Habit, p HabitPatch) bool {
	if p.Name != nil {
		h.Name = strings.TrimSpace(*p.Name)
	}
	if p.Description != nil {
		h.Description = *p.Description
	}
	if p.Icon != nil {
		h.Icon = *p.Icon
	}
	if p.Color != nil {
		h.Color = *p.Color
	}
	if p.Unit != nil {
		h.Unit = *p.Unit
	}
	if p.TargetValue != nil {
		h.TargetValue = *p.TargetValue
	}
	if p.ReminderEnabled != nil {
		h.ReminderEnabled = *p.ReminderEnabled
	}
	if p.ReminderTime != nil {
		h.ReminderTime = *p.ReminderTime
	}
	if p.Cadence == nil || p.Cadence == h.Cadence {
		return false
	}
	h.Cadence = p.Cadence
	return true
}

// ArchiveHabit sets or clears the archived flag. Streaks are untouched.
func (s *Service) ArchiveHabit(ctx context.Context, userID, habitID string, archived bool) (models.Habit, error) {
	var at *time.Time
	if archived {
		now := s.now().UTC()
		at = &now
	}
	h, err := s.store.SetArchived(ctx, userID, habitID, at)
	if err != nil {
		return models.Habit{}, err
	}
	logger.Info("Set habit archived", "habit", habitID, "user", userID, "archived", archived)
	return h, nil
}

// DeleteHabit removes the habit with its logs and streak record.
func (s *Service) DeleteHabit(ctx context.Context, userID, habitID string) error {
	err := s.withLock(ctx, opDelete, habitID, func(ctx context.Context) error {
		return s.store.DeleteHabit(ctx, userID, habitID)
	})
	if err != nil {
		return err
	}
	logger.Info("Deleted habit", "habit", habitID, "user", userID)
	return nil
}
