package habits

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/julianstephens/streakline/internal/cadence"
	"github.com/julianstephens/streakline/internal/constants"
	apperrors "github.com/julianstephens/streakline/internal/errors"
	"github.com/julianstephens/streakline/internal/models"
)

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// validateHabit checks every user-supplied field of h.
func validateHabit(h models.Habit) error {
	name := strings.TrimSpace(h.Name)
	if name == "" {
		return apperrors.Validationf("name is required")
	}
	if err := maxLen("name", h.Name, constants.MaxHabitNameLen); err != nil {
		return err
	}
	if err := maxLen("description", h.Description, constants.MaxDescriptionLen); err != nil {
		return err
	}
	if err := maxLen("icon", h.Icon, constants.MaxIconLen); err != nil {
		return err
	}
	if err := maxLen("unit", h.Unit, constants.MaxUnitLen); err != nil {
		return err
	}
	if h.Color != "" && !colorPattern.MatchString(h.Color) {
		return apperrors.Validationf("color must be a hex value like #10B981, got %q", h.Color)
	}
	if h.TargetValue < 1 {
		return apperrors.Validationf("target value must be positive, got %d", h.TargetValue)
	}
	if err := validateReminderTime(h.ReminderTime); err != nil {
		return err
	}
	if h.ReminderEnabled && h.ReminderTime == "" {
		return apperrors.Validationf("reminder time is required when reminders are enabled")
	}
	return cadence.Validate(h.Cadence)
}

func validateReminderTime(s string) error {
	if s == "" {
		return nil
	}
	for _, layout := range []string{constants.TimeFormat, constants.TimeFormatSeconds} {
		if _, err := time.Parse(layout, s); err == nil && len(s) == len(layout) {
			return nil
		}
	}
	return apperrors.Validationf("reminder time must be HH:MM or HH:MM:SS, got %q", s)
}

func validateCompletion(value int, notes string) error {
	if value < 1 {
		return apperrors.Validationf("completed value must be positive, got %d", value)
	}
	return maxLen("notes", notes, constants.MaxNotesLen)
}

func maxLen(field, value string, limit int) error {
	if n := utf8.RuneCountInString(value); n > limit {
		return apperrors.Validationf("%s must be at most %d characters, got %d", field, limit, n)
	}
	return nil
}
