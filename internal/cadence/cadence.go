// Package cadence models the recurrence rule of a habit and answers which
// calendar dates are expected completions under it.
//
// Cadence is a closed set of variants (Daily, Weekly, Custom). Every switch over
// it in this package is exhaustive and panics on an unknown variant, so adding a
// variant means touching each switch here.
package cadence

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	apperrors "github.com/julianstephens/streakline/internal/errors"
)

// Kind is the persisted discriminant of a cadence.
type Kind string

const (
	KindDaily  Kind = "daily"
	KindWeekly Kind = "weekly"
	KindCustom Kind = "custom"
)

// Cadence is implemented only by Daily, Weekly and Custom values.
type Cadence interface {
	Kind() Kind
	sealed()
}

// Daily expects a completion every calendar day.
type Daily struct{}

// Weekly expects completions on the weekdays in Days.
type Weekly struct {
	Days WeekdaySet
}

// Custom expects a completion every IntervalDays days.
type Custom struct {
	IntervalDays int
}

func (Daily) Kind() Kind  { return KindDaily }
func (Weekly) Kind() Kind { return KindWeekly }
func (Custom) Kind() Kind { return KindCustom }

func (Daily) sealed()  {}
func (Weekly) sealed() {}
func (Custom) sealed() {}

// WeekdaySet is a bitmask of time.Weekday values, bit 0 being Sunday.
type WeekdaySet uint8

const allWeekdays WeekdaySet = 1<<7 - 1

// NewWeekdaySet builds a set from the given weekdays, ignoring out-of-range values.
func NewWeekdaySet(days ...time.Weekday) WeekdaySet {
	var s WeekdaySet
	for _, d := range days {
		if d >= time.Sunday && d <= time.Saturday {
			s |= 1 << uint(d)
		}
	}
	return s
}

// Has reports whether d is in the set.
func (s WeekdaySet) Has(d time.Weekday) bool {
	if d < time.Sunday || d > time.Saturday {
		return false
	}
	return s&(1<<uint(d)) != 0
}

// Weekdays returns the members in Sunday-first order.
func (s WeekdaySet) Weekdays() []time.Weekday {
	var days []time.Weekday
	for d := time.Sunday; d <= time.Saturday; d++ {
		if s.Has(d) {
			days = append(days, d)
		}
	}
	return days
}

// Len returns the number of weekdays in the set.
func (s WeekdaySet) Len() int {
	return len(s.Weekdays())
}

func (s WeekdaySet) String() string {
	var names []string
	for _, d := range s.Weekdays() {
		names = append(names, d.String()[:3])
	}
	return strings.Join(names, ",")
}

var weekdayNames = map[string]time.Weekday{
	"sun":       time.Sunday,
	"sunday":    time.Sunday,
	"mon":       time.Monday,
	"monday":    time.Monday,
	"tue":       time.Tuesday,
	"tuesday":   time.Tuesday,
	"wed":       time.Wednesday,
	"wednesday": time.Wednesday,
	"thu":       time.Thursday,
	"thursday":  time.Thursday,
	"fri":       time.Friday,
	"friday":    time.Friday,
	"sat":       time.Saturday,
	"saturday":  time.Saturday,
}

// ParseWeekdays parses a comma-separated list of weekday names or numbers
// (0=Sunday, 6=Saturday).
func ParseWeekdays(s string) (WeekdaySet, error) {
	var set WeekdaySet
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(strings.ToLower(part))
		if part == "" {
			continue
		}
		if wd, ok := weekdayNames[part]; ok {
			set |= NewWeekdaySet(wd)
			continue
		}
		num, err := strconv.Atoi(part)
		if err != nil || num < 0 || num > 6 {
			return 0, fmt.Errorf("%w: invalid weekday %q", apperrors.ErrInvalidCadence, part)
		}
		set |= NewWeekdaySet(time.Weekday(num))
	}
	return set, nil
}

// Validate enforces the cadence rules: a weekly cadence needs at least one
// weekday and a custom cadence needs a positive interval.
func Validate(c Cadence) error {
	switch c := c.(type) {
	case Daily:
		return nil
	case Weekly:
		if c.Days&^allWeekdays != 0 {
			return fmt.Errorf("%w: weekday set %08b has out-of-range bits", apperrors.ErrInvalidCadence, uint8(c.Days))
		}
		if c.Days == 0 {
			return fmt.Errorf("%w: weekly cadence requires at least one weekday", apperrors.ErrInvalidCadence)
		}
		return nil
	case Custom:
		if c.IntervalDays < 1 {
			return fmt.Errorf("%w: custom cadence requires a positive interval, got %d", apperrors.ErrInvalidCadence, c.IntervalDays)
		}
		return nil
	case nil:
		return fmt.Errorf("%w: cadence is required", apperrors.ErrInvalidCadence)
	default:
		return fmt.Errorf("%w: unsupported cadence %T", apperrors.ErrInvalidCadence, c)
	}
}

// New builds and validates a cadence from its persisted columns.
func New(kind Kind, days WeekdaySet, intervalDays int) (Cadence, error) {
	var c Cadence
	switch kind {
	case KindDaily, "":
		c = Daily{}
	case KindWeekly:
		c = Weekly{Days: days}
	case KindCustom:
		c = Custom{IntervalDays: intervalDays}
	default:
		return nil, fmt.Errorf("%w: unknown frequency %q", apperrors.ErrInvalidCadence, kind)
	}
	if err := Validate(c); err != nil {
		return nil, err
	}
	return c, nil
}

// Encode splits a cadence into its persisted columns.
func Encode(c Cadence) (kind Kind, days WeekdaySet, intervalDays int) {
	switch c := c.(type) {
	case Daily:
		return KindDaily, 0, 0
	case Weekly:
		return KindWeekly, c.Days, 0
	case Custom:
		return KindCustom, 0, c.IntervalDays
	default:
		panic(unknownCadence(c))
	}
}

// Describe formats a cadence for display
func Describe(c Cadence) string {
	switch c := c.(type) {
	case Daily:
		return "daily"
	case Weekly:
		return fmt.Sprintf("weekly on %s", c.Days)
	case Custom:
		if c.IntervalDays == 1 {
			return "every day"
		}
		return fmt.Sprintf("every %d days", c.IntervalDays)
	default:
		panic(unknownCadence(c))
	}
}

// Day truncates t to its calendar date, expressed as midnight UTC. The
// calendar fields are read in t's own location.
func Day(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD calendar date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid date %q (expected YYYY-MM-DD)", apperrors.ErrValidation, s)
	}
	return t, nil
}

func unknownCadence(c Cadence) string {
	return fmt.Sprintf("cadence: unknown variant %T", c)
}
