package cadence

import (
	"fmt"
	"time"
)

// IsExpected reports whether a completion on candidate satisfies the cadence
// when reference is the date currently expected.
//
// Daily and Custom require the exact date. Weekly only checks that the
// candidate's weekday is in the set; reference is not consulted.
func IsExpected(candidate, reference time.Time, c Cadence) bool {
	switch c := c.(type) {
	case Daily, Custom:
		return Day(candidate).Equal(Day(reference))
	case Weekly:
		return c.Days.Has(candidate.Weekday())
	default:
		panic(unknownCadence(c))
	}
}

// PreviousExpected returns the expected date strictly before date.
func PreviousExpected(date time.Time, c Cadence) time.Time {
	return adjacent(date, c, -1)
}

// NextExpected returns the expected date strictly after date.
func NextExpected(date time.Time, c Cadence) time.Time {
	return adjacent(date, c, 1)
}

func adjacent(date time.Time, c Cadence, dir int) time.Time {
	day := Day(date)
	switch c := c.(type) {
	case Daily:
		return day.AddDate(0, 0, dir)
	case Custom:
		if c.IntervalDays < 1 {
			panic(fmt.Sprintf("cadence: custom interval %d reached the calculator", c.IntervalDays))
		}
		return day.AddDate(0, 0, dir*c.IntervalDays)
	case Weekly:
		// A valid set always matches within a week.
		for i := 0; i < 7; i++ {
			day = day.AddDate(0, 0, dir)
			if c.Days.Has(day.Weekday()) {
				return day
			}
		}
		panic(fmt.Sprintf("cadence: weekly set %08b has no weekday", uint8(c.Days)))
	default:
		panic(unknownCadence(c))
	}
}
