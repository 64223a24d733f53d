// Package streak derives streak records from a habit's completion history.
package streak

import (
	"sort"
	"time"

	"github.com/julianstephens/streakline/internal/cadence"
	"github.com/julianstephens/streakline/internal/models"
)

// Compute derives the streak record for a cadence from the full set of
// completion dates. today is the calendar date the current streak is walked
// back from. The result depends only on its arguments; HabitID and UpdatedAt
// are left for the caller.
func Compute(c cadence.Cadence, completions []time.Time, today time.Time) models.StreakRecord {
	var rec models.StreakRecord
	if len(completions) == 0 {
		return rec
	}

	dates := make([]time.Time, len(completions))
	for i, d := range completions {
		dates[i] = cadence.Day(d)
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].After(dates[j]) })

	rec.TotalCompletions = len(dates)
	rec.LastCompleted = datePtr(dates[0])

	rec.CurrentStreak, rec.CurrentStreakStart = currentStreak(c, dates, cadence.Day(today))

	length, start, end := longestStreak(c, dates)
	rec.LongestStreak = length
	rec.LongestStreakStart = datePtr(start)
	rec.LongestStreakEnd = datePtr(end)

	return rec
}

// currentStreak walks newest-first from today. The first date that is not the
// expected one ends the walk; gaps are never skipped.
func currentStreak(c cadence.Cadence, desc []time.Time, today time.Time) (int, *time.Time) {
	var (
		count  int
		start  *time.Time
		cursor = today
	)
	for _, d := range desc {
		if !cadence.IsExpected(d, cursor, c) {
			break
		}
		count++
		start = datePtr(d)
		cursor = cadence.PreviousExpected(cursor, c)
	}
	return count, start
}

// longestStreak scans oldest to newest over adjacent pairs. On equal lengths
// the earlier run is kept.
func longestStreak(c cadence.Cadence, desc []time.Time) (length int, start, end time.Time) {
	oldest := len(desc) - 1
	run, runStart := 1, oldest

	for i := oldest; i > 0; i-- {
		older, newer := desc[i], desc[i-1]
		if cadence.NextExpected(older, c).Equal(newer) {
			run++
			continue
		}
		if run > length {
			length, start, end = run, desc[runStart], desc[i]
		}
		run, runStart = 1, i-1
	}

	if run > length {
		length, start, end = run, desc[runStart], desc[0]
	}
	return length, start, end
}

func datePtr(t time.Time) *time.Time {
	return &t
}
