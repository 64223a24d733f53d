package sqldb

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/streakline/internal/cadence"
	"github.com/julianstephens/streakline/internal/constants"
)

// Dates are stored as YYYY-MM-DD and timestamps as RFC 3339 in UTC. SQLite
// hands them back as text while lib/pq returns time.Time, so the scanners
// below accept both.

type rowScanner interface {
	Scan(dest ...any) error
}

func dateArg(t time.Time) string {
	return cadence.Day(t).Format(constants.DateFormat)
}

func nullDateArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return dateArg(*t)
}

func timeArg(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func nullTimeArg(t *time.Time) any {
	if t == nil {
		return nil
	}
	return timeArg(*t)
}

// timeValue scans a nullable date or timestamp column.
type timeValue struct {
	Time     time.Time
	Valid    bool
	dateOnly bool
}

func dateValue() *timeValue {
	return &timeValue{dateOnly: true}
}

func (v *timeValue) Scan(src any) error {
	v.Valid = false
	switch s := src.(type) {
	case nil:
		return nil
	case time.Time:
		v.Time = s
	case string:
		t, err := v.parse(s)
		if err != nil {
			return err
		}
		v.Time = t
	case []byte:
		t, err := v.parse(string(s))
		if err != nil {
			return err
		}
		v.Time = t
	default:
		return fmt.Errorf("cannot scan %T into a time value", src)
	}
	if v.dateOnly {
		v.Time = cadence.Day(v.Time)
	} else {
		v.Time = v.Time.UTC()
	}
	v.Valid = true
	return nil
}

func (v *timeValue) parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if v.dateOnly && len(s) >= len(constants.DateFormat) {
		return time.Parse(constants.DateFormat, s[:len(constants.DateFormat)])
	}
	for _, layout := range []string{time.RFC3339Nano, "2006-01-02 15:04:05.999999999-07:00", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time value %q", s)
}

// Ptr returns a pointer to the scanned time, or nil for NULL.
func (v *timeValue) Ptr() *time.Time {
	if !v.Valid {
		return nil
	}
	t := v.Time
	return &t
}
