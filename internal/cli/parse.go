package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/julianstephens/streakline/internal/cadence"
)

// ParseOptionalDate parses a YYYY-MM-DD flag value. An empty value yields nil.
func ParseOptionalDate(s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	d, err := cadence.ParseDate(s)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// ParseCadence builds a cadence from the --frequency, --days and --interval
// flags.
func ParseCadence(frequency, days string, interval int) (cadence.Cadence, error) {
	kind := cadence.Kind(strings.ToLower(strings.TrimSpace(frequency)))
	var set cadence.WeekdaySet
	if kind == cadence.KindWeekly {
		var err error
		if set, err = cadence.ParseWeekdays(days); err != nil {
			return nil, err
		}
	} else if days != "" {
		return nil, fmt.Errorf("--days only applies to weekly habits")
	}
	if kind != cadence.KindCustom && interval != 0 {
		return nil, fmt.Errorf("--interval only applies to custom habits")
	}
	return cadence.New(kind, set, interval)
}
