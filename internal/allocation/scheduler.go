package allocation

import (
	"errors"
	"time"
)

// Frequency determines how often a scheduled rule fires.
type Frequency string

const (
	FrequencyDaily     Frequency = "DAILY"
	FrequencyWeekly    Frequency = "WEEKLY"
	FrequencyBiWeekly  Frequency = "BI_WEEKLY"
	FrequencyMonthly   Frequency = "MONTHLY"
	FrequencyQuarterly Frequency = "QUARTERLY"
)

// Valid reports whether the frequency is known.
func (f Frequency) Valid() bool {
	switch f {
	case FrequencyDaily, FrequencyWeekly, FrequencyBiWeekly, FrequencyMonthly, FrequencyQuarterly:
		return true
	}

	return false
}

var ErrUnknownFrequency = errors.New("unknown scheduling frequency")

// NextRun computes the next execution instant for a scheduled rule.
// The result is always a midnight instant strictly after now.
//
// Weekly rules anchor on dayOfWeek. Monthly and quarterly rules anchor
// on dayOfMonth and clamp it to the length of the target month, so a
// rule anchored on the 31st fires on the 28th or 29th in February
// instead of rolling over into March.
func NextRun(frequency Frequency, dayOfMonth int, dayOfWeek time.Weekday, now time.Time) (time.Time, error) {
	switch frequency {
	case FrequencyDaily:
		return midnight(now.AddDate(0, 0, 1)), nil

	case FrequencyWeekly:
		days := (int(dayOfWeek) - int(now.Weekday()) + 7) % 7

		// If today is the target day, advance a full week so that the
		// result is never "now" or earlier
		if days == 0 {
			days = 7
		}

		return midnight(now.AddDate(0, 0, days)), nil

	case FrequencyBiWeekly:
		return midnight(now.AddDate(0, 0, 14)), nil

	case FrequencyMonthly:
		return advanceMonths(now, 1, dayOfMonth), nil

	case FrequencyQuarterly:
		return advanceMonths(now, 3, dayOfMonth), nil
	}

	return time.Time{}, ErrUnknownFrequency
}

// advanceMonths moves now forward by the given number of calendar
// months and clamps dayOfMonth to the length of the target month.
func advanceMonths(now time.Time, months, dayOfMonth int) time.Time {
	if dayOfMonth <= 0 {
		dayOfMonth = now.Day()
	}

	year, month, _ := now.Date()
	firstOfTarget := time.Date(year, month+time.Month(months), 1, 0, 0, 0, 0, now.Location())

	lastDay := time.Date(firstOfTarget.Year(), firstOfTarget.Month()+1, 0, 0, 0, 0, 0, now.Location()).Day()
	if dayOfMonth > lastDay {
		dayOfMonth = lastDay
	}

	return firstOfTarget.AddDate(0, 0, dayOfMonth-1)
}

func midnight(t time.Time) time.Time {
	year, month, day := t.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, t.Location())
}
