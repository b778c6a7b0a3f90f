// Package recurring turns recurring transaction rules into dated ledger
// transactions. Nothing here reads the wall clock; callers pass "now".
package recurring

import (
	"errors"
	"fmt"
	"time"

	"pocket-ledger/internal/models"
)

var ErrUnknownFrequency = errors.New("recurring: unknown frequency")

// NextOccurrence returns the occurrence that follows from.
//
// Monthly and yearly steps that overflow the target month are clamped to its
// last day: Jan 31 + 1 month is Feb 28 (or 29), Feb 29 + 1 year is Feb 28.
// Time of day and location are preserved.
func NextOccurrence(from time.Time, freq models.Frequency) (time.Time, error) {
	return NextOccurrenceAnchored(from, freq, from.Day())
}

// NextOccurrenceAnchored is NextOccurrence with the day-of-month taken from
// anchorDay rather than from. Walking a schedule with the rule's original
// start day keeps a clamped date from drifting: Jan 31, Feb 28, Mar 31.
func NextOccurrenceAnchored(from time.Time, freq models.Frequency, anchorDay int) (time.Time, error) {
	switch freq {
	case models.FrequencyDaily:
		return from.AddDate(0, 0, 1), nil
	case models.FrequencyWeekly:
		return from.AddDate(0, 0, 7), nil
	case models.FrequencyMonthly:
		return clampedDate(from, from.Year(), from.Month()+1, anchorDay), nil
	case models.FrequencyYearly:
		return clampedDate(from, from.Year()+1, from.Month(), anchorDay), nil
	default:
		return time.Time{}, fmt.Errorf("%w: %q", ErrUnknownFrequency, freq)
	}
}

// EndOfDay returns the last nanosecond of t's calendar day in t's location.
func EndOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, t.Location()).Add(-time.Nanosecond)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func clampedDate(from time.Time, year int, month time.Month, day int) time.Time {
	// normalize month overflow (13 -> January of next year) before clamping
	first := time.Date(year, month, 1, 0, 0, 0, 0, from.Location())
	year, month = first.Year(), first.Month()

	if last := daysIn(year, month, from.Location()); day > last {
		day = last
	}
	return time.Date(year, month, day, from.Hour(), from.Minute(), from.Second(), from.Nanosecond(), from.Location())
}

func daysIn(year int, month time.Month, loc *time.Location) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, loc).Day()
}
