// Package calendar resolves the operating block available on a calendar
// date. The default block is 08:00-16:00; on the 2nd and 4th Tuesday of a
// month the theatre opens late and the block shrinks to 09:00-16:00.
package calendar

import (
	"fmt"
	"time"
)

const (
	defaultBlockMinutes = 480
	defaultStartMinutes = 8 * 60

	reducedBlockMinutes = 420
	reducedStartMinutes = 9 * 60

	// reducedWeekday is the weekday carrying the reduced-capacity rule.
	reducedWeekday = time.Tuesday
)

// ResolveBlock returns the block length and block start offset, both in
// minutes, for the given date. Pure; any valid date produces a result.
func ResolveBlock(date time.Time) (blockMinutes, blockStartMinutes int) {
	if reduced(date) {
		return reducedBlockMinutes, reducedStartMinutes
	}
	return defaultBlockMinutes, defaultStartMinutes
}

// BlockMinutes returns only the block length for the given date.
func BlockMinutes(date time.Time) int {
	m, _ := ResolveBlock(date)
	return m
}

// FormatMinutes renders a minute offset from midnight as an HHMM label,
// e.g. 540 -> "0900".
func FormatMinutes(totalMinutes int) string {
	return fmt.Sprintf("%02d%02d", totalMinutes/60, totalMinutes%60)
}

func reduced(date time.Time) bool {
	if date.Weekday() != reducedWeekday {
		return false
	}
	n := weekdayOccurrence(date)
	return n == 2 || n == 4
}

// weekdayOccurrence counts, 1-based, how many times the date's weekday has
// occurred in its month from the 1st up to and including the date itself.
func weekdayOccurrence(date time.Time) int {
	return (date.Day()-1)/7 + 1
}
