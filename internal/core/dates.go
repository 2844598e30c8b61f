package core

import "time"

// NextOccurrence advances a recurring rule's run date by one period.
// Month and year steps are calendar-aware with day clamping: advancing
// Jan 31 by one month lands on the last day of February, not on Mar 2/3
// the way naive AddDate normalization would.
func NextOccurrence(from time.Time, freq Frequency) time.Time {
	switch freq {
	case Weekly:
		return from.AddDate(0, 0, 7)
	case Yearly:
		return addMonthsClamped(from, 12)
	default: // monthly
		return addMonthsClamped(from, 1)
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	first := time.Date(y, m, 1, 0, 0, 0, 0, t.Location()).AddDate(0, months, 0)
	if last := daysInMonth(first.Year(), first.Month()); d > last {
		d = last
	}
	return time.Date(first.Year(), first.Month(), d,
		t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}

func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}
