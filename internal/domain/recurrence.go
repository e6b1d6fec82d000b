package domain

import "time"

// RecurrenceType describes how often a task repeats.
type RecurrenceType string

// Supported recurrence types. RecurrenceCustom repeats every RecurrenceInterval days.
const (
	RecurrenceNone    RecurrenceType = "none"
	RecurrenceDaily   RecurrenceType = "daily"
	RecurrenceWeekly  RecurrenceType = "weekly"
	RecurrenceMonthly RecurrenceType = "monthly"
	RecurrenceYearly  RecurrenceType = "yearly"
	RecurrenceCustom  RecurrenceType = "custom"
)

// IsRecurring reports whether r produces further occurrences.
func (r RecurrenceType) IsRecurring() bool {
	switch r {
	case RecurrenceDaily, RecurrenceWeekly, RecurrenceMonthly, RecurrenceYearly, RecurrenceCustom:
		return true
	default:
		return false
	}
}

// NextDueDate returns the occurrence following from. Month and year steps clamp to the
// last day of the target month, so Jan 31 is followed by Feb 28 (or 29) rather than
// rolling into March. For RecurrenceNone it returns from unchanged.
func NextDueDate(r RecurrenceType, interval int, from time.Time) time.Time {
	switch r {
	case RecurrenceDaily:
		return from.AddDate(0, 0, 1)
	case RecurrenceWeekly:
		return from.AddDate(0, 0, 7)
	case RecurrenceMonthly:
		return addMonthsClamped(from, 1)
	case RecurrenceYearly:
		return addMonthsClamped(from, 12)
	case RecurrenceCustom:
		if interval < 1 {
			interval = 1
		}
		return from.AddDate(0, 0, interval)
	default:
		return from
	}
}

func addMonthsClamped(t time.Time, months int) time.Time {
	y, m, d := t.Date()
	target := time.Date(y, m+time.Month(months), 1, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
	lastDay := target.AddDate(0, 1, -1).Day()
	if d > lastDay {
		d = lastDay
	}
	return time.Date(target.Year(), target.Month(), d, t.Hour(), t.Minute(), t.Second(), t.Nanosecond(), t.Location())
}
