package pure_utils

import "time"

// TimeRange is a half open interval [From, To)
type TimeRange struct {
	From time.Time
	To   time.Time
}

// WeekContaining returns the UTC week, Monday 00:00 to the next Monday 00:00, that contains t
func WeekContaining(t time.Time) TimeRange {
	t = t.UTC()
	daysSinceMonday := (int(t.Weekday()) + 6) % 7
	monday := time.Date(t.Year(), t.Month(), t.Day()-daysSinceMonday, 0, 0, 0, 0, time.UTC)
	return TimeRange{From: monday, To: monday.AddDate(0, 0, 7)}
}

// MonthContaining returns the UTC calendar month that contains t
func MonthContaining(t time.Time) TimeRange {
	t = t.UTC()
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return TimeRange{From: first, To: first.AddDate(0, 1, 0)}
}

// YearContaining returns the UTC calendar year that contains t
func YearContaining(t time.Time) TimeRange {
	t = t.UTC()
	first := time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, time.UTC)
	return TimeRange{From: first, To: first.AddDate(1, 0, 0)}
}

// EndOfDay returns the first instant of the day after t, to be used as an exclusive bound
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day()+1, 0, 0, 0, 0, t.Location())
}
