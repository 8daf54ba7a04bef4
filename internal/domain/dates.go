package domain

import "time"

// Date truncates t to midnight UTC. Rental windows are whole calendar days;
// storing anything finer invites off-by-one overlap bugs.
func Date(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DaysBetween returns the number of whole days from start to end.
// Both arguments are truncated to dates first.
func DaysBetween(start, end time.Time) int {
	return int(Date(end).Sub(Date(start)) / (24 * time.Hour))
}

// Today returns the current UTC date.
func Today() time.Time {
	return Date(time.Now().UTC())
}
