package domain

import "time"

// Booking is a reservation of a room for the half-open interval [StartTime, EndTime).
type Booking struct {
	ID        int64
	Room      string
	User      string
	StartTime time.Time
	EndTime   time.Time
	CreatedAt time.Time
}

// Overlaps reports whether [start, end) intersects the booking's interval.
// Touching endpoints do not overlap.
func (b Booking) Overlaps(start, end time.Time) bool {
	return start.Before(b.EndTime) && b.StartTime.Before(end)
}

// Day returns midnight of the calendar date t falls on, in t's location.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
