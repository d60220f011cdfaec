package booking

import (
	"fmt"
	"regexp"
	"strings"
	"time"
	"unicode"
)

const (
	timestampLayout = "2006-01-02 15:04"
	dateLayout      = "2006-01-02"

	maxRoomLength = 50
	slotMinutes   = 10
)

var roomPattern = regexp.MustCompile(`^[A-Z_]+$`)

// ValidateRoom checks that room is a MACRO_CASE identifier of at most 50 characters.
func ValidateRoom(room string) error {
	if strings.TrimSpace(room) == "" {
		return detailed(ErrInvalidFormat, "Room cannot be empty")
	}
	if strings.IndexFunc(room, unicode.IsLower) >= 0 {
		return detailed(ErrInvalidFormat, "Room must be in MACRO_CASE")
	}
	if len(room) > maxRoomLength {
		return detailed(ErrInvalidFormat, "Room name must be 50 characters or less")
	}
	if !roomPattern.MatchString(room) {
		return detailed(ErrInvalidFormat, "Room name must contain only uppercase letters and underscores")
	}
	return nil
}

// ValidateUser checks that user is not blank.
func ValidateUser(user string) error {
	if strings.TrimSpace(user) == "" {
		return detailed(ErrInvalidFormat, "User cannot be empty")
	}
	return nil
}

// ParseTimestamp parses "YYYY-MM-DD HH:MM" in loc. A "T" or an escaped "%20"
// separator is accepted too. field names the input in the error message.
func ParseTimestamp(field, raw string, loc *time.Location) (time.Time, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(raw), "%20", " ")
	cleaned = strings.Replace(cleaned, "T", " ", 1)
	t, err := time.ParseInLocation(timestampLayout, cleaned, loc)
	if err != nil {
		return time.Time{}, detailed(ErrInvalidFormat, "Invalid "+field+" format, use YYYY-MM-DD HH:MM")
	}
	return t, nil
}

// ParseDate parses a "YYYY-MM-DD" calendar date as midnight in loc.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	d, err := time.ParseInLocation(dateLayout, strings.TrimSpace(raw), loc)
	if err != nil {
		return time.Time{}, detailed(ErrInvalidFormat, "Invalid date format, use YYYY-MM-DD")
	}
	return d, nil
}

// ValidateGranularity checks that ts sits on a 10 minute boundary.
// label is "Start" or "End".
func ValidateGranularity(label string, ts time.Time) error {
	if ts.Minute()%slotMinutes != 0 || ts.Second() != 0 || ts.Nanosecond() != 0 {
		return detailed(ErrInvalidGranularity, label+" time minutes must be in 10 minute increments")
	}
	return nil
}

// ValidateWindow checks the interval against now: start must not be in the past,
// must not be more than horizon ahead, and end must follow start.
func ValidateWindow(start, end, now time.Time, horizon time.Duration) error {
	if start.Before(now) {
		return detailed(ErrPastBooking, "Cannot book meetings in the past")
	}
	if start.After(now.Add(horizon)) {
		return detailed(ErrTooFarFuture, "Cannot book more than "+horizonText(horizon)+" in advance")
	}
	if !end.After(start) {
		return detailed(ErrEndBeforeStart, "End time must be after start time")
	}
	return nil
}

// ValidateQueryFilters requires exactly one of room and user.
func ValidateQueryFilters(room, user string) error {
	hasRoom := strings.TrimSpace(room) != ""
	hasUser := strings.TrimSpace(user) != ""
	if hasRoom == hasUser {
		return detailed(ErrAmbiguousFilter, "Provide exactly one filter, either room or user")
	}
	return nil
}

const (
	day  = 24 * time.Hour
	year = 365 * day
)

// horizonText renders horizon in whole years or days when it divides evenly.
func horizonText(horizon time.Duration) string {
	switch {
	case horizon%year == 0:
		return plural(int64(horizon/year), "year")
	case horizon%day == 0:
		return plural(int64(horizon/day), "day")
	default:
		return horizon.String()
	}
}

func plural(n int64, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
