package booking

import "errors"

// Client input errors (400).
var (
	ErrInvalidFormat      = errors.New("invalid format")
	ErrInvalidGranularity = errors.New("invalid granularity")
	ErrPastBooking        = errors.New("booking in the past")
	ErrTooFarFuture       = errors.New("booking too far in the future")
	ErrEndBeforeStart     = errors.New("end not after start")
	ErrAmbiguousFilter    = errors.New("ambiguous filter")
)

// State conflicts (409).
var (
	ErrConflict      = errors.New("booking conflict")
	ErrLimitExceeded = errors.New("daily booking limit exceeded")
)

// ErrBusy means the critical section could not be entered in time; the caller may retry.
var ErrBusy = errors.New("room busy")

// DetailError carries the message shown to the client and unwraps to its kind.
type DetailError struct {
	Kind   error
	Detail string
}

func (e *DetailError) Error() string { return e.Detail }

func (e *DetailError) Unwrap() error { return e.Kind }

func detailed(kind error, detail string) error {
	return &DetailError{Kind: kind, Detail: detail}
}

// IsClientError reports whether err is caused by malformed input.
func IsClientError(err error) bool {
	for _, kind := range []error{
		ErrInvalidFormat,
		ErrInvalidGranularity,
		ErrPastBooking,
		ErrTooFarFuture,
		ErrEndBeforeStart,
		ErrAmbiguousFilter,
	} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// IsStateConflict reports whether err is caused by existing bookings.
func IsStateConflict(err error) bool {
	return errors.Is(err, ErrConflict) || errors.Is(err, ErrLimitExceeded)
}
