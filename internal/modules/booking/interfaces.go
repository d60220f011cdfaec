package booking

import (
	"context"
	"time"

	"roombooking/internal/domain"
	"roombooking/internal/repository"
)

// BookingRepository is the persistence contract the service relies on.
type BookingRepository interface {
	Add(ctx context.Context, b *domain.Booking) error
	Find(ctx context.Context, f repository.BookingFilter) ([]domain.Booking, error)
	FindOverlapping(ctx context.Context, room string, from, to time.Time) ([]domain.Booking, error)
	CountByUserOn(ctx context.Context, user string, day time.Time) (int64, error)
	// Atomic runs fn in a transaction; calls made with fn's ctx join it.
	Atomic(ctx context.Context, keys []string, fn func(ctx context.Context) error) error
}

// NotificationSender is told about committed bookings.
type NotificationSender interface {
	NotifyBookingCreated(ctx context.Context, b domain.Booking) error
}

// Clock supplies the request time.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }
