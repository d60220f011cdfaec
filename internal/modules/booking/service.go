package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"roombooking/internal/domain"
	"roombooking/internal/repository"

	"go.uber.org/zap"
)

const (
	DefaultDailyLimit = 5
	DefaultHorizon    = 365 * 24 * time.Hour
	DefaultLockWait   = 5 * time.Second
)

// Options tunes the booking rules. Zero values fall back to the defaults.
type Options struct {
	DailyLimit int
	Horizon    time.Duration
	LockWait   time.Duration
}

type Service struct {
	bookings BookingRepository
	notifs   NotificationSender
	clock    Clock
	locks    *keyedLocks
	opts     Options
	log      *zap.Logger
}

func NewService(
	bookings BookingRepository,
	notifs NotificationSender,
	clock Clock,
	opts Options,
	log *zap.Logger,
) *Service {
	if opts.DailyLimit <= 0 {
		opts.DailyLimit = DefaultDailyLimit
	}
	if opts.Horizon <= 0 {
		opts.Horizon = DefaultHorizon
	}
	if opts.LockWait <= 0 {
		opts.LockWait = DefaultLockWait
	}
	if clock == nil {
		clock = ClockFunc(time.Now)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		bookings: bookings,
		notifs:   notifs,
		clock:    clock,
		locks:    newKeyedLocks(),
		opts:     opts,
		log:      log,
	}
}

// CreateBooking validates req and stores it unless it overlaps another booking
// of the same room or the user already reached the daily limit.
func (s *Service) CreateBooking(ctx context.Context, req CreateBookingRequest) (*domain.Booking, error) {
	now := s.clock.Now()
	// Users are matched trimmed, here and in QueryBookings.
	req.User = strings.TrimSpace(req.User)

	start, end, err := s.validateCreate(req, now)
	if err != nil {
		return nil, err
	}

	// Room and user locks make the read-check-write below a critical section
	// for both the overlap rule and the daily limit.
	keys := []string{"room:" + req.Room, "user:" + req.User}

	waitCtx, cancel := context.WithTimeout(ctx, s.opts.LockWait)
	release, err := s.locks.Acquire(waitCtx, keys...)
	cancel()
	if err != nil {
		return nil, s.busyOr(ctx, err)
	}
	defer release()

	b := &domain.Booking{
		Room:      req.Room,
		User:      req.User,
		StartTime: start,
		EndTime:   end,
	}

	// LockWait bounds only the wait above; the transaction runs on the caller's ctx.
	err = s.bookings.Atomic(ctx, keys, func(ctx context.Context) error {
		if err := s.checkConflict(ctx, req.Room, start, end); err != nil {
			return err
		}
		if err := s.checkDailyLimit(ctx, req.User, start); err != nil {
			return err
		}
		return s.bookings.Add(ctx, b)
	})
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrConflict):
		return nil, conflictError()
	case errors.Is(err, ErrConflict), errors.Is(err, ErrLimitExceeded):
		s.log.Warn("booking rejected",
			zap.String("room", req.Room),
			zap.String("user", req.User),
			zap.Time("start", start),
			zap.Error(err),
		)
		return nil, err
	default:
		return nil, err
	}

	s.log.Info("booking created",
		zap.Int64("id", b.ID),
		zap.String("room", b.Room),
		zap.String("user", b.User),
		zap.Time("start", b.StartTime),
		zap.Time("end", b.EndTime),
	)

	if s.notifs != nil {
		if err := s.notifs.NotifyBookingCreated(ctx, *b); err != nil {
			s.log.Warn("booking notification failed", zap.Int64("id", b.ID), zap.Error(err))
		}
	}

	return b, nil
}

// validateCreate runs the checks in a fixed order so the first failure is reported.
func (s *Service) validateCreate(req CreateBookingRequest, now time.Time) (time.Time, time.Time, error) {
	loc := now.Location()

	start, err := ParseTimestamp("start_time", req.StartTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := ParseTimestamp("end_time", req.EndTime, loc)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	if err := ValidateGranularity("Start", start); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if err := ValidateGranularity("End", end); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if err := ValidateWindow(start, end, now, s.opts.Horizon); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if err := ValidateRoom(req.Room); err != nil {
		return time.Time{}, time.Time{}, err
	}
	if err := ValidateUser(req.User); err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}

// checkConflict reads every booking of the room on the days [start, end) touches,
// so a booking running past midnight is seen from both sides.
func (s *Service) checkConflict(ctx context.Context, room string, start, end time.Time) error {
	from := domain.Day(start)
	to := domain.Day(end.Add(-time.Nanosecond)).AddDate(0, 0, 1)

	existing, err := s.bookings.FindOverlapping(ctx, room, from, to)
	if err != nil {
		return err
	}
	for _, b := range existing {
		if b.Overlaps(start, end) {
			return conflictError()
		}
	}
	return nil
}

func (s *Service) checkDailyLimit(ctx context.Context, user string, start time.Time) error {
	cnt, err := s.bookings.CountByUserOn(ctx, user, domain.Day(start))
	if err != nil {
		return err
	}
	if cnt >= int64(s.opts.DailyLimit) {
		return detailed(ErrLimitExceeded, fmt.Sprintf("User cannot have more than %d bookings per day", s.opts.DailyLimit))
	}
	return nil
}

// QueryBookings lists the bookings starting on date for exactly one of room or user.
func (s *Service) QueryBookings(ctx context.Context, date, room, user string) ([]domain.Booking, error) {
	if err := ValidateQueryFilters(room, user); err != nil {
		return nil, err
	}

	loc := s.clock.Now().Location()
	day, err := ParseDate(date, loc)
	if err != nil {
		return nil, err
	}

	room = strings.TrimSpace(room)
	if room != "" {
		if err := ValidateRoom(room); err != nil {
			return nil, err
		}
	}

	bookings, err := s.bookings.Find(ctx, repository.BookingFilter{
		Room: room,
		User: strings.TrimSpace(user),
		Day:  day,
	})
	if err != nil {
		return nil, err
	}

	for i := range bookings {
		bookings[i].StartTime = bookings[i].StartTime.In(loc)
		bookings[i].EndTime = bookings[i].EndTime.In(loc)
	}

	s.log.Debug("bookings queried",
		zap.String("date", date),
		zap.String("room", room),
		zap.String("user", user),
		zap.Int("count", len(bookings)),
	)
	return bookings, nil
}

func conflictError() error {
	return detailed(ErrConflict, "Booking conflict, room already booked for this time")
}

// busyOr turns a lock wait timeout into ErrBusy, but keeps the caller's own cancellation.
func (s *Service) busyOr(ctx context.Context, err error) error {
	if ctx.Err() != nil {
		return ctx.Err()
	}
	s.log.Warn("booking lock wait exceeded", zap.Duration("wait", s.opts.LockWait), zap.Error(err))
	return detailed(ErrBusy, "Room is busy, please retry")
}
