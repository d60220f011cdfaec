package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"roombooking/internal/domain"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

// ErrConflict is returned when the store itself rejects an overlapping booking.
var ErrConflict = errors.New("booking overlaps an existing booking")

// BookingFilter selects bookings whose start falls on Day. Empty Room/User match anything.
type BookingFilter struct {
	Room string
	User string
	Day  time.Time
}

type BookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

type bookingModel struct {
	ID        int64     `gorm:"column:id;primaryKey;autoIncrement"`
	Room      string    `gorm:"column:room;size:50;not null;index:idx_bookings_room_start,priority:1"`
	User      string    `gorm:"column:user_name;not null;index:idx_bookings_user_start,priority:1"`
	StartTime time.Time `gorm:"column:start_time;not null;index:idx_bookings_room_start,priority:2;index:idx_bookings_user_start,priority:2"`
	EndTime   time.Time `gorm:"column:end_time;not null"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (bookingModel) TableName() string { return "bookings" }

func toDomainBooking(m bookingModel) domain.Booking {
	return domain.Booking{
		ID:        m.ID,
		Room:      m.Room,
		User:      m.User,
		StartTime: m.StartTime,
		EndTime:   m.EndTime,
		CreatedAt: m.CreatedAt,
	}
}

// Times are stored in UTC so that SQLite's text comparison orders them correctly.
func toBookingModel(b *domain.Booking) bookingModel {
	return bookingModel{
		ID:        b.ID,
		Room:      b.Room,
		User:      b.User,
		StartTime: b.StartTime.UTC(),
		EndTime:   b.EndTime.UTC(),
		CreatedAt: b.CreatedAt.UTC(),
	}
}

const noOverlapConstraint = `
DO $$
BEGIN
	IF NOT EXISTS (SELECT 1 FROM pg_constraint WHERE conname = 'bookings_no_overlap') THEN
		ALTER TABLE bookings ADD CONSTRAINT bookings_no_overlap
			EXCLUDE USING gist (room WITH =, tstzrange(start_time, end_time, '[)') WITH &&);
	END IF;
END $$`

// Migrate creates the bookings table. On PostgreSQL it also installs an
// exclusion constraint so overlapping rows can never be committed.
func (r *BookingRepository) Migrate(ctx context.Context) error {
	db := r.db.WithContext(ctx)
	if err := db.AutoMigrate(&bookingModel{}); err != nil {
		return fmt.Errorf("migrate bookings: %w", err)
	}
	if db.Dialector.Name() != "postgres" {
		return nil
	}
	if err := db.Exec("CREATE EXTENSION IF NOT EXISTS btree_gist").Error; err != nil {
		return fmt.Errorf("enable btree_gist: %w", err)
	}
	if err := db.Exec(noOverlapConstraint).Error; err != nil {
		return fmt.Errorf("add bookings_no_overlap: %w", err)
	}
	return nil
}

type txKey struct{}

func (r *BookingRepository) conn(ctx context.Context) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

// Atomic runs fn inside one transaction. Repository calls made with the ctx
// passed to fn join that transaction. On PostgreSQL the transaction holds an
// advisory lock per key until it ends, serialising writers across processes.
func (r *BookingRepository) Atomic(ctx context.Context, keys []string, fn func(ctx context.Context) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if tx.Dialector.Name() == "postgres" {
			for _, k := range keys {
				if err := tx.Exec("SELECT pg_advisory_xact_lock(hashtext(?))", k).Error; err != nil {
					return fmt.Errorf("advisory lock %q: %w", k, err)
				}
			}
		}
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

func (r *BookingRepository) Add(ctx context.Context, b *domain.Booking) error {
	m := toBookingModel(b)
	if err := r.conn(ctx).Create(&m).Error; err != nil {
		return translateError(err)
	}
	b.ID = m.ID
	b.CreatedAt = m.CreatedAt
	return nil
}

// Find returns bookings starting on f.Day ordered by start time.
func (r *BookingRepository) Find(ctx context.Context, f BookingFilter) ([]domain.Booking, error) {
	from := f.Day.UTC()
	to := f.Day.AddDate(0, 0, 1).UTC()

	q := r.conn(ctx).Model(&bookingModel{}).Where("start_time >= ? AND start_time < ?", from, to)
	if f.Room != "" {
		q = q.Where("room = ?", f.Room)
	}
	if f.User != "" {
		q = q.Where("user_name = ?", f.User)
	}

	var rows []bookingModel
	if err := q.Order("start_time ASC, id ASC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("find bookings: %w", err)
	}
	return toDomainBookings(rows), nil
}

// FindOverlapping returns the room's bookings that intersect [from, to).
func (r *BookingRepository) FindOverlapping(ctx context.Context, room string, from, to time.Time) ([]domain.Booking, error) {
	var rows []bookingModel
	err := r.conn(ctx).
		Where("room = ? AND start_time < ? AND end_time > ?", room, to.UTC(), from.UTC()).
		Order("start_time ASC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("find overlapping bookings: %w", err)
	}
	return toDomainBookings(rows), nil
}

// CountByUserOn counts the user's bookings starting on day.
func (r *BookingRepository) CountByUserOn(ctx context.Context, user string, day time.Time) (int64, error) {
	var cnt int64
	err := r.conn(ctx).Model(&bookingModel{}).
		Where("user_name = ? AND start_time >= ? AND start_time < ?", user, day.UTC(), day.AddDate(0, 0, 1).UTC()).
		Count(&cnt).Error
	if err != nil {
		return 0, fmt.Errorf("count user bookings: %w", err)
	}
	return cnt, nil
}

func toDomainBookings(rows []bookingModel) []domain.Booking {
	out := make([]domain.Booking, 0, len(rows))
	for _, m := range rows {
		out = append(out, toDomainBooking(m))
	}
	return out
}

// translateError maps unique (23505) and exclusion (23P01) violations to ErrConflict.
func translateError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && (pgErr.Code == "23505" || pgErr.Code == "23P01") {
		return ErrConflict
	}
	return fmt.Errorf("insert booking: %w", err)
}
