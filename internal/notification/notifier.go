package notification

import (
	"context"
	"fmt"
	"time"

	"roombooking/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// TypeBookingCreated is the routing key of booking creation events.
const TypeBookingCreated = "booking.created"

const eventTimeLayout = "2006-01-02T15:04:05"

// BookingCreatedEvent is the message body published for a new booking.
type BookingCreatedEvent struct {
	EventID    string    `json:"event_id"`
	BookingID  int64     `json:"booking_id"`
	Room       string    `json:"room"`
	User       string    `json:"user"`
	StartTime  string    `json:"start_time"`
	EndTime    string    `json:"end_time"`
	OccurredAt time.Time `json:"occurred_at"`
}

func NewBookingCreatedEvent(b domain.Booking, now time.Time) BookingCreatedEvent {
	return BookingCreatedEvent{
		EventID:    uuid.NewString(),
		BookingID:  b.ID,
		Room:       b.Room,
		User:       b.User,
		StartTime:  b.StartTime.Format(eventTimeLayout),
		EndTime:    b.EndTime.Format(eventTimeLayout),
		OccurredAt: now.UTC(),
	}
}

// Publisher is satisfied by mq.Publisher.
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
}

// BrokerNotifier publishes booking events to a message broker.
type BrokerNotifier struct {
	pub Publisher
	now func() time.Time
}

func NewBrokerNotifier(pub Publisher) *BrokerNotifier {
	return &BrokerNotifier{pub: pub, now: time.Now}
}

func (n *BrokerNotifier) NotifyBookingCreated(ctx context.Context, b domain.Booking) error {
	ev := NewBookingCreatedEvent(b, n.now())
	if err := n.pub.PublishJSON(ctx, TypeBookingCreated, ev); err != nil {
		return fmt.Errorf("publish %s: %w", TypeBookingCreated, err)
	}
	return nil
}

// LogNotifier writes booking events to the log. Used when no broker is configured.
type LogNotifier struct {
	log *zap.Logger
}

func NewLogNotifier(log *zap.Logger) *LogNotifier {
	return &LogNotifier{log: log}
}

func (n *LogNotifier) NotifyBookingCreated(_ context.Context, b domain.Booking) error {
	n.log.Info("[notify] "+TypeBookingCreated,
		zap.Int64("booking_id", b.ID),
		zap.String("room", b.Room),
		zap.String("user", b.User),
		zap.String("start_time", b.StartTime.Format(eventTimeLayout)),
		zap.String("end_time", b.EndTime.Format(eventTimeLayout)),
	)
	return nil
}
