package booking

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"roombooking/internal/database"
	"roombooking/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func setupSQLiteService(t *testing.T) *Service {
	t.Helper()

	db, err := database.Connect(":memory:", zap.NewNop())
	require.NoError(t, err, "Failed to connect to test database")
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	})

	repo := repository.NewBookingRepository(db)
	require.NoError(t, repo.Migrate(context.Background()))

	return NewService(repo, nil, fixedClock(), Options{}, nil)
}

func create(s *Service, room, user, start, end string) error {
	_, err := s.CreateBooking(context.Background(), CreateBookingRequest{
		Room: room, User: user, StartTime: start, EndTime: end,
	})
	return err
}

func TestServiceSQLite_Scenario(t *testing.T) {
	s := setupSQLiteService(t)

	require.NoError(t, create(s, "EVEREST", "alice", "2025-12-10 14:30", "2025-12-10 15:30"))
	assert.ErrorIs(t, create(s, "EVEREST", "bob", "2025-12-10 15:00", "2025-12-10 16:00"), ErrConflict)
	assert.ErrorIs(t, create(s, "everest", "bob", "2025-12-10 15:00", "2025-12-10 16:00"), ErrInvalidFormat)

	got, err := s.QueryBookings(context.Background(), "2025-12-10", "EVEREST", "")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "alice", got[0].User)
	assert.True(t, got[0].StartTime.Equal(day10(14, 30)))
	assert.True(t, got[0].EndTime.Equal(day10(15, 30)))
}

func TestServiceSQLite_TouchingBookingsDoNotConflict(t *testing.T) {
	s := setupSQLiteService(t)

	require.NoError(t, create(s, "EVEREST", "alice", "2025-12-10 10:00", "2025-12-10 11:00"))
	require.NoError(t, create(s, "EVEREST", "bob", "2025-12-10 11:00", "2025-12-10 12:00"))
	require.NoError(t, create(s, "EVEREST", "carol", "2025-12-10 09:00", "2025-12-10 10:00"))
	assert.ErrorIs(t, create(s, "EVEREST", "dave", "2025-12-10 10:50", "2025-12-10 11:10"), ErrConflict)

	// Another room is unaffected.
	require.NoError(t, create(s, "KINABALU", "dave", "2025-12-10 10:50", "2025-12-10 11:10"))
}

func TestServiceSQLite_MidnightSpanningConflict(t *testing.T) {
	s := setupSQLiteService(t)

	require.NoError(t, create(s, "EVEREST", "alice", "2025-12-10 23:00", "2025-12-11 01:00"))
	assert.ErrorIs(t, create(s, "EVEREST", "bob", "2025-12-11 00:30", "2025-12-11 02:00"), ErrConflict)
	require.NoError(t, create(s, "EVEREST", "bob", "2025-12-11 01:00", "2025-12-11 02:00"))
}

func TestServiceSQLite_DailyLimitBoundary(t *testing.T) {
	s := setupSQLiteService(t)

	for i := 0; i < 5; i++ {
		start := fmt.Sprintf("2025-12-10 %02d:00", 8+i)
		end := fmt.Sprintf("2025-12-10 %02d:00", 9+i)
		require.NoError(t, create(s, "EVEREST", "alice", start, end), "booking %d", i+1)
	}

	err := create(s, "KINABALU", "alice", "2025-12-10 16:00", "2025-12-10 17:00")
	assert.ErrorIs(t, err, ErrLimitExceeded)

	require.NoError(t, create(s, "KINABALU", "alice", "2025-12-11 16:00", "2025-12-11 17:00"))
	require.NoError(t, create(s, "KINABALU", "bob", "2025-12-10 16:00", "2025-12-10 17:00"))
}

func TestServiceSQLite_UserIsMatchedTrimmed(t *testing.T) {
	s := setupSQLiteService(t)
	ctx := context.Background()

	b, err := s.CreateBooking(ctx, CreateBookingRequest{
		Room: "EVEREST", User: " alice ", StartTime: "2025-12-10 14:00", EndTime: "2025-12-10 15:00",
	})
	require.NoError(t, err)
	assert.Equal(t, "alice", b.User)

	for _, user := range []string{" alice ", "alice"} {
		got, err := s.QueryBookings(ctx, "2025-12-10", "", user)
		require.NoError(t, err)
		require.Len(t, got, 1, "user %q", user)
		assert.Equal(t, b.ID, got[0].ID)
	}

	// The padded and bare forms count against the same daily limit.
	for i := 1; i < DefaultDailyLimit; i++ {
		start := fmt.Sprintf("2025-12-10 %02d:00", 15+i)
		end := fmt.Sprintf("2025-12-10 %02d:00", 16+i)
		require.NoError(t, create(s, "EVEREST", "alice", start, end))
	}
	assert.ErrorIs(t, create(s, "KINABALU", "alice ", "2025-12-10 08:00", "2025-12-10 09:00"), ErrLimitExceeded)
}

func TestServiceSQLite_QueryIsIdempotent(t *testing.T) {
	s := setupSQLiteService(t)
	ctx := context.Background()

	require.NoError(t, create(s, "EVEREST", "alice", "2025-12-10 14:00", "2025-12-10 15:00"))
	require.NoError(t, create(s, "RINJANI", "alice", "2025-12-10 09:00", "2025-12-10 10:00"))

	first, err := s.QueryBookings(ctx, "2025-12-10", "", "alice")
	require.NoError(t, err)
	second, err := s.QueryBookings(ctx, "2025-12-10", "", "alice")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	require.Len(t, first, 2)
	assert.Equal(t, "RINJANI", first[0].Room)
	assert.Equal(t, "EVEREST", first[1].Room)
}

func TestServiceSQLite_ConcurrentOverlappingCreates(t *testing.T) {
	s := setupSQLiteService(t)

	const writers = 20
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		succeeded int
		conflicts int
	)
	start := make(chan struct{})

	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			err := create(s, "EVEREST", fmt.Sprintf("user_%d", i), "2025-12-10 14:00", "2025-12-10 15:00")

			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				succeeded++
			case IsStateConflict(err):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}(i)
	}
	close(start)
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, writers-1, conflicts)

	got, err := s.QueryBookings(context.Background(), "2025-12-10", "EVEREST", "")
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestServiceSQLite_ConcurrentDailyLimit(t *testing.T) {
	s := setupSQLiteService(t)

	rooms := []string{"A", "B", "C", "D", "E", "F", "G", "H"}
	var wg sync.WaitGroup
	for _, room := range rooms {
		wg.Add(1)
		go func(room string) {
			defer wg.Done()
			_ = create(s, "ROOM_"+room, "alice", "2025-12-10 10:00", "2025-12-10 11:00")
		}(room)
	}
	wg.Wait()

	got, err := s.QueryBookings(context.Background(), "2025-12-10", "", "alice")
	require.NoError(t, err)
	assert.Len(t, got, DefaultDailyLimit)
}
