package booking

import "roombooking/internal/domain"

const responseTimeLayout = "2006-01-02T15:04:05"

type CreateBookingRequest struct {
	Room      string `json:"room"`
	User      string `json:"user"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

type QueryBookingsRequest struct {
	Date string `form:"date"`
	Room string `form:"room"`
	User string `form:"user"`
}

type BookingResponse struct {
	ID        int64  `json:"id"`
	Room      string `json:"room"`
	User      string `json:"user"`
	StartTime string `json:"start_time"`
	EndTime   string `json:"end_time"`
}

func toBookingResponse(b domain.Booking) BookingResponse {
	return BookingResponse{
		ID:        b.ID,
		Room:      b.Room,
		User:      b.User,
		StartTime: b.StartTime.Format(responseTimeLayout),
		EndTime:   b.EndTime.Format(responseTimeLayout),
	}
}

func toBookingResponses(bs []domain.Booking) []BookingResponse {
	out := make([]BookingResponse, 0, len(bs))
	for _, b := range bs {
		out = append(out, toBookingResponse(b))
	}
	return out
}
