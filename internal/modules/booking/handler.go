package booking

import (
	"errors"
	"net/http"

	"roombooking/internal/pkg/response"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	service *Service
}

func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.CreateBooking)
	rg.GET("/bookings", h.QueryBookings)
}

func (h *Handler) CreateBooking(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Detail(c, http.StatusBadRequest, "Invalid request body")
		return
	}

	b, err := h.service.CreateBooking(c.Request.Context(), req)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusCreated, toBookingResponse(*b))
}

func (h *Handler) QueryBookings(c *gin.Context) {
	var q QueryBookingsRequest
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Detail(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	bookings, err := h.service.QueryBookings(c.Request.Context(), q.Date, q.Room, q.User)
	if err != nil {
		writeError(c, err)
		return
	}

	response.Success(c, http.StatusOK, toBookingResponses(bookings))
}

func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case IsClientError(err):
		status = http.StatusBadRequest
	case IsStateConflict(err):
		status = http.StatusConflict
	case errors.Is(err, ErrBusy):
		status = http.StatusServiceUnavailable
		c.Header("Retry-After", "1")
	}

	var de *DetailError
	if status == http.StatusInternalServerError || !errors.As(err, &de) {
		// Storage details stay in the logs.
		_ = c.Error(err)
		response.Detail(c, http.StatusInternalServerError, response.InternalErrorDetail)
		return
	}
	response.Detail(c, status, de.Detail)
}
