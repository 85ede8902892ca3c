package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/avoronov/fitbook/internal/domain"
	"github.com/avoronov/fitbook/internal/service/booking"
	"github.com/avoronov/fitbook/internal/service/classes"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
	classes classes.ClassUseCase
}

func NewBookingHandler(service booking.BookingUseCase, classService classes.ClassUseCase) *BookingHandler {
	return &BookingHandler{service: service, classes: classService}
}

func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.POST("/:id/bookings", h.book)
	router.DELETE("/:id/bookings/:memberId", h.cancel)
	router.POST("/:id/checkin", h.checkIn)
}

func (h *BookingHandler) RegisterMembers(router *gin.RouterGroup) {
	router.GET("/:memberId/bookings", h.memberBookings)
}

type bookRequest struct {
	MemberID string `json:"member_id"`
}

type checkInRequest struct {
	MemberID  string `json:"member_id"`
	BookingID string `json:"booking_id"`
}

type bookingResponse struct {
	ID         string `json:"id"`
	InstanceID int64  `json:"instance_id"`
	MemberID   string `json:"member_id"`
	Status     string `json:"status"`
	BookedAt   string `json:"booked_at"`
}

func toBookingResponse(b *domain.Booking) bookingResponse {
	return bookingResponse{
		ID:         b.ID,
		InstanceID: b.InstanceID,
		MemberID:   b.MemberID,
		Status:     string(b.Status),
		BookedAt:   b.BookedAt.Format(time.RFC3339),
	}
}

func (h *BookingHandler) book(c *gin.Context) {
	instanceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid class id"})
		return
	}
	var req bookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MemberID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "member_id is required"})
		return
	}

	b, err := h.service.Book(c.Request.Context(), instanceID, req.MemberID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toBookingResponse(b))
}

func (h *BookingHandler) cancel(c *gin.Context) {
	instanceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid class id"})
		return
	}
	memberID := c.Param("memberId")

	b, err := h.service.Cancel(c.Request.Context(), instanceID, memberID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) checkIn(c *gin.Context) {
	instanceID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid class id"})
		return
	}
	var req checkInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if req.MemberID == "" || req.BookingID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "member_id and booking_id are required"})
		return
	}

	b, err := h.service.CheckIn(c.Request.Context(), instanceID, req.MemberID, req.BookingID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toBookingResponse(b))
}

func (h *BookingHandler) memberBookings(c *gin.Context) {
	memberID := c.Param("memberId")
	bookings, err := h.classes.MemberBookings(c.Request.Context(), memberID)
	if err != nil {
		respondError(c, err)
		return
	}
	out := make([]bookingResponse, 0, len(bookings))
	for i := range bookings {
		out = append(out, toBookingResponse(&bookings[i]))
	}
	c.JSON(http.StatusOK, out)
}
