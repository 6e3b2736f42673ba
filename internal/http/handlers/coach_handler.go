package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/smokefree-backend/internal/dto"
	"github.com/ignatzorin/smokefree-backend/internal/http/handlers/common"
	"github.com/ignatzorin/smokefree-backend/internal/service"
)

// CoachHandler предоставляет HTTP слой каталога консультантов и бронирований.
type CoachHandler struct {
	coaches *service.CoachService
}

// NewCoachHandler создаёт хэндлер.
func NewCoachHandler(coaches *service.CoachService) *CoachHandler {
	return &CoachHandler{coaches: coaches}
}

// ListCoaches обрабатывает GET /api/coaches.
func (h *CoachHandler) ListCoaches(c *gin.Context) {
	limit, offset := common.GetPagination(c)
	coaches, err := h.coaches.ListCoaches(c.Request.Context(), limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"coaches": coaches})
}

// GetCoach обрабатывает GET /api/coaches/:id.
func (h *CoachHandler) GetCoach(c *gin.Context) {
	coachID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	coach, err := h.coaches.GetCoach(c.Request.Context(), coachID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, coach)
}

// CreateBooking обрабатывает POST /api/bookings.
func (h *CoachHandler) CreateBooking(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.CreateBookingRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	booking, err := h.coaches.CreateBooking(c.Request.Context(), userID, service.BookingInput{
		CoachID:     req.CoachID,
		ScheduledAt: req.ScheduledAt,
		Note:        req.Note,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, booking)
}

// ListBookings обрабатывает GET /api/bookings.
func (h *CoachHandler) ListBookings(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	limit, offset := common.GetPagination(c)
	bookings, err := h.coaches.ListBookings(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"bookings": bookings})
}

// CancelBooking обрабатывает POST /api/bookings/:id/cancel.
func (h *CoachHandler) CancelBooking(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	bookingID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	booking, err := h.coaches.CancelBooking(c.Request.Context(), userID, bookingID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, booking)
}
