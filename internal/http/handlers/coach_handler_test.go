package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestCoachHandler_GetCoach_InvalidID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &CoachHandler{coaches: nil}
	r.GET("/coaches/:id", handler.GetCoach)

	req, _ := http.NewRequest("GET", "/coaches/invalid-uuid", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCoachHandler_CreateBooking_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &CoachHandler{coaches: nil}
	r.POST("/bookings", handler.CreateBooking)

	req, _ := http.NewRequest("POST", "/bookings", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestCoachHandler_CancelBooking_Unauthorized(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := &CoachHandler{coaches: nil}
	r.POST("/bookings/:id/cancel", handler.CancelBooking)

	bookingID := uuid.New()
	req, _ := http.NewRequest("POST", "/bookings/"+bookingID.String()+"/cancel", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
