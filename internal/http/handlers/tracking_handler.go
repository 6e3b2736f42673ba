package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/smokefree-backend/internal/dto"
	"github.com/ignatzorin/smokefree-backend/internal/http/handlers/common"
	"github.com/ignatzorin/smokefree-backend/internal/service"
)

// TrackingHandler предоставляет HTTP слой дневника настроения и прогресса.
type TrackingHandler struct {
	tracking *service.TrackingService
}

// NewTrackingHandler создаёт хэндлер.
func NewTrackingHandler(tracking *service.TrackingService) *TrackingHandler {
	return &TrackingHandler{tracking: tracking}
}

// CreateMood обрабатывает POST /api/tracking/mood.
func (h *TrackingHandler) CreateMood(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.CreateMoodEntryRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	entry, err := h.tracking.RecordMood(c.Request.Context(), userID, service.MoodInput{
		Mood:         req.Mood,
		CravingLevel: req.CravingLevel,
		Note:         req.Note,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// ListMood обрабатывает GET /api/tracking/mood.
func (h *TrackingHandler) ListMood(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	limit, offset := common.GetPagination(c)
	entries, err := h.tracking.ListMood(c.Request.Context(), userID, limit, offset)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// UpsertProgress обрабатывает PUT /api/tracking/progress.
func (h *TrackingHandler) UpsertProgress(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.UpsertProgressRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	entry, status, err := h.tracking.RecordProgress(c.Request.Context(), userID, service.ProgressInput{
		EntryDate:        req.EntryDate,
		CigarettesSmoked: req.CigarettesSmoked,
		MoneySpent:       req.MoneySpent,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entry": entry, "smokingStatus": status})
}

// ListProgress обрабатывает GET /api/tracking/progress.
func (h *TrackingHandler) ListProgress(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var from, to time.Time
	if v := c.Query("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			common.RespondBadRequest(c, "параметр from должен быть в формате YYYY-MM-DD")
			return
		}
		from = parsed
	}
	if v := c.Query("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			common.RespondBadRequest(c, "параметр to должен быть в формате YYYY-MM-DD")
			return
		}
		to = parsed
	}

	entries, err := h.tracking.ListProgress(c.Request.Context(), userID, from, to)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"entries": entries})
}

// GetProgressByDate обрабатывает GET /api/tracking/progress/:date.
func (h *TrackingHandler) GetProgressByDate(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	entry, err := h.tracking.GetProgressForDate(c.Request.Context(), userID, c.Param("date"))
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}

// GetSummary обрабатывает GET /api/tracking/summary.
func (h *TrackingHandler) GetSummary(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	summary, err := h.tracking.GetSummary(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
