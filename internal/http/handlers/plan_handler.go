package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ignatzorin/smokefree-backend/internal/dto"
	"github.com/ignatzorin/smokefree-backend/internal/http/handlers/common"
	"github.com/ignatzorin/smokefree-backend/internal/service"
)

// PlanHandler предоставляет HTTP слой мастера планов отказа.
type PlanHandler struct {
	plans *service.PlanService
}

// NewPlanHandler создаёт хэндлер.
func NewPlanHandler(plans *service.PlanService) *PlanHandler {
	return &PlanHandler{plans: plans}
}

// StartPlan обрабатывает POST /api/plans.
func (h *PlanHandler) StartPlan(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.StartPlanRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	plan, err := h.plans.StartPlan(c.Request.Context(), userID, req.Reason)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusCreated, plan)
}

// SubmitStep обрабатывает PUT /api/plans/current/step.
func (h *PlanHandler) SubmitStep(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	var req dto.PlanStepRequest
	if err := common.BindAndValidate(c, &req); err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	plan, err := h.plans.SubmitStep(c.Request.Context(), userID, service.PlanStepInput{
		Step:              req.Step,
		TargetQuitDate:    req.TargetQuitDate,
		CigarettesPerDay:  req.CigarettesPerDay,
		PricePerPack:      req.PricePerPack,
		CigarettesPerPack: req.CigarettesPerPack,
	})
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// ActivatePlan обрабатывает POST /api/plans/current/activate.
func (h *PlanHandler) ActivatePlan(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	plan, stages, err := h.plans.ActivatePlan(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPlanResponse(plan, stages))
}

// GetCurrent обрабатывает GET /api/plans/current.
func (h *PlanHandler) GetCurrent(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	plan, stages, err := h.plans.GetCurrentPlan(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, dto.NewPlanResponse(plan, stages))
}

// ListPlans обрабатывает GET /api/plans.
func (h *PlanHandler) ListPlans(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	plans, err := h.plans.ListPlans(c.Request.Context(), userID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}

// CompleteStage обрабатывает POST /api/plans/current/stages/:id/complete.
func (h *PlanHandler) CompleteStage(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	stageID, err := common.ParseUUIDParam(c, "id")
	if err != nil {
		common.RespondBadRequest(c, err.Error())
		return
	}

	plan, err := h.plans.CompleteStage(c.Request.Context(), userID, stageID)
	if err != nil {
		common.RespondAppError(c, err)
		return
	}

	c.JSON(http.StatusOK, plan)
}

// AbandonPlan обрабатывает DELETE /api/plans/current.
func (h *PlanHandler) AbandonPlan(c *gin.Context) {
	userID, err := common.CurrentUserID(c)
	if err != nil {
		common.RespondUnauthorized(c, "")
		return
	}

	if err := h.plans.AbandonPlan(c.Request.Context(), userID); err != nil {
		common.RespondAppError(c, err)
		return
	}

	common.RespondSuccess(c, http.StatusOK, "план отменён", nil)
}
